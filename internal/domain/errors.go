package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// ErrNCFExhausted: el lote activo no tiene números disponibles (o no existe
	// lote activo). El remedio es registrar un lote nuevo ante la DGII, no reintentar.
	ErrNCFExhausted = errors.New("secuencia NCF agotada")

	// ErrNCFExpired: el lote activo está vencido aunque le queden números.
	ErrNCFExpired = errors.New("secuencia NCF vencida")

	// ErrSequenceConflict: el UPDATE condicional del cursor perdió la carrera
	// demasiadas veces. El asignador lo reintenta internamente; si llega al
	// caller indica contención sostenida sobre el mismo lote.
	ErrSequenceConflict = errors.New("conflicto de concurrencia al asignar NCF")
)

// ValidationError lleva el mensaje de negocio de una validación fallida
// (rango invertido, fecha de vencimiento faltante, etc.). Envuelve
// ErrInvalidInput para que los handlers lo mapeen con errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError construye un ValidationError con el mensaje dado.
func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}
