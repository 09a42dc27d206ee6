// Package ncf contiene el catálogo de tipos de Comprobante Fiscal (NCF) según
// la Norma General 06-2018 de la DGII (República Dominicana) y las reglas de
// formato del número: código de tipo (letra + dos dígitos) seguido de una
// secuencia de 11 dígitos con ceros a la izquierda.
package ncf

import (
	"fmt"
	"regexp"
)

// SequenceWidth ancho fijo de la secuencia numérica dentro del NCF.
const SequenceWidth = 11

// Type describe un tipo de comprobante fiscal del catálogo DGII.
type Type struct {
	Code                   string // B01, B02, E31...
	Description            string
	AppliesToCredit        bool // el comprador puede tomar crédito fiscal (ITBIS)
	AppliesToFinalConsumer bool // restringido a ventas a consumidor final
	RequiresExpiration     bool // el lote debe registrarse con fecha de vencimiento
}

// Catálogo cerrado de tipos. La DGII solo exige fecha de vencimiento para las
// series en papel B01, B14 y B15; los comprobantes electrónicos (E*) y el B02
// pueden registrarse sin ella.
var types = []Type{
	{Code: "B01", Description: "Factura de Crédito Fiscal", AppliesToCredit: true, RequiresExpiration: true},
	{Code: "B02", Description: "Factura de Consumo", AppliesToFinalConsumer: true},
	{Code: "B14", Description: "Regímenes Especiales de Tributación", RequiresExpiration: true},
	{Code: "B15", Description: "Comprobante Gubernamental", RequiresExpiration: true},
	{Code: "E31", Description: "Factura de Crédito Fiscal Electrónica", AppliesToCredit: true},
	{Code: "E32", Description: "Factura de Consumo Electrónica", AppliesToFinalConsumer: true},
	{Code: "E33", Description: "Nota de Débito Electrónica"},
	{Code: "E34", Description: "Nota de Crédito Electrónica"},
	{Code: "E41", Description: "Comprobante de Compras Electrónico"},
	{Code: "E43", Description: "Comprobante para Gastos Menores Electrónico"},
	{Code: "E44", Description: "Comprobante para Regímenes Especiales Electrónico"},
	{Code: "E45", Description: "Comprobante Gubernamental Electrónico"},
}

var typesByCode = func() map[string]Type {
	m := make(map[string]Type, len(types))
	for _, t := range types {
		m[t.Code] = t
	}
	return m
}()

// Lookup devuelve el tipo para un código (ej. "B01") y si existe en el catálogo.
func Lookup(code string) (Type, bool) {
	t, ok := typesByCode[code]
	return t, ok
}

// All devuelve el catálogo completo en orden estable.
func All() []Type {
	out := make([]Type, len(types))
	copy(out, types)
	return out
}

// IsValidCode indica si el código pertenece al catálogo DGII.
func IsValidCode(code string) bool {
	_, ok := typesByCode[code]
	return ok
}

// ncfPattern: código de tipo (letra mayúscula + dos dígitos) y exactamente
// 11 dígitos de secuencia. La pertenencia al catálogo se valida aparte.
var ncfPattern = regexp.MustCompile(`^[A-Z]\d{2}\d{11}$`)

// Format arma el NCF completo: código de tipo + secuencia con ceros a la
// izquierda. El caller garantiza que seq está dentro del rango del lote.
func Format(typeCode string, seq int64) string {
	return fmt.Sprintf("%s%0*d", typeCode, SequenceWidth, seq)
}

// ValidateFormat verifica que un NCF suplido por terceros (ej. factura de un
// proveedor) esté bien formado y corresponda al tipo esperado. No consulta
// lotes; solo estructura y catálogo.
func ValidateFormat(value, expectedType string) bool {
	if !IsValidCode(expectedType) {
		return false
	}
	if !ncfPattern.MatchString(value) {
		return false
	}
	return value[:3] == expectedType
}
