package fiscal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/facturacion-rd/internal/domain"
	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
	"github.com/jhoicas/facturacion-rd/internal/domain/ncf"
	"github.com/jhoicas/facturacion-rd/internal/domain/repository"
	"github.com/jhoicas/facturacion-rd/pkg/logger"
)

// DefaultAllocateRetries reintentos del asignador cuando el UPDATE condicional
// del cursor pierde la carrera contra otra asignación concurrente.
const DefaultAllocateRetries = 3

// Allocator asigna el próximo NCF de un lote. La asignación es un
// read-increment-write atómico contra la base: se lee el lote objetivo, se
// intenta avanzar el cursor con compare-and-swap (AdvanceCursor) y, si otro
// proceso ganó la carrera, se reintenta releyendo el estado. Nunca se cachea
// el cursor en memoria entre peticiones.
type Allocator struct {
	batches repository.NCFBatchRepository
	audit   repository.AuditRepository
	log     *logger.Logger
	retries int
}

// NewAllocator construye el asignador. retries <= 0 usa DefaultAllocateRetries.
func NewAllocator(batches repository.NCFBatchRepository, audit repository.AuditRepository, log *logger.Logger, retries int) *Allocator {
	if retries <= 0 {
		retries = DefaultAllocateRetries
	}
	return &Allocator{batches: batches, audit: audit, log: log, retries: retries}
}

// AllocateNext asigna y retorna el próximo NCF para (empresa, tipo) usando los
// repositorios del pool. Errores de negocio: ErrNCFExhausted (sin lote activo o
// sin capacidad), ErrNCFExpired (lote vencido). ErrSequenceConflict solo si se
// agotan los reintentos internos.
func (a *Allocator) AllocateNext(ctx context.Context, companyID, typeCode, actorID string) (string, error) {
	return a.allocate(ctx, a.batches, a.audit, companyID, typeCode, actorID)
}

// AllocateNextInTx asigna usando repositorios atados a la transacción del
// caller (ej. emisión de factura): si la transacción hace rollback, el número
// vuelve al lote y no queda hueco en la secuencia.
func (a *Allocator) AllocateNextInTx(
	ctx context.Context,
	batches repository.NCFBatchRepository,
	audit repository.AuditRepository,
	companyID, typeCode, actorID string,
) (string, error) {
	return a.allocate(ctx, batches, audit, companyID, typeCode, actorID)
}

func (a *Allocator) allocate(
	ctx context.Context,
	batches repository.NCFBatchRepository,
	audit repository.AuditRepository,
	companyID, typeCode, actorID string,
) (string, error) {
	if !ncf.IsValidCode(typeCode) {
		return "", domain.NewValidationError("tipo de NCF desconocido: " + typeCode)
	}

	for attempt := 0; attempt < a.retries; attempt++ {
		batch, err := batches.GetAllocationTarget(ctx, companyID, typeCode)
		if err != nil {
			return "", fmt.Errorf("leer lote NCF: %w", err)
		}
		if batch == nil {
			return "", domain.ErrNCFExhausted
		}
		now := time.Now()
		if batch.IsExpired(now) {
			return "", domain.ErrNCFExpired
		}
		if batch.IsExhausted() {
			return "", domain.ErrNCFExhausted
		}

		ok, err := batches.AdvanceCursor(ctx, batch.ID, batch.LastUsed)
		if err != nil {
			return "", fmt.Errorf("avanzar cursor NCF: %w", err)
		}
		if !ok {
			// Otro proceso movió el cursor: releer y reintentar.
			continue
		}

		seq := batch.NextSequence()
		value := ncf.Format(typeCode, seq)
		a.recordAllocation(ctx, audit, batch, companyID, actorID, value, seq)
		return value, nil
	}

	a.log.Error().
		Str("company_id", companyID).
		Str("type_code", typeCode).
		Int("retries", a.retries).
		Msg("contención sostenida al asignar NCF: reintentos agotados")
	return "", domain.ErrSequenceConflict
}

// PreviewNext calcula, sin mutar estado, cómo se vería el próximo NCF.
// next vacío con reason cuando no hay lote utilizable.
func (a *Allocator) PreviewNext(ctx context.Context, companyID, typeCode string) (next, reason string, err error) {
	if !ncf.IsValidCode(typeCode) {
		return "", "", domain.NewValidationError("tipo de NCF desconocido: " + typeCode)
	}
	batch, err := a.batches.GetAllocationTarget(ctx, companyID, typeCode)
	if err != nil {
		return "", "", fmt.Errorf("leer lote NCF: %w", err)
	}
	if batch == nil {
		return "", "sin lote activo", nil
	}
	now := time.Now()
	if batch.IsExpired(now) {
		return "", "lote vencido", nil
	}
	if batch.IsExhausted() {
		return "", "lote agotado", nil
	}
	return ncf.Format(typeCode, batch.NextSequence()), "", nil
}

// recordAllocation reporta la asignación a la pista de auditoría. El número ya
// fue consumido: un fallo del audit se registra en el log pero no se revierte.
func (a *Allocator) recordAllocation(ctx context.Context, audit repository.AuditRepository, batch *entity.NCFBatch, companyID, actorID, value string, seq int64) {
	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		ActorID:    actorID,
		Action:     entity.AuditNCFAllocated,
		Resource:   "ncf_batch",
		ResourceID: batch.ID,
		Before:     fmt.Sprintf(`{"last_used":%d}`, seq-1),
		After:      fmt.Sprintf(`{"last_used":%d,"ncf":%q}`, seq, value),
		CreatedAt:  time.Now(),
	}
	if err := audit.Record(ctx, entry); err != nil {
		a.log.Error().Err(err).
			Str("batch_id", batch.ID).
			Str("ncf", value).
			Msg("no se pudo registrar la asignación en la auditoría fiscal")
	}
}
