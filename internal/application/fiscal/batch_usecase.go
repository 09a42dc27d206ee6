package fiscal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/facturacion-rd/internal/application/dto"
	"github.com/jhoicas/facturacion-rd/internal/domain"
	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
	"github.com/jhoicas/facturacion-rd/internal/domain/ncf"
	"github.com/jhoicas/facturacion-rd/internal/domain/repository"
	"github.com/jhoicas/facturacion-rd/pkg/logger"
)

const dateLayout = "2006-01-02"

// BatchUseCase ciclo de vida de los lotes de numeración NCF: registrar,
// editar (extender rango, vencimiento, activar/desactivar), borrar y listar.
// Toda mutación se reporta a la pista de auditoría fiscal.
type BatchUseCase struct {
	batches repository.NCFBatchRepository
	audit   repository.AuditRepository
	log     *logger.Logger
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(batches repository.NCFBatchRepository, audit repository.AuditRepository, log *logger.Logger) *BatchUseCase {
	return &BatchUseCase{batches: batches, audit: audit, log: log}
}

// Create registra un lote autorizado por la DGII. El cursor arranca en
// RangeStart-1 (ningún número emitido) y el lote nace activo.
func (uc *BatchUseCase) Create(ctx context.Context, companyID, actorID string, in dto.CreateNCFBatchRequest) (*dto.NCFBatchResponse, error) {
	tp, ok := ncf.Lookup(in.TypeCode)
	if !ok {
		return nil, domain.NewValidationError("tipo de NCF desconocido: " + in.TypeCode)
	}
	if in.RangeStart < 1 {
		return nil, domain.NewValidationError("el inicio del rango debe ser mayor o igual a 1")
	}
	if in.RangeEnd < in.RangeStart {
		return nil, domain.NewValidationError("el fin del rango debe ser mayor o igual al inicio")
	}
	expiration, err := parseExpiration(in.ExpirationDate)
	if err != nil {
		return nil, err
	}
	if tp.RequiresExpiration && expiration == nil {
		return nil, domain.NewValidationError("este tipo de NCF requiere fecha de vencimiento")
	}

	now := time.Now()
	batch := &entity.NCFBatch{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		TypeCode:       tp.Code,
		SeriesPrefix:   tp.Code[:1],
		RangeStart:     in.RangeStart,
		RangeEnd:       in.RangeEnd,
		LastUsed:       in.RangeStart - 1,
		ExpirationDate: expiration,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.batches.Create(ctx, batch); err != nil {
		return nil, err
	}
	uc.recordAudit(ctx, companyID, actorID, entity.AuditBatchCreated, batch.ID, nil, batch)
	return toBatchResponse(batch, now), nil
}

// Update edita un lote. El rango solo se extiende: el nuevo fin no puede
// quedar por debajo del cursor (dejaría huérfanos números ya emitidos) ni
// del inicio. La obligatoriedad del vencimiento se re-valida contra el tipo.
func (uc *BatchUseCase) Update(ctx context.Context, companyID, actorID, id string, in dto.UpdateNCFBatchRequest) (*dto.NCFBatchResponse, error) {
	batch, err := uc.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil || batch.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	before := *batch

	if in.RangeEnd != nil {
		if *in.RangeEnd < batch.RangeStart {
			return nil, domain.NewValidationError("el fin del rango debe ser mayor o igual al inicio")
		}
		if *in.RangeEnd < batch.LastUsed {
			return nil, domain.NewValidationError("el fin del rango no puede ser menor al último número emitido")
		}
		batch.RangeEnd = *in.RangeEnd
	}
	if in.ExpirationDate != nil {
		if *in.ExpirationDate == "" {
			tp, _ := ncf.Lookup(batch.TypeCode)
			if tp.RequiresExpiration {
				return nil, domain.NewValidationError("este tipo de NCF requiere fecha de vencimiento")
			}
			batch.ExpirationDate = nil
		} else {
			expiration, err := parseExpiration(*in.ExpirationDate)
			if err != nil {
				return nil, err
			}
			batch.ExpirationDate = expiration
		}
	}
	if in.IsActive != nil {
		// Desactivar no afecta los NCF ya emitidos; solo bloquea asignaciones futuras.
		batch.IsActive = *in.IsActive
	}
	batch.UpdatedAt = time.Now()

	// El adaptador re-verifica last_used <= range_end al momento del commit:
	// una asignación concurrente pudo mover el cursor después de la lectura.
	ok, err := uc.batches.Update(ctx, batch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrConflict
	}
	uc.recordAudit(ctx, companyID, actorID, entity.AuditBatchUpdated, batch.ID, &before, batch)
	return toBatchResponse(batch, time.Now()), nil
}

// Delete borra el lote. El snapshot completo queda en la pista de auditoría
// antes del borrado, de modo que la historia sobrevive al registro.
func (uc *BatchUseCase) Delete(ctx context.Context, companyID, actorID, id string) error {
	batch, err := uc.batches.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if batch == nil || batch.CompanyID != companyID {
		return domain.ErrNotFound
	}
	uc.recordAudit(ctx, companyID, actorID, entity.AuditBatchDeleted, batch.ID, batch, nil)
	return uc.batches.Delete(ctx, id)
}

// GetByID obtiene un lote con sus campos calculados.
func (uc *BatchUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.NCFBatchResponse, error) {
	batch, err := uc.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil || batch.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return toBatchResponse(batch, time.Now()), nil
}

// List lista los lotes de la empresa, cada uno anotado con uso, disponibilidad
// y estado derivado.
func (uc *BatchUseCase) List(ctx context.Context, companyID string) (*dto.NCFBatchListResponse, error) {
	batches, err := uc.batches.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := &dto.NCFBatchListResponse{Items: make([]dto.NCFBatchResponse, 0, len(batches))}
	for _, b := range batches {
		out.Items = append(out.Items, *toBatchResponse(b, now))
	}
	return out, nil
}

// ListTypes expone el catálogo DGII de tipos de comprobante.
func (uc *BatchUseCase) ListTypes() []dto.NCFTypeResponse {
	types := ncf.All()
	out := make([]dto.NCFTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, dto.NCFTypeResponse{
			Code:                   t.Code,
			Description:            t.Description,
			AppliesToCredit:        t.AppliesToCredit,
			AppliesToFinalConsumer: t.AppliesToFinalConsumer,
			RequiresExpiration:     t.RequiresExpiration,
		})
	}
	return out
}

// recordAudit reporta la mutación a la pista de auditoría. Un fallo del audit
// no revierte la operación de negocio; se deja constancia en el log.
func (uc *BatchUseCase) recordAudit(ctx context.Context, companyID, actorID, action, resourceID string, before, after *entity.NCFBatch) {
	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		ActorID:    actorID,
		Action:     action,
		Resource:   "ncf_batch",
		ResourceID: resourceID,
		Before:     marshalBatchSnapshot(before),
		After:      marshalBatchSnapshot(after),
		CreatedAt:  time.Now(),
	}
	if err := uc.audit.Record(ctx, entry); err != nil {
		uc.log.Error().Err(err).
			Str("action", action).
			Str("batch_id", resourceID).
			Msg("no se pudo registrar el evento de auditoría fiscal")
	}
}

func marshalBatchSnapshot(b *entity.NCFBatch) string {
	if b == nil {
		return ""
	}
	data, err := json.Marshal(b)
	if err != nil {
		return ""
	}
	return string(data)
}

func parseExpiration(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, domain.NewValidationError("fecha de vencimiento inválida, formato esperado AAAA-MM-DD")
	}
	return &t, nil
}

func toBatchResponse(b *entity.NCFBatch, now time.Time) *dto.NCFBatchResponse {
	resp := &dto.NCFBatchResponse{
		ID:           b.ID,
		CompanyID:    b.CompanyID,
		TypeCode:     b.TypeCode,
		SeriesPrefix: b.SeriesPrefix,
		RangeStart:   b.RangeStart,
		RangeEnd:     b.RangeEnd,
		LastUsed:     b.LastUsed,
		Used:         b.Used(),
		Available:    b.Available(),
		UsagePercent: b.UsagePercent(),
		Status:       b.Status(now),
		DaysToExpire: b.DaysToExpiration(now),
		IsActive:     b.IsActive,
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
	}
	if b.ExpirationDate != nil {
		resp.ExpirationDate = b.ExpirationDate.Format(dateLayout)
	}
	return resp
}
