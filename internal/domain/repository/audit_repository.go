package repository

import (
	"context"

	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
)

// AuditRepository define el puerto de la pista de auditoría fiscal.
// Es append-only: no hay update ni delete de eventos.
type AuditRepository interface {
	Record(ctx context.Context, entry *entity.AuditEntry) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.AuditEntry, error)
}
