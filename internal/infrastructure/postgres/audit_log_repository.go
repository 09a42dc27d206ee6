package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
	"github.com/jhoicas/facturacion-rd/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditLogRepo)(nil)

// AuditLogRepo implementa AuditRepository sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only: no hay UPDATE ni DELETE de eventos.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

func (r *AuditLogRepo) Record(ctx context.Context, entry *entity.AuditEntry) error {
	const q = `
		INSERT INTO audit_log
			(id, company_id, actor_id, action, resource, resource_id, before, after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`
	_, err := r.q.Exec(ctx, q,
		entry.ID, entry.CompanyID, entry.ActorID, entry.Action,
		entry.Resource, entry.ResourceID, entry.Before, entry.After,
	)
	if err != nil {
		return fmt.Errorf("insert audit_log: %w", err)
	}
	return nil
}

func (r *AuditLogRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.AuditEntry, error) {
	const q = `
		SELECT id, company_id, actor_id, action, resource, resource_id, before, after, created_at
		FROM audit_log
		WHERE company_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, q, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit_log: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(
			&e.ID, &e.CompanyID, &e.ActorID, &e.Action,
			&e.Resource, &e.ResourceID, &e.Before, &e.After, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit_log: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
