package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/facturacion-rd/internal/domain"
	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
	"github.com/jhoicas/facturacion-rd/internal/domain/repository"
)

var _ repository.NCFBatchRepository = (*NCFBatchRepo)(nil)

// NCFBatchRepo implementa NCFBatchRepository sobre PostgreSQL (usable con pool o tx).
type NCFBatchRepo struct {
	q Querier
}

// NewNCFBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNCFBatchRepository(q Querier) *NCFBatchRepo {
	return &NCFBatchRepo{q: q}
}

const ncfBatchColumns = `
	id, company_id, type_code, series_prefix, range_start, range_end, last_used,
	expiration_date, is_active, created_at, updated_at`

func (r *NCFBatchRepo) Create(ctx context.Context, batch *entity.NCFBatch) error {
	const q = `
		INSERT INTO ncf_batches
			(id, company_id, type_code, series_prefix, range_start, range_end, last_used,
			 expiration_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())`
	_, err := r.q.Exec(ctx, q,
		batch.ID, batch.CompanyID, batch.TypeCode, batch.SeriesPrefix,
		batch.RangeStart, batch.RangeEnd, batch.LastUsed,
		batch.ExpirationDate, batch.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ncf_batch: %w", err)
	}
	return nil
}

func (r *NCFBatchRepo) GetByID(ctx context.Context, id string) (*entity.NCFBatch, error) {
	q := `SELECT` + ncfBatchColumns + ` FROM ncf_batches WHERE id = $1`
	b, err := scanNCFBatch(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ncf_batch by id: %w", err)
	}
	return b, nil
}

// GetAllocationTarget devuelve el lote activo del que se asigna para
// (empresa, tipo). El desempate entre varios activos es determinista: el más
// antiguo por created_at y luego por id, para que todos los procesos agoten
// el mismo lote antes de pasar al siguiente.
func (r *NCFBatchRepo) GetAllocationTarget(ctx context.Context, companyID, typeCode string) (*entity.NCFBatch, error) {
	q := `SELECT` + ncfBatchColumns + `
		FROM ncf_batches
		WHERE company_id = $1
		  AND type_code  = $2
		  AND is_active  = true
		ORDER BY created_at, id
		LIMIT 1`
	b, err := scanNCFBatch(r.q.QueryRow(ctx, q, companyID, typeCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // sin lote activo para ese tipo
		}
		return nil, fmt.Errorf("get allocation target: %w", err)
	}
	return b, nil
}

func (r *NCFBatchRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.NCFBatch, error) {
	q := `SELECT` + ncfBatchColumns + `
		FROM ncf_batches
		WHERE company_id = $1
		ORDER BY type_code, created_at, id`
	rows, err := r.q.Query(ctx, q, companyID)
	if err != nil {
		return nil, fmt.Errorf("list ncf_batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.NCFBatch
	for rows.Next() {
		b, err := scanNCFBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ncf_batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Update persiste rango, vencimiento y bandera de activo. El WHERE exige que
// el last_used persistido quepa en el nuevo range_end: si una asignación
// concurrente movió el cursor más allá, no se actualiza nada y retorna false.
// last_used nunca se escribe por esta vía; solo AdvanceCursor lo mueve.
func (r *NCFBatchRepo) Update(ctx context.Context, batch *entity.NCFBatch) (bool, error) {
	const q = `
		UPDATE ncf_batches
		SET range_start = $2, range_end = $3, expiration_date = $4,
		    is_active = $5, updated_at = now()
		WHERE id = $1
		  AND last_used <= $3`
	tag, err := r.q.Exec(ctx, q,
		batch.ID, batch.RangeStart, batch.RangeEnd, batch.ExpirationDate, batch.IsActive,
	)
	if err != nil {
		return false, fmt.Errorf("update ncf_batch: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AdvanceCursor mueve last_used de expected a expected+1 de forma atómica
// (compare-and-swap): el WHERE exige el valor esperado, que quede secuencia
// disponible, que el lote siga activo y que no esté vencido. RowsAffected
// cero significa que otro proceso ganó la carrera o que el lote dejó de ser
// asignable; el asignador relee y decide.
func (r *NCFBatchRepo) AdvanceCursor(ctx context.Context, id string, expected int64) (bool, error) {
	const q = `
		UPDATE ncf_batches
		SET last_used = last_used + 1, updated_at = now()
		WHERE id = $1
		  AND last_used = $2
		  AND last_used < range_end
		  AND is_active = true
		  AND (expiration_date IS NULL OR expiration_date >= CURRENT_DATE)`
	tag, err := r.q.Exec(ctx, q, id, expected)
	if err != nil {
		return false, fmt.Errorf("advance ncf cursor: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *NCFBatchRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM ncf_batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ncf_batch: %w", err)
	}
	return nil
}

// pgxScanner abstrae pgx.Row y pgx.Rows para reutilizar scanNCFBatch.
type pgxScanner interface {
	Scan(dest ...any) error
}

func scanNCFBatch(row pgxScanner) (*entity.NCFBatch, error) {
	var b entity.NCFBatch
	err := row.Scan(
		&b.ID, &b.CompanyID, &b.TypeCode, &b.SeriesPrefix,
		&b.RangeStart, &b.RangeEnd, &b.LastUsed,
		&b.ExpirationDate, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
