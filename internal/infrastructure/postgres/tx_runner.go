package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/facturacion-rd/internal/application/billing"
	"github.com/jhoicas/facturacion-rd/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunBilling inicia una transacción con los repos de numeración fiscal,
// facturas y auditoría atados a la tx, ejecuta fn y hace Commit o Rollback.
// Un rollback deshace también el avance del cursor NCF: el comprobante que
// se había asignado dentro de la transacción vuelve al lote sin dejar hueco.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	batchRepo repository.NCFBatchRepository,
	invoiceRepo repository.InvoiceRepository,
	auditRepo repository.AuditRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batchRepo := NewNCFBatchRepository(tx)
	invoiceRepo := NewInvoiceRepository(tx)
	auditRepo := NewAuditLogRepository(tx)

	if err := fn(batchRepo, invoiceRepo, auditRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
