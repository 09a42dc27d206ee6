package billing

import (
	"context"

	"github.com/jhoicas/facturacion-rd/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye
// los repos de numeración fiscal, facturas y auditoría. Si fn retorna error
// se hace rollback: el NCF asignado dentro de la transacción vuelve al lote.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		batchRepo repository.NCFBatchRepository,
		invoiceRepo repository.InvoiceRepository,
		auditRepo repository.AuditRepository,
	) error) error
}

// NCFAllocator interfaz para integrar facturación con la numeración fiscal.
// AllocateNextInTx asigna usando los repositorios del caller (misma
// transacción); los errores ErrNCFExhausted/ErrNCFExpired abortan la emisión.
type NCFAllocator interface {
	AllocateNextInTx(
		ctx context.Context,
		batches repository.NCFBatchRepository,
		audit repository.AuditRepository,
		companyID, typeCode, actorID string,
	) (string, error)
}
