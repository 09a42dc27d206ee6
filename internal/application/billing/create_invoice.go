package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/facturacion-rd/internal/application/dto"
	"github.com/jhoicas/facturacion-rd/internal/domain"
	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
	"github.com/jhoicas/facturacion-rd/internal/domain/ncf"
	"github.com/jhoicas/facturacion-rd/internal/domain/repository"
)

// CreateInvoiceUseCase emite una factura con su NCF en una sola transacción:
// si la asignación del comprobante falla (lote agotado o vencido) no se
// persiste nada; una factura jamás queda EMITIDA sin NCF.
type CreateInvoiceUseCase struct {
	txRunner     BillingTxRunner
	allocator    NCFAllocator
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
}

// NewCreateInvoiceUseCase construye el caso de uso.
func NewCreateInvoiceUseCase(
	txRunner BillingTxRunner,
	allocator NCFAllocator,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
) *CreateInvoiceUseCase {
	return &CreateInvoiceUseCase{
		txRunner:     txRunner,
		allocator:    allocator,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
	}
}

// CreateInvoice valida cliente y líneas, asigna el NCF dentro de la
// transacción y persiste cabecera y detalles.
func (uc *CreateInvoiceUseCase) CreateInvoice(ctx context.Context, companyID, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.CustomerID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	// Tipo de comprobante: B02 (consumo) por defecto.
	typeCode := in.NCFType
	if typeCode == "" {
		typeCode = "B02"
	}
	tp, ok := ncf.Lookup(typeCode)
	if !ok {
		return nil, domain.NewValidationError("tipo de NCF desconocido: " + typeCode)
	}

	// Validar cliente y que sea de la empresa
	customer, err := uc.customerRepo.GetByID(in.CustomerID)
	if err != nil || customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	// Crédito fiscal exige identificar al comprador ante la DGII.
	if tp.AppliesToCredit && customer.TaxID == "" {
		return nil, domain.NewValidationError("facturas con crédito fiscal requieren RNC o cédula del cliente")
	}

	// Validar líneas y calcular totales (fuera de la tx, solo lectura)
	var netTotal, taxTotal decimal.Decimal
	rates := make([]decimal.Decimal, len(in.Items))
	for i := range in.Items {
		item := &in.Items[i]
		if item.Description == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if item.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		rate := entity.ITBISRateStandard // omitido = 18%
		if item.TaxRate != nil {
			rate = *item.TaxRate
		}
		if !validITBISRate(rate) {
			return nil, domain.NewValidationError("tasa ITBIS inválida, use 0.18, 0.16 o 0")
		}
		rates[i] = rate
		subtotal := item.Quantity.Mul(item.UnitPrice)
		netTotal = netTotal.Add(subtotal)
		taxTotal = taxTotal.Add(subtotal.Mul(rate))
	}
	grandTotal := netTotal.Add(taxTotal)

	now := time.Now()
	invoiceID := uuid.New().String()
	var inv *entity.Invoice
	var details []*entity.InvoiceDetail

	err = uc.txRunner.RunBilling(ctx, func(
		batchRepo repository.NCFBatchRepository,
		invoiceRepo repository.InvoiceRepository,
		auditRepo repository.AuditRepository,
	) error {
		// 1) Asignar el NCF dentro de la transacción: el UPDATE del cursor
		// toma el row lock del lote; un rollback devuelve el número.
		ncfValue, err := uc.allocator.AllocateNextInTx(ctx, batchRepo, auditRepo, companyID, typeCode, userID)
		if err != nil {
			return err
		}

		// 2) Cabecera y detalles
		inv = &entity.Invoice{
			ID:         invoiceID,
			CompanyID:  companyID,
			CustomerID: in.CustomerID,
			NCFType:    typeCode,
			NCF:        ncfValue,
			Date:       now,
			NetTotal:   netTotal,
			TaxTotal:   taxTotal,
			GrandTotal: grandTotal,
			Status:     entity.InvoiceStatusIssued,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		details = details[:0]
		for i, item := range in.Items {
			details = append(details, &entity.InvoiceDetail{
				ID:          uuid.New().String(),
				InvoiceID:   invoiceID,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				TaxRate:     rates[i],
				Subtotal:    item.Quantity.Mul(item.UnitPrice),
			})
		}

		// 3) Persistencia
		if err := invoiceRepo.Create(inv); err != nil {
			return err
		}
		for _, detail := range details {
			if err := invoiceRepo.CreateDetail(detail); err != nil {
				return err
			}
		}

		// 4) Auditoría de la emisión (misma transacción)
		return auditRepo.Record(ctx, &entity.AuditEntry{
			ID:         uuid.New().String(),
			CompanyID:  companyID,
			ActorID:    userID,
			Action:     entity.AuditInvoiceIssued,
			Resource:   "invoice",
			ResourceID: invoiceID,
			After:      `{"ncf":"` + ncfValue + `","grand_total":"` + grandTotal.StringFixed(2) + `"}`,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	return uc.toResponse(inv, customer.Name, details), nil
}

// GetInvoice obtiene una factura por ID con su detalle completo.
func (uc *CreateInvoiceUseCase) GetInvoice(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil || inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	details, err := uc.invoiceRepo.GetDetailsByInvoiceID(id)
	if err != nil {
		return nil, err
	}
	customer, _ := uc.customerRepo.GetByID(inv.CustomerID)
	customerName := ""
	if customer != nil {
		customerName = customer.Name
	}
	return uc.toResponse(inv, customerName, details), nil
}

// ListInvoices lista las facturas de la empresa (sin detalles).
func (uc *CreateInvoiceUseCase) ListInvoices(ctx context.Context, companyID string, limit, offset int) (*dto.InvoiceListResponse, error) {
	list, err := uc.invoiceRepo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, inv := range list {
		out.Items = append(out.Items, *uc.toResponse(inv, "", nil))
	}
	return out, nil
}

// validITBISRate acepta las tasas vigentes: 18%, 16% y exento.
func validITBISRate(rate decimal.Decimal) bool {
	return rate.Equal(entity.ITBISRateStandard) ||
		rate.Equal(entity.ITBISRateReduced) ||
		rate.Equal(entity.ITBISRateExempt)
}

func (uc *CreateInvoiceUseCase) toResponse(inv *entity.Invoice, customerName string, details []*entity.InvoiceDetail) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:           inv.ID,
		CompanyID:    inv.CompanyID,
		CustomerID:   inv.CustomerID,
		CustomerName: customerName,
		NCFType:      inv.NCFType,
		NCF:          inv.NCF,
		Date:         inv.Date.Format("2006-01-02"),
		NetTotal:     inv.NetTotal,
		TaxTotal:     inv.TaxTotal,
		GrandTotal:   inv.GrandTotal,
		Status:       inv.Status,
		Details:      make([]dto.InvoiceDetailResponse, 0, len(details)),
	}
	for _, d := range details {
		resp.Details = append(resp.Details, dto.InvoiceDetailResponse{
			ID:          d.ID,
			Description: d.Description,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
			TaxRate:     d.TaxRate,
			Subtotal:    d.Subtotal,
		})
	}
	return resp
}
