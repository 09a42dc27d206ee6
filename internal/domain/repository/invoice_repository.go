package repository

import "github.com/jhoicas/facturacion-rd/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para facturas.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateDetail(detail *entity.InvoiceDetail) error
	GetByID(id string) (*entity.Invoice, error)
	GetDetailsByInvoiceID(invoiceID string) ([]*entity.InvoiceDetail, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Invoice, error)
	Update(invoice *entity.Invoice) error
}
