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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// Las columnas de montos son NUMERIC y escanean a shopspring/decimal vía el
// codec registrado en el pool.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, company_id, customer_id, ncf_type, ncf, date,
	net_total, tax_total, grand_total, status, created_at, updated_at`

// Create persiste la cabecera de una factura. El índice único sobre
// (company_id, ncf) es la última línea de defensa contra NCF duplicados.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	const q = `
		INSERT INTO invoices
			(id, company_id, customer_id, ncf_type, ncf, date,
			 net_total, tax_total, grand_total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), q,
		invoice.ID, invoice.CompanyID, invoice.CustomerID, invoice.NCFType, invoice.NCF, invoice.Date,
		invoice.NetTotal, invoice.TaxTotal, invoice.GrandTotal, invoice.Status,
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de factura.
func (r *InvoiceRepo) CreateDetail(detail *entity.InvoiceDetail) error {
	const q = `
		INSERT INTO invoice_details
			(id, invoice_id, description, quantity, unit_price, tax_rate, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), q,
		detail.ID, detail.InvoiceID, detail.Description,
		detail.Quantity, detail.UnitPrice, detail.TaxRate, detail.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert invoice_detail: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	q := `SELECT` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetDetailsByInvoiceID lista las líneas de una factura.
func (r *InvoiceRepo) GetDetailsByInvoiceID(invoiceID string) ([]*entity.InvoiceDetail, error) {
	const q = `
		SELECT id, invoice_id, description, quantity, unit_price, tax_rate, subtotal
		FROM invoice_details WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), q, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice_details: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceDetail
	for rows.Next() {
		var d entity.InvoiceDetail
		if err := rows.Scan(&d.ID, &d.InvoiceID, &d.Description, &d.Quantity, &d.UnitPrice, &d.TaxRate, &d.Subtotal); err != nil {
			return nil, fmt.Errorf("scan invoice_detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// ListByCompany lista facturas de la empresa, más recientes primero.
func (r *InvoiceRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Invoice, error) {
	q := `SELECT` + invoiceColumns + `
		FROM invoices WHERE company_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), q, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Update actualiza el estado de una factura (ej. anulación).
func (r *InvoiceRepo) Update(invoice *entity.Invoice) error {
	const q = `UPDATE invoices SET status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), q, invoice.ID, invoice.Status, invoice.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

func scanInvoice(row pgxScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.CustomerID, &inv.NCFType, &inv.NCF, &inv.Date,
		&inv.NetTotal, &inv.TaxTotal, &inv.GrandTotal, &inv.Status,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
