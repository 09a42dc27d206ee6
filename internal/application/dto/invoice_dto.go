package dto

import "github.com/shopspring/decimal"

// InvoiceItemRequest una línea de la factura a crear.
// TaxRate omitido aplica el 18% estándar; 0 explícito marca la línea exenta.
type InvoiceItemRequest struct {
	Description string           `json:"description" validate:"required,max=300"`
	Quantity    decimal.Decimal  `json:"quantity" validate:"required"`
	UnitPrice   decimal.Decimal  `json:"unit_price" validate:"required"`
	TaxRate     *decimal.Decimal `json:"tax_rate"` // fracción: 0.18, 0.16 o 0
}

// CreateInvoiceRequest entrada para emitir una factura con NCF.
// NCFType por defecto B02 (consumo). Para B01/E31 el cliente debe tener RNC o cédula.
type CreateInvoiceRequest struct {
	CustomerID string               `json:"customer_id" validate:"required,uuid"`
	NCFType    string               `json:"ncf_type" validate:"omitempty"`
	Items      []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// InvoiceDetailResponse una línea en la respuesta.
type InvoiceDetailResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// InvoiceResponse salida de una factura emitida.
type InvoiceResponse struct {
	ID           string                  `json:"id"`
	CompanyID    string                  `json:"company_id"`
	CustomerID   string                  `json:"customer_id"`
	CustomerName string                  `json:"customer_name,omitempty"`
	NCFType      string                  `json:"ncf_type"`
	NCF          string                  `json:"ncf"`
	Date         string                  `json:"date"`
	NetTotal     decimal.Decimal         `json:"net_total"`
	TaxTotal     decimal.Decimal         `json:"tax_total"`
	GrandTotal   decimal.Decimal         `json:"grand_total"`
	Status       string                  `json:"status"`
	Details      []InvoiceDetailResponse `json:"details"`
}

// InvoiceListResponse listado paginado de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
