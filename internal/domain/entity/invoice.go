package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura.
const (
	InvoiceStatusIssued = "EMITIDA"
	InvoiceStatusVoided = "ANULADA"
)

// Tasas ITBIS vigentes (Ley 253-12). Se guardan como fracción (0.18).
var (
	ITBISRateStandard = decimal.NewFromFloat(0.18)
	ITBISRateReduced  = decimal.NewFromFloat(0.16)
	ITBISRateExempt   = decimal.Zero
)

// Invoice representa la cabecera de una factura emitida con NCF.
// NCF se estampa en la misma transacción que crea la factura: una factura
// nunca se persiste en estado EMITIDA sin su comprobante.
type Invoice struct {
	ID         string
	CompanyID  string
	CustomerID string
	NCFType    string // código del catálogo ncf (B01, B02, ...)
	NCF        string // comprobante completo asignado (ej. B0200000000001)
	Date       time.Time
	NetTotal   decimal.Decimal
	TaxTotal   decimal.Decimal // ITBIS total
	GrandTotal decimal.Decimal
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InvoiceDetail una línea de la factura.
type InvoiceDetail struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // fracción: 0.18, 0.16 o 0
	Subtotal    decimal.Decimal // Quantity * UnitPrice, sin ITBIS
}
