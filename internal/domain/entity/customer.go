package entity

import "time"

// Tipos de identificación tributaria de un cliente (RD).
const (
	TaxIDTypeRNC    = "RNC"
	TaxIDTypeCedula = "CEDULA"
)

// Customer representa un cliente de la empresa (facturación).
// TaxID es obligatorio para facturas con crédito fiscal (B01/E31): la DGII
// exige identificar al comprador que toma el crédito.
type Customer struct {
	ID        string
	CompanyID string
	Name      string
	TaxIDType string // RNC o CEDULA; vacío si es consumidor final sin identificar
	TaxID     string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
