package dto

import "github.com/shopspring/decimal"

// NCFTypeResponse un tipo del catálogo DGII.
type NCFTypeResponse struct {
	Code                   string `json:"code"`
	Description            string `json:"description"`
	AppliesToCredit        bool   `json:"applies_to_credit"`
	AppliesToFinalConsumer bool   `json:"applies_to_final_consumer"`
	RequiresExpiration     bool   `json:"requires_expiration"`
}

// CreateNCFBatchRequest entrada para registrar un lote de numeración autorizado.
// ExpirationDate en formato "2006-01-02"; obligatoria para B01/B14/B15.
type CreateNCFBatchRequest struct {
	TypeCode       string `json:"type_code" validate:"required"`
	RangeStart     int64  `json:"range_start" validate:"required,min=1"`
	RangeEnd       int64  `json:"range_end" validate:"required,min=1"`
	ExpirationDate string `json:"expiration_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateNCFBatchRequest entrada para editar un lote: extender rango, cambiar
// vencimiento o activar/desactivar. Campos nil no se modifican.
type UpdateNCFBatchRequest struct {
	RangeEnd       *int64  `json:"range_end" validate:"omitempty,min=1"`
	ExpirationDate *string `json:"expiration_date" validate:"omitempty,datetime=2006-01-02"`
	IsActive       *bool   `json:"is_active"`
}

// NCFBatchResponse salida de un lote con sus campos calculados.
type NCFBatchResponse struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	TypeCode       string          `json:"type_code"`
	SeriesPrefix   string          `json:"series_prefix"`
	RangeStart     int64           `json:"range_start"`
	RangeEnd       int64           `json:"range_end"`
	LastUsed       int64           `json:"last_used"`
	Used           int64           `json:"used"`
	Available      int64           `json:"available"`
	UsagePercent   decimal.Decimal `json:"usage_percent"`
	Status         string          `json:"status"`
	ExpirationDate string          `json:"expiration_date,omitempty"`
	DaysToExpire   *int            `json:"days_to_expire,omitempty"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

// NCFBatchListResponse listado de lotes de la empresa.
type NCFBatchListResponse struct {
	Items []NCFBatchResponse `json:"items"`
}

// PreviewNCFResponse próximo NCF sin consumirlo. Next vacío y Reason
// explicando cuando no hay lote utilizable.
type PreviewNCFResponse struct {
	Next   string `json:"next,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ValidateNCFRequest entrada para validar un NCF suplido por terceros.
type ValidateNCFRequest struct {
	NCF          string `json:"ncf" validate:"required"`
	ExpectedType string `json:"expected_type" validate:"required"`
}

// ValidateNCFResponse resultado de la validación de formato.
type ValidateNCFResponse struct {
	Valid bool `json:"valid"`
}

// NCFUsageAlert alerta de consumo de un lote (>=75% warning, >=90% critical).
type NCFUsageAlert struct {
	BatchID      string          `json:"batch_id"`
	TypeCode     string          `json:"type_code"`
	UsagePercent decimal.Decimal `json:"usage_percent"`
	Available    int64           `json:"available"`
	Severity     string          `json:"severity"` // warning | critical
}

// NCFExpirationAlert alerta de vencimiento de un lote.
type NCFExpirationAlert struct {
	BatchID        string `json:"batch_id"`
	TypeCode       string `json:"type_code"`
	ExpirationDate string `json:"expiration_date"`
	DaysToExpire   int    `json:"days_to_expire"`
	Severity       string `json:"severity"` // expired | critical | warning | notice
}
