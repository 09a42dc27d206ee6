package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados derivados de un lote NCF (para listados y alertas).
const (
	BatchStatusExpired  = "expired"  // fecha de vencimiento en el pasado
	BatchStatusInactive = "inactive" // desactivado manualmente
	BatchStatusCritical = "critical" // uso >= 90%
	BatchStatusWarning  = "warning"  // uso >= 75%
	BatchStatusActive   = "active"
)

// Umbrales de uso para las alertas (porcentaje del rango consumido).
const (
	UsageWarningPercent  = 75
	UsageCriticalPercent = 90
)

// NCFBatch representa un lote de numeración fiscal autorizado por la DGII.
// Cada empresa registra uno o varios lotes por tipo de comprobante; LastUsed
// es el cursor de emisión: RangeStart-1 significa "ningún número emitido".
// Invariante: RangeStart <= LastUsed+1 <= RangeEnd+1.
type NCFBatch struct {
	ID             string
	CompanyID      string
	TypeCode       string // código del catálogo ncf (B01, B02, ...)
	SeriesPrefix   string // serie de la autorización ("B" o "E"), fija por tipo
	RangeStart     int64
	RangeEnd       int64
	LastUsed       int64
	ExpirationDate *time.Time // obligatoria para tipos con RequiresExpiration
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Used cantidad de números ya emitidos del lote.
func (b *NCFBatch) Used() int64 {
	used := b.LastUsed - b.RangeStart + 1
	if used < 0 {
		return 0
	}
	return used
}

// Available cantidad de números que quedan por emitir.
func (b *NCFBatch) Available() int64 {
	return b.RangeEnd - b.LastUsed
}

// Capacity tamaño total del rango autorizado.
func (b *NCFBatch) Capacity() int64 {
	return b.RangeEnd - b.RangeStart + 1
}

// NextSequence el número que emitiría la próxima asignación.
func (b *NCFBatch) NextSequence() int64 {
	return b.LastUsed + 1
}

// IsExhausted indica que el cursor llegó al final del rango.
func (b *NCFBatch) IsExhausted() bool {
	return b.LastUsed >= b.RangeEnd
}

// IsExpired indica que el lote venció respecto a now. Sin fecha = no vence.
func (b *NCFBatch) IsExpired(now time.Time) bool {
	if b.ExpirationDate == nil {
		return false
	}
	return b.ExpirationDate.Before(truncateToDay(now))
}

// DaysToExpiration días calendario hasta el vencimiento (negativo si ya venció).
// Retorna nil si el lote no tiene fecha de vencimiento.
func (b *NCFBatch) DaysToExpiration(now time.Time) *int {
	if b.ExpirationDate == nil {
		return nil
	}
	days := int(b.ExpirationDate.Sub(truncateToDay(now)).Hours() / 24)
	return &days
}

// UsagePercent porcentaje consumido del rango, con dos decimales.
func (b *NCFBatch) UsagePercent() decimal.Decimal {
	capacity := b.Capacity()
	if capacity <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(b.Used()).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(capacity)).
		Round(2)
}

// Status estado derivado del lote: expired > inactive > critical > warning > active.
func (b *NCFBatch) Status(now time.Time) string {
	switch {
	case b.IsExpired(now):
		return BatchStatusExpired
	case !b.IsActive:
		return BatchStatusInactive
	case b.UsagePercent().GreaterThanOrEqual(decimal.NewFromInt(UsageCriticalPercent)):
		return BatchStatusCritical
	case b.UsagePercent().GreaterThanOrEqual(decimal.NewFromInt(UsageWarningPercent)):
		return BatchStatusWarning
	default:
		return BatchStatusActive
	}
}

// truncateToDay normaliza a medianoche para comparar fechas de vencimiento
// (la DGII trabaja con fechas, no con horas).
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
