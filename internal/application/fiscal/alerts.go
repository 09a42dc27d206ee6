package fiscal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-rd/internal/application/dto"
	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
	"github.com/jhoicas/facturacion-rd/internal/domain/repository"
)

// Severidades de alerta.
const (
	SeverityNotice   = "notice"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
	SeverityExpired  = "expired"
)

// Umbrales de días para alertas de vencimiento.
const (
	expireCriticalDays = 5
	expireWarningDays  = 15
)

// AlertsUseCase reporta lotes próximos a agotarse o vencerse para que la
// empresa solicite numeración nueva a la DGII antes de quedar bloqueada.
type AlertsUseCase struct {
	batches repository.NCFBatchRepository
	// Horizonte de días dentro del cual un vencimiento genera alerta.
	horizonDays int
}

// NewAlertsUseCase construye el caso de uso. horizonDays <= 0 usa 30.
func NewAlertsUseCase(batches repository.NCFBatchRepository, horizonDays int) *AlertsUseCase {
	if horizonDays <= 0 {
		horizonDays = 30
	}
	return &AlertsUseCase{batches: batches, horizonDays: horizonDays}
}

// GetUsageAlerts retorna una alerta por cada lote activo con uso >= 75%;
// la severidad escala a critical en >= 90%. Los lotes desactivados no
// asignan, así que no alertan.
func (uc *AlertsUseCase) GetUsageAlerts(ctx context.Context, companyID string) ([]dto.NCFUsageAlert, error) {
	batches, err := uc.batches.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	warning := decimal.NewFromInt(entity.UsageWarningPercent)
	critical := decimal.NewFromInt(entity.UsageCriticalPercent)

	alerts := make([]dto.NCFUsageAlert, 0)
	for _, b := range batches {
		if !b.IsActive {
			continue
		}
		percent := b.UsagePercent()
		if percent.LessThan(warning) {
			continue
		}
		severity := SeverityWarning
		if percent.GreaterThanOrEqual(critical) {
			severity = SeverityCritical
		}
		alerts = append(alerts, dto.NCFUsageAlert{
			BatchID:      b.ID,
			TypeCode:     b.TypeCode,
			UsagePercent: percent,
			Available:    b.Available(),
			Severity:     severity,
		})
	}
	return alerts, nil
}

// GetExpirationAlerts retorna los lotes activos cuyo vencimiento cae dentro
// del horizonte configurado. Severidad: expired (ya venció, distinguido de los
// vigentes), critical (<= 5 días), warning (<= 15), notice (resto del horizonte).
func (uc *AlertsUseCase) GetExpirationAlerts(ctx context.Context, companyID string) ([]dto.NCFExpirationAlert, error) {
	batches, err := uc.batches.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	alerts := make([]dto.NCFExpirationAlert, 0)
	for _, b := range batches {
		if !b.IsActive || b.ExpirationDate == nil {
			continue
		}
		days := b.DaysToExpiration(now)
		if days == nil || *days > uc.horizonDays {
			continue
		}
		severity := SeverityNotice
		switch {
		case b.IsExpired(now):
			severity = SeverityExpired
		case *days <= expireCriticalDays:
			severity = SeverityCritical
		case *days <= expireWarningDays:
			severity = SeverityWarning
		}
		alerts = append(alerts, dto.NCFExpirationAlert{
			BatchID:        b.ID,
			TypeCode:       b.TypeCode,
			ExpirationDate: b.ExpirationDate.Format(dateLayout),
			DaysToExpire:   *days,
			Severity:       severity,
		})
	}
	return alerts, nil
}
