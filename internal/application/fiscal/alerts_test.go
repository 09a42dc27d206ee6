package fiscal_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-rd/internal/application/fiscal"
	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
)

func TestGetUsageAlerts_Umbrales(t *testing.T) {
	repo := newFakeBatchRepo()
	seedBatch(repo, "critico", "B02", 1, 500, 475)  // 95%
	seedBatch(repo, "warning", "B01", 1, 100, 80)   // 80%
	seedBatch(repo, "tranquilo", "B02", 1, 100, 50) // 50%
	seedBatch(repo, "inactivo", "B02", 1, 100, 99, func(b *entity.NCFBatch) { b.IsActive = false })
	uc := fiscal.NewAlertsUseCase(repo, 30)

	alerts, err := uc.GetUsageAlerts(context.Background(), testCompanyID)
	require.NoError(t, err)
	require.Len(t, alerts, 2, "solo los lotes activos sobre el 75% alertan")

	byID := make(map[string]string)
	for _, a := range alerts {
		byID[a.BatchID] = a.Severity
	}
	assert.Equal(t, fiscal.SeverityCritical, byID["critico"])
	assert.Equal(t, fiscal.SeverityWarning, byID["warning"])
}

func TestGetUsageAlerts_DetalleCritico(t *testing.T) {
	repo := newFakeBatchRepo()
	seedBatch(repo, "critico", "B02", 1, 500, 475)
	uc := fiscal.NewAlertsUseCase(repo, 30)

	alerts, err := uc.GetUsageAlerts(context.Background(), testCompanyID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "B02", a.TypeCode)
	assert.Equal(t, int64(25), a.Available)
	assert.True(t, decimal.NewFromFloat(95).Equal(a.UsagePercent))
	assert.Equal(t, fiscal.SeverityCritical, a.Severity)
}

func TestGetExpirationAlerts_SeveridadEscalonada(t *testing.T) {
	repo := newFakeBatchRepo()
	now := time.Now()
	seedBatch(repo, "vencido", "B01", 1, 100, 0, withExpiration(now.AddDate(0, 0, -2)))
	seedBatch(repo, "critico", "B01", 1, 100, 0, withExpiration(now.AddDate(0, 0, 3)))
	seedBatch(repo, "warning", "B14", 1, 100, 0, withExpiration(now.AddDate(0, 0, 10)))
	seedBatch(repo, "notice", "B15", 1, 100, 0, withExpiration(now.AddDate(0, 0, 25)))
	seedBatch(repo, "lejano", "B01", 1, 100, 0, withExpiration(now.AddDate(0, 0, 60)))
	seedBatch(repo, "sin-fecha", "B02", 1, 100, 0)
	uc := fiscal.NewAlertsUseCase(repo, 30)

	alerts, err := uc.GetExpirationAlerts(context.Background(), testCompanyID)
	require.NoError(t, err)
	require.Len(t, alerts, 4, "fuera del horizonte o sin fecha no alertan")

	byID := make(map[string]string)
	for _, a := range alerts {
		byID[a.BatchID] = a.Severity
	}
	assert.Equal(t, fiscal.SeverityExpired, byID["vencido"], "vencido se distingue de vigente")
	assert.Equal(t, fiscal.SeverityCritical, byID["critico"])
	assert.Equal(t, fiscal.SeverityWarning, byID["warning"])
	assert.Equal(t, fiscal.SeverityNotice, byID["notice"])
}

func TestGetExpirationAlerts_HorizonteConfigurable(t *testing.T) {
	repo := newFakeBatchRepo()
	seedBatch(repo, "a-20-dias", "B01", 1, 100, 0, withExpiration(time.Now().AddDate(0, 0, 20)))
	corto := fiscal.NewAlertsUseCase(repo, 10)
	largo := fiscal.NewAlertsUseCase(repo, 30)

	alerts, err := corto.GetExpirationAlerts(context.Background(), testCompanyID)
	require.NoError(t, err)
	assert.Empty(t, alerts, "fuera del horizonte de 10 días")

	alerts, err = largo.GetExpirationAlerts(context.Background(), testCompanyID)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}
