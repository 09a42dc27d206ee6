package fiscal_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-rd/internal/application/dto"
	"github.com/jhoicas/facturacion-rd/internal/application/fiscal"
	"github.com/jhoicas/facturacion-rd/internal/domain"
	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
	"github.com/jhoicas/facturacion-rd/pkg/logger"
)

func newBatchUC(repo *fakeBatchRepo, audit *fakeAuditRepo) *fiscal.BatchUseCase {
	return fiscal.NewBatchUseCase(repo, audit, logger.Nop())
}

func int64ptr(v int64) *int64 { return &v }
func strptr(s string) *string { return &s }
func boolptr(v bool) *bool    { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateBatch_InicializaCursor(t *testing.T) {
	repo := newFakeBatchRepo()
	audit := newFakeAuditRepo()
	uc := newBatchUC(repo, audit)

	resp, err := uc.Create(context.Background(), testCompanyID, testActorID, dto.CreateNCFBatchRequest{
		TypeCode:   "B02",
		RangeStart: 1,
		RangeEnd:   500,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.LastUsed, "cursor inicial = RangeStart-1")
	assert.Equal(t, int64(0), resp.Used)
	assert.Equal(t, int64(500), resp.Available)
	assert.True(t, resp.IsActive, "el lote nace activo")
	assert.Equal(t, "B", resp.SeriesPrefix)
	assert.Equal(t, []string{entity.AuditBatchCreated}, audit.actions())
}

// B01 exige fecha de vencimiento; B02 no.
func TestCreateBatch_VencimientoObligatorioPorTipo(t *testing.T) {
	uc := newBatchUC(newFakeBatchRepo(), newFakeAuditRepo())
	ctx := context.Background()

	for _, tc := range []string{"B01", "B14", "B15"} {
		_, err := uc.Create(ctx, testCompanyID, testActorID, dto.CreateNCFBatchRequest{
			TypeCode:   tc,
			RangeStart: 1,
			RangeEnd:   100,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%s sin vencimiento debe rechazarse", tc)
	}

	_, err := uc.Create(ctx, testCompanyID, testActorID, dto.CreateNCFBatchRequest{
		TypeCode:   "B02",
		RangeStart: 1,
		RangeEnd:   100,
	})
	assert.NoError(t, err, "B02 sin vencimiento es válido")

	vence := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	_, err = uc.Create(ctx, testCompanyID, testActorID, dto.CreateNCFBatchRequest{
		TypeCode:       "B01",
		RangeStart:     1,
		RangeEnd:       100,
		ExpirationDate: vence,
	})
	assert.NoError(t, err, "B01 con vencimiento es válido")
}

func TestCreateBatch_RangoInvalido(t *testing.T) {
	uc := newBatchUC(newFakeBatchRepo(), newFakeAuditRepo())
	ctx := context.Background()

	_, err := uc.Create(ctx, testCompanyID, testActorID, dto.CreateNCFBatchRequest{
		TypeCode: "B02", RangeStart: 100, RangeEnd: 50,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "rango invertido")

	_, err = uc.Create(ctx, testCompanyID, testActorID, dto.CreateNCFBatchRequest{
		TypeCode: "B02", RangeStart: 0, RangeEnd: 50,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "inicio en cero")

	_, err = uc.Create(ctx, testCompanyID, testActorID, dto.CreateNCFBatchRequest{
		TypeCode: "X01", RangeStart: 1, RangeEnd: 50,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo fuera de catálogo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Update
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateBatch_NoPuedeHuerfanarEmitidos(t *testing.T) {
	repo := newFakeBatchRepo()
	seedBatch(repo, "lote-1", "B02", 1, 500, 475)
	uc := newBatchUC(repo, newFakeAuditRepo())

	_, err := uc.Update(context.Background(), testCompanyID, testActorID, "lote-1",
		dto.UpdateNCFBatchRequest{RangeEnd: int64ptr(400)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"reducir el rango por debajo del último emitido debe rechazarse")
}

func TestUpdateBatch_ExtenderRango(t *testing.T) {
	repo := newFakeBatchRepo()
	audit := newFakeAuditRepo()
	seedBatch(repo, "lote-1", "B02", 1, 500, 475)
	uc := newBatchUC(repo, audit)

	resp, err := uc.Update(context.Background(), testCompanyID, testActorID, "lote-1",
		dto.UpdateNCFBatchRequest{RangeEnd: int64ptr(1000)})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), resp.RangeEnd)
	assert.Equal(t, int64(525), resp.Available)
	assert.Equal(t, []string{entity.AuditBatchUpdated}, audit.actions())
}

func TestUpdateBatch_Desactivar(t *testing.T) {
	repo := newFakeBatchRepo()
	seedBatch(repo, "lote-1", "B02", 1, 100, 40)
	uc := newBatchUC(repo, newFakeAuditRepo())

	resp, err := uc.Update(context.Background(), testCompanyID, testActorID, "lote-1",
		dto.UpdateNCFBatchRequest{IsActive: boolptr(false)})
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
	assert.Equal(t, int64(40), resp.LastUsed, "desactivar no toca el cursor ni los emitidos")
}

func TestUpdateBatch_NoQuitarVencimientoRequerido(t *testing.T) {
	repo := newFakeBatchRepo()
	vence := time.Now().AddDate(1, 0, 0)
	seedBatch(repo, "lote-1", "B01", 1, 100, 0, withExpiration(vence))
	uc := newBatchUC(repo, newFakeAuditRepo())

	_, err := uc.Update(context.Background(), testCompanyID, testActorID, "lote-1",
		dto.UpdateNCFBatchRequest{ExpirationDate: strptr("")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateBatch_NoExiste(t *testing.T) {
	uc := newBatchUC(newFakeBatchRepo(), newFakeAuditRepo())
	_, err := uc.Update(context.Background(), testCompanyID, testActorID, "nada",
		dto.UpdateNCFBatchRequest{IsActive: boolptr(true)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Un lote de otra empresa es invisible para el tenant.
func TestUpdateBatch_OtraEmpresa(t *testing.T) {
	repo := newFakeBatchRepo()
	seedBatch(repo, "lote-1", "B02", 1, 100, 0)
	uc := newBatchUC(repo, newFakeAuditRepo())

	_, err := uc.Update(context.Background(), "otra-empresa", testActorID, "lote-1",
		dto.UpdateNCFBatchRequest{IsActive: boolptr(false)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteBatch_GuardaSnapshotEnAuditoria(t *testing.T) {
	repo := newFakeBatchRepo()
	audit := newFakeAuditRepo()
	seedBatch(repo, "lote-1", "B02", 1, 100, 37)
	uc := newBatchUC(repo, audit)

	require.NoError(t, uc.Delete(context.Background(), testCompanyID, testActorID, "lote-1"))

	b, _ := repo.GetByID(context.Background(), "lote-1")
	assert.Nil(t, b, "el lote debe borrarse")
	require.Len(t, audit.entries, 1)
	assert.Equal(t, entity.AuditBatchDeleted, audit.entries[0].Action)
	assert.Contains(t, audit.entries[0].Before, `"LastUsed":37`,
		"el snapshot previo preserva la historia del lote borrado")
	assert.Empty(t, audit.entries[0].After)
}

func TestDeleteBatch_NoExiste(t *testing.T) {
	uc := newBatchUC(newFakeBatchRepo(), newFakeAuditRepo())
	err := uc.Delete(context.Background(), testCompanyID, testActorID, "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// List / campos calculados
// ──────────────────────────────────────────────────────────────────────────────

func TestListBatches_CamposCalculados(t *testing.T) {
	repo := newFakeBatchRepo()
	seedBatch(repo, "lote-1", "B02", 1, 500, 475)
	uc := newBatchUC(repo, newFakeAuditRepo())

	list, err := uc.List(context.Background(), testCompanyID)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	item := list.Items[0]
	assert.Equal(t, int64(475), item.Used)
	assert.Equal(t, int64(25), item.Available)
	assert.True(t, decimal.NewFromFloat(95).Equal(item.UsagePercent),
		"usage_percent debe ser 95, fue %s", item.UsagePercent)
	assert.Equal(t, entity.BatchStatusCritical, item.Status)
}

func TestListBatches_EstadosDerivados(t *testing.T) {
	repo := newFakeBatchRepo()
	ayer := time.Now().AddDate(0, 0, -1)
	seedBatch(repo, "a-vencido", "B01", 1, 100, 10, withExpiration(ayer))
	seedBatch(repo, "b-inactivo", "B02", 1, 100, 10, func(b *entity.NCFBatch) { b.IsActive = false })
	seedBatch(repo, "c-warning", "B02", 1, 100, 80)
	seedBatch(repo, "d-activo", "B02", 1, 100, 10)
	uc := newBatchUC(repo, newFakeAuditRepo())

	list, err := uc.List(context.Background(), testCompanyID)
	require.NoError(t, err)
	require.Len(t, list.Items, 4)

	statusByID := make(map[string]string)
	for _, item := range list.Items {
		statusByID[item.ID] = item.Status
	}
	assert.Equal(t, entity.BatchStatusExpired, statusByID["a-vencido"])
	assert.Equal(t, entity.BatchStatusInactive, statusByID["b-inactivo"])
	assert.Equal(t, entity.BatchStatusWarning, statusByID["c-warning"])
	assert.Equal(t, entity.BatchStatusActive, statusByID["d-activo"])
}

func TestListTypes_CatalogoDGII(t *testing.T) {
	uc := newBatchUC(newFakeBatchRepo(), newFakeAuditRepo())
	types := uc.ListTypes()
	assert.Len(t, types, 12)

	byCode := make(map[string]dto.NCFTypeResponse)
	for _, tp := range types {
		byCode[tp.Code] = tp
	}
	assert.True(t, byCode["B01"].RequiresExpiration)
	assert.False(t, byCode["B02"].RequiresExpiration)
	assert.True(t, byCode["E31"].AppliesToCredit)
}
