package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-rd/internal/application/fiscal"
	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
	apphttp "github.com/jhoicas/facturacion-rd/internal/interfaces/http"
	"github.com/jhoicas/facturacion-rd/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repos en memoria para los tests del handler
// ──────────────────────────────────────────────────────────────────────────────

type memBatchRepo struct {
	mu      sync.Mutex
	batches map[string]*entity.NCFBatch
}

func newMemBatchRepo() *memBatchRepo {
	return &memBatchRepo{batches: map[string]*entity.NCFBatch{}}
}

func (r *memBatchRepo) Create(_ context.Context, b *entity.NCFBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.batches[b.ID] = &cp
	return nil
}

func (r *memBatchRepo) GetByID(_ context.Context, id string) (*entity.NCFBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *memBatchRepo) GetAllocationTarget(_ context.Context, companyID, typeCode string) (*entity.NCFBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var candidates []*entity.NCFBatch
	for _, b := range r.batches {
		if b.CompanyID == companyID && b.TypeCode == typeCode && b.IsActive {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].ID < candidates[j].ID
	})
	cp := *candidates[0]
	return &cp, nil
}

func (r *memBatchRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.NCFBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.NCFBatch
	for _, b := range r.batches {
		if b.CompanyID == companyID {
			cp := *b
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *memBatchRepo) Update(_ context.Context, b *entity.NCFBatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.batches[b.ID]
	if !ok {
		return false, nil
	}
	if current.LastUsed > b.RangeEnd {
		return false, nil
	}
	cp := *b
	cp.LastUsed = current.LastUsed
	r.batches[b.ID] = &cp
	return true, nil
}

func (r *memBatchRepo) AdvanceCursor(_ context.Context, id string, expected int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok || !b.IsActive || b.LastUsed != expected || b.LastUsed >= b.RangeEnd {
		return false, nil
	}
	if b.ExpirationDate != nil && b.ExpirationDate.Before(time.Now().Truncate(24*time.Hour)) {
		return false, nil
	}
	b.LastUsed++
	return true, nil
}

func (r *memBatchRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.batches, id)
	return nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*entity.AuditEntry
}

func (r *memAuditRepo) Record(_ context.Context, e *entity.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *memAuditRepo) ListByCompany(context.Context, string, int, int) ([]*entity.AuditEntry, error) {
	return nil, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// App de test con las rutas reales de /api/ncf
// ──────────────────────────────────────────────────────────────────────────────

func buildNCFApp(t *testing.T) (*fiber.App, *memBatchRepo) {
	t.Helper()
	repo := newMemBatchRepo()
	audit := &memAuditRepo{}
	log := logger.Nop()

	deps := apphttp.RouterDeps{
		BatchUC:   fiscal.NewBatchUseCase(repo, audit, log),
		Allocator: fiscal.NewAllocator(repo, audit, log, 0),
		AlertsUC:  fiscal.NewAlertsUseCase(repo, 30),
		JWTSecret: testJWTSecret,
	}
	app := fiber.New()
	apphttp.Router(app, deps)
	return app, repo
}

func ncfRequest(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestNCFHandler_ListTypes(t *testing.T) {
	app, _ := buildNCFApp(t)
	resp := ncfRequest(t, app, http.MethodGet, "/api/ncf/types", "cajero", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var types []map[string]any
	decodeJSON(t, resp, &types)
	assert.Len(t, types, 12, "el catálogo DGII tiene 12 tipos")

	codes := map[string]bool{}
	for _, tp := range types {
		codes[tp["code"].(string)] = true
	}
	assert.True(t, codes["B01"] && codes["B02"] && codes["E31"])
}

func TestNCFHandler_CicloDeLote(t *testing.T) {
	app, _ := buildNCFApp(t)

	// Crear lote (admin)
	resp := ncfRequest(t, app, http.MethodPost, "/api/ncf/batches", "admin", map[string]any{
		"type_code":   "B02",
		"range_start": 1,
		"range_end":   100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var batch map[string]any
	decodeJSON(t, resp, &batch)
	batchID := batch["id"].(string)
	assert.Equal(t, "B02", batch["type_code"])
	assert.Equal(t, float64(0), batch["last_used"], "el cursor arranca en range_start-1")
	assert.Equal(t, float64(100), batch["available"])

	// Vista previa: no consume
	for i := 0; i < 3; i++ {
		resp = ncfRequest(t, app, http.MethodGet, "/api/ncf/batches/preview?type_code=B02", "cajero", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var preview map[string]any
		decodeJSON(t, resp, &preview)
		assert.Equal(t, "B0200000000001", preview["next"], "preview no mueve el cursor")
	}

	// Editar: extender el rango
	resp = ncfRequest(t, app, http.MethodPut, "/api/ncf/batches/"+batchID, "admin", map[string]any{
		"range_end": 200,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &batch)
	assert.Equal(t, float64(200), batch["range_end"])

	// Listar incluye el lote con campos calculados
	resp = ncfRequest(t, app, http.MethodGet, "/api/ncf/batches", "cajero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list map[string][]map[string]any
	decodeJSON(t, resp, &list)
	require.Len(t, list["items"], 1)
	assert.Equal(t, "active", list["items"][0]["status"])

	// Eliminar
	resp = ncfRequest(t, app, http.MethodDelete, "/api/ncf/batches/"+batchID, "admin", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = ncfRequest(t, app, http.MethodGet, "/api/ncf/batches/"+batchID, "cajero", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// La gestión de lotes exige rol admin; la consulta no.
func TestNCFHandler_GestionSoloAdmin(t *testing.T) {
	app, _ := buildNCFApp(t)

	resp := ncfRequest(t, app, http.MethodPost, "/api/ncf/batches", "cajero", map[string]any{
		"type_code":   "B02",
		"range_start": 1,
		"range_end":   100,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = ncfRequest(t, app, http.MethodGet, "/api/ncf/batches", "cajero", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestNCFHandler_CreacionInvalida(t *testing.T) {
	app, _ := buildNCFApp(t)

	// Rango invertido
	resp := ncfRequest(t, app, http.MethodPost, "/api/ncf/batches", "admin", map[string]any{
		"type_code":   "B02",
		"range_start": 100,
		"range_end":   1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// B01 requiere fecha de vencimiento
	resp = ncfRequest(t, app, http.MethodPost, "/api/ncf/batches", "admin", map[string]any{
		"type_code":   "B01",
		"range_start": 1,
		"range_end":   100,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Tipo fuera del catálogo
	resp = ncfRequest(t, app, http.MethodPost, "/api/ncf/batches", "admin", map[string]any{
		"type_code":   "B99",
		"range_start": 1,
		"range_end":   100,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestNCFHandler_PreviewSinLote(t *testing.T) {
	app, _ := buildNCFApp(t)

	resp := ncfRequest(t, app, http.MethodGet, "/api/ncf/batches/preview?type_code=B02", "cajero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var preview map[string]any
	decodeJSON(t, resp, &preview)
	assert.Empty(t, preview["next"])
	assert.Equal(t, "sin lote activo", preview["reason"])
}

func TestNCFHandler_Validate(t *testing.T) {
	app, _ := buildNCFApp(t)

	cases := []struct {
		ncf, expected string
		valid         bool
	}{
		{"B0200000000123", "B02", true},
		{"B0100000000001", "B01", true},
		{"B0200000000123", "B01", false}, // tipo no coincide
		{"B02123", "B02", false},         // muy corto
		{"X9900000000001", "X99", false}, // tipo fuera del catálogo
	}
	for _, tc := range cases {
		resp := ncfRequest(t, app, http.MethodPost, "/api/ncf/validate", "cajero", map[string]any{
			"ncf":           tc.ncf,
			"expected_type": tc.expected,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out map[string]bool
		decodeJSON(t, resp, &out)
		assert.Equal(t, tc.valid, out["valid"], "ncf=%s expected=%s", tc.ncf, tc.expected)
	}
}

func TestNCFHandler_AlertasDeConsumo(t *testing.T) {
	app, repo := buildNCFApp(t)

	now := time.Now()
	require.NoError(t, repo.Create(context.Background(), &entity.NCFBatch{
		ID:         "lote-critico",
		CompanyID:  testCompanyID,
		TypeCode:   "B02",
		RangeStart: 1,
		RangeEnd:   100,
		LastUsed:   95, // 95% usado
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}))

	resp := ncfRequest(t, app, http.MethodGet, "/api/ncf/alerts/usage", "cajero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var alerts []map[string]any
	decodeJSON(t, resp, &alerts)
	require.Len(t, alerts, 1)
	assert.Equal(t, "critical", alerts[0]["severity"])
	assert.Equal(t, float64(5), alerts[0]["available"])
}

func TestNCFHandler_AlertasDeVencimiento(t *testing.T) {
	app, repo := buildNCFApp(t)

	exp := time.Now().AddDate(0, 0, 4) // dentro de la ventana crítica (<=5 días)
	now := time.Now()
	require.NoError(t, repo.Create(context.Background(), &entity.NCFBatch{
		ID:             "lote-por-vencer",
		CompanyID:      testCompanyID,
		TypeCode:       "B01",
		RangeStart:     1,
		RangeEnd:       100,
		LastUsed:       0,
		ExpirationDate: &exp,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}))

	resp := ncfRequest(t, app, http.MethodGet, "/api/ncf/alerts/expiration", "cajero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var alerts []map[string]any
	decodeJSON(t, resp, &alerts)
	require.Len(t, alerts, 1)
	assert.Equal(t, "critical", alerts[0]["severity"])
}

func TestNCFHandler_RequiereToken(t *testing.T) {
	app, _ := buildNCFApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ncf/batches", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
