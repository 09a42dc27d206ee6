package fiscal_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
	"github.com/jhoicas/facturacion-rd/internal/domain/repository"
)

// fakeBatchRepo implementa NCFBatchRepository en memoria con la misma
// semántica que el adaptador PostgreSQL: AdvanceCursor es compare-and-swap
// y Update re-verifica el cursor contra el nuevo fin de rango.
type fakeBatchRepo struct {
	mu      sync.Mutex
	batches map[string]*entity.NCFBatch
}

var _ repository.NCFBatchRepository = (*fakeBatchRepo)(nil)

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[string]*entity.NCFBatch)}
}

func (r *fakeBatchRepo) put(b *entity.NCFBatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.batches[b.ID] = &cp
}

func (r *fakeBatchRepo) Create(_ context.Context, b *entity.NCFBatch) error {
	r.put(b)
	return nil
}

func (r *fakeBatchRepo) GetByID(_ context.Context, id string) (*entity.NCFBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

// GetAllocationTarget replica el ORDER BY created_at, id del adaptador real.
func (r *fakeBatchRepo) GetAllocationTarget(_ context.Context, companyID, typeCode string) (*entity.NCFBatch, error) {
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

func (r *fakeBatchRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.NCFBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.NCFBatch
	for _, b := range r.batches {
		if b.CompanyID == companyID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBatchRepo) Update(_ context.Context, b *entity.NCFBatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.batches[b.ID]
	if !ok {
		return false, nil
	}
	// guard de commit: el cursor real no puede superar el nuevo fin de rango
	if current.LastUsed > b.RangeEnd {
		return false, nil
	}
	cp := *b
	cp.LastUsed = current.LastUsed
	r.batches[b.ID] = &cp
	return true, nil
}

func (r *fakeBatchRepo) AdvanceCursor(_ context.Context, id string, expected int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok {
		return false, nil
	}
	if !b.IsActive || b.LastUsed != expected || b.LastUsed >= b.RangeEnd {
		return false, nil
	}
	if b.IsExpired(time.Now()) {
		return false, nil
	}
	b.LastUsed++
	b.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeBatchRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.batches, id)
	return nil
}

// failingCursorRepo fuerza pérdidas de la carrera CAS: las primeras failures
// llamadas a AdvanceCursor retornan false sin mover el cursor.
type failingCursorRepo struct {
	*fakeBatchRepo
	mu       sync.Mutex
	failures int
}

func (r *failingCursorRepo) AdvanceCursor(ctx context.Context, id string, expected int64) (bool, error) {
	r.mu.Lock()
	if r.failures > 0 {
		r.failures--
		r.mu.Unlock()
		return false, nil
	}
	r.mu.Unlock()
	return r.fakeBatchRepo.AdvanceCursor(ctx, id, expected)
}

// fakeAuditRepo acumula eventos en memoria.
type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*entity.AuditEntry
}

var _ repository.AuditRepository = (*fakeAuditRepo)(nil)

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Record(_ context.Context, e *entity.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeAuditRepo) ListByCompany(_ context.Context, companyID string, _, _ int) ([]*entity.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AuditEntry
	for _, e := range r.entries {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}
