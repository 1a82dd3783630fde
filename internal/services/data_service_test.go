package services

import (
	"context"
	"sync"
	"testing"

	"cedi-api/internal/models"
	"cedi-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dispatchRecorder captures enqueued sync requests.
type dispatchRecorder struct {
	mu       sync.Mutex
	requests []models.SyncRequest
}

func (d *dispatchRecorder) Enqueue(action, entity string, payload map[string]any, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, models.SyncRequest{Action: action, Entity: entity, Payload: payload, ID: id})
}

func (d *dispatchRecorder) all() []models.SyncRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.SyncRequest(nil), d.requests...)
}

func newTestService(t *testing.T) (DataService, *store.Cache, *dispatchRecorder) {
	t.Helper()
	cache := store.NewCache(store.NewMemorySnapshotStore(), nil, []string{"products", "docks"}, nil)
	recorder := &dispatchRecorder{}
	svc := NewDataService(cache, recorder, []string{"products", "docks"}, "rdc-1", nil)
	return svc, cache, recorder
}

func TestCreateStampsAndDispatches(t *testing.T) {
	ctx := context.Background()
	svc, _, recorder := newTestService(t)

	rec := svc.Create(ctx, "products", map[string]any{
		"name": "Paracetamol 500mg",
		"sku":  "MED-001",
	}, "user-1")

	assert.NotEmpty(t, rec.ID)
	assert.NotEmpty(t, rec.CreatedAt)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	assert.Equal(t, "user-1", rec.CreatedBy)

	stored := svc.GetByID(ctx, "products", rec.ID)
	require.NotNil(t, stored)
	assert.Equal(t, "Paracetamol 500mg", stored.Get("name"))

	reqs := recorder.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, models.SyncCreate, reqs[0].Action)
	assert.Equal(t, "products", reqs[0].Entity)
	assert.Equal(t, rec.ID, reqs[0].ID)
}

func TestUpdateMergesAndProtectsIdentity(t *testing.T) {
	ctx := context.Background()
	svc, _, recorder := newTestService(t)

	rec := svc.Create(ctx, "products", map[string]any{"name": "Ibuprofeno", "list_price": 40.0}, "u1")

	updated := svc.Update(ctx, "products", rec.ID, map[string]any{
		"list_price": 38.5,
		"id":         "forged",
		"created_at": "1999-01-01T00:00:00Z",
	}, "u2")

	require.NotNil(t, updated)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)
	assert.Equal(t, 38.5, updated.Get("list_price"))
	assert.Equal(t, "Ibuprofeno", updated.Get("name"))
	assert.Equal(t, "u2", updated.UpdatedBy)

	reqs := recorder.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, models.SyncUpdate, reqs[1].Action)
}

func TestUpdateMissingReturnsNilWithoutSideEffects(t *testing.T) {
	ctx := context.Background()
	svc, _, recorder := newTestService(t)

	assert.Nil(t, svc.Update(ctx, "products", "nope", map[string]any{"name": "x"}, "u1"))
	assert.Empty(t, recorder.all())
	assert.Empty(t, svc.GetAuditLogs(ctx, AuditFilter{}))
}

func TestDeleteAuditsOldValues(t *testing.T) {
	ctx := context.Background()
	svc, _, recorder := newTestService(t)

	rec := svc.Create(ctx, "products", map[string]any{"name": "Amoxicilina", "sku": "MED-002"}, "u1")
	require.True(t, svc.Delete(ctx, "products", rec.ID, "u1"))
	assert.Nil(t, svc.GetByID(ctx, "products", rec.ID))

	logs := svc.GetAuditLogs(ctx, AuditFilter{Action: models.AuditDelete})
	require.Len(t, logs, 1)
	assert.Equal(t, "products", logs[0].EntityType)
	assert.Equal(t, rec.ID, logs[0].EntityID)
	assert.Equal(t, "MED-002", logs[0].OldValues["sku"])
	assert.Nil(t, logs[0].NewValues)

	reqs := recorder.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, models.SyncDelete, reqs[1].Action)

	assert.False(t, svc.Delete(ctx, "products", rec.ID, "u1"))
}

func TestAuditEntryPerMutation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	rec := svc.Create(ctx, "products", map[string]any{"name": "A"}, "u1")
	svc.Update(ctx, "products", rec.ID, map[string]any{"name": "B"}, "u1")
	svc.Delete(ctx, "products", rec.ID, "u1")

	logs := svc.GetAuditLogs(ctx, AuditFilter{EntityID: rec.ID})
	require.Len(t, logs, 3)

	// Newest first
	assert.Equal(t, models.AuditDelete, logs[0].Action)
	assert.Equal(t, models.AuditCreate, logs[2].Action)

	// Every entry carries the writing site and actor
	for _, entry := range logs {
		assert.Equal(t, "rdc-1", entry.RDCID)
		assert.Equal(t, "u1", entry.UserID)
	}
}

func TestAuditDefaultsSystemUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	svc.Create(ctx, "products", map[string]any{"name": "A"}, "")
	logs := svc.GetAuditLogs(ctx, AuditFilter{})
	require.Len(t, logs, 1)
	assert.Equal(t, "system", logs[0].UserID)
}

func TestGetAllTenantFilter(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	svc.Create(ctx, "docks", map[string]any{"name": "Norte", "rdc_id": "rdc-1"}, "u1")
	svc.Create(ctx, "docks", map[string]any{"name": "Sur", "rdc_id": "rdc-2"}, "u1")
	svc.Create(ctx, "docks", map[string]any{"name": "Compartida"}, "u1")

	scoped := svc.GetAll(ctx, "docks", ListOptions{RDCID: "rdc-2"})
	require.Len(t, scoped, 2)
	names := []string{models.Stringify(scoped[0].Get("name")), models.Stringify(scoped[1].Get("name"))}
	assert.Contains(t, names, "Sur")
	assert.Contains(t, names, "Compartida")

	all := svc.GetAll(ctx, "docks", ListOptions{})
	assert.Len(t, all, 3)
}

func TestGetAllFiltersAndSorting(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	svc.Create(ctx, "products", map[string]any{"name": "Paracetamol", "list_price": 10.0}, "u1")
	svc.Create(ctx, "products", map[string]any{"name": "Ibuprofeno", "list_price": 5.0}, "u1")
	svc.Create(ctx, "products", map[string]any{"name": "Parafina", "list_price": 20.0}, "u1")

	// String filters substring-match case-insensitively
	matched := svc.GetAll(ctx, "products", ListOptions{Filters: map[string]any{"name": "para"}})
	assert.Len(t, matched, 2)

	// Non-string filters are strict equality
	exact := svc.GetAll(ctx, "products", ListOptions{Filters: map[string]any{"list_price": 5.0}})
	require.Len(t, exact, 1)
	assert.Equal(t, "Ibuprofeno", exact[0].Get("name"))

	sorted := svc.GetAll(ctx, "products", ListOptions{SortBy: "list_price", SortOrder: "desc"})
	require.Len(t, sorted, 3)
	assert.Equal(t, 20.0, sorted[0].Get("list_price"))
	assert.Equal(t, 5.0, sorted[2].Get("list_price"))
}

func TestGetPaginated(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for i := 0; i < 25; i++ {
		svc.Create(ctx, "products", map[string]any{"name": "P", "idx": float64(i)}, "u1")
	}

	page := svc.GetPaginated(ctx, "products", PageOptions{Page: 2, PageSize: 10})
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Data, 10)

	last := svc.GetPaginated(ctx, "products", PageOptions{Page: 3, PageSize: 10})
	assert.Len(t, last.Data, 5)

	beyond := svc.GetPaginated(ctx, "products", PageOptions{Page: 9, PageSize: 10})
	assert.Empty(t, beyond.Data)
	assert.Equal(t, 25, beyond.Total)

	// Defaults clamp in
	def := svc.GetPaginated(ctx, "products", PageOptions{})
	assert.Equal(t, 1, def.Page)
	assert.Equal(t, 20, def.PageSize)
}

func TestGetPaginatedSearch(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	svc.Create(ctx, "products", map[string]any{"name": "Paracetamol", "sku": "MED-001"}, "u1")
	svc.Create(ctx, "products", map[string]any{"name": "Ibuprofeno", "sku": "MED-002"}, "u1")

	page := svc.GetPaginated(ctx, "products", PageOptions{
		Page: 1, PageSize: 10,
		Search:       "med-002",
		SearchFields: []string{"name", "sku"},
	})
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Ibuprofeno", page.Data[0].Get("name"))
}

func TestBulkDeleteCountsActualDeletions(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	a := svc.Create(ctx, "products", map[string]any{"name": "A"}, "u1")
	b := svc.Create(ctx, "products", map[string]any{"name": "B"}, "u1")

	deleted := svc.BulkDelete(ctx, "products", []string{a.ID, "missing", b.ID}, "u1")
	assert.Equal(t, 2, deleted)
	assert.Empty(t, svc.GetAll(ctx, "products", ListOptions{}))
}

func TestExportAllAndStats(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	svc.Create(ctx, "products", map[string]any{"name": "A"}, "u1")
	svc.Create(ctx, "docks", map[string]any{"name": "Norte"}, "u1")

	export := svc.ExportAll(ctx, "u1")
	assert.Len(t, export["products"], 1)
	assert.Len(t, export["docks"], 1)

	logs := svc.GetAuditLogs(ctx, AuditFilter{Action: models.AuditExport})
	require.Len(t, logs, 1)
	assert.Equal(t, "database", logs[0].EntityType)

	stats := svc.Stats(ctx)
	assert.Equal(t, 1, stats["products"])
	assert.Equal(t, 1, stats["docks"])
}

func TestLocalCommitIndependentOfDispatch(t *testing.T) {
	// The dispatcher only records; nothing ever confirms remotely. Local
	// state must be identical to the case where the remote accepted.
	ctx := context.Background()
	svc, cache, _ := newTestService(t)

	rec := svc.Create(ctx, "products", map[string]any{"name": "A"}, "u1")
	require.NotNil(t, svc.GetByID(ctx, "products", rec.ID))

	persisted := cache.Get(ctx, "products")
	assert.Len(t, persisted, 1)
}
