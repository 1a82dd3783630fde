package services

import (
	"context"
	"strings"
	"testing"

	"cedi-api/internal/models"
	"cedi-api/internal/tables"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExecFixture(t *testing.T) (ExecService, *tables.MemoryTableStore) {
	t.Helper()
	ctx := context.Background()
	store := tables.NewMemoryTableStore()
	require.NoError(t, store.EnsureSheet(ctx, "puertas", []string{"ID", "Número de Puerta", "Nombre", "Capacidad", "Fecha Creación", "Fecha Actualización"}))
	require.NoError(t, store.AppendRow(ctx, "puertas", []string{"d1", "P-01", "Norte", "3", "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z"}))
	return NewExecService(store, nil), store
}

func TestExecuteCreate(t *testing.T) {
	svc, store := newExecFixture(t)

	resp := svc.Execute(context.Background(), models.SyncRequest{
		Action: models.SyncCreate,
		Entity: "docks",
		Payload: map[string]any{
			"code":     "P-02",
			"name":     "Sur",
			"Capacidad": 5.0,
		},
	})

	require.True(t, resp.Success, resp.Error)
	assert.True(t, strings.HasPrefix(resp.ID, "id_"))

	grid, err := store.Grid(context.Background(), "puertas")
	require.NoError(t, err)
	require.Len(t, grid, 3)
	row := grid[2]
	assert.Equal(t, resp.ID, row[0])
	assert.Equal(t, "P-02", row[1])
	assert.Equal(t, "Sur", row[2])
	assert.Equal(t, "5", row[3])
	assert.NotEmpty(t, row[4]) // created_at stamped
	assert.NotEmpty(t, row[5]) // updated_at stamped
}

func TestExecuteCreateKeepsPayloadID(t *testing.T) {
	svc, _ := newExecFixture(t)

	resp := svc.Execute(context.Background(), models.SyncRequest{
		Action:  models.SyncCreate,
		Entity:  "docks",
		Payload: map[string]any{"id": "fixed-id", "name": "Este"},
	})

	require.True(t, resp.Success)
	assert.Equal(t, "fixed-id", resp.ID)
}

func TestExecuteUpdate(t *testing.T) {
	svc, store := newExecFixture(t)

	resp := svc.Execute(context.Background(), models.SyncRequest{
		Action:  models.SyncUpdate,
		Entity:  "docks",
		ID:      "d1",
		Payload: map[string]any{"name": "Norte Ampliada", "created_at": "1999-01-01T00:00:00Z"},
	})

	require.True(t, resp.Success, resp.Error)

	grid, err := store.Grid(context.Background(), "puertas")
	require.NoError(t, err)
	row := grid[1]
	assert.Equal(t, "d1", row[0])
	assert.Equal(t, "Norte Ampliada", row[2])
	assert.Equal(t, "2026-01-01T00:00:00Z", row[4]) // created_at untouched
	assert.NotEqual(t, "2026-01-01T00:00:00Z", row[5])
}

func TestExecuteUpdateMissingRow(t *testing.T) {
	svc, _ := newExecFixture(t)

	resp := svc.Execute(context.Background(), models.SyncRequest{
		Action:  models.SyncUpdate,
		Entity:  "docks",
		ID:      "nope",
		Payload: map[string]any{"name": "x"},
	})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "not found")
}

func TestExecuteDelete(t *testing.T) {
	svc, store := newExecFixture(t)

	resp := svc.Execute(context.Background(), models.SyncRequest{
		Action: models.SyncDelete,
		Entity: "docks",
		ID:     "d1",
	})
	require.True(t, resp.Success)

	grid, err := store.Grid(context.Background(), "puertas")
	require.NoError(t, err)
	assert.Len(t, grid, 1) // header only
}

func TestExecuteGetAll(t *testing.T) {
	ctx := context.Background()
	store := tables.NewMemoryTableStore()
	require.NoError(t, store.EnsureSheet(ctx, "puertas", []string{"ID", "Nombre", "Activo"}))
	require.NoError(t, store.AppendRow(ctx, "puertas", []string{"d1", "Norte", "TRUE"}))
	require.NoError(t, store.AppendRow(ctx, "puertas", []string{"d2", "Sur", "FALSE"}))
	svc := NewExecService(store, nil)

	resp := svc.Execute(ctx, models.SyncRequest{Action: models.SyncGetAll, Entity: "docks"})
	require.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)

	rows, ok := resp.Data.([]map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, rows[0]["Activo"])
	assert.Equal(t, false, rows[1]["Activo"])
	assert.Equal(t, "Norte", rows[0]["Nombre"])
}

func TestExecuteGetAllHeaderOnly(t *testing.T) {
	ctx := context.Background()
	store := tables.NewMemoryTableStore()
	require.NoError(t, store.EnsureSheet(ctx, "puertas", []string{"ID", "Nombre"}))
	svc := NewExecService(store, nil)

	resp := svc.Execute(ctx, models.SyncRequest{Action: models.SyncGetAll, Entity: "docks"})
	require.True(t, resp.Success)
	assert.Equal(t, 0, resp.Count)
}

func TestExecuteLiteralSheetFallback(t *testing.T) {
	ctx := context.Background()
	store := tables.NewMemoryTableStore()
	require.NoError(t, store.EnsureSheet(ctx, "hoja especial", []string{"ID", "Nombre"}))
	require.NoError(t, store.AppendRow(ctx, "hoja especial", []string{"1", "algo"}))
	svc := NewExecService(store, nil)

	// Not a registered alias, but the sheet exists under its literal name
	resp := svc.Execute(ctx, models.SyncRequest{Action: models.SyncGetAll, Entity: "hoja especial"})
	require.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)

	// Unknown alias and no such sheet
	resp = svc.Execute(ctx, models.SyncRequest{Action: models.SyncGetAll, Entity: "no existe"})
	assert.False(t, resp.Success)
}

func TestExecuteUnknownEntityNeverCreatesSheets(t *testing.T) {
	ctx := context.Background()
	store := tables.NewMemoryTableStore()
	svc := NewExecService(store, nil)

	resp := svc.Execute(ctx, models.SyncRequest{
		Action:  models.SyncCreate,
		Entity:  "invented",
		Payload: map[string]any{"name": "x"},
	})
	assert.False(t, resp.Success)

	exists, err := store.SheetExists(ctx, "invented")
	require.NoError(t, err)
	assert.False(t, exists)
}
