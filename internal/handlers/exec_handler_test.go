package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"cedi-api/internal/models"
	"cedi-api/internal/services"
	"cedi-api/internal/tables"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newExecTestApp(t *testing.T) (*fiber.App, tables.TableStore) {
	t.Helper()
	ctx := context.Background()
	store := tables.NewMemoryTableStore()
	require.NoError(t, store.EnsureSheet(ctx, "puertas", []string{"ID", "Nombre", "Fecha Creación", "Fecha Actualización"}))
	require.NoError(t, store.AppendRow(ctx, "puertas", []string{"d1", "Norte", "2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z"}))

	svc := services.NewExecService(store, zap.NewNop())
	handler := NewExecHandler(svc, zap.NewNop())

	app := fiber.New()
	handler.SetupExecRoutes(app.Group("/api/v1"))
	return app, store
}

func decodeSyncResponse(t *testing.T, body io.Reader) models.SyncResponse {
	t.Helper()
	var resp models.SyncResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestExecuteRawJSONBody(t *testing.T) {
	app, store := newExecTestApp(t)

	payload := `{"action":"create","entity":"docks","payload":{"Nombre":"Sur"}}`
	req := httptest.NewRequest("POST", "/api/v1/exec", strings.NewReader(payload))
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	resp := decodeSyncResponse(t, res.Body)
	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.ID, "id_"))

	grid, err := store.Grid(context.Background(), "puertas")
	require.NoError(t, err)
	require.Len(t, grid, 3)
	assert.Equal(t, "Sur", grid[2][1])
}

func TestExecuteFormEncodedDataField(t *testing.T) {
	app, store := newExecTestApp(t)

	form := url.Values{}
	form.Set("data", `{"action":"delete","entity":"docks","id":"d1"}`)
	req := httptest.NewRequest("POST", "/api/v1/exec", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.True(t, decodeSyncResponse(t, res.Body).Success)

	grid, err := store.Grid(context.Background(), "puertas")
	require.NoError(t, err)
	assert.Len(t, grid, 1)
}

func TestExecuteUndecodableBody(t *testing.T) {
	app, _ := newExecTestApp(t)

	req := httptest.NewRequest("POST", "/api/v1/exec", strings.NewReader("not json at all"))
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	resp := decodeSyncResponse(t, res.Body)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "invalid request body")
}

func TestExecuteUnknownAction(t *testing.T) {
	app, _ := newExecTestApp(t)

	req := httptest.NewRequest("POST", "/api/v1/exec", strings.NewReader(`{"action":"truncate","entity":"docks"}`))
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	resp := decodeSyncResponse(t, res.Body)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestExecuteMissingEntity(t *testing.T) {
	app, _ := newExecTestApp(t)

	req := httptest.NewRequest("POST", "/api/v1/exec", strings.NewReader(`{"action":"getAll"}`))
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.False(t, decodeSyncResponse(t, res.Body).Success)
}

func TestExecPing(t *testing.T) {
	app, _ := newExecTestApp(t)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/exec", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	var body struct {
		Success         bool     `json:"success"`
		AvailableSheets []string `json:"availableSheets"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Contains(t, body.AvailableSheets, "docks")
}
