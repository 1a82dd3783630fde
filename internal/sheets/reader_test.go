package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, grids map[string][][]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		for sheet, grid := range grids {
			if r.URL.Path == "/main/values/"+sheet {
				json.NewEncoder(w).Encode(map[string]any{"values": grid})
				return
			}
		}
		http.NotFound(w, r)
	})
	return httptest.NewServer(mux)
}

func TestReadTable(t *testing.T) {
	srv := newTestServer(t, map[string][][]string{
		"unidades de medida": {
			{"ID", "Nombre", "Activo"},
			{"7", "Kilogramo", "TRUE"},
			{"8", "Litro", "FALSE"},
		},
	})
	defer srv.Close()

	r := NewReader(srv.URL, "main", "test-key", nil)
	result := r.ReadTable(context.Background(), "unidades_medida")

	require.True(t, result.Success)
	require.Len(t, result.Records, 2)
	assert.Equal(t, []string{"id", "name", "is_active"}, result.Columns)

	first := result.Records[0]
	assert.Equal(t, "7", first.ID)
	assert.Equal(t, "Kilogramo", first.Get("name"))
	assert.Equal(t, true, first.Get("is_active"))

	assert.Equal(t, false, result.Records[1].Get("is_active"))
}

func TestReadTableHeaderOnly(t *testing.T) {
	srv := newTestServer(t, map[string][][]string{
		"productos": {{"ID", "Nombre"}},
	})
	defer srv.Close()

	r := NewReader(srv.URL, "main", "k", nil)
	result := r.ReadTable(context.Background(), "products")
	assert.True(t, result.Success)
	assert.Empty(t, result.Records)
}

func TestReadTableFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	r := NewReader(srv.URL, "main", "k", nil)
	result := r.ReadTable(context.Background(), "products")
	assert.False(t, result.Success)
	assert.Empty(t, result.Records)
	assert.NotEmpty(t, result.Error)
}

func TestReadTableUnreachable(t *testing.T) {
	r := NewReader("http://127.0.0.1:1", "main", "k", nil)
	result := r.ReadTable(context.Background(), "products")
	assert.False(t, result.Success)
	assert.Empty(t, result.Records)
}

func TestParseGridIDBackfill(t *testing.T) {
	// Literal ID column copies down, then code, then the 1-based row index
	result := ParseGrid("tipos_empaque", [][]string{
		{"Nombre", "Código"},
		{"Caja", "CJ-1"},
		{"Blister", ""},
	})
	require.True(t, result.Success)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "CJ-1", result.Records[0].ID)
	assert.Equal(t, "2", result.Records[1].ID)
}

func TestParseGridShortRows(t *testing.T) {
	// Rows shorter than the header row pad with empty cells
	result := ParseGrid("monedas", [][]string{
		{"ID", "Nombre", "Símbolo"},
		{"1", "Quetzal"},
	})
	require.Len(t, result.Records, 1)
	assert.Equal(t, "", result.Records[0].Get("symbol"))
}
