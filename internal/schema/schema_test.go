package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSheetFor(t *testing.T) {
	assert.Equal(t, "productos", SheetFor("products"))
	assert.Equal(t, "usuarios", SheetFor("users"))
	assert.Equal(t, "puertas", SheetFor("docks"))

	// Several entities alias the same sheet
	assert.Equal(t, "clasificaciones", SheetFor("categories"))
	assert.Equal(t, "clasificaciones", SheetFor("drug_categories"))
	assert.Equal(t, "clasificaciones", SheetFor("classifications"))

	// Unmapped names fall back to the literal name
	assert.Equal(t, "hoja nueva", SheetFor("hoja nueva"))
}

func TestIsKnownEntity(t *testing.T) {
	assert.True(t, IsKnownEntity("products"))
	assert.True(t, IsKnownEntity("audit_logs"))
	assert.False(t, IsKnownEntity("productos")) // physical name, not an alias
	assert.False(t, IsKnownEntity(""))
}

func TestEntitiesCoversAliases(t *testing.T) {
	entities := Entities()
	assert.Contains(t, entities, "products")
	assert.Contains(t, entities, "categories")
	assert.Contains(t, entities, "drug_categories")
	assert.Len(t, entities, len(sheetNames))
}

func TestCanonicalField(t *testing.T) {
	tests := []struct {
		name   string
		entity string
		header string
		want   string
	}{
		{"global mapping", "laboratories", "Nombre", "name"},
		{"global mapping with diacritics", "products", "Código", "code"},
		{"entity mapping wins over global", "suppliers", "Teléfono", "contact_phone"},
		{"entity specific", "products", "Es Controlado", "is_controlled"},
		{"entity specific docks", "docks", "Número de Puerta", "code"},
		{"fallback lowercases", "products", "Lote", "lote"},
		{"fallback strips diacritics", "products", "Días Hábiles", "dias_habiles"},
		{"fallback collapses separators", "products", "Precio  de   Lista", "precio_de_lista"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalField(tt.entity, tt.header))
		})
	}
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "numero_de_puerta", NormalizeHeader("Número de Puerta"))
	assert.Equal(t, "razon_social", NormalizeHeader("Razón Social"))
	assert.Equal(t, "peso_ton", NormalizeHeader("Peso (ton)"))

	// Deterministic: same input, same output
	assert.Equal(t, NormalizeHeader("Año Fiscal"), NormalizeHeader("Año Fiscal"))
}

func TestHeadersEqual(t *testing.T) {
	assert.True(t, HeadersEqual("ID", "id"))
	assert.True(t, HeadersEqual(" Nombre ", "nombre"))
	assert.False(t, HeadersEqual("Nombre", "Nombres"))
}

func TestIsTextField(t *testing.T) {
	assert.True(t, IsTextField("docks", "code"))
	assert.True(t, IsTextField("suppliers", "contact_phone"))
	assert.True(t, IsTextField("products", "sanitary_registry_number"))
	assert.True(t, IsTextField("anything", "barcode"))
	assert.False(t, IsTextField("products", "list_price"))
	assert.False(t, IsTextField("docks", "capacity"))
}

func TestFindPayloadValue(t *testing.T) {
	payload := map[string]any{
		"name":     "Puerta Norte",
		"code":     "P-01",
		"Capacity": 3.0,
		"Estado":   "libre",
	}

	// Exact raw-header key match
	v, ok := FindPayloadValue(payload, "Estado", "puertas")
	assert.True(t, ok)
	assert.Equal(t, "libre", v)

	// Sheet-specific mapping: puertas stores code under Número de Puerta
	v, ok = FindPayloadValue(payload, "Número de Puerta", "puertas")
	assert.True(t, ok)
	assert.Equal(t, "P-01", v)

	// Global mapping
	v, ok = FindPayloadValue(payload, "Nombre", "puertas")
	assert.True(t, ok)
	assert.Equal(t, "Puerta Norte", v)

	// Case-insensitive key scan
	v, ok = FindPayloadValue(payload, "capacity", "puertas")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	_, ok = FindPayloadValue(payload, "Columna Desconocida", "puertas")
	assert.False(t, ok)
}
