// Package schema holds the static, bidirectional mapping between canonical
// entity names, the physical sheet (tab) each entity lives in, and the
// translation tables between raw column headers and canonical field names.
package schema

// sheetNames maps canonical entity names to the physical sheet name in the
// backing spreadsheet. The names must match the tabs exactly. Several
// entities deliberately alias the same sheet (e.g. categories and
// drug_categories both read clasificaciones).
var sheetNames = map[string]string{
	// Users and security
	"users":      "usuarios",
	"audit_logs": "audit_logs",

	// Catalogs (Spanish canonical names)
	"products":             "productos",
	"laboratories":         "laboratorios",
	"categories":           "clasificaciones",
	"drug_categories":      "clasificaciones",
	"formas_farmaceuticas": "formas farmaceuticas",
	"unidades_medida":      "unidades de medida",
	"tipos_empaque":        "tipos de empaque",
	"impuestos":            "impuestos",
	"monedas":              "monedas",
	"niveles_producto":     "niveles de producto",
	"principios_activos":   "principios activos",
	"medidas_peso":         "medidas peso",

	// Catalogs (English aliases used by newer pages)
	"classifications":      "clasificaciones",
	"pharmaceutical_forms": "formas farmaceuticas",
	"measurement_units":    "unidades de medida",
	"package_types":        "tipos de empaque",
	"taxes":                "impuestos",
	"currencies":           "monedas",
	"product_levels":       "niveles de producto",
	"active_ingredients":   "principios activos",

	// Suppliers
	"suppliers":    "proveedores",
	"buyers":       "compradores",
	"solicitantes": "Solicitantes",

	// Product detail tables
	"datos_logisticos":         "datos logisticos",
	"datos_compra":             "datos compra",
	"producto_ingredientes":    "producto ingredientes activos",
	"producto_bonificaciones":  "producto bonificaciones",
	"producto_categorias":      "producto categorias",

	// Site configuration
	"centros_distribucion": "centros distribucion",
	"horarios_negocio":     "horarios negocio",
	"vehicle_types":        "tipos vehiculo",
	"docks":                "puertas",
	"horarios":             "horarios",
	"dias_festivos":        "dias festivos",

	// Scheduling
	"appointments":               "citas",
	"ordenes_compra":             "ordenes compra",
	"anulaciones_disponibilidad": "anulaciones disponibilidad puerta",
}

// SheetFor resolves a canonical entity name to its physical sheet name.
// Unmapped entities fall back to the entity name itself, so a brand-new tab
// is usable without touching the catalog.
func SheetFor(entity string) string {
	if sheet, ok := sheetNames[entity]; ok {
		return sheet
	}
	return entity
}

// IsKnownEntity reports whether the entity name is a registered alias.
func IsKnownEntity(entity string) bool {
	_, ok := sheetNames[entity]
	return ok
}

// Entities returns every registered canonical entity name.
func Entities() []string {
	out := make([]string, 0, len(sheetNames))
	for entity := range sheetNames {
		out = append(out, entity)
	}
	return out
}

// textFields lists, per entity, canonical fields that must never be coerced
// to numbers even when their content looks numeric. Codes like "007" or a
// phone number stay text.
var textFields = map[string]map[string]bool{
	"_global": {
		"code":        true,
		"phone":       true,
		"barcode":     true,
		"tax_id":      true,
		"postal_code": true,
	},
	"suppliers": {
		"contact_phone": true,
	},
	"products": {
		"sanitary_registry_number": true,
	},
}

// IsTextField reports whether a canonical field is exempt from numeric
// coercion for the given entity.
func IsTextField(entity, field string) bool {
	if textFields["_global"][field] {
		return true
	}
	if m, ok := textFields[entity]; ok {
		return m[field]
	}
	return false
}
