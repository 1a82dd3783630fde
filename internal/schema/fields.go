package schema

// fieldMappings is the write-path translation: the execution endpoint gets
// payloads keyed by canonical names and has to find the matching Spanish
// column header. One global table plus sheet-specific overrides for tabs
// whose headers differ from the convention.
var fieldMappings = map[string]string{
	"id":         "ID",
	"code":       "Código",
	"name":       "Nombre",
	"description": "Descripción",
	"is_active":  "Activo",
	"created_at": "Fecha Creación",
	"updated_at": "Fecha Actualización",

	// Suppliers
	"legal_name":         "Razón Social",
	"tax_id":             "NIT",
	"address":            "Dirección",
	"city":               "Ciudad",
	"state":              "Estado",
	"country":            "País",
	"postal_code":        "Código Postal",
	"contact_name":       "Persona de Contacto",
	"contact_email":      "Email",
	"contact_phone":      "Teléfono",
	"payment_terms_days": "Plazo de Pago",
	"notes":              "Notas",
	"main_buyer_id":      "ID Comprador Principal",
	"main_buyer_name":    "Nombre Comprador Principal",

	// Distribution centers
	"timezone": "Zona Horaria",
	"phone":    "Teléfono",
	"email":    "Email",

	// Docks
	"distribution_center_id": "ID centro distribucion",
	"type":     "Tipo",
	"capacity": "Capacidad",
	"status":   "Estado",

	// Schedules
	"dock_id":      "Puerta",
	"day":          "Día",
	"start_time":   "Hora Inicio",
	"end_time":     "Hora Fin",
	"is_available": "Disponible",

	// Holidays
	"date":           "Fecha",
	"is_annual":      "Es Anual",
	"is_working_day": "Es Día Laboral",

	// Vehicle types
	"max_weight": "Peso (ton)",

	// General catalogs
	"symbol":       "Símbolo",
	"percentage":   "Porcentaje",
	"abbreviation": "Abreviatura",
	"level":        "Nivel",
	"parent_id":    "ID Padre",
}

// sheetFieldMappings holds per-sheet overrides, keyed by physical sheet name
// (not canonical entity name, because the endpoint accepts either).
var sheetFieldMappings = map[string]map[string]string{
	"puertas": {
		"code":  "Número de Puerta",
		"notes": "Descripción",
	},
	"horarios": {
		"name":         "Nombre",
		"dock_id":      "Puerta",
		"day":          "Día",
		"start_time":   "Hora Inicio",
		"end_time":     "Hora Fin",
		"is_available": "Disponible",
		"notes":        "Descripción",
	},
	"dias festivos": {
		"notes": "Notas",
	},
	"tipos vehiculo": {
		"code":        "Código",
		"name":        "Nombre",
		"description": "Descripción",
		"max_weight":  "Peso (ton)",
		"is_active":   "Activo",
	},
}

// FindPayloadValue locates the payload value for a raw sheet header, trying
// in order: an exact key match, the sheet-specific write mapping, the global
// write mapping, and finally a case-insensitive match against payload keys.
// The same matcher backs both the table-read and table-write paths so the
// two header-resolution algorithms cannot drift apart.
func FindPayloadValue(payload map[string]any, header, sheet string) (any, bool) {
	if v, ok := payload[header]; ok {
		return v, true
	}

	if m, ok := sheetFieldMappings[sheet]; ok {
		for canonical, column := range m {
			if HeadersEqual(column, header) {
				if v, ok := payload[canonical]; ok {
					return v, true
				}
			}
		}
	}

	for canonical, column := range fieldMappings {
		if HeadersEqual(column, header) {
			if v, ok := payload[canonical]; ok {
				return v, true
			}
		}
	}

	for key, v := range payload {
		if HeadersEqual(key, header) {
			return v, true
		}
	}

	return nil, false
}
