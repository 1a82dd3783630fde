package schema

// columnMappings translates raw sheet headers to canonical field names on
// the read path. The sheet uses Spanish headers; the rest of the system uses
// English snake_case keys. The _global table applies to every entity unless
// an entity-specific table overrides the header.
var columnMappings = map[string]map[string]string{
	"_global": {
		"ID":                  "id",
		"Nombre":              "name",
		"Código":              "code",
		"Descripción":         "description",
		"Activo":              "is_active",
		"Teléfono":            "phone",
		"Email":               "email",
		"Dirección":           "address",
		"País":                "country",
		"Fecha Creación":      "created_at",
		"Fecha Actualización": "updated_at",
	},

	"laboratories": {
		"Información de Contacto": "contact_info",
	},

	"unidades_medida": {
		"Símbolo": "symbol",
		"Tipo":    "type",
	},
	"measurement_units": {
		"Símbolo": "symbol",
		"Tipo":    "type",
	},

	"tipos_empaque": {
		"Unidades por Empaque": "units_per_pack",
	},
	"package_types": {
		"Unidades por Empaque": "units_per_pack",
	},

	"impuestos": {
		"Porcentaje": "percentage",
		"Tasa":       "rate",
	},
	"taxes": {
		"Porcentaje": "percentage",
		"Tasa":       "rate",
	},

	"monedas": {
		"Símbolo":        "symbol",
		"Tasa de Cambio": "exchange_rate",
	},
	"currencies": {
		"Símbolo":        "symbol",
		"Tasa de Cambio": "exchange_rate",
	},

	"niveles_producto": {
		"Nivel":    "level",
		"ID Padre": "parent_id",
	},
	"product_levels": {
		"Nivel":    "level",
		"ID Padre": "parent_id",
	},

	"principios_activos": {
		"Concentración": "concentration",
	},
	"active_ingredients": {
		"Concentración": "concentration",
	},

	"buyers": {
		"Persona de Contacto": "contact_person",
	},

	"suppliers": {
		"Razón Social":              "legal_name",
		"NIT":                       "tax_id",
		"ID Comprador Principal":    "main_buyer_id",
		"Nombre Comprador Principal": "main_buyer_name",
		"Persona de Contacto":       "contact_name",
		"Email":                     "contact_email",
		"Teléfono":                  "contact_phone",
		"Ciudad":                    "city",
	},

	"products": {
		"ID Centro de Distribución":            "rdc_id",
		"ID Solicitante":                       "solicitante_id",
		"ID Laboratorio":                       "laboratory_id",
		"Nombre Generado":                      "generated_name",
		"Características":                      "characteristics",
		"ID Forma Farmacéutica":                "forma_farmaceutica_id",
		"Cantidad":                             "quantity",
		"ID Medida Peso/Tamaño":                "medida_peso_id",
		"ID Tipo Empaque":                      "tipo_empaque_id",
		"Talla/Capacidad":                      "size_capacity",
		"Calibre/Grosor/Diámetro":              "caliber_thickness",
		"Descripción Oferta Especial":          "special_offer_description",
		"Vencimiento Registro Sanitario":       "sanitary_registry_expiration",
		"Número Registro Sanitario":            "sanitary_registry_number",
		"Código de Barras":                     "barcode",
		"ID Tipo de Impuesto":                  "tax_type_id",
		"ID Clasificación":                     "classification_id",
		"Es Controlado":                        "is_controlled",
		"Es Refrigerado":                       "is_refrigerated",
		"Uso Hospitalario":                     "is_hospital_use",
		"Requiere Receta Retenida":             "requires_retained_prescription",
		"Uso Crónico":                          "is_chronic_use",
		"Para Farmacias Propias":               "for_own_pharmacies",
		"Para Farmacias Independientes":        "for_independent_pharmacies",
		"Para Uso Institucional/Hospitalario":  "for_institutional_use",
		"Es Ruteado":                           "is_routed",
		"Para Venta al por Mayor":              "for_wholesale",
		"Para Autoservicio":                    "for_self_service",
		"Es Borrador":                          "is_draft",
	},

	"appointments": {
		"Fecha":              "date",
		"Hora Inicio":        "start_time",
		"Hora Fin":           "end_time",
		"ID Puerta":          "dock_id",
		"ID Proveedor":       "supplier_id",
		"ID Orden de Compra": "purchase_order_id",
		"Estado":             "status",
		"Notas":              "notes",
	},

	"centros_distribucion": {
		"Zona Horaria": "timezone",
		"Ciudad":       "city",
	},

	"docks": {
		"ID centro distribucion": "distribution_center_id",
		"Número de Puerta":       "code",
		"Tipo":                   "type",
		"Capacidad":              "capacity",
		"Estado":                 "status",
		"Descripción":            "notes",
	},

	"vehicle_types": {
		"Capacidad":   "capacity",
		"Peso Máximo": "max_weight",
	},

	"horarios": {
		"Fecha":        "date",
		"ID de Puerta": "dock_id",
		"Día":          "day",
		"Hora Inicio":  "start_time",
		"Hora Fin":     "end_time",
		"Disponible":   "is_available",
		"Descripción":  "notes",
	},

	"dias_festivos": {
		"ID Centro de Distribución": "distribution_center_id",
		"Fecha":          "date",
		"Descripción":    "notes",
		"Es Día Laboral": "is_working_day",
		"Hora de Inicio": "start_time",
		"Hora de Fin":    "end_time",
	},

	"users": {
		"Nombres":           "name",
		"Usuario":           "username",
		"Password":          "password",
		"Perfil de usuario": "role",
	},
}

// CanonicalField resolves a raw sheet header to its canonical field name.
// Resolution order: the entity's own table, then the global table, then the
// deterministic fallback transform. The fallback guarantees a stable name
// for any header but is not collision-free; see NormalizeHeader.
func CanonicalField(entity, rawHeader string) string {
	if m, ok := columnMappings[entity]; ok {
		if canonical, ok := m[rawHeader]; ok {
			return canonical
		}
	}
	if canonical, ok := columnMappings["_global"][rawHeader]; ok {
		return canonical
	}
	return NormalizeHeader(rawHeader)
}
