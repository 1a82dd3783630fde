package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Canonical field names shared by every entity collection.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldCreatedBy = "created_by"
	FieldUpdatedBy = "updated_by"
	FieldRDCID     = "rdc_id"
)

// Record is one row of an entity collection. The audit columns every entity
// carries by convention are typed; everything else, including columns the
// spreadsheet grows that we never anticipated, lives in Fields so unknown
// data survives a read-modify-write round trip.
type Record struct {
	ID        string
	CreatedAt string
	UpdatedAt string
	CreatedBy string
	UpdatedBy string
	RDCID     string // Multi-tenant scope; empty means shared/global
	Fields    map[string]any
}

// NewRecord returns an empty record with an allocated field bag.
func NewRecord() Record {
	return Record{Fields: make(map[string]any)}
}

// Get returns the value stored under a canonical field name.
func (r *Record) Get(key string) any {
	switch key {
	case FieldID:
		return r.ID
	case FieldCreatedAt:
		return r.CreatedAt
	case FieldUpdatedAt:
		return r.UpdatedAt
	case FieldCreatedBy:
		return r.CreatedBy
	case FieldUpdatedBy:
		return r.UpdatedBy
	case FieldRDCID:
		return r.RDCID
	}
	if r.Fields == nil {
		return nil
	}
	return r.Fields[key]
}

// Set stores a value under a canonical field name. Values assigned to the
// typed audit columns are stringified, since those columns are always text.
func (r *Record) Set(key string, value any) {
	switch key {
	case FieldID:
		r.ID = Stringify(value)
	case FieldCreatedAt:
		r.CreatedAt = Stringify(value)
	case FieldUpdatedAt:
		r.UpdatedAt = Stringify(value)
	case FieldCreatedBy:
		r.CreatedBy = Stringify(value)
	case FieldUpdatedBy:
		r.UpdatedBy = Stringify(value)
	case FieldRDCID:
		r.RDCID = Stringify(value)
	default:
		if r.Fields == nil {
			r.Fields = make(map[string]any)
		}
		r.Fields[key] = value
	}
}

// Has reports whether the record carries a non-empty value for key.
func (r *Record) Has(key string) bool {
	v := r.Get(key)
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}

// Clone returns a deep copy; the field bag is copied, not shared.
func (r Record) Clone() Record {
	out := r
	out.Fields = make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	return out
}

// Merge applies partial updates over the record. The id and created_at
// columns are deliberately not assignable through this path.
func (r *Record) Merge(partial map[string]any) {
	for k, v := range partial {
		if k == FieldID || k == FieldCreatedAt {
			continue
		}
		r.Set(k, v)
	}
}

// Flatten returns the record as a single map keyed by canonical field names.
// Empty audit columns are omitted, matching how rows come off the sheet.
func (r Record) Flatten() map[string]any {
	out := make(map[string]any, len(r.Fields)+6)
	for k, v := range r.Fields {
		out[k] = v
	}
	if r.ID != "" {
		out[FieldID] = r.ID
	}
	if r.CreatedAt != "" {
		out[FieldCreatedAt] = r.CreatedAt
	}
	if r.UpdatedAt != "" {
		out[FieldUpdatedAt] = r.UpdatedAt
	}
	if r.CreatedBy != "" {
		out[FieldCreatedBy] = r.CreatedBy
	}
	if r.UpdatedBy != "" {
		out[FieldUpdatedBy] = r.UpdatedBy
	}
	if r.RDCID != "" {
		out[FieldRDCID] = r.RDCID
	}
	return out
}

// RecordFromMap builds a record from a flat field map, routing the known
// audit columns into their typed slots.
func RecordFromMap(fields map[string]any) Record {
	r := NewRecord()
	for k, v := range fields {
		r.Set(k, v)
	}
	return r
}

// MarshalJSON flattens the record so it serializes the same way the raw
// sheet rows do: one flat object, canonical keys.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Flatten())
}

// UnmarshalJSON restores a record from its flat representation.
func (r *Record) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*r = RecordFromMap(flat)
	return nil
}

// Stringify renders a cell value the way it would be written back to the
// sheet: booleans as TRUE/FALSE, numbers without a trailing ".0".
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}
