package models

import "encoding/json"

// AuditAction enumerates the operations recorded in the audit trail.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
	AuditLogin  AuditAction = "login"
	AuditLogout AuditAction = "logout"
	AuditExport AuditAction = "export"
)

// AuditLog is one immutable entry of the audit trail. Entries are written
// exactly once per mutation and never updated or deleted afterwards.
type AuditLog struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Action     AuditAction    `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	OldValues  map[string]any `json:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty"`
	CreatedAt  string         `json:"created_at"`
	RDCID      string         `json:"rdc_id,omitempty"`
}

// ToRecord converts the entry into a record of the audit_logs collection.
// The before/after snapshots are stored as JSON text, the way they end up
// in a spreadsheet cell.
func (a AuditLog) ToRecord() Record {
	r := NewRecord()
	r.ID = a.ID
	r.CreatedAt = a.CreatedAt
	r.RDCID = a.RDCID
	r.Set("user_id", a.UserID)
	r.Set("action", string(a.Action))
	r.Set("entity_type", a.EntityType)
	r.Set("entity_id", a.EntityID)
	if a.OldValues != nil {
		if b, err := json.Marshal(a.OldValues); err == nil {
			r.Set("old_values", string(b))
		}
	}
	if a.NewValues != nil {
		if b, err := json.Marshal(a.NewValues); err == nil {
			r.Set("new_values", string(b))
		}
	}
	return r
}

// AuditLogFromRecord rebuilds an entry from its stored record form.
func AuditLogFromRecord(r Record) AuditLog {
	a := AuditLog{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		RDCID:      r.RDCID,
		UserID:     Stringify(r.Get("user_id")),
		Action:     AuditAction(Stringify(r.Get("action"))),
		EntityType: Stringify(r.Get("entity_type")),
		EntityID:   Stringify(r.Get("entity_id")),
	}
	if raw, ok := r.Get("old_values").(string); ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &a.OldValues)
	}
	if raw, ok := r.Get("new_values").(string); ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &a.NewValues)
	}
	return a
}
