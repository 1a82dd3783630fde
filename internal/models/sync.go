package models

// Sync actions understood by the remote execution endpoint.
const (
	SyncCreate = "create"
	SyncUpdate = "update"
	SyncDelete = "delete"
	SyncGetAll = "getAll"
)

// SyncRequest is the ephemeral message forwarded to the remote execution
// endpoint after a local mutation has committed. It has no persisted form.
type SyncRequest struct {
	Action  string         `json:"action" validate:"required,oneof=create update delete getAll"`
	Entity  string         `json:"entity" validate:"required"`
	Payload map[string]any `json:"payload,omitempty"`
	ID      string         `json:"id,omitempty"`
}

// SyncResponse is the execution endpoint's answer to any action.
type SyncResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   int    `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SyncResult is what the dispatcher reports back to the CRUD layer. A failed
// dispatch never rolls back the local commit; the result is informational.
type SyncResult struct {
	Success bool
	Error   string
}

// PaginatedResult carries one page of records plus the pre-slice totals.
type PaginatedResult struct {
	Data       []Record `json:"data"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}
