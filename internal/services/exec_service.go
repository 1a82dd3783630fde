package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"cedi-api/internal/models"
	"cedi-api/internal/schema"
	"cedi-api/internal/sheets"
	"cedi-api/internal/tables"

	"go.uber.org/zap"
)

// ExecService is the remote execution endpoint's core: it resolves one sync
// request to a physical sheet and performs the actual row mutation. It is
// stateless; every call reads the sheet it needs and writes it back. Rows
// are matched by the id column only, first match wins, and concurrent
// writers are not synchronized: last write wins.
type ExecService interface {
	Execute(ctx context.Context, req models.SyncRequest) models.SyncResponse
	ReadValues(ctx context.Context, sheet string) ([][]string, error)
}

type execServiceImpl struct {
	tables tables.TableStore
	logger *zap.Logger
}

// NewExecService creates an ExecService over the given table store.
func NewExecService(store tables.TableStore, logger *zap.Logger) ExecService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &execServiceImpl{tables: store, logger: logger}
}

// Execute dispatches one request. The entity may be a canonical alias or
// the literal sheet name; a name that is neither fails without creating
// anything.
func (s *execServiceImpl) Execute(ctx context.Context, req models.SyncRequest) models.SyncResponse {
	sheet, resp := s.resolveSheet(ctx, req.Entity)
	if resp != nil {
		return *resp
	}

	switch req.Action {
	case models.SyncCreate:
		return s.createRow(ctx, sheet, req.Payload)
	case models.SyncUpdate:
		return s.updateRow(ctx, sheet, req.ID, req.Payload)
	case models.SyncDelete:
		return s.deleteRow(ctx, sheet, req.ID)
	case models.SyncGetAll:
		return s.getAllRows(ctx, sheet)
	default:
		return models.SyncResponse{Success: false, Error: fmt.Sprintf("invalid action: %s", req.Action)}
	}
}

// ReadValues returns the raw grid for one sheet, serving the read path.
func (s *execServiceImpl) ReadValues(ctx context.Context, sheet string) ([][]string, error) {
	return s.tables.Grid(ctx, sheet)
}

// resolveSheet maps the request's entity to a physical sheet. Unknown
// aliases are tried as literal sheet names; existing sheets are reachable
// that way, but nothing is ever created for an unknown name.
func (s *execServiceImpl) resolveSheet(ctx context.Context, entity string) (string, *models.SyncResponse) {
	if schema.IsKnownEntity(entity) {
		return schema.SheetFor(entity), nil
	}
	exists, err := s.tables.SheetExists(ctx, entity)
	if err != nil {
		s.logger.Error("Failed to check sheet existence", zap.String("entity", entity), zap.Error(err))
		return "", &models.SyncResponse{Success: false, Error: err.Error()}
	}
	if exists {
		return entity, nil
	}
	return "", &models.SyncResponse{Success: false, Error: fmt.Sprintf("invalid entity: %s", entity)}
}

// createRow builds a new row positionally from the sheet's header row and
// appends it. The id cell takes a payload-supplied id when present, else a
// freshly generated one; created_at/updated_at are stamped server-side.
func (s *execServiceImpl) createRow(ctx context.Context, sheet string, payload map[string]any) models.SyncResponse {
	grid, err := s.tables.Grid(ctx, sheet)
	if err != nil {
		return models.SyncResponse{Success: false, Error: err.Error()}
	}
	if len(grid) == 0 {
		return models.SyncResponse{Success: false, Error: fmt.Sprintf("sheet not found: %s", sheet)}
	}
	if payload == nil {
		payload = map[string]any{}
	}

	headers := grid[0]
	now := time.Now().UTC().Format(time.RFC3339)
	rowID := payloadID(payload)
	if rowID == "" {
		rowID = newRowID()
	}

	// Route the server-stamped columns through the payload so the shared
	// header matcher finds them under whatever header spelling the sheet
	// uses, Spanish or canonical.
	data := make(map[string]any, len(payload)+3)
	for k, v := range payload {
		data[k] = v
	}
	data["id"] = rowID
	if v, ok := data["created_at"]; !ok || models.Stringify(v) == "" {
		data["created_at"] = now
	}
	data["updated_at"] = now

	cells := make([]string, len(headers))
	for i, header := range headers {
		if v, ok := schema.FindPayloadValue(data, header, sheet); ok && v != nil {
			cells[i] = sheets.FormatCell(v)
		}
	}

	if err := s.tables.AppendRow(ctx, sheet, cells); err != nil {
		return models.SyncResponse{Success: false, Error: err.Error()}
	}

	echoed := make(map[string]any, len(payload)+3)
	for k, v := range payload {
		echoed[k] = v
	}
	echoed["id"] = rowID
	echoed["created_at"] = now
	echoed["updated_at"] = now

	s.logger.Info("Row created", zap.String("sheet", sheet), zap.String("id", rowID))
	return models.SyncResponse{Success: true, Message: "record created", ID: rowID, Data: echoed}
}

// updateRow overwrites, for the first row whose id cell matches, every cell
// whose header resolves to a payload key, skipping id and created_at.
func (s *execServiceImpl) updateRow(ctx context.Context, sheet, id string, payload map[string]any) models.SyncResponse {
	grid, err := s.tables.Grid(ctx, sheet)
	if err != nil {
		return models.SyncResponse{Success: false, Error: err.Error()}
	}
	if len(grid) == 0 {
		return models.SyncResponse{Success: false, Error: fmt.Sprintf("sheet not found: %s", sheet)}
	}
	if payload == nil {
		payload = map[string]any{}
	}

	headers := grid[0]
	idCol := idColumn(headers)
	if idCol < 0 {
		return models.SyncResponse{Success: false, Error: "id column not found in sheet"}
	}

	rowIdx := findRow(grid, idCol, id)
	if rowIdx < 0 {
		return models.SyncResponse{Success: false, Error: fmt.Sprintf("record not found with id: %s", id)}
	}

	// Identity columns are not writable through an update, under any header
	// spelling; updated_at is always stamped server-side.
	data := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		data[k] = v
	}
	delete(data, "id")
	delete(data, "ID")
	delete(data, "Id")
	delete(data, "created_at")
	data["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	row := append([]string(nil), grid[rowIdx]...)
	if len(row) < len(headers) {
		row = append(row, make([]string, len(headers)-len(row))...)
	}
	for col, header := range headers {
		if col == idCol {
			continue
		}
		if v, ok := schema.FindPayloadValue(data, header, sheet); ok {
			if v == nil {
				row[col] = ""
			} else {
				row[col] = sheets.FormatCell(v)
			}
		}
	}

	if err := s.tables.UpdateRow(ctx, sheet, rowIdx, row); err != nil {
		return models.SyncResponse{Success: false, Error: err.Error()}
	}

	s.logger.Info("Row updated", zap.String("sheet", sheet), zap.String("id", id))
	return models.SyncResponse{Success: true, Message: "record updated", ID: id}
}

// deleteRow removes the first row whose id cell matches.
func (s *execServiceImpl) deleteRow(ctx context.Context, sheet, id string) models.SyncResponse {
	grid, err := s.tables.Grid(ctx, sheet)
	if err != nil {
		return models.SyncResponse{Success: false, Error: err.Error()}
	}
	if len(grid) == 0 {
		return models.SyncResponse{Success: false, Error: fmt.Sprintf("sheet not found: %s", sheet)}
	}

	idCol := idColumn(grid[0])
	if idCol < 0 {
		return models.SyncResponse{Success: false, Error: "id column not found in sheet"}
	}
	rowIdx := findRow(grid, idCol, id)
	if rowIdx < 0 {
		return models.SyncResponse{Success: false, Error: fmt.Sprintf("record not found with id: %s", id)}
	}

	if err := s.tables.DeleteRow(ctx, sheet, rowIdx); err != nil {
		return models.SyncResponse{Success: false, Error: err.Error()}
	}

	s.logger.Info("Row deleted", zap.String("sheet", sheet), zap.String("id", id))
	return models.SyncResponse{Success: true, Message: "record deleted", ID: id}
}

// getAllRows returns every data row as a flat object keyed by raw header,
// TRUE/FALSE cells converted to booleans.
func (s *execServiceImpl) getAllRows(ctx context.Context, sheet string) models.SyncResponse {
	grid, err := s.tables.Grid(ctx, sheet)
	if err != nil {
		return models.SyncResponse{Success: false, Error: err.Error()}
	}
	if len(grid) == 0 {
		return models.SyncResponse{Success: false, Error: fmt.Sprintf("sheet not found: %s", sheet)}
	}
	if len(grid) < 2 {
		return models.SyncResponse{Success: true, Data: []map[string]any{}, Count: 0}
	}

	headers := grid[0]
	rows := make([]map[string]any, 0, len(grid)-1)
	for _, row := range grid[1:] {
		obj := make(map[string]any, len(headers))
		for i, header := range headers {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			switch val {
			case "TRUE":
				obj[header] = true
			case "FALSE":
				obj[header] = false
			default:
				obj[header] = val
			}
		}
		rows = append(rows, obj)
	}

	return models.SyncResponse{Success: true, Data: rows, Count: len(rows)}
}

// idColumn finds the header whose name case-insensitively equals "id".
func idColumn(headers []string) int {
	for i, h := range headers {
		if schema.HeadersEqual(h, "id") {
			return i
		}
	}
	return -1
}

// findRow scans data rows for a matching id cell; first match wins.
func findRow(grid [][]string, idCol int, id string) int {
	for i := 1; i < len(grid); i++ {
		if idCol < len(grid[i]) && grid[i][idCol] == id {
			return i
		}
	}
	return -1
}

// payloadID pulls an id out of the payload under any of its spellings.
func payloadID(payload map[string]any) string {
	for _, key := range []string{"id", "ID", "Id"} {
		if v, ok := payload[key]; ok {
			if s := models.Stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

const rowIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newRowID generates a sheet-side unique row identifier.
func newRowID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = rowIDAlphabet[rand.Intn(len(rowIDAlphabet))]
	}
	return fmt.Sprintf("id_%d_%s", time.Now().UnixMilli(), string(suffix))
}
