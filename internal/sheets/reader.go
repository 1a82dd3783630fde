package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cedi-api/internal/models"
	"cedi-api/internal/schema"

	"go.uber.org/zap"
)

// TableResult is the outcome of one full-table read. A failed fetch is
// reported here as Success=false with an empty collection, never as an
// error, so one unreachable sheet does not abort loading the others.
type TableResult struct {
	Success bool
	Records []models.Record
	Columns []string
	Error   string
}

// valuesResponse mirrors the value-range shape of the read API: a 2-D array
// of cell text, first row = headers.
type valuesResponse struct {
	Values [][]string `json:"values"`
}

// Reader pulls full table snapshots from the remote store. The read key
// only grants read access; all writes go through the execution endpoint.
type Reader struct {
	baseURL       string
	spreadsheetID string
	apiKey        string
	client        *http.Client
	logger        *zap.Logger
}

// NewReader creates a Reader against the configured value-range endpoint.
func NewReader(baseURL, spreadsheetID, apiKey string, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		baseURL:       baseURL,
		spreadsheetID: spreadsheetID,
		apiKey:        apiKey,
		client:        &http.Client{Timeout: 30 * time.Second},
		logger:        logger,
	}
}

// ReadTable fetches the full grid for the entity's physical sheet and turns
// it into records: headers normalized through the mapping catalog, every
// cell coerced, identifiers backfilled. Fewer than two rows means no data
// beyond a header (or no header at all) and yields an empty collection.
func (r *Reader) ReadTable(ctx context.Context, entity string) TableResult {
	sheet := schema.SheetFor(entity)

	grid, err := r.fetchValues(ctx, sheet)
	if err != nil {
		r.logger.Warn("Failed to read sheet, returning empty collection",
			zap.String("entity", entity),
			zap.String("sheet", sheet),
			zap.Error(err),
		)
		return TableResult{Success: false, Records: []models.Record{}, Error: err.Error()}
	}

	return ParseGrid(entity, grid)
}

// fetchValues GETs the named sheet's full value range.
func (r *Reader) fetchValues(ctx context.Context, sheet string) ([][]string, error) {
	reqURL := fmt.Sprintf("%s/%s/values/%s?key=%s",
		r.baseURL, r.spreadsheetID, url.PathEscape(sheet), url.QueryEscape(r.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building values request for sheet %s: %w", sheet, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching sheet %s: %w", sheet, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response for sheet %s: %w", sheet, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet %s read returned status %d: %s", sheet, resp.StatusCode, string(body))
	}

	var parsed valuesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding values for sheet %s: %w", sheet, err)
	}
	return parsed.Values, nil
}

// ParseGrid converts a raw 2-D grid into records for one entity. Row 0 is
// the header row; each data row is zipped against the normalized headers.
func ParseGrid(entity string, grid [][]string) TableResult {
	if len(grid) < 2 {
		return TableResult{Success: true, Records: []models.Record{}}
	}

	rawHeaders := grid[0]
	headers := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = schema.CanonicalField(entity, h)
	}

	records := make([]models.Record, 0, len(grid)-1)
	for rowIdx, row := range grid[1:] {
		rec := models.NewRecord()
		for col, header := range headers {
			raw := ""
			if col < len(row) {
				raw = row[col]
			}
			rec.Set(header, ParseCellFor(entity, header, raw))
		}
		backfillID(&rec, rowIdx+1)
		records = append(records, rec)
	}

	return TableResult{Success: true, Records: records, Columns: headers}
}

// backfillID guarantees every row surfaced upstream has a non-empty string
// id even though the store has no native primary key: copy down a literal
// "ID" field, fall back to the row's code, and as a last resort use the
// 1-based data row index.
func backfillID(rec *models.Record, rowIndex int) {
	if rec.ID != "" {
		return
	}
	if v, ok := rec.Fields["ID"]; ok {
		rec.ID = models.Stringify(v)
		delete(rec.Fields, "ID")
		return
	}
	if rec.Has("code") {
		rec.ID = models.Stringify(rec.Get("code"))
		return
	}
	rec.ID = strconv.Itoa(rowIndex)
}
