package tables

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// sqliteTableStore keeps each sheet as numbered rows in tbl_sheet_row, the
// cell slice JSON-encoded per row. Row numbering is dense: deleting a row
// shifts everything after it up by one, like removing a spreadsheet row.
type sqliteTableStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteTableStore creates a TableStore over the tbl_sheet_row table
// created by database.InitSQLite.
func NewSQLiteTableStore(db *sql.DB, logger *zap.Logger) TableStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sqliteTableStore{db: db, logger: logger}
}

func (s *sqliteTableStore) SheetExists(ctx context.Context, sheet string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tbl_sheet_row WHERE sheet = ?)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, sheet).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking sheet %s: %w", sheet, err)
	}
	return exists, nil
}

func (s *sqliteTableStore) Grid(ctx context.Context, sheet string) ([][]string, error) {
	query := `SELECT cells FROM tbl_sheet_row WHERE sheet = ? ORDER BY rownum`
	rows, err := s.db.QueryContext(ctx, query, sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var grid [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning row of sheet %s: %w", sheet, err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("decoding row of sheet %s: %w", sheet, err)
		}
		grid = append(grid, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sheet %s: %w", sheet, err)
	}
	return grid, nil
}

func (s *sqliteTableStore) AppendRow(ctx context.Context, sheet string, cells []string) error {
	raw, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("encoding row for sheet %s: %w", sheet, err)
	}
	query := `INSERT INTO tbl_sheet_row (sheet, rownum, cells)
	          VALUES (?, (SELECT COALESCE(MAX(rownum) + 1, 0) FROM tbl_sheet_row WHERE sheet = ?), ?)`
	if _, err := s.db.ExecContext(ctx, query, sheet, sheet, string(raw)); err != nil {
		return fmt.Errorf("appending row to sheet %s: %w", sheet, err)
	}
	return nil
}

func (s *sqliteTableStore) UpdateRow(ctx context.Context, sheet string, rowIndex int, cells []string) error {
	raw, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("encoding row for sheet %s: %w", sheet, err)
	}
	query := `UPDATE tbl_sheet_row SET cells = ? WHERE sheet = ? AND rownum = ?`
	if _, err := s.db.ExecContext(ctx, query, string(raw), sheet, rowIndex); err != nil {
		return fmt.Errorf("updating row %d of sheet %s: %w", rowIndex, sheet, err)
	}
	return nil
}

func (s *sqliteTableStore) DeleteRow(ctx context.Context, sheet string, rowIndex int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting delete on sheet %s: %w", sheet, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM tbl_sheet_row WHERE sheet = ? AND rownum = ?`, sheet, rowIndex); err != nil {
		return fmt.Errorf("deleting row %d of sheet %s: %w", rowIndex, sheet, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE tbl_sheet_row SET rownum = rownum - 1 WHERE sheet = ? AND rownum > ?`, sheet, rowIndex); err != nil {
		return fmt.Errorf("renumbering sheet %s: %w", sheet, err)
	}
	return tx.Commit()
}

func (s *sqliteTableStore) EnsureSheet(ctx context.Context, sheet string, headers []string) error {
	exists, err := s.SheetExists(ctx, sheet)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	s.logger.Info("Creating sheet with header row", zap.String("sheet", sheet))
	return s.AppendRow(ctx, sheet, headers)
}
