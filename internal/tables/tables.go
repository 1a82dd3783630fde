// Package tables is the backing store behind the remote execution endpoint:
// named sheets held as raw grids of cell text, row 0 being the header row.
package tables

import (
	"context"
	"sync"
)

// TableStore abstracts the physical sheet grids so the execution service can
// run against SQLite in production and an in-memory fake in tests. Row
// indexes are absolute grid positions (row 0 = headers). Implementations do
// not synchronize concurrent writers beyond their own consistency; two
// concurrent read-modify-writes of the same row race, and last write wins.
type TableStore interface {
	SheetExists(ctx context.Context, sheet string) (bool, error)
	Grid(ctx context.Context, sheet string) ([][]string, error)
	AppendRow(ctx context.Context, sheet string, cells []string) error
	UpdateRow(ctx context.Context, sheet string, rowIndex int, cells []string) error
	DeleteRow(ctx context.Context, sheet string, rowIndex int) error
	EnsureSheet(ctx context.Context, sheet string, headers []string) error
}

// MemoryTableStore keeps grids in process memory. Used by tests and by
// local-only deployments that have no spreadsheet behind them.
type MemoryTableStore struct {
	mu     sync.RWMutex
	sheets map[string][][]string
}

// NewMemoryTableStore creates an empty in-memory table store.
func NewMemoryTableStore() *MemoryTableStore {
	return &MemoryTableStore{sheets: make(map[string][][]string)}
}

func (m *MemoryTableStore) SheetExists(_ context.Context, sheet string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sheets[sheet]
	return ok, nil
}

func (m *MemoryTableStore) Grid(_ context.Context, sheet string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	grid, ok := m.sheets[sheet]
	if !ok {
		return nil, nil
	}
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (m *MemoryTableStore) AppendRow(_ context.Context, sheet string, cells []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[sheet] = append(m.sheets[sheet], append([]string(nil), cells...))
	return nil
}

func (m *MemoryTableStore) UpdateRow(_ context.Context, sheet string, rowIndex int, cells []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid := m.sheets[sheet]
	if rowIndex < 0 || rowIndex >= len(grid) {
		return nil
	}
	grid[rowIndex] = append([]string(nil), cells...)
	return nil
}

func (m *MemoryTableStore) DeleteRow(_ context.Context, sheet string, rowIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid := m.sheets[sheet]
	if rowIndex < 0 || rowIndex >= len(grid) {
		return nil
	}
	m.sheets[sheet] = append(grid[:rowIndex], grid[rowIndex+1:]...)
	return nil
}

func (m *MemoryTableStore) EnsureSheet(_ context.Context, sheet string, headers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sheets[sheet]; ok {
		return nil
	}
	m.sheets[sheet] = [][]string{append([]string(nil), headers...)}
	return nil
}
