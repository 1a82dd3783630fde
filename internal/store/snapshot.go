// Package store owns the local cache of entity collections and its
// persistence: an in-memory map in front of a snapshot store that survives
// process restarts.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cedi-api/internal/models"
)

// SnapshotStore persists one JSON-serialized entity collection per entity,
// keyed by a fixed prefix plus the entity name. Implementations must return
// found=false, not an error, when no snapshot exists yet.
type SnapshotStore interface {
	Load(ctx context.Context, entity string) (records []models.Record, found bool, err error)
	Save(ctx context.Context, entity string, records []models.Record) error
}

// KeyPrefix namespaces snapshot keys so unrelated rows in the same table
// never collide with entity collections.
const KeyPrefix = "cedi_"

// sqliteSnapshotStore keeps snapshots in the tbl_snapshot SQLite table.
type sqliteSnapshotStore struct {
	db *sql.DB
}

// NewSQLiteSnapshotStore creates a SnapshotStore backed by SQLite. The
// tbl_snapshot table is created by database.InitSQLite.
func NewSQLiteSnapshotStore(db *sql.DB) SnapshotStore {
	return &sqliteSnapshotStore{db: db}
}

func (s *sqliteSnapshotStore) Load(ctx context.Context, entity string) ([]models.Record, bool, error) {
	query := `SELECT data FROM tbl_snapshot WHERE key = ?`
	var raw string
	err := s.db.QueryRowContext(ctx, query, KeyPrefix+entity).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("loading snapshot for %s: %w", entity, err)
	}

	var records []models.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, false, fmt.Errorf("decoding snapshot for %s: %w", entity, err)
	}
	return records, true, nil
}

func (s *sqliteSnapshotStore) Save(ctx context.Context, entity string, records []models.Record) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding snapshot for %s: %w", entity, err)
	}
	query := `INSERT INTO tbl_snapshot (key, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	          ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, query, KeyPrefix+entity, string(raw)); err != nil {
		return fmt.Errorf("saving snapshot for %s: %w", entity, err)
	}
	return nil
}

// MemorySnapshotStore is an in-memory SnapshotStore for tests and for
// running without a database file.
type MemorySnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]models.Record
}

// NewMemorySnapshotStore creates an empty in-memory snapshot store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{data: make(map[string][]models.Record)}
}

func (m *MemorySnapshotStore) Load(_ context.Context, entity string) ([]models.Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records, ok := m.data[KeyPrefix+entity]
	if !ok {
		return nil, false, nil
	}
	out := make([]models.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out, true, nil
}

func (m *MemorySnapshotStore) Save(_ context.Context, entity string, records []models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]models.Record, len(records))
	for i, r := range records {
		stored[i] = r.Clone()
	}
	m.data[KeyPrefix+entity] = stored
	return nil
}
