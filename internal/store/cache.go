package store

import (
	"context"
	"sync"

	"cedi-api/internal/models"
	"cedi-api/internal/sheets"

	"go.uber.org/zap"
)

// TableReader pulls one entity's full table snapshot from the remote store.
// Satisfied by sheets.Reader; tests substitute a counting fake.
type TableReader interface {
	ReadTable(ctx context.Context, entity string) sheets.TableResult
}

// Cache is the local cache of entity collections plus its initialization
// lifecycle. It is owned by the composition root and injected into the CRUD
// layer, never reached through package-level state.
type Cache struct {
	mu          sync.Mutex
	data        map[string][]models.Record
	snapshots   SnapshotStore
	reader      TableReader
	entities    []string
	logger      *zap.Logger
	initialized bool
	inflight    chan struct{} // non-nil while a load is running
}

// NewCache creates a cache over the given snapshot store and remote reader.
// entities is the set of collections Initialize will populate.
func NewCache(snapshots SnapshotStore, reader TableReader, entities []string, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		data:      make(map[string][]models.Record),
		snapshots: snapshots,
		reader:    reader,
		entities:  entities,
		logger:    logger,
	}
}

// Initialize loads every known entity from the remote reader, exactly once.
// Concurrent callers share the first caller's in-flight load instead of
// issuing duplicate remote reads. Initialize never returns an error: if the
// remote store is unreachable the state stays non-initialized, a warning is
// logged, and previously persisted snapshots remain usable.
func (c *Cache) Initialize(ctx context.Context) {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return
	}
	if c.inflight != nil {
		done := c.inflight
		c.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
		}
		return
	}
	done := make(chan struct{})
	c.inflight = done
	c.mu.Unlock()

	loaded := c.loadAll(ctx)

	c.mu.Lock()
	c.inflight = nil
	if loaded {
		c.initialized = true
	}
	c.mu.Unlock()
	close(done)

	if loaded {
		c.logger.Info("Cache initialized from remote store", zap.Int("entities", len(c.entities)))
	} else {
		c.logger.Warn("Cache initialization failed, keeping persisted data and staying uninitialized")
	}
}

// loadAll reads every entity; a single unreachable entity is tolerated, but
// when every read fails the whole load counts as failed so the next access
// retries.
func (c *Cache) loadAll(ctx context.Context) bool {
	if c.reader == nil || len(c.entities) == 0 {
		// Local-only mode: nothing to pull, persisted data is authoritative.
		return true
	}

	succeeded := 0
	for _, entity := range c.entities {
		if c.loadEntity(ctx, entity) {
			succeeded++
		}
	}
	return succeeded > 0
}

// loadEntity pulls one entity and, when the read succeeds with data, commits
// it to memory and the snapshot store.
func (c *Cache) loadEntity(ctx context.Context, entity string) bool {
	result := c.reader.ReadTable(ctx, entity)
	if !result.Success {
		c.logger.Warn("Could not load entity from remote store",
			zap.String("entity", entity), zap.String("error", result.Error))
		return false
	}
	if len(result.Records) == 0 {
		return true
	}
	c.SetCollection(ctx, entity, result.Records)
	c.logger.Debug("Loaded entity from remote store",
		zap.String("entity", entity), zap.Int("records", len(result.Records)))
	return true
}

// Initialized reports the lifecycle state.
func (c *Cache) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Get returns the entity's collection, lazily reading the persisted snapshot
// on first access so restarts see local data before any remote read. The
// returned slice is the cached one; the CRUD layer documents which
// operations mutate it in place.
func (c *Cache) Get(ctx context.Context, entity string) []models.Record {
	c.mu.Lock()
	if records, ok := c.data[entity]; ok {
		c.mu.Unlock()
		return records
	}
	c.mu.Unlock()

	records, found, err := c.snapshots.Load(ctx, entity)
	if err != nil {
		c.logger.Warn("Failed to read persisted snapshot",
			zap.String("entity", entity), zap.Error(err))
	}
	if !found || records == nil {
		records = []models.Record{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.data[entity]; ok {
		return cached
	}
	c.data[entity] = records
	return records
}

// SetCollection replaces the entity's collection in memory and persists it.
// A persistence failure is logged and the in-memory commit stands.
func (c *Cache) SetCollection(ctx context.Context, entity string, records []models.Record) {
	c.mu.Lock()
	c.data[entity] = records
	c.mu.Unlock()

	if err := c.snapshots.Save(ctx, entity, records); err != nil {
		c.logger.Warn("Failed to persist snapshot",
			zap.String("entity", entity), zap.Error(err))
	}
}

// Refresh forces a reload of one entity, or of every known entity when the
// name is empty. It works in any lifecycle state and does not touch the
// initialization flag.
func (c *Cache) Refresh(ctx context.Context, entity string) {
	if c.reader == nil {
		return
	}
	if entity != "" {
		c.loadEntity(ctx, entity)
		return
	}
	for _, name := range c.entities {
		c.loadEntity(ctx, name)
	}
}

// Clear drops the in-memory map and resets the lifecycle flag, forcing the
// next access to reinitialize. Persisted snapshots are left intact.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]models.Record)
	c.initialized = false
}
