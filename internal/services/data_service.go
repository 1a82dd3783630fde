package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"cedi-api/internal/models"
	"cedi-api/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncDispatcher forwards a committed local mutation to the remote execution
// endpoint. Implemented by syncer.Dispatcher; tests substitute a recorder.
type SyncDispatcher interface {
	Enqueue(action, entity string, payload map[string]any, id string)
}

// ListOptions narrow a collection read: tenant scope, arbitrary field
// filters (substring match for strings, equality otherwise) and sorting.
type ListOptions struct {
	RDCID     string
	Filters   map[string]any
	SortBy    string
	SortOrder string // "asc" (default) or "desc"
}

// PageOptions extend ListOptions with pagination and cross-field search.
type PageOptions struct {
	ListOptions
	Page         int
	PageSize     int
	Search       string
	SearchFields []string
}

// AuditFilter narrows an audit trail query.
type AuditFilter struct {
	EntityType string
	EntityID   string
	UserID     string
	Action     models.AuditAction
	FromDate   string
	ToDate     string
	Limit      int
}

// DataService is the generic CRUD command layer over the local cache. Reads
// come from the cache; writes mutate the cache synchronously, append an
// audit entry, and dispatch to the remote endpoint asynchronously. The
// returned result of a write never waits on remote confirmation.
type DataService interface {
	GetAll(ctx context.Context, entity string, opts ListOptions) []models.Record
	GetPaginated(ctx context.Context, entity string, opts PageOptions) models.PaginatedResult
	GetByID(ctx context.Context, entity, id string) *models.Record
	Create(ctx context.Context, entity string, fields map[string]any, userID string) models.Record
	Update(ctx context.Context, entity, id string, partial map[string]any, userID string) *models.Record
	Delete(ctx context.Context, entity, id, userID string) bool
	BulkDelete(ctx context.Context, entity string, ids []string, userID string) int
	GetAuditLogs(ctx context.Context, filter AuditFilter) []models.AuditLog
	ExportAll(ctx context.Context, userID string) map[string][]models.Record
	ImportData(ctx context.Context, data map[string][]models.Record)
	Stats(ctx context.Context) map[string]int
	Refresh(ctx context.Context, entity string)
	ClearCache()
}

const auditEntity = "audit_logs"

type dataServiceImpl struct {
	cache      *store.Cache
	dispatcher SyncDispatcher
	entities   []string
	defaultRDC string
	logger     *zap.Logger
}

// NewDataService creates a DataService over the given cache and dispatcher.
// entities is the catalog used by ExportAll and Stats; defaultRDC stamps
// audit entries with the site they were written from.
func NewDataService(cache *store.Cache, dispatcher SyncDispatcher, entities []string, defaultRDC string, logger *zap.Logger) DataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dataServiceImpl{
		cache:      cache,
		dispatcher: dispatcher,
		entities:   entities,
		defaultRDC: defaultRDC,
		logger:     logger,
	}
}

// GetAll returns the entity collection after the tenant pass, field filters
// and sorting. Filtering always produces a new slice; sorting mutates the
// filtered slice in place (and therefore the cached array when no filter
// applied), which is accepted for performance.
func (s *dataServiceImpl) GetAll(ctx context.Context, entity string, opts ListOptions) []models.Record {
	s.cache.Initialize(ctx)
	records := s.cache.Get(ctx, entity)

	filtered := records

	// Multi-tenant pass: a record with no rdc_id is shared catalog data and
	// passes every scope.
	if opts.RDCID != "" {
		filtered = make([]models.Record, 0, len(records))
		for _, rec := range records {
			if rec.RDCID == "" || rec.RDCID == opts.RDCID {
				filtered = append(filtered, rec)
			}
		}
	}

	for key, value := range opts.Filters {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		filtered = filterBy(filtered, key, value)
	}

	if opts.SortBy != "" {
		sortRecords(filtered, opts.SortBy, opts.SortOrder)
	}

	return filtered
}

// GetPaginated composes GetAll with cross-field substring search, then
// slices out one page. Totals always reflect the pre-slice, post-filter
// count.
func (s *dataServiceImpl) GetPaginated(ctx context.Context, entity string, opts PageOptions) models.PaginatedResult {
	data := s.GetAll(ctx, entity, opts.ListOptions)

	if opts.Search != "" && len(opts.SearchFields) > 0 {
		needle := strings.ToLower(opts.Search)
		matched := make([]models.Record, 0, len(data))
		for _, rec := range data {
			for _, field := range opts.SearchFields {
				if strings.Contains(strings.ToLower(models.Stringify(rec.Get(field))), needle) {
					matched = append(matched, rec)
					break
				}
			}
		}
		data = matched
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	total := len(data)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return models.PaginatedResult{
		Data:       data[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// GetByID returns a copy of the matching record, or nil when not found.
func (s *dataServiceImpl) GetByID(ctx context.Context, entity, id string) *models.Record {
	s.cache.Initialize(ctx)
	for _, rec := range s.cache.Get(ctx, entity) {
		if rec.ID == id {
			out := rec.Clone()
			return &out
		}
	}
	return nil
}

// Create stores a new record with a fresh id and create/update timestamps,
// audits it and dispatches the sync. The record is returned before the
// remote sync is confirmed.
func (s *dataServiceImpl) Create(ctx context.Context, entity string, fields map[string]any, userID string) models.Record {
	s.cache.Initialize(ctx)

	now := nowStamp()
	rec := models.RecordFromMap(fields)
	rec.ID = uuid.NewString()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.CreatedBy = userID

	records := s.cache.Get(ctx, entity)
	s.cache.SetCollection(ctx, entity, append(records, rec))

	s.logAudit(ctx, models.AuditCreate, entity, rec.ID, nil, rec.Flatten(), userID)
	s.dispatcher.Enqueue(models.SyncCreate, entity, rec.Flatten(), rec.ID)

	s.logger.Info("Record created",
		zap.String("entity", entity), zap.String("id", rec.ID), zap.String("user_id", userID))
	return rec
}

// Update merges partial fields over the existing record. The id and
// created_at columns are re-asserted after the merge so callers cannot
// rewrite them. Returns nil when the id is not found; a miss produces no
// audit entry and no sync.
func (s *dataServiceImpl) Update(ctx context.Context, entity, id string, partial map[string]any, userID string) *models.Record {
	s.cache.Initialize(ctx)

	records := s.cache.Get(ctx, entity)
	idx := indexOf(records, id)
	if idx < 0 {
		s.logger.Warn("Update target not found", zap.String("entity", entity), zap.String("id", id))
		return nil
	}

	old := records[idx].Clone()
	updated := records[idx].Clone()
	updated.Merge(partial)
	updated.ID = old.ID
	updated.CreatedAt = old.CreatedAt
	updated.UpdatedAt = nowStamp()
	updated.UpdatedBy = userID

	next := append([]models.Record(nil), records...)
	next[idx] = updated
	s.cache.SetCollection(ctx, entity, next)

	s.logAudit(ctx, models.AuditUpdate, entity, id, old.Flatten(), updated.Flatten(), userID)
	s.dispatcher.Enqueue(models.SyncUpdate, entity, updated.Flatten(), id)

	s.logger.Info("Record updated",
		zap.String("entity", entity), zap.String("id", id), zap.String("user_id", userID))
	out := updated.Clone()
	return &out
}

// Delete removes the record, audits the pre-delete snapshot and dispatches
// the sync. Returns false when the id is not found.
func (s *dataServiceImpl) Delete(ctx context.Context, entity, id, userID string) bool {
	s.cache.Initialize(ctx)

	records := s.cache.Get(ctx, entity)
	idx := indexOf(records, id)
	if idx < 0 {
		s.logger.Warn("Delete target not found", zap.String("entity", entity), zap.String("id", id))
		return false
	}

	removed := records[idx].Clone()
	next := append([]models.Record(nil), records[:idx]...)
	next = append(next, records[idx+1:]...)
	s.cache.SetCollection(ctx, entity, next)

	s.logAudit(ctx, models.AuditDelete, entity, id, removed.Flatten(), nil, userID)
	s.dispatcher.Enqueue(models.SyncDelete, entity, nil, id)

	s.logger.Info("Record deleted",
		zap.String("entity", entity), zap.String("id", id), zap.String("user_id", userID))
	return true
}

// BulkDelete deletes each id independently and returns the count actually
// deleted, not the count requested.
func (s *dataServiceImpl) BulkDelete(ctx context.Context, entity string, ids []string, userID string) int {
	deleted := 0
	for _, id := range ids {
		if s.Delete(ctx, entity, id, userID) {
			deleted++
		}
	}
	return deleted
}

// GetAuditLogs queries the audit trail, newest first.
func (s *dataServiceImpl) GetAuditLogs(ctx context.Context, filter AuditFilter) []models.AuditLog {
	s.cache.Initialize(ctx)

	// Walk in reverse insertion order so entries sharing a timestamp still
	// come out newest first after the stable sort.
	records := s.cache.Get(ctx, auditEntity)
	logs := make([]models.AuditLog, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		entry := models.AuditLogFromRecord(records[i])
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && entry.EntityID != filter.EntityID {
			continue
		}
		if filter.UserID != "" && entry.UserID != filter.UserID {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.FromDate != "" && entry.CreatedAt < filter.FromDate {
			continue
		}
		if filter.ToDate != "" && entry.CreatedAt > filter.ToDate {
			continue
		}
		logs = append(logs, entry)
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].CreatedAt > logs[j].CreatedAt
	})

	if filter.Limit > 0 && len(logs) > filter.Limit {
		logs = logs[:filter.Limit]
	}
	return logs
}

// ExportAll returns every known entity collection and records an export
// audit entry.
func (s *dataServiceImpl) ExportAll(ctx context.Context, userID string) map[string][]models.Record {
	s.cache.Initialize(ctx)

	out := make(map[string][]models.Record, len(s.entities))
	for _, entity := range s.entities {
		out[entity] = s.cache.Get(ctx, entity)
	}
	s.logAudit(ctx, models.AuditExport, "database", "", nil, nil, userID)
	return out
}

// ImportData replaces entity collections wholesale, persisting each one.
func (s *dataServiceImpl) ImportData(ctx context.Context, data map[string][]models.Record) {
	for entity, records := range data {
		s.cache.SetCollection(ctx, entity, records)
	}
}

// Stats reports record counts per known entity.
func (s *dataServiceImpl) Stats(ctx context.Context) map[string]int {
	s.cache.Initialize(ctx)
	stats := make(map[string]int, len(s.entities))
	for _, entity := range s.entities {
		stats[entity] = len(s.cache.Get(ctx, entity))
	}
	return stats
}

// Refresh forces a reload from the remote store for one entity, or all.
func (s *dataServiceImpl) Refresh(ctx context.Context, entity string) {
	s.cache.Refresh(ctx, entity)
}

// ClearCache drops the in-memory state, forcing reinitialization on the
// next access.
func (s *dataServiceImpl) ClearCache() {
	s.cache.Clear()
}

// logAudit appends one immutable audit entry for a mutation. Written by the
// command layer itself, exactly once per mutation, never by callers.
func (s *dataServiceImpl) logAudit(ctx context.Context, action models.AuditAction, entityType, entityID string, oldValues, newValues map[string]any, userID string) {
	if userID == "" {
		userID = "system"
	}
	entry := models.AuditLog{
		ID:         uuid.NewString(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		CreatedAt:  nowStamp(),
		RDCID:      s.defaultRDC,
	}
	logs := s.cache.Get(ctx, auditEntity)
	s.cache.SetCollection(ctx, auditEntity, append(logs, entry.ToRecord()))
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func indexOf(records []models.Record, id string) int {
	for i, rec := range records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// filterBy filters into a new slice: substring, case-insensitive match for
// string filter values, strict equality for everything else.
func filterBy(records []models.Record, key string, value any) []models.Record {
	out := make([]models.Record, 0, len(records))
	if needle, ok := value.(string); ok {
		lower := strings.ToLower(needle)
		for _, rec := range records {
			if strings.Contains(strings.ToLower(models.Stringify(rec.Get(key))), lower) {
				out = append(out, rec)
			}
		}
		return out
	}
	for _, rec := range records {
		if rec.Get(key) == value {
			out = append(out, rec)
		}
	}
	return out
}

// sortRecords sorts in place. Numbers compare numerically when both sides
// are numeric; everything else falls back to string comparison.
func sortRecords(records []models.Record, sortBy, sortOrder string) {
	desc := sortOrder == "desc"
	sort.SliceStable(records, func(i, j int) bool {
		less := lessValue(records[i].Get(sortBy), records[j].Get(sortBy))
		if desc {
			return lessValue(records[j].Get(sortBy), records[i].Get(sortBy))
		}
		return less
	})
}

func lessValue(a, b any) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	return models.Stringify(a) < models.Stringify(b)
}
