// Package store provides the canonical per-character memory repository.
// Storage failures are classified and absorbed at this boundary: callers get
// boolean or empty-result outcomes, never raw driver errors.
package store

import (
	"context"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
)

// QueryParams filters an indexed memory lookup. Themes and Types each match
// any-of; MinWeight is inclusive. Results are ordered by emotional weight
// descending, then creation time descending, capped at Limit.
type QueryParams struct {
	OwnerID   string
	Themes    []string
	Types     []model.MemoryType
	MinWeight float64
	Limit     int
}

// RetentionPolicy bounds the cleanup safety valve. All three conditions must
// hold for a memory to be deleted; formative memories are never touched.
type RetentionPolicy struct {
	MaxAgeDays  int
	WeightBelow float64
	RecallBelow int
}

// Store is the memory repository contract.
type Store interface {
	// Save upserts a memory by id. It validates (missing id/owner rejects,
	// out-of-range weight clamps), logs any persistence failure, and reports
	// success as a boolean only.
	Save(ctx context.Context, m *model.Memory) bool

	// GetByID fetches one memory for an owner.
	GetByID(ctx context.Context, ownerID, id string) (*model.Memory, bool)

	// Query runs an indexed filtered lookup.
	Query(ctx context.Context, p QueryParams) []model.Memory

	// Recent returns memories created within the last N days, newest first.
	Recent(ctx context.Context, ownerID string, days, limit int) []model.Memory

	// RecentByType returns an owner's newest memories of one type, ordered by
	// creation time descending regardless of weight.
	RecentByType(ctx context.Context, ownerID string, t model.MemoryType, limit int) []model.Memory

	// RecordRecall atomically bumps recall_count and refreshes
	// last_recalled_at. Absent ids are a no-op.
	RecordRecall(ctx context.Context, ownerID, id string)

	// Statistics aggregates one owner's store; empty stores return zeros.
	Statistics(ctx context.Context, ownerID string) model.Statistics

	// CleanupRetention deletes old, low-weight, rarely-recalled memories and
	// returns how many were removed.
	CleanupRetention(ctx context.Context, ownerID string, p RetentionPolicy) int

	// SaveCluster persists a derived memory cluster.
	SaveCluster(ctx context.Context, c *model.MemoryCluster) bool

	// ClustersFor lists an owner's stored clusters, newest first.
	ClustersFor(ctx context.Context, ownerID string, limit int) []model.MemoryCluster

	// AllForOwner returns every memory of an owner, used by graph rebuilds.
	AllForOwner(ctx context.Context, ownerID string) []model.Memory

	Close() error
}
