// Package recall layers retrieval policy on top of the memory store:
// filtered ranked lookup plus reinforcement of whatever gets remembered.
package recall

import (
	"context"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/store"
)

// FormativeThreshold is the minimum emotional weight for a memory to count
// as formative. It takes precedence over any requested limit.
const FormativeThreshold = 0.7

// Params describes one recall request.
type Params struct {
	OwnerID   string
	Themes    []string
	Types     []model.MemoryType
	MinWeight float64
	Limit     int
	Reinforce bool
}

type Engine struct {
	store store.Store
}

func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// Recall runs a filtered ranked query. When Reinforce is set, every returned
// memory gets its recall counter bumped after the read; the bump is
// deliberately not atomic with the read, recall statistics are best-effort.
func (e *Engine) Recall(ctx context.Context, p Params) []model.Memory {
	if p.Limit <= 0 {
		p.Limit = 10
	}
	results := e.store.Query(ctx, store.QueryParams{
		OwnerID:   p.OwnerID,
		Themes:    p.Themes,
		Types:     p.Types,
		MinWeight: p.MinWeight,
		Limit:     p.Limit,
	})
	if p.Reinforce {
		for i := range results {
			e.store.RecordRecall(ctx, p.OwnerID, results[i].ID)
		}
	}
	return results
}

// Formative returns up to limit memories clearing the formative threshold,
// without reinforcement. Fewer qualifying memories mean fewer results; the
// list is never padded with lower-weight ones.
func (e *Engine) Formative(ctx context.Context, ownerID string, limit int) []model.Memory {
	if limit <= 0 {
		limit = 5
	}
	return e.Recall(ctx, Params{
		OwnerID:   ownerID,
		MinWeight: FormativeThreshold,
		Limit:     limit,
	})
}

// ByType is a shorthand type filter without reinforcement.
func (e *Engine) ByType(ctx context.Context, ownerID string, t model.MemoryType, limit int) []model.Memory {
	return e.Recall(ctx, Params{
		OwnerID: ownerID,
		Types:   []model.MemoryType{t},
		Limit:   limit,
	})
}

// LatestByType returns the newest memories of one type, without
// reinforcement. Unlike ByType the ranking is recency, not weight, so a
// fresh low-weight entry beats an old heavy one.
func (e *Engine) LatestByType(ctx context.Context, ownerID string, t model.MemoryType, limit int) []model.Memory {
	if limit <= 0 {
		limit = 1
	}
	return e.store.RecentByType(ctx, ownerID, t, limit)
}
