package graph

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/driver"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/store"
)

// Relationships is the optional relationship-index capability. Exactly one
// implementation is selected at construction; call sites never check which.
type Relationships interface {
	// StoreWithRelationships persists the memory through the canonical store
	// and, when the capability is live, mirrors it into the graph and derives
	// edges against the owner's existing memories. The store write is never
	// rolled back on graph failure.
	StoreWithRelationships(ctx context.Context, m *model.Memory) bool

	// Connected returns memories reachable from the given one within
	// maxDepth hops, nearest first, origin excluded, capped at limit.
	Connected(ctx context.Context, ownerID, memoryID string, maxDepth, limit int) []model.ConnectedMemory

	// Path returns shortest paths (as memory-id sequences) between two
	// memories within maxHops, or an empty slice when none exists.
	Path(ctx context.Context, ownerID, fromID, toID string, maxHops int) [][]string

	// EdgeCount reports the owner's derived edge total, 0 when degraded.
	EdgeCount(ctx context.Context, ownerID string) int

	// Edges returns the owner's full derived edge set, empty when degraded.
	Edges(ctx context.Context, ownerID string) []model.MemoryRelation

	// RebuildForOwner recomputes the owner's entire edge set from the
	// canonical store and returns the number of edges written.
	RebuildForOwner(ctx context.Context, ownerID string) int

	// Available reports whether the graph capability is currently live.
	Available() bool
}

// NoopRelationships is the degraded implementation used when no graph
// backend is configured. Writes still reach the canonical store.
type NoopRelationships struct {
	store store.Store
}

func NewNoopRelationships(s store.Store) *NoopRelationships {
	return &NoopRelationships{store: s}
}

func (n *NoopRelationships) StoreWithRelationships(ctx context.Context, m *model.Memory) bool {
	return n.store.Save(ctx, m)
}

func (n *NoopRelationships) Connected(ctx context.Context, ownerID, memoryID string, maxDepth, limit int) []model.ConnectedMemory {
	return nil
}

func (n *NoopRelationships) Path(ctx context.Context, ownerID, fromID, toID string, maxHops int) [][]string {
	return nil
}

func (n *NoopRelationships) EdgeCount(ctx context.Context, ownerID string) int { return 0 }

func (n *NoopRelationships) Edges(ctx context.Context, ownerID string) []model.MemoryRelation {
	return nil
}

func (n *NoopRelationships) RebuildForOwner(ctx context.Context, ownerID string) int { return 0 }

func (n *NoopRelationships) Available() bool { return false }

// GraphRelationships is the live implementation over a bolt graph driver.
type GraphRelationships struct {
	store   store.Store
	driver  driver.GraphDriver
	cfg     Config
	timeout time.Duration

	// degraded latches after the first backend failure so later calls stop
	// retrying a dead connection within the session.
	degraded atomic.Bool
}

func NewGraphRelationships(s store.Store, d driver.GraphDriver, cfg Config, timeout time.Duration) *GraphRelationships {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &GraphRelationships{store: s, driver: d, cfg: cfg, timeout: timeout}
}

func (g *GraphRelationships) Available() bool {
	return !g.degraded.Load()
}

func (g *GraphRelationships) markDegraded(op string, err error) {
	if g.degraded.CompareAndSwap(false, true) {
		log.Printf("graph: %s failed, entering degraded mode: %v (%v)", op, err, model.ErrGraphUnavailable)
	}
}

func (g *GraphRelationships) run(ctx context.Context, op, query string, params map[string]interface{}) (records []edgeRecord, ok bool) {
	if g.degraded.Load() {
		return nil, false
	}
	tctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res, err := g.driver.ExecuteQuery(tctx, query, params)
	if err != nil {
		g.markDegraded(op, err)
		return nil, false
	}
	return parseEdgeRecords(res), true
}

func (g *GraphRelationships) StoreWithRelationships(ctx context.Context, m *model.Memory) bool {
	// Existing set is captured before the save so the new memory is not
	// paired against itself.
	existing := g.store.AllForOwner(ctx, m.OwnerID)

	if !g.store.Save(ctx, m) {
		return false
	}
	if g.degraded.Load() {
		return true
	}

	if !g.mirror(ctx, m) {
		return true
	}

	for _, rel := range DetectAll(m, existing, g.cfg) {
		if _, ok := g.run(ctx, "merge edge", driver.MergeRelatesToEdgeQuery, map[string]interface{}{
			"from_id":  rel.FromID,
			"to_id":    rel.ToID,
			"kind":     string(rel.Kind),
			"strength": rel.Strength,
		}); !ok {
			break
		}
	}
	return true
}

// mirror creates the Character and Memory nodes plus the FORMED edge.
func (g *GraphRelationships) mirror(ctx context.Context, m *model.Memory) bool {
	if _, ok := g.run(ctx, "merge character", driver.MergeCharacterQuery, map[string]interface{}{
		"owner_id": m.OwnerID,
		"name":     nil,
	}); !ok {
		return false
	}
	if _, ok := g.run(ctx, "merge memory", driver.MergeMemoryNodeQuery, map[string]interface{}{
		"id":               m.ID,
		"owner_id":         m.OwnerID,
		"memory_type":      string(m.Type),
		"emotional_weight": m.EmotionalWeight,
		"created_at":       m.CreatedAt.UTC().Format(time.RFC3339Nano),
		"themes":           m.Themes,
	}); !ok {
		return false
	}
	_, ok := g.run(ctx, "merge formed", driver.MergeFormedEdgeQuery, map[string]interface{}{
		"owner_id": m.OwnerID,
		"id":       m.ID,
	})
	return ok
}

func (g *GraphRelationships) ownerEdges(ctx context.Context, ownerID string) ([]model.MemoryRelation, bool) {
	records, ok := g.run(ctx, "fetch edges", driver.FetchOwnerEdgesQuery, map[string]interface{}{
		"owner_id": ownerID,
	})
	if !ok {
		return nil, false
	}
	edges := make([]model.MemoryRelation, 0, len(records))
	for _, r := range records {
		edges = append(edges, model.MemoryRelation{
			FromID:   r.FromID,
			ToID:     r.ToID,
			Kind:     model.RelationKind(r.Kind),
			Strength: r.Strength,
		})
	}
	return edges, true
}

func (g *GraphRelationships) Connected(ctx context.Context, ownerID, memoryID string, maxDepth, limit int) []model.ConnectedMemory {
	if maxDepth <= 0 {
		maxDepth = 2
	}
	if limit <= 0 {
		limit = 10
	}

	edges, ok := g.ownerEdges(ctx, ownerID)
	if !ok || len(edges) == 0 {
		return nil
	}

	byID := make(map[string]model.Memory)
	for _, m := range g.store.AllForOwner(ctx, ownerID) {
		byID[m.ID] = m
	}

	var out []model.ConnectedMemory
	for _, h := range bfsFrom(buildAdjacency(edges), memoryID, maxDepth, limit) {
		m, found := byID[h.id]
		if !found {
			// Stale graph node without a canonical record; repairable via
			// RebuildForOwner, skipped here.
			continue
		}
		out = append(out, model.ConnectedMemory{
			Memory:        m,
			RelationKinds: h.kinds,
			Depth:         h.depth,
		})
	}
	return out
}

func (g *GraphRelationships) Path(ctx context.Context, ownerID, fromID, toID string, maxHops int) [][]string {
	if maxHops <= 0 {
		maxHops = 3
	}
	edges, ok := g.ownerEdges(ctx, ownerID)
	if !ok || len(edges) == 0 {
		return nil
	}
	p := shortestPath(buildAdjacency(edges), fromID, toID, maxHops)
	if p == nil {
		return nil
	}
	return [][]string{p}
}

func (g *GraphRelationships) Edges(ctx context.Context, ownerID string) []model.MemoryRelation {
	edges, _ := g.ownerEdges(ctx, ownerID)
	return edges
}

func (g *GraphRelationships) EdgeCount(ctx context.Context, ownerID string) int {
	if g.degraded.Load() {
		return 0
	}
	tctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res, err := g.driver.ExecuteQuery(tctx, driver.CountOwnerEdgesQuery, map[string]interface{}{
		"owner_id": ownerID,
	})
	if err != nil {
		g.markDegraded("count edges", err)
		return 0
	}
	for _, rec := range res.Records {
		if v, found := rec.Get("edges"); found {
			if n, isInt := v.(int64); isInt {
				return int(n)
			}
		}
	}
	return 0
}

// RebuildForOwner wipes and recomputes the owner's derived edges from the
// canonical store. Safe to re-run; used after bulk import or missed writes.
func (g *GraphRelationships) RebuildForOwner(ctx context.Context, ownerID string) int {
	if _, ok := g.run(ctx, "wipe edges", driver.DeleteOwnerEdgesQuery, map[string]interface{}{
		"owner_id": ownerID,
	}); !ok {
		return 0
	}

	memories := g.store.AllForOwner(ctx, ownerID)
	for i := range memories {
		if !g.mirror(ctx, &memories[i]) {
			return 0
		}
	}

	written := 0
	for i := range memories {
		for j := i + 1; j < len(memories); j++ {
			for _, rel := range Detect(&memories[i], &memories[j], g.cfg) {
				if _, ok := g.run(ctx, "merge edge", driver.MergeRelatesToEdgeQuery, map[string]interface{}{
					"from_id":  rel.FromID,
					"to_id":    rel.ToID,
					"kind":     string(rel.Kind),
					"strength": rel.Strength,
				}); !ok {
					return written
				}
				written++
			}
		}
	}
	return written
}
