package graph

import (
	"sort"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
)

// Traversal runs in memory over the owner's fetched edge set. Edge sets per
// character are small; pulling them once and walking locally keeps the
// traversal depth- and result-bounded no matter what the server holds.

type adjacency map[string][]model.MemoryRelation

func buildAdjacency(edges []model.MemoryRelation) adjacency {
	adj := make(adjacency)
	for _, e := range edges {
		adj[e.FromID] = append(adj[e.FromID], e)
		// Derived relations are symmetric; traverse them undirected.
		adj[e.ToID] = append(adj[e.ToID], model.MemoryRelation{
			FromID: e.ToID, ToID: e.FromID, Kind: e.Kind, Strength: e.Strength,
		})
	}
	return adj
}

type hit struct {
	id    string
	depth int
	kinds []model.RelationKind
}

// bfsFrom walks outward from origin up to maxDepth hops, excluding the
// origin, deduplicating by id with the nearest depth winning, capped at
// limit. Relation kinds are those observed on the first discovered edge set
// into the node.
func bfsFrom(adj adjacency, origin string, maxDepth, limit int) []hit {
	if maxDepth <= 0 || limit <= 0 {
		return nil
	}

	visited := map[string]bool{origin: true}
	var hits []hit
	frontier := []string{origin}

	for depth := 1; depth <= maxDepth && len(frontier) > 0 && len(hits) < limit; depth++ {
		var next []string
		found := make(map[string]map[model.RelationKind]bool)

		for _, id := range frontier {
			for _, e := range adj[id] {
				if visited[e.ToID] {
					continue
				}
				if found[e.ToID] == nil {
					found[e.ToID] = make(map[model.RelationKind]bool)
					next = append(next, e.ToID)
				}
				found[e.ToID][e.Kind] = true
			}
		}

		// Deterministic order within a depth level.
		sort.Strings(next)
		for _, id := range next {
			visited[id] = true
			if len(hits) >= limit {
				break
			}
			kinds := make([]model.RelationKind, 0, len(found[id]))
			for k := range found[id] {
				kinds = append(kinds, k)
			}
			sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
			hits = append(hits, hit{id: id, depth: depth, kinds: kinds})
		}
		frontier = next
	}

	return hits
}

// shortestPath returns the node ids of one shortest path from from to to,
// inclusive of both endpoints, or nil when none exists within maxHops.
func shortestPath(adj adjacency, from, to string, maxHops int) []string {
	if maxHops <= 0 || from == to {
		return nil
	}

	parent := map[string]string{from: from}
	frontier := []string{from}

	for hops := 1; hops <= maxHops && len(frontier) > 0; hops++ {
		var next []string
		for _, id := range frontier {
			edges := adj[id]
			for _, e := range edges {
				if _, seen := parent[e.ToID]; seen {
					continue
				}
				parent[e.ToID] = id
				if e.ToID == to {
					return rebuildPath(parent, from, to)
				}
				next = append(next, e.ToID)
			}
		}
		sort.Strings(next)
		frontier = next
	}
	return nil
}

func rebuildPath(parent map[string]string, from, to string) []string {
	var rev []string
	for cur := to; ; cur = parent[cur] {
		rev = append(rev, cur)
		if cur == from {
			break
		}
	}
	path := make([]string, len(rev))
	for i, id := range rev {
		path[len(rev)-1-i] = id
	}
	return path
}
