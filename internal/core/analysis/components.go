package analysis

import "github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"

// componentCount counts connected components among memories that hold at
// least one edge. Isolated memories are not components; a fully disconnected
// network reports 0.
func componentCount(edges []model.MemoryRelation) int {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.FromID] = append(adj[e.FromID], e.ToID)
		adj[e.ToID] = append(adj[e.ToID], e.FromID)
	}

	visited := make(map[string]bool, len(adj))
	count := 0
	for id := range adj {
		if visited[id] {
			continue
		}
		count++
		stack := []string{id}
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[u] {
				continue
			}
			visited[u] = true
			stack = append(stack, adj[u]...)
		}
	}
	return count
}
