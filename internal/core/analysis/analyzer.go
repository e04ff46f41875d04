// Package analysis computes read-only network analytics over one owner's
// memory graph. It never writes and never fails: with the graph capability
// degraded it reports store-only figures with an "unknown" complexity label.
package analysis

import (
	"context"
	"sort"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/graph"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/store"
)

// Complexity labels, a monotonic step function of density and size. The cut
// points are reporting cosmetics, not a contract.
const (
	ComplexityUnknown  = "unknown"
	ComplexitySparse   = "sparse"
	ComplexityLow      = "low"
	ComplexityModerate = "moderate"
	ComplexityHigh     = "high"
)

type Analyzer struct {
	store store.Store
	rels  graph.Relationships
}

func NewAnalyzer(s store.Store, r graph.Relationships) *Analyzer {
	return &Analyzer{store: s, rels: r}
}

// Analyze summarizes one owner's memory network.
func (a *Analyzer) Analyze(ctx context.Context, ownerID string) model.NetworkReport {
	stats := a.store.Statistics(ctx, ownerID)
	report := model.NetworkReport{
		OwnerID:         ownerID,
		TotalMemories:   stats.Total,
		AvgEmotionalWgt: stats.AvgWeight,
		TopThemes:       topThemes(a.store.AllForOwner(ctx, ownerID), 3),
		Complexity:      ComplexityUnknown,
	}

	if !a.rels.Available() {
		return report
	}

	edges := a.rels.Edges(ctx, ownerID)
	report.TotalEdges = len(edges)
	report.ComponentCount = componentCount(edges)

	possible := stats.Total * (stats.Total - 1) / 2
	if possible < 1 {
		possible = 1
	}
	report.Density = float64(report.TotalEdges) / float64(possible)
	if report.Density > 1 {
		report.Density = 1
	}
	report.Complexity = complexityLabel(stats.Total, report.Density)
	return report
}

func complexityLabel(total int, density float64) string {
	switch {
	case total < 5:
		return ComplexitySparse
	case density < 0.1:
		return ComplexityLow
	case density < 0.3:
		return ComplexityModerate
	default:
		return ComplexityHigh
	}
}

func topThemes(memories []model.Memory, n int) []model.ThemeCount {
	counts := make(map[string]int)
	for _, m := range memories {
		for _, th := range m.Themes {
			counts[th]++
		}
	}

	out := make([]model.ThemeCount, 0, len(counts))
	for th, c := range counts {
		out = append(out, model.ThemeCount{Theme: th, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Theme < out[j].Theme
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
