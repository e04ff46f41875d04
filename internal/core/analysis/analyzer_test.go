package analysis

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/graph"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/store"
)

// fixedRelationships serves a canned edge set for analyzer tests.
type fixedRelationships struct {
	graph.Relationships // panics if an unstubbed method is hit
	edges               []model.MemoryRelation
	available           bool
}

func (f *fixedRelationships) Available() bool { return f.available }
func (f *fixedRelationships) Edges(ctx context.Context, ownerID string) []model.MemoryRelation {
	return f.edges
}
func (f *fixedRelationships) EdgeCount(ctx context.Context, ownerID string) int {
	return len(f.edges)
}

func newAnalyzerFixture(t *testing.T, rels graph.Relationships) (*Analyzer, store.Store) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "analysis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewAnalyzer(s, rels), s
}

func seed(t *testing.T, s store.Store, n int, themes ...string) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		m := &model.Memory{
			ID:              uuid.New().String(),
			OwnerID:         "elena",
			Content:         "analysis seed",
			Type:            model.TypeDailyEvent,
			EmotionalWeight: 0.5,
			Themes:          themes,
			CreatedAt:       time.Now().UTC(),
		}
		require.True(t, s.Save(context.Background(), m))
		ids = append(ids, m.ID)
	}
	return ids
}

func TestAnalyzeDegradedGraph(t *testing.T) {
	a, s := newAnalyzerFixture(t, &fixedRelationships{available: false})
	seed(t, s, 3, "research")

	r := a.Analyze(context.Background(), "elena")
	assert.Equal(t, 3, r.TotalMemories)
	assert.Equal(t, 0, r.TotalEdges)
	assert.Equal(t, 0.0, r.Density)
	assert.Equal(t, ComplexityUnknown, r.Complexity)
	require.NotEmpty(t, r.TopThemes)
	assert.Equal(t, "research", r.TopThemes[0].Theme)
}

func TestAnalyzeDensityAndComplexity(t *testing.T) {
	rels := &fixedRelationships{available: true}
	a, s := newAnalyzerFixture(t, rels)

	ids := seed(t, s, 6, "ocean")
	rels.edges = []model.MemoryRelation{
		{FromID: ids[0], ToID: ids[1], Kind: model.RelationThematic},
		{FromID: ids[1], ToID: ids[2], Kind: model.RelationThematic},
		{FromID: ids[3], ToID: ids[4], Kind: model.RelationTemporal},
	}

	r := a.Analyze(context.Background(), "elena")
	assert.Equal(t, 6, r.TotalMemories)
	assert.Equal(t, 3, r.TotalEdges)
	// 3 edges over C(6,2)=15 possible.
	assert.InDelta(t, 0.2, r.Density, 0.0001)
	assert.Equal(t, ComplexityModerate, r.Complexity)
	assert.Equal(t, 2, r.ComponentCount)
}

func TestAnalyzeEmptyOwner(t *testing.T) {
	a, _ := newAnalyzerFixture(t, &fixedRelationships{available: true})

	r := a.Analyze(context.Background(), "nobody")
	assert.Equal(t, 0, r.TotalMemories)
	assert.Equal(t, 0.0, r.Density)
	assert.Equal(t, ComplexitySparse, r.Complexity)
	assert.Empty(t, r.TopThemes)
}

func TestComplexityLabelSteps(t *testing.T) {
	assert.Equal(t, ComplexitySparse, complexityLabel(2, 0.9))
	assert.Equal(t, ComplexityLow, complexityLabel(10, 0.05))
	assert.Equal(t, ComplexityModerate, complexityLabel(10, 0.2))
	assert.Equal(t, ComplexityHigh, complexityLabel(10, 0.5))
}

func TestComponentCount(t *testing.T) {
	assert.Equal(t, 0, componentCount(nil))
	assert.Equal(t, 1, componentCount([]model.MemoryRelation{
		{FromID: "a", ToID: "b"}, {FromID: "b", ToID: "c"},
	}))
	assert.Equal(t, 2, componentCount([]model.MemoryRelation{
		{FromID: "a", ToID: "b"}, {FromID: "c", ToID: "d"},
	}))
}
