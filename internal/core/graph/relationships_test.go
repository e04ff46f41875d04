package graph

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/driver"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/store"
)

// fakeDriver records executed queries and serves canned edge results,
// optionally failing every call to exercise degraded mode.
type fakeDriver struct {
	mu       sync.Mutex
	executed []string
	edges    []edgeRecord
	err      error
}

func (f *fakeDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	f.mu.Lock()
	f.executed = append(f.executed, query)
	f.mu.Unlock()

	if f.err != nil {
		return neo4j.EagerResult{}, f.err
	}

	// Edge writes issued through the driver feed the canned edge set so
	// traversal tests observe what was stored.
	if query == driver.MergeRelatesToEdgeQuery {
		f.mu.Lock()
		f.edges = append(f.edges, edgeRecord{
			FromID:   params["from_id"].(string),
			ToID:     params["to_id"].(string),
			Kind:     params["kind"].(string),
			Strength: params["strength"].(float64),
		})
		f.mu.Unlock()
		return neo4j.EagerResult{}, nil
	}

	if query == driver.FetchOwnerEdgesQuery {
		keys := []string{"from_id", "to_id", "kind", "strength"}
		res := neo4j.EagerResult{Keys: keys}
		f.mu.Lock()
		for _, e := range f.edges {
			res.Records = append(res.Records, &neo4j.Record{
				Keys:   keys,
				Values: []interface{}{e.FromID, e.ToID, e.Kind, e.Strength},
			})
		}
		f.mu.Unlock()
		return res, nil
	}

	if query == driver.CountOwnerEdgesQuery {
		f.mu.Lock()
		n := int64(len(f.edges))
		f.mu.Unlock()
		return neo4j.EagerResult{
			Keys: []string{"edges"},
			Records: []*neo4j.Record{
				{Keys: []string{"edges"}, Values: []interface{}{n}},
			},
		}, nil
	}

	if query == driver.DeleteOwnerEdgesQuery {
		f.mu.Lock()
		f.edges = nil
		f.mu.Unlock()
	}

	return neo4j.EagerResult{}, nil
}

func (f *fakeDriver) BuildIndices(ctx context.Context) error { return nil }
func (f *fakeDriver) Close(ctx context.Context) error        { return nil }

func (f *fakeDriver) executedCount(query string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.executed {
		if q == query {
			n++
		}
	}
	return n
}

func newGraphFixture(t *testing.T) (*GraphRelationships, store.Store, *fakeDriver) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	fd := &fakeDriver{}
	g := NewGraphRelationships(s, fd, DefaultConfig(), time.Second)
	return g, s, fd
}

func graphMem(id string, themes ...string) *model.Memory {
	return &model.Memory{
		ID:              id,
		OwnerID:         "elena",
		Content:         "graph test " + id,
		Type:            model.TypeDailyEvent,
		EmotionalWeight: 0.5,
		Themes:          themes,
	}
}

func TestStoreWithRelationshipsCreatesThematicEdge(t *testing.T) {
	g, s, fd := newGraphFixture(t)
	ctx := context.Background()

	require.True(t, g.StoreWithRelationships(ctx, graphMem("m1", "research")))
	require.True(t, g.StoreWithRelationships(ctx, graphMem("m2", "research")))

	// Both memories reached the canonical store.
	_, ok := s.GetByID(ctx, "elena", "m1")
	assert.True(t, ok)
	_, ok = s.GetByID(ctx, "elena", "m2")
	assert.True(t, ok)

	// At least one thematic edge was written between the pair.
	found := false
	for _, e := range fd.edges {
		if e.Kind == string(model.RelationThematic) {
			found = true
		}
	}
	assert.True(t, found)

	conns := g.Connected(ctx, "elena", "m1", 1, 10)
	require.NotEmpty(t, conns)
	assert.Equal(t, "m2", conns[0].Memory.ID)
	assert.Contains(t, conns[0].RelationKinds, model.RelationThematic)
	assert.Equal(t, 1, conns[0].Depth)
}

func TestConnectedExcludesOriginAndBoundsDepth(t *testing.T) {
	g, _, _ := newGraphFixture(t)
	ctx := context.Background()

	// Chain m1-m2-m3 via distinct themes so no shortcut edges appear.
	require.True(t, g.StoreWithRelationships(ctx, graphMem("m1", "alpha")))
	require.True(t, g.StoreWithRelationships(ctx, graphMem("m2", "alpha", "beta")))
	require.True(t, g.StoreWithRelationships(ctx, graphMem("m3", "beta")))

	conns := g.Connected(ctx, "elena", "m1", 1, 10)
	for _, c := range conns {
		assert.NotEqual(t, "m1", c.Memory.ID)
		assert.LessOrEqual(t, c.Depth, 1)
	}
}

func TestPathBounded(t *testing.T) {
	g, _, _ := newGraphFixture(t)
	ctx := context.Background()

	base := time.Now().UTC()
	a := graphMem("a", "alpha")
	a.CreatedAt = base.AddDate(-2, 0, 0)
	b := graphMem("b", "alpha", "beta")
	b.CreatedAt = base.AddDate(-1, 0, 0)
	c := graphMem("c", "beta")
	c.CreatedAt = base

	for _, m := range []*model.Memory{a, b, c} {
		require.True(t, g.StoreWithRelationships(ctx, m))
	}

	paths := g.Path(ctx, "elena", "a", "c", 3)
	require.Len(t, paths, 1)
	assert.Equal(t, []string{"a", "b", "c"}, paths[0])

	assert.Empty(t, g.Path(ctx, "elena", "a", "c", 1))
	assert.Empty(t, g.Path(ctx, "elena", "a", "missing", 3))
}

func TestDegradedModeIsSticky(t *testing.T) {
	g, s, fd := newGraphFixture(t)
	ctx := context.Background()
	fd.err = errors.New("connection refused")

	// The store write survives the graph failure.
	assert.True(t, g.StoreWithRelationships(ctx, graphMem("m1", "research")))
	_, ok := s.GetByID(ctx, "elena", "m1")
	assert.True(t, ok)
	assert.False(t, g.Available())

	attempts := len(fd.executed)
	// Subsequent calls short-circuit without touching the driver.
	assert.True(t, g.StoreWithRelationships(ctx, graphMem("m2", "research")))
	assert.Empty(t, g.Connected(ctx, "elena", "m1", 2, 10))
	assert.Equal(t, 0, g.EdgeCount(ctx, "elena"))
	assert.Equal(t, attempts, len(fd.executed))
}

func TestRebuildForOwner(t *testing.T) {
	g, _, fd := newGraphFixture(t)
	ctx := context.Background()

	require.True(t, g.StoreWithRelationships(ctx, graphMem("m1", "research")))
	require.True(t, g.StoreWithRelationships(ctx, graphMem("m2", "research")))

	before := g.EdgeCount(ctx, "elena")
	require.Greater(t, before, 0)

	written := g.RebuildForOwner(ctx, "elena")
	assert.Equal(t, before, written)
	assert.Equal(t, before, g.EdgeCount(ctx, "elena"))
	assert.GreaterOrEqual(t, fd.executedCount(driver.DeleteOwnerEdgesQuery), 1)
}

func TestNoopRelationshipsWritesThrough(t *testing.T) {
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "noop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	n := NewNoopRelationships(s)
	ctx := context.Background()

	assert.True(t, n.StoreWithRelationships(ctx, graphMem("m1", "research")))
	_, ok := s.GetByID(ctx, "elena", "m1")
	assert.True(t, ok)

	assert.False(t, n.Available())
	assert.Empty(t, n.Connected(ctx, "elena", "m1", 2, 10))
	assert.Empty(t, n.Path(ctx, "elena", "m1", "m2", 3))
	assert.Equal(t, 0, n.EdgeCount(ctx, "elena"))
	assert.Equal(t, 0, n.RebuildForOwner(ctx, "elena"))
}

func TestStoreWithRelationshipsQueriesContainMergeVerbs(t *testing.T) {
	g, _, fd := newGraphFixture(t)
	require.True(t, g.StoreWithRelationships(context.Background(), graphMem("m1", "research")))

	joined := strings.Join(fd.executed, "\n")
	assert.Contains(t, joined, "MERGE (c:Character")
	assert.Contains(t, joined, "MERGE (m:Memory")
	assert.Contains(t, joined, "FORMED")
}
