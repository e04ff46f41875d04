package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/analysis"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/graph"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/recall"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/scoring"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/store"
)

// Config tunes the integration layer. Zero values fall back to defaults.
type Config struct {
	// MaxContextMemories caps the memory block handed to a conversation turn.
	MaxContextMemories int `toml:"max_context_memories"`
	// PreviewRunes bounds each memory's rendered content length.
	PreviewRunes int `toml:"preview_runes"`
	// ReflectionWindowDays is the lookback for daily reflections.
	ReflectionWindowDays int `toml:"reflection_window_days"`
	// ReflectionWeight is the emotional weight given to synthesized
	// reflections; reflections are deliberately low-stakes.
	ReflectionWeight float64 `toml:"reflection_weight"`
	// ConnectionDepth and ConnectionLimit bound graph enrichment per turn.
	ConnectionDepth int `toml:"connection_depth"`
	ConnectionLimit int `toml:"connection_limit"`
}

func DefaultConfig() Config {
	return Config{
		MaxContextMemories:   5,
		PreviewRunes:         160,
		ReflectionWindowDays: 1,
		ReflectionWeight:     0.3,
		ConnectionDepth:      2,
		ConnectionLimit:      3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxContextMemories <= 0 {
		c.MaxContextMemories = d.MaxContextMemories
	}
	if c.PreviewRunes <= 0 {
		c.PreviewRunes = d.PreviewRunes
	}
	if c.ReflectionWindowDays <= 0 {
		c.ReflectionWindowDays = d.ReflectionWindowDays
	}
	if c.ReflectionWeight <= 0 {
		c.ReflectionWeight = d.ReflectionWeight
	}
	if c.ConnectionDepth <= 0 {
		c.ConnectionDepth = d.ConnectionDepth
	}
	if c.ConnectionLimit <= 0 {
		c.ConnectionLimit = d.ConnectionLimit
	}
	return c
}

// Integrator is the surface the conversation handler talks to. It composes
// recall, the relationship capability and network analytics, and is the one
// place where internal failures turn into safe defaults.
type Integrator struct {
	store    store.Store
	recall   *recall.Engine
	rels     graph.Relationships
	analyzer *analysis.Analyzer
	scorer   *scoring.Scorer
	cfg      Config

	seedMu    sync.Mutex
	seedLocks map[string]*sync.Mutex
}

func NewIntegrator(s store.Store, rels graph.Relationships, scorer *scoring.Scorer, cfg Config) *Integrator {
	if scorer == nil {
		scorer = scoring.NewDefaultScorer()
	}
	return &Integrator{
		store:     s,
		recall:    recall.NewEngine(s),
		rels:      rels,
		analyzer:  analysis.NewAnalyzer(s, rels),
		scorer:    scorer,
		cfg:       cfg.withDefaults(),
		seedLocks: make(map[string]*sync.Mutex),
	}
}

// ContextFor assembles the conversation-ready memory payload for one turn.
// It always returns a well-formed context; with nothing stored (or anything
// broken underneath) the caller gets the empty/"basic" shape.
func (it *Integrator) ContextFor(ctx context.Context, ownerID string, themes []string) model.ConversationContext {
	out := model.EmptyContext(ownerID)
	if ownerID == "" {
		return out
	}

	var candidates []model.Memory
	if len(themes) > 0 {
		candidates = it.recall.Recall(ctx, recall.Params{
			OwnerID: ownerID,
			Themes:  themes,
			Limit:   it.cfg.MaxContextMemories,
		})
	}
	candidates = append(candidates, it.recall.Formative(ctx, ownerID, 2)...)
	// The reflection slot goes to the newest reflection, not the heaviest,
	// so yesterday's synthesis shows up even next to a weighty anchor.
	candidates = append(candidates, it.recall.LatestByType(ctx, ownerID, model.TypeReflection, 1)...)

	seen := make(map[string]bool, len(candidates))
	for _, m := range candidates {
		if seen[m.ID] || len(out.Memories) >= it.cfg.MaxContextMemories {
			continue
		}
		seen[m.ID] = true
		out.Memories = append(out.Memories, m)
	}

	stats := it.store.Statistics(ctx, ownerID)
	out.MemoryCount = len(out.Memories)
	out.TotalMemories = stats.Total
	out.AvgWeight = stats.AvgWeight
	out.DominantThemes = dominantThemes(out.Memories, 3)
	out.DevelopmentLevel = model.DevelopmentLevel(stats.Total, stats.AvgWeight)
	out.FormattedText = it.FormatForPrompt(out.Memories)

	if it.rels.Available() && len(out.Memories) > 0 {
		out.Connections = it.rels.Connected(ctx, ownerID, out.Memories[0].ID,
			it.cfg.ConnectionDepth, it.cfg.ConnectionLimit)
	}
	return out
}

// EvaluateExchange scores one user/character exchange and, when it clears
// the significance threshold, stores it as a new memory (with relationship
// derivation). Below threshold nothing is written.
func (it *Integrator) EvaluateExchange(ctx context.Context, ownerID, userText, characterText string, signal *model.EmotionalSignal) (*model.Memory, bool) {
	if ownerID == "" || (userText == "" && characterText == "") {
		return nil, false
	}

	r := it.scorer.Score(userText, characterText, signal)
	if !it.scorer.Significant(r) {
		return nil, false
	}

	m := &model.Memory{
		ID:              uuid.New().String(),
		OwnerID:         ownerID,
		Content:         exchangeContent(userText, characterText, it.cfg.PreviewRunes),
		Type:            r.Type,
		EmotionalWeight: r.Score,
		Impact:          model.ImpactForWeight(r.Score),
		Themes:          r.Themes,
		CreatedAt:       time.Now().UTC(),
		Metadata:        map[string]string{"source": "conversation"},
	}
	if !it.rels.StoreWithRelationships(ctx, m) {
		return nil, false
	}
	return m, true
}

// Reflect synthesizes a low-weight reflection over the last day's memories.
// With nothing recent there is nothing to reflect on.
func (it *Integrator) Reflect(ctx context.Context, ownerID string, themes []string) (*model.Memory, bool) {
	recent := it.store.Recent(ctx, ownerID, it.cfg.ReflectionWindowDays, 20)
	if len(recent) == 0 {
		return nil, false
	}

	focus := mostFrequentTheme(recent)
	content := fmt.Sprintf("Reflecting on the day: %d moments stayed with me", len(recent))
	if focus != "" {
		content += fmt.Sprintf(", most of them about %s", focus)
	}

	if len(themes) == 0 {
		if focus != "" {
			themes = []string{focus, "reflection"}
		} else {
			themes = []string{"reflection"}
		}
	}

	m := &model.Memory{
		ID:              uuid.New().String(),
		OwnerID:         ownerID,
		Content:         content,
		Type:            model.TypeReflection,
		EmotionalWeight: it.cfg.ReflectionWeight,
		Themes:          themes,
		CreatedAt:       time.Now().UTC(),
		// The freshest memory triggered this reflection; the causal edge
		// follows from it.
		Metadata: map[string]string{"source": "reflection", "caused_by": recent[0].ID},
	}
	if !it.rels.StoreWithRelationships(ctx, m) {
		return nil, false
	}
	return m, true
}

// ClusterByTheme builds and persists a derived cluster over one theme.
func (it *Integrator) ClusterByTheme(ctx context.Context, ownerID, theme string) (*model.MemoryCluster, bool) {
	members := it.store.Query(ctx, store.QueryParams{
		OwnerID: ownerID,
		Themes:  []string{theme},
		Limit:   20,
	})
	if len(members) == 0 {
		return nil, false
	}

	var sum float64
	ids := make([]string, len(members))
	oldest := members[0].CreatedAt
	for i, m := range members {
		ids[i] = m.ID
		sum += m.EmotionalWeight
		if m.CreatedAt.Before(oldest) {
			oldest = m.CreatedAt
		}
	}

	period := "recent"
	if time.Since(oldest) > 365*24*time.Hour {
		period = "long-running"
	}

	c := &model.MemoryCluster{
		ID:                    uuid.New().String(),
		OwnerID:               ownerID,
		Theme:                 theme,
		MemberIDs:             ids,
		Summary:               fmt.Sprintf("%d memories centered on %s, anchored by %q", len(members), theme, truncate(members[0].Content, it.cfg.PreviewRunes)),
		EmotionalSignificance: sum / float64(len(members)),
		TimePeriod:            period,
		CreatedAt:             time.Now().UTC(),
	}
	if !it.store.SaveCluster(ctx, c) {
		return nil, false
	}
	return c, true
}

// Statistics exposes the store aggregate for observability.
func (it *Integrator) Statistics(ctx context.Context, ownerID string) model.Statistics {
	return it.store.Statistics(ctx, ownerID)
}

// Analyze exposes the network analytics for observability.
func (it *Integrator) Analyze(ctx context.Context, ownerID string) model.NetworkReport {
	return it.analyzer.Analyze(ctx, ownerID)
}

// CleanupRetention is the maintenance entry point for retention pruning.
func (it *Integrator) CleanupRetention(ctx context.Context, ownerID string, p store.RetentionPolicy) int {
	return it.store.CleanupRetention(ctx, ownerID, p)
}

// RebuildForOwner recomputes the owner's relationship edges from scratch.
func (it *Integrator) RebuildForOwner(ctx context.Context, ownerID string) int {
	return it.rels.RebuildForOwner(ctx, ownerID)
}

func dominantThemes(memories []model.Memory, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, m := range memories {
		for _, th := range m.Themes {
			if counts[th] == 0 {
				order = append(order, th)
			}
			counts[th]++
		}
	}
	// Stable ranking: count desc, first-seen order on ties.
	out := make([]string, len(order))
	copy(out, order)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && counts[out[j]] > counts[out[j-1]]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func mostFrequentTheme(memories []model.Memory) string {
	top := dominantThemes(memories, 1)
	if len(top) == 0 {
		return ""
	}
	return top[0]
}

func exchangeContent(userText, characterText string, limit int) string {
	switch {
	case characterText == "":
		return fmt.Sprintf("A conversation that stayed with me: %q", truncate(userText, limit))
	case userText == "":
		return fmt.Sprintf("Something I said that mattered: %q", truncate(characterText, limit))
	default:
		return fmt.Sprintf("A conversation that stayed with me: %q, and I answered %q",
			truncate(userText, limit), truncate(characterText, limit))
	}
}
