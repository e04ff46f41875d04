// Package graph maintains the relationship index over a character's
// memories: typed edges derived at write time, bounded traversal at read
// time. The capability is optional; when the graph backend is missing or
// unhealthy every operation degrades to store-only behavior.
package graph

import (
	"math"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
)

// Config tunes the edge detectors. The exact values are configuration, not
// contract; defaults follow the shipped config file.
type Config struct {
	// TemporalWindowDays is the maximum creation-time gap for a temporal edge.
	TemporalWindowDays int `toml:"temporal_window_days"`
	// EmotionalDelta is the maximum weight difference for an emotional edge.
	EmotionalDelta float64 `toml:"emotional_delta"`
}

func DefaultConfig() Config {
	return Config{
		TemporalWindowDays: 30,
		EmotionalDelta:     0.2,
	}
}

// causedByKey in a memory's metadata names the memory id it was caused by.
// Writers (reflection, exchange evaluation) set it when they know the trigger.
const causedByKey = "caused_by"

// Detect computes every qualifying edge between two memories of the same
// owner. A pair may carry several edge kinds at once.
func Detect(a, b *model.Memory, cfg Config) []model.MemoryRelation {
	if a == nil || b == nil || a.ID == b.ID || a.OwnerID != b.OwnerID {
		return nil
	}

	var out []model.MemoryRelation
	shared := sharedThemes(a, b)

	if len(shared) > 0 {
		union := len(a.Themes) + len(b.Themes) - len(shared)
		if union > 0 {
			out = append(out, model.MemoryRelation{
				FromID:   a.ID,
				ToID:     b.ID,
				Kind:     model.RelationThematic,
				Strength: float64(len(shared)) / float64(union),
			})
		}
	}

	if cfg.TemporalWindowDays > 0 {
		window := float64(cfg.TemporalWindowDays) * 24
		gap := math.Abs(a.CreatedAt.Sub(b.CreatedAt).Hours())
		if gap <= window {
			out = append(out, model.MemoryRelation{
				FromID:   a.ID,
				ToID:     b.ID,
				Kind:     model.RelationTemporal,
				Strength: 1 - gap/window,
			})
		}
	}

	// Emotional similarity alone links everything trivial to everything
	// trivial; require at least one shared theme as well.
	delta := math.Abs(a.EmotionalWeight - b.EmotionalWeight)
	if delta <= cfg.EmotionalDelta && len(shared) > 0 {
		out = append(out, model.MemoryRelation{
			FromID:   a.ID,
			ToID:     b.ID,
			Kind:     model.RelationEmotional,
			Strength: 1 - delta,
		})
	}

	if causallyLinked(a, b) {
		out = append(out, model.MemoryRelation{
			FromID:   a.ID,
			ToID:     b.ID,
			Kind:     model.RelationCausal,
			Strength: 1,
		})
	}

	return out
}

// DetectAll pairs a new memory against the owner's existing set.
func DetectAll(fresh *model.Memory, existing []model.Memory, cfg Config) []model.MemoryRelation {
	var out []model.MemoryRelation
	for i := range existing {
		out = append(out, Detect(fresh, &existing[i], cfg)...)
	}
	return out
}

func sharedThemes(a, b *model.Memory) []string {
	set := make(map[string]bool, len(a.Themes))
	for _, th := range a.Themes {
		set[th] = true
	}
	var shared []string
	for _, th := range b.Themes {
		if set[th] {
			shared = append(shared, th)
		}
	}
	return shared
}

func causallyLinked(a, b *model.Memory) bool {
	return a.Metadata[causedByKey] == b.ID || b.Metadata[causedByKey] == a.ID
}
