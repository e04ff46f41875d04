package model

import (
	"sort"
	"strings"
	"time"
)

// MemoryType categorizes a personal memory. The set is closed; unknown
// strings are rejected at the store boundary.
type MemoryType string

const (
	TypeChildhood       MemoryType = "childhood"
	TypeEducation       MemoryType = "education"
	TypeCareer          MemoryType = "career"
	TypeRelationship    MemoryType = "relationship"
	TypeAchievement     MemoryType = "achievement"
	TypeTrauma          MemoryType = "trauma"
	TypeLearning        MemoryType = "learning"
	TypeGoal            MemoryType = "goal"
	TypeReflection      MemoryType = "reflection"
	TypeDailyEvent      MemoryType = "daily_event"
	TypeEmotionalMoment MemoryType = "emotional_moment"
)

var validTypes = map[MemoryType]bool{
	TypeChildhood:       true,
	TypeEducation:       true,
	TypeCareer:          true,
	TypeRelationship:    true,
	TypeAchievement:     true,
	TypeTrauma:          true,
	TypeLearning:        true,
	TypeGoal:            true,
	TypeReflection:      true,
	TypeDailyEvent:      true,
	TypeEmotionalMoment: true,
}

func (t MemoryType) Valid() bool {
	return validTypes[t]
}

// ParseMemoryType returns the typed value for s, or TypeDailyEvent when s is
// not a known category.
func ParseMemoryType(s string) MemoryType {
	t := MemoryType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return TypeDailyEvent
}

// FormativeImpact is the qualitative significance label, derived from the
// emotional weight once at creation and stored explicitly.
type FormativeImpact string

const (
	ImpactLow    FormativeImpact = "low"
	ImpactMedium FormativeImpact = "medium"
	ImpactHigh   FormativeImpact = "high"
)

// ImpactForWeight maps an emotional weight onto its impact label.
func ImpactForWeight(w float64) FormativeImpact {
	switch {
	case w >= 0.8:
		return ImpactHigh
	case w >= 0.5:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// Memory is a single personal memory owned by one character. Memories are
// append-only: after creation only LastRecalledAt and RecallCount change.
type Memory struct {
	ID              string            `json:"id"`
	OwnerID         string            `json:"owner_id"`
	Content         string            `json:"content"`
	Type            MemoryType        `json:"memory_type"`
	EmotionalWeight float64           `json:"emotional_weight"`
	Impact          FormativeImpact   `json:"formative_impact"`
	Themes          []string          `json:"themes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	LastRecalledAt  *time.Time        `json:"last_recalled_at,omitempty"`
	RecallCount     int               `json:"recall_count"`
	AgeWhenFormed   *int              `json:"age_when_formed,omitempty"`
	Location        string            `json:"location,omitempty"`
	RelatedEntities []string          `json:"related_entities,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// ClampWeight bounds an emotional weight to [0, 1].
func ClampWeight(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// NormalizeThemes lower-cases, trims, deduplicates and sorts a theme list so
// downstream ranking is deterministic regardless of input order.
func NormalizeThemes(themes []string) []string {
	seen := make(map[string]bool, len(themes))
	out := make([]string, 0, len(themes))
	for _, th := range themes {
		th = strings.ToLower(strings.TrimSpace(th))
		if th == "" || seen[th] {
			continue
		}
		seen[th] = true
		out = append(out, th)
	}
	sort.Strings(out)
	return out
}

// HasTheme reports whether any stored theme contains the given tag as a
// substring (tag matching is deliberately loose, mirroring recall queries).
func (m *Memory) HasTheme(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, th := range m.Themes {
		if strings.Contains(th, tag) {
			return true
		}
	}
	return false
}

// MemoryCluster is a derived aggregate of memories sharing a theme. Clusters
// are synthesized on demand and read-mostly.
type MemoryCluster struct {
	ID                    string    `json:"id"`
	OwnerID               string    `json:"owner_id"`
	Theme                 string    `json:"theme"`
	MemberIDs             []string  `json:"member_ids"`
	Summary               string    `json:"summary"`
	EmotionalSignificance float64   `json:"emotional_significance"`
	TimePeriod            string    `json:"time_period"`
	CreatedAt             time.Time `json:"created_at"`
}
