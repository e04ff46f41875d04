package model

import "time"

// CharacterProfile is the slice of a character definition the memory engine
// consumes. Parsing and validation of full character files happens upstream.
type CharacterProfile struct {
	OwnerID    string            `json:"owner_id"`
	Name       string            `json:"name"`
	Occupation string            `json:"occupation,omitempty"`
	Biography  map[string]string `json:"biography,omitempty"` // section name -> text
}

// EmotionalSignal is the optional per-exchange signal supplied by the
// external emotion analyzer. Absence never degrades other functionality.
type EmotionalSignal struct {
	Emotions         map[string]float64 `json:"emotions,omitempty"`
	OverallIntensity float64            `json:"overall_intensity"`
}

// Statistics is the aggregate view of one owner's store. Empty stores yield
// the zero value rather than an error.
type Statistics struct {
	Total        int                `json:"total"`
	ByType       map[MemoryType]int `json:"by_type"`
	AvgWeight    float64            `json:"avg_weight"`
	MostRecalled *Memory            `json:"most_recalled,omitempty"`
}

// ThemeCount is one entry of a theme histogram.
type ThemeCount struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// NetworkReport is the read-only analytics summary of an owner's memory
// network. With the graph capability degraded, edge-derived fields are zeroed
// and Complexity is "unknown".
type NetworkReport struct {
	OwnerID         string       `json:"owner_id"`
	TotalMemories   int          `json:"total_memories"`
	TotalEdges      int          `json:"total_edges"`
	Density         float64      `json:"density"`
	Complexity      string       `json:"complexity_label"`
	ComponentCount  int          `json:"component_count"`
	TopThemes       []ThemeCount `json:"top_themes"`
	AvgEmotionalWgt float64      `json:"avg_emotional_weight"`
}

// RelationKind labels a derived edge between two memories.
type RelationKind string

const (
	RelationTemporal  RelationKind = "temporal"
	RelationThematic  RelationKind = "thematic"
	RelationEmotional RelationKind = "emotional"
	RelationCausal    RelationKind = "causal"
)

// MemoryRelation is one derived edge between two memories of the same owner.
type MemoryRelation struct {
	FromID   string       `json:"from_id"`
	ToID     string       `json:"to_id"`
	Kind     RelationKind `json:"kind"`
	Strength float64      `json:"strength"`
}

// ConnectedMemory is one traversal result: a memory reachable from the
// origin, the hop distance, and the relation kinds seen on the way in.
type ConnectedMemory struct {
	Memory        Memory         `json:"memory"`
	RelationKinds []RelationKind `json:"relation_kinds"`
	Depth         int            `json:"depth"`
}

// ConversationContext is the structured payload handed to the conversation
// handler on every turn. It is always well-formed; failures inside the
// engine collapse to the empty/"basic" shape.
type ConversationContext struct {
	OwnerID          string            `json:"owner_id"`
	Memories         []Memory          `json:"memories"`
	FormattedText    string            `json:"formatted_text"`
	MemoryCount      int               `json:"memory_count"`
	TotalMemories    int               `json:"total_memories"`
	AvgWeight        float64           `json:"avg_emotional_weight"`
	DominantThemes   []string          `json:"dominant_themes"`
	DevelopmentLevel string            `json:"development_level"`
	Connections      []ConnectedMemory `json:"connections,omitempty"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// EmptyContext is the safe default returned when context assembly fails.
func EmptyContext(ownerID string) ConversationContext {
	return ConversationContext{
		OwnerID:          ownerID,
		Memories:         []Memory{},
		DominantThemes:   []string{},
		DevelopmentLevel: DevelopmentBasic,
		GeneratedAt:      time.Now().UTC(),
	}
}

// Development levels summarize how much history a character has accumulated.
const (
	DevelopmentBasic        = "basic"
	DevelopmentDeveloping   = "developing"
	DevelopmentIntermediate = "intermediate"
	DevelopmentAdvanced     = "advanced"
)

// DevelopmentLevel applies the fixed thresholds on memory count and average
// emotional weight.
func DevelopmentLevel(total int, avgWeight float64) string {
	switch {
	case total >= 50 && avgWeight >= 0.6:
		return DevelopmentAdvanced
	case total >= 20 && avgWeight >= 0.4:
		return DevelopmentIntermediate
	case total >= 5:
		return DevelopmentDeveloping
	default:
		return DevelopmentBasic
	}
}
