// Package scoring decides whether a conversational exchange is worth
// remembering and what kind of memory it forms. The keyword tables and
// weights are a starting configuration meant to be tuned, so they live on a
// swappable Scorer value rather than inline in the integrator.
package scoring

import (
	"strings"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
)

// Result is one scored exchange.
type Result struct {
	Score   float64
	Type    model.MemoryType
	Themes  []string
	Matches []string
}

// Scorer holds the significance keywords (grouped by theme so matches double
// as memory themes) and a disjoint type-classification table.
type Scorer struct {
	Base           float64
	SignalWeight   float64
	KeywordWeight  float64
	MaxKeywordHits int
	Threshold      float64

	SignificanceKeywords map[string][]string
	TypeKeywords         map[model.MemoryType][]string
}

// NewDefaultScorer returns the shipped configuration.
func NewDefaultScorer() *Scorer {
	return &Scorer{
		Base:           0.3,
		SignalWeight:   0.3,
		KeywordWeight:  0.1,
		MaxKeywordHits: 4,
		Threshold:      0.4,
		SignificanceKeywords: map[string][]string{
			"relationship": {"family", "friend", "love", "mother", "father", "partner", "marriage"},
			"identity":     {"who i am", "identity", "believe", "my purpose", "i realized", "changed me"},
			"mortality":    {"death", "dying", "lose", "losing", "afraid", "terrified", "grief"},
			"aspiration":   {"dream", "hope", "goal", "ambition", "someday", "future", "wish"},
		},
		TypeKeywords: map[model.MemoryType][]string{
			model.TypeEmotionalMoment: {"feel", "felt", "emotional", "cried", "heart", "fear", "joy"},
			model.TypeLearning:        {"learned", "discovered", "understood", "taught", "insight"},
			model.TypeGoal:            {"want to", "plan to", "going to", "aim", "aspire", "intend"},
		},
	}
}

// Score evaluates one exchange. The emotional signal is optional.
func (s *Scorer) Score(userText, characterText string, signal *model.EmotionalSignal) Result {
	combined := strings.ToLower(userText + " " + characterText)

	score := s.Base
	if signal != nil {
		score += model.ClampWeight(signal.OverallIntensity) * s.SignalWeight
	}

	var (
		matches []string
		themes  []string
		seen    = map[string]bool{}
	)
	for theme, words := range s.SignificanceKeywords {
		themed := false
		for _, w := range words {
			if strings.Contains(combined, w) {
				matches = append(matches, w)
				themed = true
			}
		}
		if themed && !seen[theme] {
			seen[theme] = true
			themes = append(themes, theme)
		}
	}

	hits := len(matches)
	if hits > s.MaxKeywordHits {
		hits = s.MaxKeywordHits
	}
	score += float64(hits) * s.KeywordWeight

	return Result{
		Score:   model.ClampWeight(score),
		Type:    s.classify(combined),
		Themes:  model.NormalizeThemes(themes),
		Matches: matches,
	}
}

// Significant reports whether a result clears the storage threshold.
func (s *Scorer) Significant(r Result) bool {
	return r.Score >= s.Threshold
}

func (s *Scorer) classify(combined string) model.MemoryType {
	// First matching category wins, in a fixed precedence order.
	for _, t := range []model.MemoryType{model.TypeEmotionalMoment, model.TypeLearning, model.TypeGoal} {
		for _, w := range s.TypeKeywords[t] {
			if strings.Contains(combined, w) {
				return t
			}
		}
	}
	return model.TypeDailyEvent
}
