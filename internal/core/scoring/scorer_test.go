package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
)

func TestSmallTalkScoresBelowThreshold(t *testing.T) {
	s := NewDefaultScorer()
	r := s.Score("ok thanks", "you're welcome", nil)

	assert.False(t, s.Significant(r))
	assert.Equal(t, model.TypeDailyEvent, r.Type)
	assert.Empty(t, r.Themes)
}

func TestEmotionalExchangeClearsThreshold(t *testing.T) {
	s := NewDefaultScorer()
	r := s.Score(
		"I'm terrified I'll lose my family",
		"I understand your fear",
		&model.EmotionalSignal{OverallIntensity: 0.8},
	)

	assert.True(t, s.Significant(r))
	assert.Equal(t, model.TypeEmotionalMoment, r.Type)
	assert.Contains(t, r.Themes, "mortality")
	assert.Contains(t, r.Themes, "relationship")
}

func TestSignalIsOptional(t *testing.T) {
	s := NewDefaultScorer()
	with := s.Score("my dream is to study the ocean", "tell me more", &model.EmotionalSignal{OverallIntensity: 0.5})
	without := s.Score("my dream is to study the ocean", "tell me more", nil)

	assert.Greater(t, with.Score, without.Score)
	assert.Equal(t, without.Themes, with.Themes)
}

func TestKeywordHitsAreCapped(t *testing.T) {
	s := NewDefaultScorer()
	r := s.Score(
		"family friend love mother father partner marriage death dying grief",
		"", nil)

	assert.LessOrEqual(t, r.Score, s.Base+float64(s.MaxKeywordHits)*s.KeywordWeight+0.0001)
}

func TestClassifyPrecedence(t *testing.T) {
	s := NewDefaultScorer()
	// Emotional wording outranks goal wording when both appear.
	r := s.Score("I felt so proud, now I want to do more", "", nil)
	assert.Equal(t, model.TypeEmotionalMoment, r.Type)

	r = s.Score("I learned how currents work", "", nil)
	assert.Equal(t, model.TypeLearning, r.Type)

	r = s.Score("I plan to move to the coast", "", nil)
	assert.Equal(t, model.TypeGoal, r.Type)
}

func TestScoreIsClamped(t *testing.T) {
	s := NewDefaultScorer()
	s.Base = 0.9
	r := s.Score("family death dream identity", "", &model.EmotionalSignal{OverallIntensity: 1})
	assert.LessOrEqual(t, r.Score, 1.0)
}
