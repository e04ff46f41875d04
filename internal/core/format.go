package core

import (
	"strings"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
)

// promptOrder renders formative categories before recent ones so the most
// identity-defining material lands earliest in the prompt.
var promptOrder = []model.MemoryType{
	model.TypeChildhood,
	model.TypeEducation,
	model.TypeCareer,
	model.TypeTrauma,
	model.TypeRelationship,
	model.TypeAchievement,
	model.TypeEmotionalMoment,
	model.TypeLearning,
	model.TypeGoal,
	model.TypeDailyEvent,
	model.TypeReflection,
}

var promptHeadings = map[model.MemoryType]string{
	model.TypeChildhood:       "Childhood",
	model.TypeEducation:       "Education",
	model.TypeCareer:          "Career",
	model.TypeTrauma:          "Difficult experiences",
	model.TypeRelationship:    "Relationships",
	model.TypeAchievement:     "Achievements",
	model.TypeEmotionalMoment: "Emotional moments",
	model.TypeLearning:        "Things learned",
	model.TypeGoal:            "Goals",
	model.TypeDailyEvent:      "Recent events",
	model.TypeReflection:      "Reflections",
}

// FormatForPrompt renders memories as the text block injected into the
// character's prompt: grouped by type, each entry truncated to a bounded
// preview. Empty input renders nothing.
func (it *Integrator) FormatForPrompt(memories []model.Memory) string {
	if len(memories) == 0 {
		return ""
	}

	groups := make(map[model.MemoryType][]model.Memory, len(memories))
	for _, m := range memories {
		groups[m.Type] = append(groups[m.Type], m)
	}

	var b strings.Builder
	b.WriteString("Personal memories that shape who I am:\n")
	for _, t := range promptOrder {
		ms := groups[t]
		if len(ms) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(promptHeadings[t])
		b.WriteString(":\n")
		for _, m := range ms {
			b.WriteString("- ")
			b.WriteString(truncate(m.Content, it.cfg.PreviewRunes))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
