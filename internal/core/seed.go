package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
)

// seedCategory maps one biographical angle onto a formative seed memory.
type seedCategory struct {
	memType  model.MemoryType
	weight   float64
	themes   []string
	keywords []string
	render   func(name, text string) string
}

var seedCategories = []seedCategory{
	{
		memType:  model.TypeChildhood,
		weight:   0.8,
		themes:   []string{"childhood", "origins"},
		keywords: []string{"grew up", "childhood", "born", "as a child", "young"},
		render: func(name, text string) string {
			return fmt.Sprintf("Growing up shaped me deeply: %s", text)
		},
	},
	{
		memType:  model.TypeEducation,
		weight:   0.7,
		themes:   []string{"education", "learning"},
		keywords: []string{"studied", "university", "school", "degree", "phd", "learned"},
		render: func(name, text string) string {
			return fmt.Sprintf("My education defined how I think: %s", text)
		},
	},
	{
		memType:  model.TypeCareer,
		weight:   0.7,
		themes:   []string{"career", "work"},
		keywords: []string{"work", "career", "job", "profession", "research"},
		render: func(name, text string) string {
			return fmt.Sprintf("My work became part of who I am: %s", text)
		},
	},
}

func (it *Integrator) seedLockFor(ownerID string) *sync.Mutex {
	it.seedMu.Lock()
	defer it.seedMu.Unlock()
	mu, ok := it.seedLocks[ownerID]
	if !ok {
		mu = &sync.Mutex{}
		it.seedLocks[ownerID] = mu
	}
	return mu
}

// SeedBackground bootstraps a character's formative memories from their
// biographical profile. Idempotent: an owner with any stored memory is left
// alone, and concurrent first contacts for one owner serialize on a
// per-owner lock. Returns the number of memories seeded.
func (it *Integrator) SeedBackground(ctx context.Context, profile model.CharacterProfile) int {
	if profile.OwnerID == "" {
		return 0
	}

	mu := it.seedLockFor(profile.OwnerID)
	mu.Lock()
	defer mu.Unlock()

	if it.store.Statistics(ctx, profile.OwnerID).Total > 0 {
		return 0
	}

	seeded := 0
	for _, cat := range seedCategories {
		section, ok := matchBiography(profile.Biography, cat.keywords)
		if !ok {
			continue
		}
		m := &model.Memory{
			ID:              uuid.New().String(),
			OwnerID:         profile.OwnerID,
			Content:         cat.render(profile.Name, truncate(section, 240)),
			Type:            cat.memType,
			EmotionalWeight: cat.weight,
			Themes:          cat.themes,
			CreatedAt:       time.Now().UTC(),
			Metadata:        map[string]string{"source": "seed"},
		}
		if it.rels.StoreWithRelationships(ctx, m) {
			seeded++
		}
	}

	// Every character gets a core-identity anchor even when the biography
	// matched nothing else.
	identity := &model.Memory{
		ID:              uuid.New().String(),
		OwnerID:         profile.OwnerID,
		Content:         identityContent(profile),
		Type:            model.TypeReflection,
		EmotionalWeight: 0.9,
		Themes:          []string{"identity"},
		CreatedAt:       time.Now().UTC(),
		Metadata:        map[string]string{"source": "seed"},
	}
	if it.rels.StoreWithRelationships(ctx, identity) {
		seeded++
	}
	return seeded
}

func matchBiography(biography map[string]string, keywords []string) (string, bool) {
	for _, text := range biography {
		lower := strings.ToLower(text)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return text, true
			}
		}
	}
	return "", false
}

func identityContent(profile model.CharacterProfile) string {
	name := profile.Name
	if name == "" {
		name = profile.OwnerID
	}
	if profile.Occupation != "" {
		return fmt.Sprintf("I am %s, %s. That is the thread running through everything I remember.", name, profile.Occupation)
	}
	return fmt.Sprintf("I am %s. My memories are my own.", name)
}
