package storage

import (
	"reflect"
	"testing"
	"time"

	"github.com/dmaslov/skillfit/internal/learning"
	"github.com/dmaslov/skillfit/internal/relationship"
	"github.com/dmaslov/skillfit/internal/skills"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSkillRoundTrip(t *testing.T) {
	db := openTestStore(t)

	skill := &skills.Skill{
		Name:                "Kubernetes",
		Category:            "Software Engineering",
		KnowledgeComponents: []string{"pods", "controllers"},
		Contexts:            []string{"cloud infrastructure"},
		Functions:           []string{"operate clusters"},
		ProficiencyLevel:    7,
		QualityScore:        75,
		Notes:               "reviewed",
		FeedbackAppliedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := db.SaveSkill(skill); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := db.LoadSkills()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := loaded.Get("Kubernetes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Category != skill.Category || got.ProficiencyLevel != 7 || got.QualityScore != 75 || got.Notes != "reviewed" {
		t.Fatalf("unexpected skill: %+v", got)
	}
	if !reflect.DeepEqual(got.KnowledgeComponents, skill.KnowledgeComponents) {
		t.Fatalf("knowledge = %v, want %v", got.KnowledgeComponents, skill.KnowledgeComponents)
	}
	if !got.FeedbackAppliedAt.Equal(skill.FeedbackAppliedAt) {
		t.Fatalf("feedback timestamp = %v, want %v", got.FeedbackAppliedAt, skill.FeedbackAppliedAt)
	}
}

func TestSaveSkillUpserts(t *testing.T) {
	db := openTestStore(t)

	skill := &skills.Skill{Name: "Go", Category: "Software Engineering"}
	if err := db.SaveSkill(skill); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	skill.Category = "Systems Programming"
	skill.KnowledgeComponents = []string{"goroutines"}
	if err := db.SaveSkill(skill); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := db.LoadSkills()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("expected 1 skill, got %d", loaded.Len())
	}

	got, _ := loaded.Get("Go")
	if got.Category != "Systems Programming" || len(got.KnowledgeComponents) != 1 {
		t.Fatalf("upsert did not replace: %+v", got)
	}
}

func TestRelationshipCache(t *testing.T) {
	db := openTestStore(t)

	entry := &relationship.Entry{
		SkillA:     "Go",
		SkillB:     "Kubernetes",
		Type:       relationship.Neighboring,
		Similarity: 0.6,
	}
	db.Put("Go", "Kubernetes", "hashA", "hashB", entry)

	got, ok := db.Get("Go", "Kubernetes", "hashA", "hashB")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got.Type != relationship.Neighboring || got.Similarity != 0.6 {
		t.Fatalf("unexpected entry: %+v", got)
	}

	// A changed enrichment hash invalidates the row.
	if _, ok := db.Get("Go", "Kubernetes", "hashA", "changed"); ok {
		t.Fatalf("stale row served from cache")
	}

	// Upsert on the same ordered pair.
	entry.Similarity = 0.9
	entry.Type = relationship.ExactMatch
	db.Put("Go", "Kubernetes", "hashA2", "hashB2", entry)

	count, err := db.CachedPairs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 cached pair, got %d", count)
	}

	got, ok = db.Get("Go", "Kubernetes", "hashA2", "hashB2")
	if !ok || got.Type != relationship.ExactMatch {
		t.Fatalf("unexpected entry after upsert: %+v", got)
	}
}

func TestFeedbackLog(t *testing.T) {
	db := openTestStore(t)

	entries := []learning.FeedbackEntry{
		{
			ID:          "one",
			SkillName:   "Go",
			Rating:      4,
			Notes:       "first pass",
			Corrections: map[string]any{"category": "Software Engineering"},
			Timestamp:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "two",
			SkillName: "Go",
			Rating:    5,
			Timestamp: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "three",
			SkillName: "Kubernetes",
			Timestamp: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, entry := range entries {
		if err := db.LogFeedback(entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	history, err := db.FeedbackHistory("Go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	// Newest first.
	if history[0].ID != "two" || history[1].ID != "one" {
		t.Fatalf("unexpected order: %q, %q", history[0].ID, history[1].ID)
	}
	if history[1].Corrections["category"] != "Software Engineering" {
		t.Fatalf("corrections not round-tripped: %v", history[1].Corrections)
	}
}
