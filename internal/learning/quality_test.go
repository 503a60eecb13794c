package learning

import (
	"testing"

	"github.com/dmaslov/skillfit/internal/skills"
)

func TestQualityScore(t *testing.T) {
	complete := &skills.Skill{
		Name:                "Go",
		Category:            "Software Engineering",
		KnowledgeComponents: []string{"goroutines", "interfaces"},
		Contexts:            []string{"backend services"},
		Functions:           []string{"build services"},
	}
	rich := complete.Clone()
	rich.KnowledgeComponents = []string{
		"goroutines", "interfaces", "channels", "generics", "testing",
		"modules", "reflection", "cgo", "profiling", "tracing",
		"errors", "context", "io", "net", "sync",
	}

	cases := []struct {
		name     string
		skill    *skills.Skill
		feedback *FeedbackEntry
		want     float64
	}{
		{"bare definition", &skills.Skill{Name: "X"}, nil, 60},
		{"complete, small", complete, nil, 60 + 10},
		{"complete, rich", rich, nil, 60 + 10 + 15},
		{
			"top rating",
			complete,
			&FeedbackEntry{Rating: 5},
			60 + 10 + 10,
		},
		{
			"low rating with corrections",
			complete,
			&FeedbackEntry{Rating: 1, Corrections: map[string]any{"category": "x"}},
			60 + 10 - 10 - 5,
		},
		{
			"neutral rating",
			complete,
			&FeedbackEntry{Rating: 3},
			60 + 10,
		},
		{
			"absent rating is ignored",
			complete,
			&FeedbackEntry{},
			60 + 10,
		},
	}

	for _, tc := range cases {
		if got := QualityScore(tc.skill, tc.feedback); got != tc.want {
			t.Errorf("%s: score = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestQualityScoreBounds(t *testing.T) {
	// The score stays inside 0-100 whatever the inputs.
	skill := &skills.Skill{Name: "X"}
	low := QualityScore(skill, &FeedbackEntry{Rating: 1, Corrections: map[string]any{"a": "b"}})
	if low < 0 || low > 100 {
		t.Fatalf("score out of bounds: %v", low)
	}

	rich := &skills.Skill{
		Name:                "Y",
		Category:            "c",
		KnowledgeComponents: make([]string, 20),
		Contexts:            []string{"a"},
		Functions:           []string{"b"},
	}
	high := QualityScore(rich, &FeedbackEntry{Rating: 5})
	if high < 0 || high > 100 {
		t.Fatalf("score out of bounds: %v", high)
	}
}

func TestQualityRichnessTiers(t *testing.T) {
	cases := []struct {
		total int
		bonus float64
	}{
		{4, 0},
		{5, 5},
		{9, 5},
		{10, 10},
		{14, 10},
		{15, 15},
		{30, 15},
	}
	for _, tc := range cases {
		skill := &skills.Skill{
			Name:                "X",
			KnowledgeComponents: make([]string, tc.total),
		}
		want := 60 + tc.bonus
		if got := QualityScore(skill, nil); got != want {
			t.Errorf("total %d: score = %v, want %v", tc.total, got, want)
		}
	}
}
