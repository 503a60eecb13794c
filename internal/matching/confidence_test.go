package matching

import (
	"math"
	"testing"

	"github.com/dmaslov/skillfit/internal/relationship"
)

func f(v float64) *float64 { return &v }

func TestConfidenceRenormalizes(t *testing.T) {
	// A lone match percentage is not diluted by absent signals.
	if got := Confidence(Signals{MatchPercentage: 0.8}); math.Abs(got-0.8) > 1e-12 {
		t.Fatalf("confidence = %v, want 0.8", got)
	}

	// Adding a weaker signal pulls the score toward it.
	got := Confidence(Signals{MatchPercentage: 1.0, Embedding: f(0.5)})
	want := (0.4*1.0 + 0.2*0.5) / 0.6
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", got, want)
	}

	// All signals present uses the full weight table.
	got = Confidence(Signals{
		MatchPercentage: 1.0,
		Embedding:       f(1.0),
		BucketRelevance: f(1.0),
		ModelConfidence: f(1.0),
		Contextual:      f(1.0),
		TextPattern:     f(1.0),
	})
	if math.Abs(got-1.0) > 1e-12 {
		t.Fatalf("confidence = %v, want 1.0", got)
	}
}

func TestConfidenceClampsSignals(t *testing.T) {
	got := Confidence(Signals{MatchPercentage: 0.5, Embedding: f(3.0)})
	want := (0.4*0.5 + 0.2*1.0) / 0.6
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", got, want)
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.0, "Very Low"},
		{0.24, "Very Low"},
		{0.25, "Low"},
		{0.49, "Low"},
		{0.5, "Medium"},
		{0.74, "Medium"},
		{0.75, "High"},
		{0.89, "High"},
		{0.9, "Very High"},
		{1.0, "Very High"},
	}
	for _, tc := range cases {
		if got := Label(tc.score); got != tc.want {
			t.Errorf("Label(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestBucketRelevance(t *testing.T) {
	cases := []struct {
		typ  relationship.Type
		want float64
	}{
		{relationship.ExactMatch, 1.0},
		{relationship.Subset, 0.8},
		{relationship.Superset, 0.8},
		{relationship.Neighboring, 0.6},
		{relationship.Hybrid, 0.4},
		{relationship.Unrelated, 0.1},
	}
	for _, tc := range cases {
		if got := bucketRelevance(tc.typ); *got != tc.want {
			t.Errorf("bucketRelevance(%s) = %v, want %v", tc.typ, *got, tc.want)
		}
	}
}
