package relationship

import (
	"strings"
	"unicode"

	"github.com/dmaslov/skillfit/internal/skills"
)

// lexicalStopWords are common words that add noise to name-token matching.
var lexicalStopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "of": true,
	"in": true, "to": true, "on": true, "using": true, "via": true,
}

// LexicalClassifier is the fallback strategy for skills with no enrichment
// at all: a plain Jaccard over name tokens. It never reports anything
// stronger than NEIGHBORING, since token overlap alone cannot establish
// domain identity.
type LexicalClassifier struct{}

// NewLexicalClassifier creates the name-token fallback strategy.
func NewLexicalClassifier() *LexicalClassifier {
	return &LexicalClassifier{}
}

func (c *LexicalClassifier) Name() string { return "lexical" }

// Classify tokenizes both names and computes their Jaccard similarity.
func (c *LexicalClassifier) Classify(a, b *skills.Skill) (*Entry, bool) {
	if a == nil || b == nil {
		return nil, false
	}

	similarity := jaccard(tokenize(a.Name), tokenize(b.Name))

	t := Unrelated
	if similarity >= neighborThreshold {
		t = Neighboring
	}

	return &Entry{
		SkillA:     a.Name,
		SkillB:     b.Name,
		Type:       t,
		Similarity: similarity,
	}, true
}

// tokenize splits a skill name into lowercase tokens, preserving tech
// suffixes like "c++", "c#" and "node.js".
func tokenize(name string) []string {
	var tokens []string
	var word strings.Builder

	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if len(w) >= 2 && !lexicalStopWords[w] {
			tokens = append(tokens, w)
		}
	}

	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}
