package skills

import (
	"strings"
	"unicode"
)

// Resolver maps free-text phrases to canonical store names. It bridges the
// gap between scraped requirement text and authored skill definitions: the
// store itself stays exact and case-sensitive, the resolver does the fuzzy
// part. Unknown phrases resolve to themselves so they can still be matched
// as unenriched skills.
type Resolver struct {
	// canonical maps a normalized form to the canonical display name.
	canonical map[string]string
}

// NewResolver builds a resolver over the given canonical names plus an
// optional alias table (alias phrase -> canonical name).
func NewResolver(names []string, aliases map[string]string) *Resolver {
	r := &Resolver{canonical: make(map[string]string, len(names)+len(aliases))}
	for _, name := range names {
		r.canonical[normalize(name)] = name
	}
	for alias, name := range aliases {
		r.canonical[normalize(alias)] = name
	}
	return r
}

// Resolve returns the canonical name for a phrase, or the trimmed phrase
// itself when nothing matches.
func (r *Resolver) Resolve(phrase string) string {
	trimmed := strings.TrimSpace(phrase)
	if trimmed == "" {
		return ""
	}
	if name, ok := r.canonical[normalize(trimmed)]; ok {
		return name
	}
	return trimmed
}

// Add registers an extra canonical name after construction.
func (r *Resolver) Add(name string) {
	r.canonical[normalize(name)] = name
}

// normalize lowercases the phrase, strips punctuation separators, collapses
// whitespace and reduces common word variants (plural "s"/"es", gerund
// "ing") so "Deploying pipelines" and "deployment pipeline" collide less.
func normalize(phrase string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(phrase) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		words[i] = reduceWord(w)
	}
	return strings.Join(words, "")
}

func reduceWord(w string) string {
	switch {
	case len(w) > 5 && strings.HasSuffix(w, "ing"):
		return w[:len(w)-3]
	case len(w) > 4 && strings.HasSuffix(w, "es"):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}
