package relationship

// Type classifies how two skills relate to each other.
type Type string

const (
	ExactMatch  Type = "EXACT_MATCH"
	Subset      Type = "SUBSET"
	Superset    Type = "SUPERSET"
	Neighboring Type = "NEIGHBORING"
	Hybrid      Type = "HYBRID"
	Unrelated   Type = "UNRELATED"
)

// Entry is the directed classification result for an ordered skill pair.
// Similarity is symmetric; the type is not guaranteed to be (A can be a
// SUBSET of B while B is a SUPERSET of A).
type Entry struct {
	SkillA     string  `json:"skill_a"`
	SkillB     string  `json:"skill_b"`
	Type       Type    `json:"relationship_type"`
	Similarity float64 `json:"similarity"`
}

// Inverse returns the type an observer would assign looking at the pair from
// the other side.
func (t Type) Inverse() Type {
	switch t {
	case Subset:
		return Superset
	case Superset:
		return Subset
	default:
		return t
	}
}
