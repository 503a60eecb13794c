package skills

import "testing"

func TestResolverResolve(t *testing.T) {
	names := []string{"Machine Learning", "REST APIs", "Testing", "C++"}
	aliases := map[string]string{"CI/CD": "Continuous Integration"}
	resolver := NewResolver(names, aliases)

	cases := []struct {
		phrase string
		want   string
	}{
		{"Machine Learning", "Machine Learning"},
		{"machine learning", "Machine Learning"},
		{"  machine-learning  ", "Machine Learning"},
		{"Rest API", "REST APIs"},
		{"rest apis", "REST APIs"},
		{"Tests", "Testing"},
		{"c++", "C++"},
		{"ci/cd", "Continuous Integration"},
		{"CI CD", "Continuous Integration"},
		// Unknown phrases pass through trimmed so they can still be
		// matched as unenriched skills.
		{"  Quantum Basket Weaving ", "Quantum Basket Weaving"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := resolver.Resolve(tc.phrase); got != tc.want {
			t.Errorf("Resolve(%q) = %q, want %q", tc.phrase, got, tc.want)
		}
	}
}

func TestResolverAdd(t *testing.T) {
	resolver := NewResolver(nil, nil)
	if got := resolver.Resolve("terraform"); got != "terraform" {
		t.Fatalf("unexpected resolution before Add: %q", got)
	}

	resolver.Add("Terraform")
	if got := resolver.Resolve("terraform"); got != "Terraform" {
		t.Fatalf("unexpected resolution after Add: %q", got)
	}
}
