package routing

import "testing"

func TestHookMatchDomainSubdomain(t *testing.T) {
	h := NewHook("example.com", 0, "", false, false)

	if !h.Match("example.com", 0, "/") {
		t.Fatalf("expected exact domain to match")
	}
	if !h.Match("api.example.com", 0, "/") {
		t.Fatalf("expected subdomain to match when specificDomain=false")
	}
	if h.Match("notexample.com", 0, "/") {
		t.Fatalf("expected unrelated domain not to match")
	}
}

func TestHookMatchSpecificDomain(t *testing.T) {
	h := NewHook("example.com", 0, "", true, false)

	if !h.Match("example.com", 0, "/") {
		t.Fatalf("expected exact domain to match")
	}
	if h.Match("api.example.com", 0, "/") {
		t.Fatalf("expected subdomain not to match when specificDomain=true")
	}
}

func TestHookMatchPathPrefix(t *testing.T) {
	h := NewHook("", 0, "/a", false, false)

	if !h.Match("", 0, "/a") {
		t.Fatalf("expected exact path to match")
	}
	if !h.Match("", 0, "/a/b/c") {
		t.Fatalf("expected path prefix to match when specificPath=false")
	}
	if h.Match("", 0, "/ab") {
		t.Fatalf("expected /ab not to match prefix /a")
	}
}

func TestHookMatchSpecificPath(t *testing.T) {
	h := NewHook("", 0, "/a", false, true)

	if !h.Match("", 0, "/a") {
		t.Fatalf("expected exact path to match")
	}
	if h.Match("", 0, "/a/b") {
		t.Fatalf("expected nested path not to match when specificPath=true")
	}
}

func TestHookRestURL(t *testing.T) {
	h := NewHook("", 0, "/api", false, false)

	if got := h.RestURL("/api/v1/users"); got != "/v1/users" {
		t.Fatalf("RestURL = %q, want /v1/users", got)
	}
	if got := h.RestURL("/api"); got != "/" {
		t.Fatalf("RestURL = %q, want /", got)
	}
}

// TestHookSpecificityOrdering exercises testable property 3: for any two
// hooks A and B where A strictly refines B, CompareTo(A, B) < 0.
func TestHookSpecificityOrdering(t *testing.T) {
	cases := []struct {
		name string
		a, b Hook
	}{
		{
			name: "domain beats no domain",
			a:    NewHook("example.com", 0, "", false, false),
			b:    NewHook("", 0, "", false, false),
		},
		{
			name: "longer domain suffix beats shorter",
			a:    NewHook("api.example.com", 0, "", false, false),
			b:    NewHook("example.com", 0, "", false, false),
		},
		{
			name: "specific domain beats non-specific at equal domain",
			a:    NewHook("example.com", 0, "", true, false),
			b:    NewHook("example.com", 0, "", false, false),
		},
		{
			name: "port present beats absent",
			a:    NewHook("", 8080, "", false, false),
			b:    NewHook("", 0, "", false, false),
		},
		{
			name: "path present beats absent",
			a:    NewHook("", 0, "/api", false, false),
			b:    NewHook("", 0, "", false, false),
		},
		{
			name: "longer path prefix beats shorter",
			a:    NewHook("", 0, "/api/v1", false, false),
			b:    NewHook("", 0, "/api", false, false),
		},
		{
			name: "specific path beats non-specific at equal path",
			a:    NewHook("", 0, "/api", false, true),
			b:    NewHook("", 0, "/api", false, false),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if c := tc.a.CompareTo(tc.b); c >= 0 {
				t.Fatalf("CompareTo(a, b) = %d, want < 0", c)
			}
			if c := tc.b.CompareTo(tc.a); c <= 0 {
				t.Fatalf("CompareTo(b, a) = %d, want > 0", c)
			}
		})
	}
}

func TestHookEqualComparesEqual(t *testing.T) {
	a := NewHook("example.com", 0, "/api", false, false)
	b := NewHook("example.com", 0, "/api", false, false)

	if c := a.CompareTo(b); c != 0 {
		t.Fatalf("CompareTo(equal hooks) = %d, want 0", c)
	}
}

// TestAPIV1ResolvesOverAPI is the concrete end-to-end scenario from
// SPEC_FULL.md §8: two mappings on (domain=nil, path=/api) and
// (domain=nil, path=/api/v1) — a request for /api/v1/users resolves to
// the second (more specific) mapping.
func TestAPIV1ResolvesOverAPI(t *testing.T) {
	apiHook := NewHook("", 0, "/api", false, false)
	v1Hook := NewHook("", 0, "/api/v1", false, false)

	mappings := []Hook{apiHook, v1Hook}
	sortHooksBySpecificity(mappings)

	if mappings[0] != v1Hook {
		t.Fatalf("expected /api/v1 to sort before /api")
	}
	if !v1Hook.Match("", 0, "/api/v1/users") {
		t.Fatalf("expected /api/v1 hook to match /api/v1/users")
	}
}

func sortHooksBySpecificity(hooks []Hook) {
	for i := 1; i < len(hooks); i++ {
		for j := i; j > 0 && hooks[j].CompareTo(hooks[j-1]) < 0; j-- {
			hooks[j], hooks[j-1] = hooks[j-1], hooks[j]
		}
	}
}
