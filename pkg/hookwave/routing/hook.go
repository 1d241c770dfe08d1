// Package routing implements the UrlHook / UrlMapping / UrlResolver dispatch
// core: an ordered, comparable hook model that decides which handler serves
// a request, including skippable handlers that can defer to a fallback.
package routing

import "strings"

// Hook is a pattern over request domain, port, and path. A zero-value field
// (HasDomain/HasPort/HasPath false) matches anything for that dimension.
//
// SpecificDomain=false matches the exact domain and all its subdomains;
// SpecificDomain=true matches only the exact domain. The same rule applies
// to paths via SpecificPath ("/a" matches "/a/b/c" unless SpecificPath=true).
type Hook struct {
	Domain string
	Port   int
	Path   string

	HasDomain bool
	HasPort   bool
	HasPath   bool

	SpecificDomain bool
	SpecificPath   bool
}

// NewHook builds a Hook. Domain is lowercased per the ASCII-lowercase
// invariant; an empty domain/path means "not present" (matches anything).
// Paths other than "/" must not carry a trailing slash.
func NewHook(domain string, port int, path string, specificDomain, specificPath bool) Hook {
	h := Hook{
		SpecificDomain: specificDomain,
		SpecificPath:   specificPath,
	}
	if domain != "" {
		h.Domain = strings.ToLower(domain)
		h.HasDomain = true
	}
	if port != 0 {
		h.Port = port
		h.HasPort = true
	}
	if path != "" {
		h.Path = normalizePath(path)
		h.HasPath = true
	}
	return h
}

func normalizePath(path string) string {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// Match reports whether the hook matches the given request domain, port,
// and path. domain is compared case-insensitively (the caller need not
// pre-lowercase it).
func (h Hook) Match(domain string, port int, path string) bool {
	return h.domainOk(domain) && h.portOk(port) && h.pathOk(path)
}

func (h Hook) domainOk(domain string) bool {
	if !h.HasDomain {
		return true
	}
	domain = strings.ToLower(domain)
	if h.SpecificDomain {
		return domain == h.Domain
	}
	if domain == h.Domain {
		return true
	}
	return strings.HasSuffix(domain, "."+h.Domain)
}

func (h Hook) portOk(port int) bool {
	if !h.HasPort {
		return true
	}
	return port == h.Port
}

func (h Hook) pathOk(path string) bool {
	if !h.HasPath {
		return true
	}
	if h.SpecificPath {
		return path == h.Path
	}
	if path == h.Path {
		return true
	}
	if h.Path == "/" {
		return strings.HasPrefix(path, "/")
	}
	return strings.HasPrefix(path, h.Path+"/")
}

// RestURL strips the hook's path prefix from path, retaining the leading
// "/". If the hook has no path, path is returned unchanged.
func (h Hook) RestURL(path string) string {
	if !h.HasPath {
		return path
	}
	if h.Path == "/" {
		return path
	}
	rest := strings.TrimPrefix(path, h.Path)
	if rest == "" {
		return "/"
	}
	return rest
}

// domainSuffixLength returns the comparison key for domain specificity:
// longer domain suffixes (more labels) rank more specific.
func (h Hook) domainSuffixLength() int {
	if !h.HasDomain {
		return 0
	}
	return len(h.Domain)
}

func (h Hook) pathPrefixLength() int {
	if !h.HasPath {
		return 0
	}
	return len(h.Path)
}

// CompareTo implements the total order over hooks by specificity: a
// negative return means h ranks before other (h is more specific).
// Equal hooks compare equal (0), which is required to keep an ordered
// collection without distinguishing identical siblings — see DESIGN.md's
// note on the ordered-set antisymmetry caveat (skippable vs non-skippable
// is broken by UrlMapping.Less, not by Hook.CompareTo).
func (h Hook) CompareTo(other Hook) int {
	if d := boolCompare(h.HasDomain, other.HasDomain); d != 0 {
		return d
	}
	if d := intCompare(h.domainSuffixLength(), other.domainSuffixLength()); d != 0 {
		return d
	}
	if d := boolCompare(h.SpecificDomain, other.SpecificDomain); d != 0 {
		return d
	}
	if d := boolCompare(h.HasPort, other.HasPort); d != 0 {
		return d
	}
	if d := boolCompare(h.HasPath, other.HasPath); d != 0 {
		return d
	}
	if d := intCompare(h.pathPrefixLength(), other.pathPrefixLength()); d != 0 {
		return d
	}
	return boolCompare(h.SpecificPath, other.SpecificPath)
}

// boolCompare ranks true before false (true is "more specific").
func boolCompare(a, b bool) int {
	if a == b {
		return 0
	}
	if a {
		return -1
	}
	return 1
}

// intCompare ranks larger values first (larger is "more specific").
func intCompare(a, b int) int {
	if a == b {
		return 0
	}
	if a > b {
		return -1
	}
	return 1
}
