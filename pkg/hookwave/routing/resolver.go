package routing

import (
	"sort"
	"sync/atomic"

	"github.com/riverbough/hookwave/pkg/hookwave/http11"
)

// Outcome is the result of invoking a skippable handler.
type Outcome int

const (
	// Handled means the handler produced a response; dispatch stops here.
	Handled Outcome = iota
	// Skip means the handler declined to serve this request; the resolver
	// continues to the next matching mapping.
	Skip
)

// Handler processes a matched request. rest is the request's rest URL
// (the path with the mapping's hook prefix stripped, per Hook.RestURL).
// A skippable Handler returns (Skip, nil) to defer to the next mapping.
type Handler func(req *http11.Request, rw *http11.ResponseWriter, rest string) (Outcome, error)

// Mapping binds a Hook to a Handler. Immutable after construction.
type Mapping struct {
	Hook      Hook
	Handler   Handler
	Skippable bool
}

// less orders two mappings by hook specificity, then by the skippable-first
// tie-break rule: among equal hooks, skippable mappings rank before
// non-skippable ones, so they get first refusal before falling through to
// the generic handler. This secondary ordering is what breaks Hook's
// otherwise-symmetric "equal hooks compare equal" rule — see DESIGN.md.
func less(a, b Mapping) bool {
	if c := a.Hook.CompareTo(b.Hook); c != 0 {
		return c < 0
	}
	if a.Skippable != b.Skippable {
		return a.Skippable
	}
	return false
}

// Resolver holds a sorted, atomically-swapped collection of mappings and
// dispatches requests against it. Readers never observe a partially
// mutated mapping list: Add/Remove build a new sorted slice and swap it in
// with a single atomic store (copy-on-write), per the concurrency model in
// SPEC_FULL.md §5.
type Resolver struct {
	mappings atomic.Pointer[[]Mapping]
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	r := &Resolver{}
	empty := make([]Mapping, 0)
	r.mappings.Store(&empty)
	return r
}

// Add inserts a mapping, keeping the collection sorted by specificity then
// skippable-first. Safe to call concurrently with Resolve.
func (r *Resolver) Add(m Mapping) {
	for {
		old := r.mappings.Load()
		next := make([]Mapping, len(*old), len(*old)+1)
		copy(next, *old)
		next = append(next, m)
		sort.SliceStable(next, func(i, j int) bool {
			return less(next[i], next[j])
		})
		if r.mappings.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Remove deletes every mapping equal to m (by Hook and Skippable; Handler
// identity is not compared since Go function values aren't comparable).
func (r *Resolver) Remove(hook Hook, skippable bool) {
	for {
		old := r.mappings.Load()
		next := make([]Mapping, 0, len(*old))
		for _, m := range *old {
			if m.Hook == hook && m.Skippable == skippable {
				continue
			}
			next = append(next, m)
		}
		if r.mappings.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Len returns the number of registered mappings.
func (r *Resolver) Len() int {
	return len(*r.mappings.Load())
}

// Resolve iterates mappings in sorted order; for each whose hook matches
// (domain, port, path), a skippable handler is invoked and iteration
// continues if it returns Skip, otherwise its result ends dispatch. If no
// mapping matches, or every matching skippable handler skips, Resolve
// reports notFound=true and the caller should respond 404.
func (r *Resolver) Resolve(req *http11.Request, rw *http11.ResponseWriter, domain string, port int, path string) (notFound bool, err error) {
	mappings := *r.mappings.Load()
	for _, m := range mappings {
		if !m.Hook.Match(domain, port, path) {
			continue
		}
		rest := m.Hook.RestURL(path)
		outcome, herr := m.Handler(req, rw, rest)
		if herr != nil {
			return false, herr
		}
		if m.Skippable && outcome == Skip {
			continue
		}
		return false, nil
	}
	return true, nil
}
