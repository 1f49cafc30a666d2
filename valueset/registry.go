package valueset

import (
	"fmt"
	"sync"

	"github.com/gofhir/fhir/r4"
)

// Registry holds the code sets a measure binds against, keyed by name.
// It is populated once at process start and read-only afterwards; reads are
// safe for concurrent use from any number of evaluation workers.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]*CodeSet
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]*CodeSet)}
}

// Register adds a code set to the registry. Registering a duplicate name is
// an error; sets are immutable once loaded.
func (r *Registry) Register(set *CodeSet) error {
	if set == nil || set.Name() == "" {
		return fmt.Errorf("valueset: cannot register unnamed set")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sets[set.Name()]; exists {
		return fmt.Errorf("valueset: set %q already registered", set.Name())
	}
	r.sets[set.Name()] = set
	return nil
}

// Get returns a code set by name.
func (r *Registry) Get(name string) (*CodeSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sets[name]
	return set, ok
}

// Resolve returns the code sets for the given names, erroring on the first
// unknown name. Measure bindings are resolved once at engine construction,
// so a typo in a binding fails fast instead of silently matching nothing.
func (r *Registry) Resolve(names ...string) ([]*CodeSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sets := make([]*CodeSet, 0, len(names))
	for _, name := range names {
		set, ok := r.sets[name]
		if !ok {
			return nil, fmt.Errorf("valueset: set %q not registered", name)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// UnionOf resolves names and unions them into a single-system lookup.
func (r *Registry) UnionOf(system CodingSystem, names ...string) (Lookup, error) {
	sets, err := r.Resolve(names...)
	if err != nil {
		return nil, err
	}
	return Union(system, sets...), nil
}

// MergeOf resolves names and merges them into one combined code set.
func (r *Registry) MergeOf(name string, names ...string) (*CodeSet, error) {
	sets, err := r.Resolve(names...)
	if err != nil {
		return nil, err
	}
	return Merge(name, sets...), nil
}

// Names returns the registered set names (unsorted).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	return names
}

// Len returns the number of registered sets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sets)
}

// LoadR4ValueSet loads an R4 ValueSet resource into the registry under the
// given name. If name is empty, the resource's name (falling back to its
// URL) is used. Codes are taken from the expansion when present, otherwise
// from compose.include concepts; compose filters are not supported, since
// measure vocabularies ship fully enumerated.
func (r *Registry) LoadR4ValueSet(vs *r4.ValueSet, name string) error {
	if vs == nil {
		return fmt.Errorf("valueset: nil ValueSet resource")
	}
	if name == "" {
		switch {
		case vs.Name != nil:
			name = *vs.Name
		case vs.Url != nil:
			name = *vs.Url
		default:
			return fmt.Errorf("valueset: ValueSet has no name or url")
		}
	}

	set := NewCodeSet(name)

	if vs.Expansion != nil {
		for i := range vs.Expansion.Contains {
			collectExpansion(&vs.Expansion.Contains[i], set)
		}
	} else if vs.Compose != nil {
		for i := range vs.Compose.Include {
			include := &vs.Compose.Include[i]
			if include.System == nil {
				continue
			}
			system := CodingSystem(*include.System)
			for j := range include.Concept {
				concept := &include.Concept[j]
				if concept.Code != nil {
					set.add(Code{System: system, Value: *concept.Code})
				}
			}
		}
	}

	if set.Size() == 0 {
		return fmt.Errorf("valueset: ValueSet %q contains no enumerated codes", name)
	}
	return r.Register(set)
}

// collectExpansion walks expansion.contains recursively.
func collectExpansion(contains *r4.ValueSetExpansionContains, set *CodeSet) {
	if contains.Code != nil && contains.System != nil {
		set.add(Code{System: CodingSystem(*contains.System), Value: *contains.Code})
	}
	for i := range contains.Contains {
		collectExpansion(&contains.Contains[i], set)
	}
}
