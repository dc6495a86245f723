package lint

import (
	"sort"
	"sync"
)

// Registry manages lint rules by name.
type Registry struct {
	rules map[string]Rule
	mu    sync.RWMutex
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		rules: make(map[string]Rule),
	}
}

// Register adds a rule to the registry, replacing any rule with the same
// name.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules[rule.Name()] = rule
}

// Get retrieves a rule by name.
func (r *Registry) Get(name string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[name]
	return rule, ok
}

// All returns the registered rules in name order, so runs are
// deterministic.
func (r *Registry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	sort.Strings(names)

	rules := make([]Rule, 0, len(names))
	for _, name := range names {
		rules = append(rules, r.rules[name])
	}
	return rules
}

// Builtin returns a registry populated with the built-in rules.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(configPathRule{})
	r.Register(citationRule{})
	r.Register(tableShapeRule{})
	r.Register(metricRangeRule{})
	r.Register(metricFilledRule{})
	r.Register(inputSizeRule{})
	r.Register(artifactLinkRule{})
	r.Register(uniqueVariantRule{})
	return r
}
