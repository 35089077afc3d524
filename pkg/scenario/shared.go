package scenario

import (
	"sort"
	"strings"
	"sync"
)

// SharedStep is a named, reusable list of step definitions. Its builder
// function runs once, on first use.
type SharedStep struct {
	Name string

	suite *Suite
	fn    func(*Builder)
	once  sync.Once
	steps []*StepDef
	err   error
}

// Steps builds and caches the definitions. Steps declared inside are
// titled after the shared step ("Setup login").
func (s *SharedStep) Steps() ([]*StepDef, error) {
	s.once.Do(func() {
		b := newBuilder(s.suite, s.Name, s.Name, true)
		if s.fn != nil {
			s.fn(b)
		}
		s.steps, s.err = b.steps, b.Err()
	})
	return s.steps, s.err
}

// Registry maps names to shared steps. It is written while a suite is
// declared and read while scenarios are built.
type Registry struct {
	mu    sync.RWMutex
	suite *Suite
	steps map[string]*SharedStep
}

// NewRegistry creates an empty registry bound to a suite.
func NewRegistry(s *Suite) *Registry {
	return &Registry{suite: s, steps: map[string]*SharedStep{}}
}

// Register stores fn under name. Names may not be empty, contain a comma
// (the separator of name lists) or be registered twice.
func (r *Registry) Register(name string, fn func(*Builder)) error {
	switch {
	case strings.TrimSpace(name) == "":
		return newInvalidName(name, "empty name")
	case strings.Contains(name, ","):
		return newInvalidName(name, "comma is not allowed in shared step name")
	case fn == nil:
		return newInvalidName(name, "no builder function")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.steps[name]; ok {
		return newInvalidName(name, "already registered")
	}
	r.steps[name] = &SharedStep{Name: name, suite: r.suite, fn: fn}
	return nil
}

// Find returns the shared step registered under name.
func (r *Registry) Find(name string) (*SharedStep, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.steps[name]
	if !ok {
		return nil, newNotFound(name)
	}
	return s, nil
}

// Names lists registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.steps))
	for n := range r.steps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
