package shutdown

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"go_pdfium/core"
)

// Teardown priorities. Lower runs first, so handles are released in the
// order the pdfium ownership rules require: pages, then documents, then
// the library.
const (
	PriorityPages    = 10
	PriorityDocument = 20
	PriorityLibrary  = 30
	PriorityOutputs  = 40
	PriorityLogs     = 90
)

type entry struct {
	name     string
	fn       core.ShutdownFunc
	priority int
}

// Registry holds named teardown functions and runs them once, by priority.
// Functions of equal priority run in reverse registration order, so a page
// loaded last is unloaded first.
type Registry struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds fn under name. It is a no-op once Shutdown has run.
func (r *Registry) Register(name string, priority int, fn core.ShutdownFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.entries = append(r.entries, entry{name: name, fn: fn, priority: priority})
}

// Shutdown runs every function, even after failures, and returns their
// errors wrapped with the function name. Later calls return nil.
func (r *Registry) Shutdown(ctx context.Context) []error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sorted := r.sortedLocked()
	r.mu.Unlock()

	var errs []error
	for _, e := range sorted {
		if err := e.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}
	return errs
}

// Names returns the registered names in execution order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := r.sortedLocked()
	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.name
	}
	return names
}

func (r *Registry) sortedLocked() []entry {
	sorted := slices.Clone(r.entries)
	slices.Reverse(sorted)
	slices.SortStableFunc(sorted, func(a, b entry) int {
		return cmp.Compare(a.priority, b.priority)
	})
	return sorted
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) IsClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
