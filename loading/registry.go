package loading

import (
	"sync"

	"github.com/milk9111/sceneviewer/assets"
)

// StatusSource answers non-blocking status queries for issued handles.
type StatusSource interface {
	LoadState(h assets.Handle) assets.LoadState
	Path(h assets.Handle) (string, bool)
}

// PendingLoad is one tracked load and the status last observed for it.
type PendingLoad struct {
	Handle assets.Handle
	Status assets.LoadState
}

// Resolution reports a handle observed in a terminal state. Path is empty
// when the server could not resolve it.
type Resolution struct {
	Handle assets.Handle
	Status assets.LoadState
	Path   string
}

// Tracker follows submitted loads until they resolve.
type Tracker interface {
	// Track starts following h. It reports false when h is invalid or
	// already tracked.
	Track(h assets.Handle) bool
	// Reconcile polls every tracked handle once and returns the handles
	// that became terminal in this pass.
	Reconcile(src StatusSource) []Resolution
	// Pending returns the number of unresolved handles.
	Pending() int
}

// Registry tracks any number of concurrent loads.
type Registry struct {
	mu      sync.Mutex
	entries []PendingLoad
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Track(h assets.Handle) bool {
	if !assets.IsValid(h) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Handle == h {
			return false
		}
	}
	r.entries = append(r.entries, PendingLoad{Handle: h, Status: assets.NotLoaded})
	return true
}

func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Entries returns a copy of the tracked loads in insertion order.
func (r *Registry) Entries() []PendingLoad {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PendingLoad(nil), r.entries...)
}

func (r *Registry) Contains(h assets.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Handle == h {
			return true
		}
	}
	return false
}

// Reconcile rebuilds the registry from the entries that are still
// pending. Nothing is removed by position, so a pass can neither skip an
// entry nor retire one twice.
func (r *Registry) Reconcile(src StatusSource) []Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == 0 {
		return nil
	}

	var resolved []Resolution
	kept := r.entries[:0]
	for _, e := range r.entries {
		e.Status = src.LoadState(e.Handle)
		if e.Status.Terminal() {
			resolved = append(resolved, resolve(src, e))
			continue
		}
		kept = append(kept, e)
	}
	clear(r.entries[len(kept):])
	r.entries = kept
	return resolved
}

func resolve(src StatusSource, e PendingLoad) Resolution {
	p, _ := src.Path(e.Handle)
	return Resolution{Handle: e.Handle, Status: e.Status, Path: p}
}
