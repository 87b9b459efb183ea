package loading

import (
	"sync"

	"github.com/milk9111/sceneviewer/assets"
)

// Slot tracks a single active load. Tracking a new handle abandons the
// previous one without cancelling it; the server keeps working on it, but
// the slot never reports it.
type Slot struct {
	mu       sync.Mutex
	current  PendingLoad
	resolved bool
}

func NewSlot() *Slot {
	return &Slot{}
}

func (s *Slot) Track(h assets.Handle) bool {
	if !assets.IsValid(h) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Handle == h {
		return false
	}
	s.current = PendingLoad{Handle: h, Status: assets.NotLoaded}
	s.resolved = false
	return true
}

// Current returns the tracked handle and its last observed status. The
// handle stays queryable after it resolves.
func (s *Slot) Current() (PendingLoad, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current.Handle != nil
}

func (s *Slot) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Handle == nil || s.resolved {
		return 0
	}
	return 1
}

// Reconcile reports the slot's handle the first time it is observed
// terminal, and nothing afterwards.
func (s *Slot) Reconcile(src StatusSource) []Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Handle == nil || s.resolved {
		return nil
	}
	s.current.Status = src.LoadState(s.current.Handle)
	if !s.current.Status.Terminal() {
		return nil
	}
	s.resolved = true
	return []Resolution{resolve(src, s.current)}
}
