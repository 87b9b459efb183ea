package system

import (
	"log/slog"

	"github.com/milk9111/sceneviewer/assets"
	"github.com/milk9111/sceneviewer/ecs"
	"github.com/milk9111/sceneviewer/history"
	"github.com/milk9111/sceneviewer/loading"
)

// ErrSource optionally explains why a handle failed.
type ErrSource interface {
	Err(h assets.Handle) error
}

// Journal persists resolved loads.
type Journal interface {
	Record(e history.Entry) error
}

// LoadReconcileSystem retires resolved loads from the tracker once per
// tick and logs each outcome exactly once.
type LoadReconcileSystem struct {
	tracker loading.Tracker
	status  loading.StatusSource
	journal Journal
	log     *slog.Logger
}

func NewLoadReconcileSystem(tracker loading.Tracker, status loading.StatusSource, journal Journal, logger *slog.Logger) *LoadReconcileSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadReconcileSystem{tracker: tracker, status: status, journal: journal, log: logger}
}

func (s *LoadReconcileSystem) Update(w *ecs.World) {
	if s.tracker == nil || s.status == nil {
		return
	}

	for _, res := range s.tracker.Reconcile(s.status) {
		var loadErr error
		if es, ok := s.status.(ErrSource); ok && res.Status == assets.Failed {
			loadErr = es.Err(res.Handle)
		}

		switch res.Status {
		case assets.Loaded:
			s.log.Info("loaded", "path", res.Path, "status", res.Status, "kind", res.Handle.Kind())
		case assets.Failed:
			if loadErr != nil {
				s.log.Warn("load failed", "path", res.Path, "status", res.Status, "kind", res.Handle.Kind(), "error", loadErr)
			} else {
				s.log.Warn("load failed", "path", res.Path, "status", res.Status, "kind", res.Handle.Kind())
			}
		}

		s.record(res, loadErr)
	}
}

func (s *LoadReconcileSystem) record(res loading.Resolution, loadErr error) {
	if s.journal == nil {
		return
	}
	e := history.Entry{
		Handle: res.Handle.ID().String(),
		Path:   res.Path,
		Kind:   res.Handle.Kind().String(),
		Status: res.Status.String(),
	}
	if loadErr != nil {
		e.Error = loadErr.Error()
	}
	if err := s.journal.Record(e); err != nil {
		s.log.Warn("record load outcome", "path", res.Path, "error", err)
	}
}
