package system

import (
	"log/slog"

	"github.com/milk9111/sceneviewer/ecs"
	"github.com/milk9111/sceneviewer/loading"
)

// DropIntakeSystem turns the drops received since the last tick into load
// requests for the dispatch system.
type DropIntakeSystem struct {
	source     loading.DropSource
	policy     loading.DropPolicy
	classifier loading.Classifier
	requests   *ecs.Queue[loading.Request]
	log        *slog.Logger
}

func NewDropIntakeSystem(source loading.DropSource, policy loading.DropPolicy, classifier loading.Classifier, requests *ecs.Queue[loading.Request], logger *slog.Logger) *DropIntakeSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &DropIntakeSystem{
		source:     source,
		policy:     policy,
		classifier: classifier,
		requests:   requests,
		log:        logger,
	}
}

func (s *DropIntakeSystem) Update(w *ecs.World) {
	if s.source == nil || s.requests == nil {
		return
	}

	for _, d := range loading.SelectDrops(s.source.PollDrops(), s.policy) {
		s.log.Debug("dropped", "path", d.Path)
		s.requests.Push(loading.NewRequest(d, s.classifier))
	}
}
