package system

import (
	"path/filepath"

	"github.com/milk9111/sceneviewer/assets"
	"github.com/milk9111/sceneviewer/ecs"
	"github.com/milk9111/sceneviewer/ecs/component"
	"github.com/milk9111/sceneviewer/loading"
)

type pendingInstance struct {
	handle assets.SceneHandle
	path   string
}

// LoadDispatchSystem drains the request queue into the dispatcher and
// spawns a SceneInstance for every submitted scene.
type LoadDispatchSystem struct {
	requests   *ecs.Queue[loading.Request]
	dispatcher *loading.Dispatcher
	spawn      []pendingInstance
}

// NewLoadDispatchSystem builds the dispatcher from opts. Any Instantiator
// in opts is replaced by one that spawns into the world.
func NewLoadDispatchSystem(requests *ecs.Queue[loading.Request], opts loading.DispatcherOptions) *LoadDispatchSystem {
	s := &LoadDispatchSystem{requests: requests}
	opts.Instantiator = loading.InstantiatorFunc(func(h assets.SceneHandle, path string) {
		s.spawn = append(s.spawn, pendingInstance{handle: h, path: path})
	})
	s.dispatcher = loading.NewDispatcher(opts)
	return s
}

// Dispatcher exposes the underlying dispatcher.
func (s *LoadDispatchSystem) Dispatcher() *loading.Dispatcher {
	return s.dispatcher
}

func (s *LoadDispatchSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	for _, req := range s.requests.Drain() {
		s.dispatcher.Dispatch(req)
	}

	for _, p := range s.spawn {
		ent := ecs.CreateEntity(w)
		_ = ecs.Add(w, ent, component.SceneInstanceComponent, &component.SceneInstance{
			Handle: p.handle,
			Label:  filepath.Base(p.path),
		})
	}
	s.spawn = s.spawn[:0]
}
