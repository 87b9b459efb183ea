package system

import (
	"log/slog"

	"github.com/milk9111/sceneviewer/assets"
	"github.com/milk9111/sceneviewer/ecs"
	"github.com/milk9111/sceneviewer/ecs/component"
)

// SceneSource exposes loaded scene data.
type SceneSource interface {
	LoadState(h assets.Handle) assets.LoadState
	Scene(h assets.SceneHandle) (*assets.Scene, bool)
}

// SceneSpawnSystem fills SceneInstance entities once their scene has
// loaded, applies hot-reloaded versions and removes failed instances.
type SceneSpawnSystem struct {
	scenes SceneSource
	log    *slog.Logger
}

func NewSceneSpawnSystem(scenes SceneSource, logger *slog.Logger) *SceneSpawnSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &SceneSpawnSystem{scenes: scenes, log: logger}
}

// RequestClearScenes asks the spawn system to remove all scene instances
// on its next update. Repeated requests before then collapse into one.
func RequestClearScenes(w *ecs.World) {
	if w == nil {
		return
	}
	if _, ok := ecs.First(w, component.ClearScenesRequestComponent); ok {
		return
	}
	ent := ecs.CreateEntity(w)
	_ = ecs.Add(w, ent, component.ClearScenesRequestComponent, &component.ClearScenesRequest{})
}

func (s *SceneSpawnSystem) Update(w *ecs.World) {
	if w == nil || s.scenes == nil {
		return
	}

	if s.consumeClearRequests(w) {
		ecs.ForEach(w, component.SceneInstanceComponent, func(e ecs.Entity, _ *component.SceneInstance) {
			ecs.DestroyEntity(w, e)
		})
		return
	}

	ecs.ForEach(w, component.SceneInstanceComponent, func(e ecs.Entity, inst *component.SceneInstance) {
		switch s.scenes.LoadState(inst.Handle) {
		case assets.Loaded:
			scene, ok := s.scenes.Scene(inst.Handle)
			if !ok {
				return
			}
			if inst.Scene == nil || scene.Version > inst.Version {
				inst.Scene = scene
				inst.Version = scene.Version
				s.log.Debug("scene instantiated", "path", scene.Path, "scene", scene.Index, "version", scene.Version)
			}
		case assets.Failed:
			ecs.DestroyEntity(w, e)
		}
	})
}

func (s *SceneSpawnSystem) consumeClearRequests(w *ecs.World) bool {
	req, ok := ecs.First(w, component.ClearScenesRequestComponent)
	if !ok {
		return false
	}
	ecs.DestroyEntity(w, req)
	return true
}
