package component

import "github.com/milk9111/sceneviewer/assets"

// SceneInstance places a submitted scene into the world. Scene stays nil
// until the asset server reports the handle as loaded.
type SceneInstance struct {
	Handle  assets.SceneHandle
	Label   string
	Scene   *assets.Scene
	Version int
}

// Ready reports whether scene data has been attached.
func (s *SceneInstance) Ready() bool {
	return s != nil && s.Scene != nil
}

var SceneInstanceComponent = NewComponentKind[SceneInstance]()
