package main

import (
	"io/fs"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/sceneviewer/loading"
)

// windowDrops reports files dropped onto the window. Ebiten exposes each
// tick's drop as a file system; dropped directories are walked so every
// file inside becomes its own drop. The OS path behind the file system is
// not exposed, so these drops are never hot-reloaded.
type windowDrops struct{}

func (windowDrops) PollDrops() []loading.Drop {
	fsys := ebiten.DroppedFiles()
	if fsys == nil {
		return nil
	}

	var drops []loading.Drop
	_ = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		drops = append(drops, loading.Drop{Kind: loading.DropFile, Path: path, Source: fsys})
		return nil
	})
	return drops
}
