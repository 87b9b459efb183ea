//go:build dialog
// +build dialog

package main

import (
	"errors"

	"github.com/sqweek/dialog"
)

// openSceneDialog opens the native file dialog and returns the selected
// path, or "" when the user cancels.
func openSceneDialog() (string, error) {
	path, err := dialog.File().
		Filter("glTF scenes", "gltf", "glb").
		Filter("Images", "png", "jpg", "jpeg").
		Title("Open scene").
		Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", nil
	}
	return path, err
}
