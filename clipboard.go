package main

import (
	"log/slog"

	"golang.design/x/clipboard"

	"github.com/milk9111/sceneviewer/loading"
)

// pasteSource reads file paths from the system clipboard.
type pasteSource struct {
	ok  bool
	log *slog.Logger
}

func newPasteSource(logger *slog.Logger) *pasteSource {
	p := &pasteSource{log: logger}
	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable, paste disabled", "error", err)
		return p
	}
	p.ok = true
	return p
}

// Paths returns the paths currently on the clipboard.
func (p *pasteSource) Paths() []string {
	if !p.ok {
		return nil
	}
	paths := loading.ParsePathList(string(clipboard.Read(clipboard.FmtText)))
	p.log.Debug("pasted", "count", len(paths))
	return paths
}
