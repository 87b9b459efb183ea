package loading

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/milk9111/sceneviewer/assets"
)

type submission struct {
	src   assets.Source
	index int
}

// fakeServer stands in for the asset server. Tests move handles through
// the state machine by hand.
type fakeServer struct {
	states    map[assets.Handle]assets.LoadState
	paths     map[assets.Handle]string
	submitted []submission
	polls     int
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		states: make(map[assets.Handle]assets.LoadState),
		paths:  make(map[assets.Handle]string),
	}
}

func (f *fakeServer) LoadScene(src assets.Source, index int) assets.SceneHandle {
	h := assets.NewSceneHandle()
	f.states[h] = assets.NotLoaded
	f.paths[h] = src.Path
	f.submitted = append(f.submitted, submission{src: src, index: index})
	return h
}

func (f *fakeServer) LoadState(h assets.Handle) assets.LoadState {
	f.polls++
	return f.states[h]
}

func (f *fakeServer) Path(h assets.Handle) (string, bool) {
	p, ok := f.paths[h]
	return p, ok
}

func (f *fakeServer) set(h assets.Handle, st assets.LoadState) {
	f.states[h] = st
}

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func countLines(buf *bytes.Buffer, substr string) int {
	n := 0
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}
