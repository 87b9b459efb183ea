package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

const defaultWorkers = 4

// Options configures a Server.
type Options struct {
	// Workers bounds how many loads decode at once. Zero means 4.
	Workers int
	// Watch reloads loaded OS-path scenes when their files change.
	Watch  bool
	Loader SceneLoader
	Logger *slog.Logger
}

type entry struct {
	kind  Kind
	src   Source
	index int
	state LoadState
	scene *Scene
	err   error
}

// Server loads assets in the background and answers status queries
// without blocking.
type Server struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entry

	loader  SceneLoader
	sem     *semaphore.Weighted
	log     *slog.Logger
	watcher *Watcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewServer(opts Options) (*Server, error) {
	if opts.Workers < 0 {
		return nil, fmt.Errorf("assets: workers must not be negative, got %d", opts.Workers)
	}
	workers := opts.Workers
	if workers == 0 {
		workers = defaultWorkers
	}
	loader := opts.Loader
	if loader == nil {
		loader = GLTFLoader{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		entries: make(map[uuid.UUID]*entry),
		loader:  loader,
		sem:     semaphore.NewWeighted(int64(workers)),
		log:     logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	if opts.Watch {
		w, err := NewWatcher()
		if err != nil {
			cancel()
			return nil, fmt.Errorf("assets: watch for changes: %w", err)
		}
		s.watcher = w
		s.wg.Add(1)
		go s.watch()
	}

	return s, nil
}

// LoadScene submits a scene load and returns immediately. Every call
// issues a fresh handle, even for a path that is already loading.
func (s *Server) LoadScene(src Source, index int) SceneHandle {
	h := NewSceneHandle()

	s.mu.Lock()
	s.entries[h.id] = &entry{kind: KindScene, src: src, index: index, state: NotLoaded}
	s.mu.Unlock()

	s.wg.Add(1)
	go s.load(h.id)
	return h
}

func (s *Server) load(id uuid.UUID) {
	defer s.wg.Done()

	if err := s.sem.Acquire(s.ctx, 1); err != nil {
		s.finish(id, nil, err)
		return
	}
	defer s.sem.Release(1)

	s.mu.Lock()
	e := s.entries[id]
	e.state = Loading
	src, index := e.src, e.index
	s.mu.Unlock()

	scene, err := s.loader.LoadScene(s.ctx, src, index)
	s.finish(id, scene, err)

	if err == nil && s.watcher != nil && src.FS == nil {
		if werr := s.watcher.WatchFile(absPath(src.Path)); werr != nil {
			s.log.Debug("watch asset directory", "path", src.Path, "error", werr)
		}
	}
}

func (s *Server) finish(id uuid.UUID, scene *Scene, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[id]
	if err != nil {
		e.state = Failed
		e.err = err
		return
	}
	e.state = Loaded
	e.scene = scene
}

// LoadState reports the handle's state. Unknown handles are NotLoaded.
func (s *Server) LoadState(h Handle) LoadState {
	if !IsValid(h) {
		return NotLoaded
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[h.ID()]
	if !ok || e.kind != h.Kind() {
		return NotLoaded
	}
	return e.state
}

// Path returns the path the handle was submitted with.
func (s *Server) Path(h Handle) (string, bool) {
	if !IsValid(h) {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[h.ID()]
	if !ok {
		return "", false
	}
	return e.src.Path, true
}

// Scene returns a copy of the loaded scene summary.
func (s *Server) Scene(h SceneHandle) (*Scene, bool) {
	if !h.Valid() {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[h.id]
	if !ok || e.scene == nil {
		return nil, false
	}
	scene := *e.scene
	return &scene, true
}

// Err returns the failure reason of a Failed handle.
func (s *Server) Err(h Handle) error {
	if !IsValid(h) {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[h.ID()]; ok {
		return e.err
	}
	return nil
}

// Close cancels queued loads, stops watching and waits for workers.
func (s *Server) Close() error {
	s.cancel()
	var err error
	if s.watcher != nil {
		err = s.watcher.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) watch() {
	defer s.wg.Done()
	for {
		select {
		case path, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.reload(path)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("asset watcher", "error", err)
		case <-s.ctx.Done():
			return
		}
	}
}

// reload re-decodes loaded scenes whose file changed. A change to a .bin
// buffer reloads every scene in the same directory. The state stays
// Loaded either way.
func (s *Server) reload(changed string) {
	buffer := strings.EqualFold(filepath.Ext(changed), ".bin")

	type target struct {
		id    uuid.UUID
		src   Source
		index int
	}
	var targets []target

	s.mu.RLock()
	for id, e := range s.entries {
		if e.state != Loaded || e.src.FS != nil {
			continue
		}
		p := absPath(e.src.Path)
		if p == changed || (buffer && filepath.Dir(p) == filepath.Dir(changed)) {
			targets = append(targets, target{id: id, src: e.src, index: e.index})
		}
	}
	s.mu.RUnlock()

	for _, t := range targets {
		scene, err := s.loader.LoadScene(s.ctx, t.src, t.index)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.log.Warn("reload failed, keeping previous scene", "path", t.src.Path, "error", err)
			}
			continue
		}

		s.mu.Lock()
		if e, ok := s.entries[t.id]; ok && e.state == Loaded {
			version := 0
			if e.scene != nil {
				version = e.scene.Version
			}
			scene.Version = version + 1
			e.scene = scene
		}
		s.mu.Unlock()
		s.log.Info("reloaded", "path", t.src.Path, "version", scene.Version)
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
