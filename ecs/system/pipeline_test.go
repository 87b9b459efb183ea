package system

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/milk9111/sceneviewer/assets"
	"github.com/milk9111/sceneviewer/ecs"
	"github.com/milk9111/sceneviewer/ecs/component"
	"github.com/milk9111/sceneviewer/history"
	"github.com/milk9111/sceneviewer/loading"
)

type fakeAssets struct {
	states map[assets.Handle]assets.LoadState
	paths  map[assets.Handle]string
	scenes map[assets.Handle]*assets.Scene
	errs   map[assets.Handle]error
	byPath map[string]assets.SceneHandle
	order  []string
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{
		states: make(map[assets.Handle]assets.LoadState),
		paths:  make(map[assets.Handle]string),
		scenes: make(map[assets.Handle]*assets.Scene),
		errs:   make(map[assets.Handle]error),
		byPath: make(map[string]assets.SceneHandle),
	}
}

func (f *fakeAssets) LoadScene(src assets.Source, index int) assets.SceneHandle {
	h := assets.NewSceneHandle()
	f.states[h] = assets.Loading
	f.paths[h] = src.Path
	f.byPath[src.Path] = h
	f.order = append(f.order, src.Path)
	return h
}

func (f *fakeAssets) LoadState(h assets.Handle) assets.LoadState { return f.states[h] }

func (f *fakeAssets) Path(h assets.Handle) (string, bool) {
	p, ok := f.paths[h]
	return p, ok
}

func (f *fakeAssets) Scene(h assets.SceneHandle) (*assets.Scene, bool) {
	s, ok := f.scenes[h]
	if !ok {
		return nil, false
	}
	c := *s
	return &c, true
}

func (f *fakeAssets) Err(h assets.Handle) error { return f.errs[h] }

func (f *fakeAssets) resolve(path string, scene *assets.Scene, err error) {
	h := f.byPath[path]
	if err != nil {
		f.states[h] = assets.Failed
		f.errs[h] = err
		return
	}
	f.states[h] = assets.Loaded
	f.scenes[h] = scene
}

type memJournal struct {
	entries []history.Entry
}

func (j *memJournal) Record(e history.Entry) error {
	j.entries = append(j.entries, e)
	return nil
}

type harness struct {
	world     *ecs.World
	scheduler *ecs.Scheduler
	drops     *loading.DropQueue
	assets    *fakeAssets
	tracker   loading.Tracker
	journal   *memJournal
	logs      *bytes.Buffer
}

func newHarness(t *testing.T, policy loading.DropPolicy, tracker loading.Tracker) *harness {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := &harness{
		world:   ecs.NewWorld(),
		drops:   &loading.DropQueue{},
		assets:  newFakeAssets(),
		tracker: tracker,
		journal: &memJournal{},
		logs:    &buf,
	}
	requests := ecs.NewQueue[loading.Request]()
	h.scheduler = ecs.NewScheduler(
		NewDropIntakeSystem(h.drops, policy, loading.ExtensionClassifier{CaseInsensitive: true}, requests, logger),
		NewLoadDispatchSystem(requests, loading.DispatcherOptions{
			Submitter: h.assets,
			Tracker:   tracker,
			Logger:    logger,
		}),
		NewLoadReconcileSystem(tracker, h.assets, h.journal, logger),
		NewSceneSpawnSystem(h.assets, logger),
	)
	return h
}

func (h *harness) tick() {
	h.scheduler.Update(h.world)
}

func (h *harness) count(substr string) int {
	n := 0
	for _, line := range strings.Split(h.logs.String(), "\n") {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

func (h *harness) instances() map[string]*component.SceneInstance {
	out := make(map[string]*component.SceneInstance)
	ecs.ForEach(h.world, component.SceneInstanceComponent, func(_ ecs.Entity, inst *component.SceneInstance) {
		out[inst.Label] = inst
	})
	return out
}

func TestPipelineLifecycle(t *testing.T) {
	h := newHarness(t, loading.AllDrops, loading.NewRegistry())

	h.drops.PushPaths("models/a.gltf", "models/b.GLB", "c.png", "d.xyz")
	h.tick()

	if got := h.assets.order; len(got) != 2 || got[0] != "models/a.gltf" || got[1] != "models/b.GLB" {
		t.Fatalf("submitted %v", got)
	}
	if h.tracker.Pending() != 2 {
		t.Fatalf("pending = %d", h.tracker.Pending())
	}
	inst := h.instances()
	if len(inst) != 2 || inst["a.gltf"] == nil || inst["a.gltf"].Ready() {
		t.Fatalf("instances after submit = %v", inst)
	}
	if h.count("image loading is not implemented") != 1 {
		t.Fatalf("expected one unimplemented log line:\n%s", h.logs)
	}

	h.assets.resolve("models/a.gltf", &assets.Scene{Path: "models/a.gltf", Name: "a", Nodes: 3, Scenes: 1}, nil)
	h.assets.resolve("models/b.GLB", nil, errors.New("bad buffer"))
	h.tick()

	if h.tracker.Pending() != 0 {
		t.Fatalf("pending after resolve = %d", h.tracker.Pending())
	}
	if h.count(`msg=loaded`) != 1 || h.count(`msg="load failed"`) != 1 {
		t.Fatalf("expected one success and one failure line:\n%s", h.logs)
	}
	if h.count("bad buffer") != 1 {
		t.Fatalf("failure line should carry the load error:\n%s", h.logs)
	}

	inst = h.instances()
	if len(inst) != 1 || !inst["a.gltf"].Ready() || inst["a.gltf"].Scene.Nodes != 3 {
		t.Fatalf("instances after resolve = %v", inst)
	}

	if len(h.journal.entries) != 2 {
		t.Fatalf("journal = %+v", h.journal.entries)
	}
	if e := h.journal.entries[1]; e.Status != "failed" || e.Error != "bad buffer" || e.Kind != "scene" {
		t.Fatalf("failure entry = %+v", e)
	}

	before := h.logs.Len()
	h.tick()
	h.tick()
	if h.logs.Len() != before {
		t.Fatalf("idle ticks logged:\n%s", h.logs.String()[before:])
	}
	if len(h.journal.entries) != 2 {
		t.Fatalf("idle ticks journaled %d entries", len(h.journal.entries))
	}
}

func TestPipelineLastDropOnly(t *testing.T) {
	h := newHarness(t, loading.LastDropOnly, loading.NewRegistry())

	h.drops.PushPaths("a.gltf", "b.gltf", "c.gltf")
	h.tick()

	if got := h.assets.order; len(got) != 1 || got[0] != "c.gltf" {
		t.Fatalf("submitted %v, want only c.gltf", got)
	}
}

func TestPipelineSingleSlot(t *testing.T) {
	slot := loading.NewSlot()
	h := newHarness(t, loading.AllDrops, slot)

	h.drops.PushPaths("first.gltf")
	h.tick()
	h.drops.PushPaths("second.gltf")
	h.tick()

	h.assets.resolve("first.gltf", &assets.Scene{Path: "first.gltf"}, nil)
	h.tick()
	if h.count("msg=loaded") != 0 {
		t.Fatalf("abandoned load must not be reported:\n%s", h.logs)
	}

	h.assets.resolve("second.gltf", &assets.Scene{Path: "second.gltf"}, nil)
	h.tick()
	h.tick()
	if h.count("msg=loaded") != 1 {
		t.Fatalf("expected exactly one loaded line:\n%s", h.logs)
	}
	cur, ok := slot.Current()
	if !ok || cur.Handle != h.assets.byPath["second.gltf"] {
		t.Fatalf("slot holds %+v", cur)
	}
}

func TestSceneSpawnReloadAndClear(t *testing.T) {
	h := newHarness(t, loading.AllDrops, loading.NewRegistry())

	h.drops.PushPaths("m.gltf")
	h.tick()
	h.assets.resolve("m.gltf", &assets.Scene{Path: "m.gltf", Nodes: 1}, nil)
	h.tick()

	handle := h.assets.byPath["m.gltf"]
	h.assets.scenes[handle] = &assets.Scene{Path: "m.gltf", Nodes: 7, Version: 1}
	h.tick()

	inst := h.instances()["m.gltf"]
	if inst == nil || inst.Version != 1 || inst.Scene.Nodes != 7 {
		t.Fatalf("instance after reload = %+v", inst)
	}

	RequestClearScenes(h.world)
	RequestClearScenes(h.world)
	if n := ecs.Count(h.world, component.ClearScenesRequestComponent); n != 1 {
		t.Fatalf("clear requests = %d, want 1", n)
	}
	h.tick()
	if n := ecs.Count(h.world, component.SceneInstanceComponent); n != 0 {
		t.Fatalf("instances after clear = %d", n)
	}
	if n := ecs.Count(h.world, component.ClearScenesRequestComponent); n != 0 {
		t.Fatalf("clear request not consumed")
	}
}
