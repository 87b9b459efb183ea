package loading

import (
	"math/rand"
	"testing"

	"github.com/milk9111/sceneviewer/assets"
)

func TestRegistryTrack(t *testing.T) {
	r := NewRegistry()
	h := assets.NewSceneHandle()

	cases := []struct {
		name   string
		handle assets.Handle
		want   bool
	}{
		{"valid", h, true},
		{"duplicate", h, false},
		{"zero_value", assets.SceneHandle{}, false},
		{"nil", nil, false},
		{"second_valid", assets.NewSceneHandle(), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := r.Track(c.handle); got != c.want {
				t.Fatalf("Track = %v, want %v", got, c.want)
			}
		})
	}
	if r.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", r.Pending())
	}
}

func TestReconcileRemovalDuringIteration(t *testing.T) {
	srv := newFakeServer()
	r := NewRegistry()

	statuses := []assets.LoadState{assets.Loading, assets.Loaded, assets.Loading, assets.Failed}
	handles := make([]assets.Handle, len(statuses))
	for i, st := range statuses {
		h := srv.LoadScene(assets.Source{Path: string(rune('a'+i)) + ".gltf"}, 0)
		srv.set(h, st)
		handles[i] = h
		r.Track(h)
	}

	resolved := r.Reconcile(srv)
	if len(resolved) != 2 {
		t.Fatalf("resolved %d, want 2", len(resolved))
	}
	if resolved[0].Handle != handles[1] || resolved[0].Status != assets.Loaded || resolved[0].Path != "b.gltf" {
		t.Fatalf("first resolution = %+v", resolved[0])
	}
	if resolved[1].Handle != handles[3] || resolved[1].Status != assets.Failed || resolved[1].Path != "d.gltf" {
		t.Fatalf("second resolution = %+v", resolved[1])
	}

	left := r.Entries()
	if len(left) != 2 {
		t.Fatalf("left %d entries, want 2", len(left))
	}
	for _, e := range left {
		if e.Handle != handles[0] && e.Handle != handles[2] {
			t.Fatalf("unexpected survivor %v", e.Handle)
		}
		if e.Status != assets.Loading {
			t.Fatalf("survivor status = %v", e.Status)
		}
	}
}

func TestReconcileConsecutiveTerminals(t *testing.T) {
	// Adjacent terminal entries are where index-based removal skips one.
	srv := newFakeServer()
	r := NewRegistry()
	for i := 0; i < 5; i++ {
		h := srv.LoadScene(assets.Source{Path: "m.glb"}, 0)
		srv.set(h, assets.Loaded)
		r.Track(h)
	}
	if got := len(r.Reconcile(srv)); got != 5 {
		t.Fatalf("resolved %d, want 5", got)
	}
	if r.Pending() != 0 {
		t.Fatalf("pending = %d", r.Pending())
	}
}

func TestReconcileNonTerminalStability(t *testing.T) {
	srv := newFakeServer()
	r := NewRegistry()

	notLoaded := srv.LoadScene(assets.Source{Path: "a.gltf"}, 0)
	loading := srv.LoadScene(assets.Source{Path: "b.gltf"}, 0)
	srv.set(loading, assets.Loading)
	r.Track(notLoaded)
	r.Track(loading)

	for tick := 0; tick < 10; tick++ {
		if got := r.Reconcile(srv); len(got) != 0 {
			t.Fatalf("tick %d resolved %v", tick, got)
		}
	}
	if !r.Contains(notLoaded) || !r.Contains(loading) {
		t.Fatalf("non-terminal entries must stay tracked")
	}
}

func TestReconcileIdempotent(t *testing.T) {
	srv := newFakeServer()
	r := NewRegistry()
	a := srv.LoadScene(assets.Source{Path: "a.gltf"}, 0)
	b := srv.LoadScene(assets.Source{Path: "b.gltf"}, 0)
	srv.set(a, assets.Loaded)
	srv.set(b, assets.Loading)
	r.Track(a)
	r.Track(b)

	if got := len(r.Reconcile(srv)); got != 1 {
		t.Fatalf("first pass resolved %d", got)
	}
	before := r.Entries()
	if got := r.Reconcile(srv); len(got) != 0 {
		t.Fatalf("second pass resolved %v", got)
	}
	after := r.Entries()
	if len(before) != len(after) || before[0] != after[0] {
		t.Fatalf("second pass mutated registry: %v -> %v", before, after)
	}
}

func TestReconcileMissingPath(t *testing.T) {
	srv := newFakeServer()
	r := NewRegistry()
	h := srv.LoadScene(assets.Source{Path: "gone.gltf"}, 0)
	srv.set(h, assets.Failed)
	delete(srv.paths, h)
	r.Track(h)

	got := r.Reconcile(srv)
	if len(got) != 1 || got[0].Path != "" || got[0].Status != assets.Failed {
		t.Fatalf("resolution = %+v", got)
	}
}

func TestReconcileShrinkUnderRandomInterleaving(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		srv := newFakeServer()
		r := NewRegistry()

		const n = 25
		var handles []assets.Handle
		for i := 0; i < n; i++ {
			h := srv.LoadScene(assets.Source{Path: "x.gltf"}, 0)
			handles = append(handles, h)
			r.Track(h)
		}

		seen := make(map[assets.Handle]int)
		for tick := 0; r.Pending() > 0; tick++ {
			if tick > 10*n {
				t.Fatalf("seed %d: registry never drained", seed)
			}
			for _, h := range handles {
				switch srv.states[h] {
				case assets.NotLoaded:
					if rng.Intn(2) == 0 {
						srv.set(h, assets.Loading)
					}
				case assets.Loading:
					switch rng.Intn(3) {
					case 0:
						srv.set(h, assets.Loaded)
					case 1:
						srv.set(h, assets.Failed)
					}
				}
			}
			for _, res := range r.Reconcile(srv) {
				seen[res.Handle]++
			}
		}

		for _, h := range handles {
			if seen[h] != 1 {
				t.Fatalf("seed %d: handle resolved %d times", seed, seen[h])
			}
		}
	}
}
