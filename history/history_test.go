package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Handle: "h1", Path: "a.gltf", Kind: "scene", Status: "loaded", At: base},
		{Handle: "h2", Path: "b.glb", Kind: "scene", Status: "failed", Error: "boom", At: base.Add(time.Second)},
		{Handle: "h3", Path: "c.gltf", Kind: "scene", Status: "loaded", At: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := s.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	cases := []struct {
		name string
		n    int
		want []string
	}{
		{"all", 0, []string{"c.gltf", "b.glb", "a.gltf"}},
		{"limit", 2, []string{"c.gltf", "b.glb"}},
		{"over_limit", 10, []string{"c.gltf", "b.glb", "a.gltf"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := s.Recent(c.n)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(c.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(c.want))
			}
			for i := range got {
				if got[i].Path != c.want[i] {
					t.Fatalf("entry %d = %s, want %s", i, got[i].Path, c.want[i])
				}
			}
		})
	}

	got, _ := s.Recent(2)
	if got[1].Error != "boom" || got[1].Status != "failed" || !got[1].At.Equal(base.Add(time.Second)) {
		t.Fatalf("round trip lost fields: %+v", got[1])
	}
}

func TestRecordStampsTime(t *testing.T) {
	s := openTestStore(t)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if err := s.Record(Entry{Handle: "h", Path: "x.gltf", Status: "loaded"}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Recent(1)
	if err != nil || len(got) != 1 || !got[0].At.Equal(fixed) {
		t.Fatalf("got %+v, %v", got, err)
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := s.Record(Entry{Handle: "h", Path: string(rune('a' + i)), At: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Prune(2); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	got, err := s.Recent(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Path != "e" || got[1].Path != "d" {
		t.Fatalf("after prune: %+v", got)
	}
	if err := s.Prune(-1); err == nil {
		t.Fatalf("expected error for negative keep")
	}
}
