package loading

import (
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"sync"
)

// DropKind distinguishes dropped files from other drag states.
type DropKind int

const (
	DropFile DropKind = iota
	DropHovered
	DropCancelled
)

// Drop is one raw notification from a drop source.
type Drop struct {
	Kind   DropKind
	Path   string
	Source fs.FS
}

// DropSource yields the drops received since the previous poll.
type DropSource interface {
	PollDrops() []Drop
}

// DropPolicy selects which dropped files of a tick become requests.
type DropPolicy int

const (
	// AllDrops keeps every dropped file in arrival order.
	AllDrops DropPolicy = iota
	// LastDropOnly keeps only the most recent dropped file.
	LastDropOnly
)

func (p DropPolicy) String() string {
	if p == LastDropOnly {
		return "last"
	}
	return "all"
}

// ParseDropPolicy accepts "all" and "last". Empty means all.
func ParseDropPolicy(s string) (DropPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AllDrops, nil
	case "last":
		return LastDropOnly, nil
	default:
		return AllDrops, fmt.Errorf("loading: unknown drop policy %q", s)
	}
}

// SelectDrops filters drops down to dropped files with a path and applies
// the policy.
func SelectDrops(drops []Drop, policy DropPolicy) []Drop {
	var files []Drop
	for _, d := range drops {
		if d.Kind != DropFile || d.Path == "" {
			continue
		}
		files = append(files, d)
	}
	if policy == LastDropOnly && len(files) > 1 {
		return files[len(files)-1:]
	}
	return files
}

// DropQueue is a DropSource fed by the application: startup arguments,
// clipboard paste and the open dialog. It is safe for concurrent use.
type DropQueue struct {
	mu    sync.Mutex
	drops []Drop
}

// PushPaths queues one DropFile per non-empty path.
func (q *DropQueue) PushPaths(paths ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			q.drops = append(q.drops, Drop{Kind: DropFile, Path: p})
		}
	}
}

func (q *DropQueue) Push(d Drop) {
	q.mu.Lock()
	q.drops = append(q.drops, d)
	q.mu.Unlock()
}

func (q *DropQueue) PollDrops() []Drop {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.drops
	q.drops = nil
	return out
}

// ParsePathList splits pasted text into file paths. It accepts one path
// per line, surrounding quotes, and file:// URIs as copied from file
// managers. Comment lines starting with # are skipped.
func ParsePathList(text string) []string {
	var out []string
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' }) {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, `"'`)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "file://") {
			u, err := url.Parse(line)
			if err != nil || u.Path == "" {
				continue
			}
			line = windowsDrivePath(u.Path)
		}
		out = append(out, line)
	}
	return out
}

// windowsDrivePath turns "/C:/x.gltf" from a file:///C:/x.gltf URI into
// "C:/x.gltf".
func windowsDrivePath(p string) string {
	if len(p) >= 3 && p[0] == '/' && isASCIILetter(p[1]) && p[2] == ':' && (len(p) == 3 || p[3] == '/') {
		return p[1:]
	}
	return p
}

func isASCIILetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

type multiSource []DropSource

func (m multiSource) PollDrops() []Drop {
	var out []Drop
	for _, s := range m {
		out = append(out, s.PollDrops()...)
	}
	return out
}

// Sources merges several sources, polled in order.
func Sources(sources ...DropSource) DropSource {
	var m multiSource
	for _, s := range sources {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}
