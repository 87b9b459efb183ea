package loading

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// TargetKind is what a request should be loaded as.
type TargetKind int

const (
	KindUnknown TargetKind = iota
	KindScene
	KindImage
)

func (k TargetKind) String() string {
	switch k {
	case KindScene:
		return "scene"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// DefaultSubScene asks the dispatcher to pick its configured sub-scene.
const DefaultSubScene = -1

// Request is one "load this path" action produced by intake and consumed
// by dispatch in the same tick.
type Request struct {
	Path string
	// Source resolves Path. Nil means the OS filesystem.
	Source fs.FS
	Kind   TargetKind
	// SubScene selects a scene inside a multi-scene file. DefaultSubScene
	// defers to the dispatcher.
	SubScene int
}

// Target is a classifier's verdict for a path.
type Target struct {
	Kind     TargetKind
	SubScene int
}

// Classifier derives a target from a path.
type Classifier interface {
	Classify(path string) Target
}

// ExtensionClassifier routes by file extension.
type ExtensionClassifier struct {
	// CaseInsensitive makes "A.GLTF" route like "a.gltf".
	CaseInsensitive bool
}

func (c ExtensionClassifier) Classify(path string) Target {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if c.CaseInsensitive {
		ext = strings.ToLower(ext)
	}
	return Target{Kind: kindForExt(ext), SubScene: DefaultSubScene}
}

func kindForExt(ext string) TargetKind {
	switch ext {
	case "gltf", "glb":
		return KindScene
	case "png", "jpg":
		return KindImage
	default:
		return KindUnknown
	}
}

// NewRequest builds a request for a dropped file using c.
func NewRequest(d Drop, c Classifier) Request {
	if c == nil {
		c = ExtensionClassifier{CaseInsensitive: true}
	}
	t := c.Classify(d.Path)
	return Request{Path: d.Path, Source: d.Source, Kind: t.Kind, SubScene: t.SubScene}
}
