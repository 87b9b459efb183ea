package assets

import "github.com/google/uuid"

// Kind identifies the payload type behind a handle.
type Kind int

const (
	KindScene Kind = iota + 1
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindScene:
		return "scene"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Handle is an opaque, comparable token for one load issued by a Server.
// The set of implementations is closed: SceneHandle and ImageHandle.
type Handle interface {
	ID() uuid.UUID
	Kind() Kind
	Valid() bool
	handle()
}

// SceneHandle refers to a scene load.
type SceneHandle struct {
	id uuid.UUID
}

// NewSceneHandle issues a fresh scene handle. Handles are never reused.
func NewSceneHandle() SceneHandle {
	return SceneHandle{id: uuid.New()}
}

func (h SceneHandle) ID() uuid.UUID { return h.id }
func (h SceneHandle) Kind() Kind    { return KindScene }
func (h SceneHandle) Valid() bool   { return h.id != uuid.Nil }
func (h SceneHandle) String() string {
	return "scene:" + h.id.String()
}
func (SceneHandle) handle() {}

// ImageHandle is reserved for image loads. The server does not issue them yet.
type ImageHandle struct {
	id uuid.UUID
}

func NewImageHandle() ImageHandle {
	return ImageHandle{id: uuid.New()}
}

func (h ImageHandle) ID() uuid.UUID { return h.id }
func (h ImageHandle) Kind() Kind    { return KindImage }
func (h ImageHandle) Valid() bool   { return h.id != uuid.Nil }
func (h ImageHandle) String() string {
	return "image:" + h.id.String()
}
func (ImageHandle) handle() {}

// IsValid reports whether h is non-nil and was issued by a server.
func IsValid(h Handle) bool {
	return h != nil && h.Valid()
}

// LoadState is the per-handle load state machine:
//
//	NotLoaded -> Loading -> Loaded | Failed
type LoadState int

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case NotLoaded:
		return "not_loaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s LoadState) Terminal() bool {
	return s == Loaded || s == Failed
}
