package loading

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/milk9111/sceneviewer/assets"
)

// Submitter starts asynchronous scene loads.
type Submitter interface {
	LoadScene(src assets.Source, index int) assets.SceneHandle
}

// Instantiator places a submitted scene into the live world once it has
// loaded. Calls are fire-and-forget.
type Instantiator interface {
	Instantiate(h assets.SceneHandle, path string)
}

// InstantiatorFunc adapts a function to Instantiator.
type InstantiatorFunc func(h assets.SceneHandle, path string)

func (f InstantiatorFunc) Instantiate(h assets.SceneHandle, path string) { f(h, path) }

// Outcome is what dispatch did with a request.
type Outcome int

const (
	// Ignored requests had no recognised extension.
	Ignored Outcome = iota
	// Unimplemented requests had a recognised kind with no loader route.
	Unimplemented
	// Submitted requests produced a handle that is now tracked.
	Submitted
)

func (o Outcome) String() string {
	switch o {
	case Submitted:
		return "submitted"
	case Unimplemented:
		return "unimplemented"
	default:
		return "ignored"
	}
}

// Dispatcher routes requests to the asset server and records every real
// submission in its tracker.
type Dispatcher struct {
	submitter       Submitter
	tracker         Tracker
	instantiator    Instantiator
	defaultSubScene int
	log             *slog.Logger
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Submitter    Submitter
	Tracker      Tracker
	Instantiator Instantiator
	// DefaultSubScene is used for requests that do not pick one. Negative
	// values are clamped to 0.
	DefaultSubScene int
	Logger          *slog.Logger
}

func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sub := opts.DefaultSubScene
	if sub < 0 {
		sub = 0
	}
	return &Dispatcher{
		submitter:       opts.Submitter,
		tracker:         opts.Tracker,
		instantiator:    opts.Instantiator,
		defaultSubScene: sub,
		log:             logger,
	}
}

// DefaultSubScene returns the sub-scene index used when a request does not
// choose one.
func (d *Dispatcher) DefaultSubScene() int {
	return d.defaultSubScene
}

// Tracker returns the tracker that receives submitted handles.
func (d *Dispatcher) Tracker() Tracker {
	return d.tracker
}

// Dispatch handles one request. The returned handle is nil unless the
// outcome is Submitted.
func (d *Dispatcher) Dispatch(req Request) (assets.Handle, Outcome) {
	switch req.Kind {
	case KindScene:
		if d.submitter == nil || d.tracker == nil {
			d.log.Warn("scene route has no asset server", "path", req.Path)
			return nil, Ignored
		}
		index := req.SubScene
		if index < 0 {
			index = d.defaultSubScene
		}
		h := d.submitter.LoadScene(assets.Source{Path: req.Path, FS: req.Source}, index)
		if !d.tracker.Track(h) {
			d.log.Warn("asset server returned an untrackable handle", "path", req.Path, "handle", h)
			return nil, Ignored
		}
		d.log.Debug("submitted", "path", req.Path, "handle", h, "sub_scene", index)
		if d.instantiator != nil {
			d.instantiator.Instantiate(h, req.Path)
		}
		return h, Submitted
	case KindImage:
		d.log.Info("image loading is not implemented", "path", req.Path)
		return nil, Unimplemented
	default:
		return nil, Ignored
	}
}

// TrackingMode names a Tracker implementation.
type TrackingMode string

const (
	TrackRegistry TrackingMode = "registry"
	TrackSingle   TrackingMode = "single"
)

// ParseTrackingMode accepts "registry" and "single". Empty means registry.
func ParseTrackingMode(s string) (TrackingMode, error) {
	switch m := TrackingMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", TrackRegistry:
		return TrackRegistry, nil
	case TrackSingle:
		return TrackSingle, nil
	default:
		return "", fmt.Errorf("loading: unknown tracking mode %q", s)
	}
}

// NewTracker builds the tracker for mode. Empty means registry.
func NewTracker(mode string) (Tracker, error) {
	m, err := ParseTrackingMode(mode)
	if err != nil {
		return nil, err
	}
	if m == TrackSingle {
		return NewSlot(), nil
	}
	return NewRegistry(), nil
}
