// Package app drives a widget cache from input events and frame ticks.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tilemenu/pkg/widget"
)

// EventKind classifies an Event.
type EventKind int

const (
	EventKey EventKind = iota + 1
	EventResize
	EventQuit
)

// Key is a navigation key.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEscape
	KeyEnter
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyEscape:
		return "escape"
	case KeyEnter:
		return "enter"
	default:
		return "none"
	}
}

// Event is an input event delivered to the application state.
type Event struct {
	Kind EventKind
	Key  Key
	// Width and Height are the new frame size of a resize event.
	Width, Height int
}

// KeyEvent returns a key press event.
func KeyEvent(k Key) Event {
	return Event{Kind: EventKey, Key: k}
}

// ResizeEvent returns a resize event.
func ResizeEvent(width, height int) Event {
	return Event{Kind: EventResize, Width: width, Height: height}
}

// Action tells the loop whether to keep running.
type Action int

const (
	Continue Action = iota
	Quit
)

// State is the application logic behind the loop.
type State[W widget.Widget] interface {
	// Initialize builds the initial widget tree. It is called exactly once,
	// before anything is drawn.
	Initialize(ctx context.Context, cache *widget.Cache[W]) error
	// HandleEvent reacts to one input event.
	HandleEvent(ev Event, cache *widget.Cache[W]) Action
}

// Idler is implemented by states that know when their background work has
// settled.
type Idler interface {
	Idle() bool
}

// ErrInitialized is returned when Initialize is called twice.
var ErrInitialized = errors.New("app: already initialized")

// App owns the widget cache and the state driving it.
type App[W widget.Widget] struct {
	state       State[W]
	cache       *widget.Cache[W]
	log         logr.Logger
	initialized bool
	frames      uint64
}

// New returns an app rendering root through backend.
func New[W widget.Widget](state State[W], root W, backend widget.Backend, log logr.Logger) *App[W] {
	return &App[W]{
		state: state,
		cache: widget.New(root, backend),
		log:   log,
	}
}

// Cache returns the widget cache.
func (a *App[W]) Cache() *widget.Cache[W] {
	return a.cache
}

// Frames returns the number of frames rendered so far.
func (a *App[W]) Frames() uint64 {
	return a.frames
}

// Initialize lets the state build the widget tree.
func (a *App[W]) Initialize(ctx context.Context) error {
	if a.initialized {
		return ErrInitialized
	}
	a.initialized = true
	start := time.Now()
	if err := a.state.Initialize(ctx, a.cache); err != nil {
		return err
	}
	a.log.V(1).Info("application initialized", "widgets", a.cache.Len(), "elapsed", time.Since(start).String())
	return nil
}

// HandleEvent forwards ev to the state.
func (a *App[W]) HandleEvent(ev Event) Action {
	if ev.Kind == EventQuit {
		return Quit
	}
	return a.state.HandleEvent(ev, a.cache)
}

// Step runs one frame: every widget's update hook, then a render pass if
// anything is invalidated. It reports whether a frame was rendered.
func (a *App[W]) Step() (bool, error) {
	a.cache.Tick()
	if !a.cache.HasPendingRedraw() {
		return false, nil
	}
	stats, err := a.cache.Render()
	if err != nil {
		return false, fmt.Errorf("render frame: %w", err)
	}
	a.frames++
	a.log.V(2).Info("frame rendered", "frame", a.frames, "visited", stats.Visited, "drawn", stats.Drawn, "blitted", stats.Blitted, "created", stats.Created)
	return true, nil
}

// Settle steps every interval until the state reports idle and nothing is
// left to redraw, or ctx ends. States that do not implement Idler settle
// after the first quiet frame.
func (a *App[W]) Settle(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		rendered, err := a.Step()
		if err != nil {
			return err
		}
		idle := true
		if i, ok := a.state.(Idler); ok {
			idle = i.Idle()
		}
		if idle && !rendered && !a.cache.HasPendingRedraw() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
