package menu

import (
	"image"
	"image/color"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tilemenu/pkg/fetch"
	"github.com/oakwood-commons/tilemenu/pkg/widget"
)

var (
	_ widget.Widget = (*Root)(nil)
	_ widget.Widget = (*Anchor)(nil)
	_ widget.Widget = (*Label)(nil)
	_ widget.Widget = (*Tile)(nil)
)

// Root fills the whole frame with the background color.
type Root struct {
	widget.Properties
}

// NewRoot returns a root widget of the given size.
func NewRoot(width, height uint32, background color.RGBA) *Root {
	r := &Root{}
	r.SetBounds(width, height).SetColor(background)
	return r
}

func (r *Root) Draw(ctx *widget.Context, target widget.Texture) error {
	return ctx.Backend.Clear(target, r.Color)
}

// Anchor is an invisible, zero-sized node that groups children so they can
// be translated together.
type Anchor struct {
	widget.Properties
}

// NewAnchor returns a hidden anchor at the origin.
func NewAnchor() *Anchor {
	a := &Anchor{}
	a.SetHidden(true)
	return a
}

func (a *Anchor) Draw(*widget.Context, widget.Texture) error {
	return nil
}

// labelHeight approximates the rendered height of one line of text with a
// little padding below.
func labelHeight(pointSize int) uint32 {
	return uint32(float32(pointSize) * 1.333)
}

// Label is a row title rendered over the background color.
type Label struct {
	widget.Properties
	Text       string
	PointSize  int
	Background color.RGBA
}

// NewLabel returns a label at (x, y) whose text wraps at maxWidth.
func NewLabel(text string, pointSize, x, y int, maxWidth uint32, fg, bg color.RGBA) *Label {
	l := &Label{Text: text, PointSize: pointSize, Background: bg}
	l.SetOrigin(x, y).SetBounds(maxWidth, labelHeight(pointSize)).SetColor(fg)
	return l
}

func (l *Label) Draw(ctx *widget.Context, target widget.Texture) error {
	if err := ctx.Backend.Clear(target, l.Background); err != nil {
		return err
	}
	text, err := ctx.Textures.RenderText(l.Text, l.PointSize, l.Color, l.Width)
	if err != nil {
		return err
	}
	w, h := text.Size()
	return ctx.Backend.Blit(target, text, image.Rect(0, 0, int(w), int(h)))
}

// thumbState tracks a tile's thumbnail download.
type thumbState int

const (
	thumbNone thumbState = iota
	thumbPending
	thumbReady
	thumbFailed
)

// Poller is the non-blocking half of the fetch engine a tile needs.
type Poller interface {
	Submit(locator string) fetch.Result
}

// Tile is a selectable rectangle showing a thumbnail once it has been
// downloaded. Until then, and after a failure, it shows a flat fill.
type Tile struct {
	widget.Properties
	Title       string
	Locator     string
	Placeholder color.RGBA

	poller     Poller
	log        logr.Logger
	retryTicks int

	state thumbState
	path  string
	err   error
	wait  int
}

// NewTile returns a tile at (x, y) whose thumbnail is fetched from locator
// through poller. An empty locator never fetches.
func NewTile(x, y int, width, height uint32, fill, placeholder color.RGBA, locator string, poller Poller, retryTicks int, log logr.Logger) *Tile {
	t := &Tile{
		Locator:     locator,
		Placeholder: placeholder,
		poller:      poller,
		log:         log,
		retryTicks:  retryTicks,
	}
	if locator != "" && poller != nil {
		t.state = thumbPending
	}
	t.SetOrigin(x, y).SetBounds(width, height).SetColor(fill)
	return t
}

// Pending reports whether the thumbnail is still being downloaded.
func (t *Tile) Pending() bool {
	return t.state == thumbPending
}

// Err returns the last thumbnail error, if any.
func (t *Tile) Err() error {
	return t.err
}

// Update polls the fetch engine while the thumbnail is pending and schedules
// a new poll some ticks after a failure.
func (t *Tile) Update() {
	switch t.state {
	case thumbPending:
		r := t.poller.Submit(t.Locator)
		switch r.Status {
		case fetch.StatusReady:
			t.state, t.path, t.err = thumbReady, r.Path, nil
			t.Invalidate()
		case fetch.StatusFailed:
			t.fail(r.Err)
		}
	case thumbFailed:
		if t.retryTicks <= 0 {
			return
		}
		t.wait--
		if t.wait <= 0 {
			t.state = thumbPending
		}
	}
}

func (t *Tile) fail(err error) {
	t.log.V(1).Info("thumbnail unavailable", "locator", t.Locator, "error", err.Error())
	t.state, t.err, t.wait = thumbFailed, err, t.retryTicks
	t.Invalidate()
}

func (t *Tile) Draw(ctx *widget.Context, target widget.Texture) error {
	switch t.state {
	case thumbFailed:
		return ctx.Backend.Clear(target, t.Placeholder)
	case thumbReady:
		img, err := ctx.Textures.LoadImage(t.path)
		if err != nil {
			// The file will not change, so a decode failure is final.
			t.log.Error(err, "decode thumbnail", "locator", t.Locator)
			t.state, t.err, t.retryTicks = thumbFailed, err, 0
			return ctx.Backend.Clear(target, t.Placeholder)
		}
		return ctx.Backend.Blit(target, img, image.Rect(0, 0, int(t.Width), int(t.Height)))
	default:
		return ctx.Backend.Clear(target, t.Color)
	}
}
