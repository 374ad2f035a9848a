// Package widget implements a retained-mode widget cache: an arena of
// positioned, sized and colored rectangles that are redrawn into cached
// textures only when invalidated and composed onto a frame every tick.
package widget

import (
	"image"
	"image/color"
)

// Widget describes a rectangular UI element stored in a Cache.
type Widget interface {
	// Props returns the mutable properties shared by every widget.
	Props() *Properties

	// Update runs once per frame. Widgets use it to notice asynchronous state
	// changes and invalidate themselves.
	Update()

	// Draw renders the widget into target, which is already sized to the
	// widget's bounds. Only called when the widget is invalidated.
	Draw(ctx *Context, target Texture) error
}

// Border is a solid outline drawn inside a widget's bounds.
type Border struct {
	Color color.RGBA
	Width uint8
}

// Properties contains the state common to all widgets. Embedding Properties
// in a concrete widget provides the Props accessor and a no-op Update.
type Properties struct {
	// Origin is the top-left corner in frame coordinates.
	Origin image.Point
	// Width and Height are the bounds in pixels.
	Width, Height uint32
	// Color is the base color of the widget.
	Color color.RGBA
	// Border is drawn on top of the content when set.
	Border *Border
	// Hidden widgets are not composed, but their children still are.
	Hidden bool
	// Invalidated reports whether Draw must run before the next composition.
	Invalidated bool
}

// Props returns p. It lets embedding types satisfy Widget.
func (p *Properties) Props() *Properties {
	return p
}

// Update is the default per-frame hook and does nothing.
func (p *Properties) Update() {}

// Bounds returns the widget's rectangle in frame coordinates.
func (p *Properties) Bounds() image.Rectangle {
	return image.Rect(p.Origin.X, p.Origin.Y, p.Origin.X+int(p.Width), p.Origin.Y+int(p.Height))
}

// SetOrigin moves the widget to (x, y).
func (p *Properties) SetOrigin(x, y int) *Properties {
	p.Origin = image.Pt(x, y)
	return p.Invalidate()
}

// SetBounds resizes the widget.
func (p *Properties) SetBounds(width, height uint32) *Properties {
	p.Width, p.Height = width, height
	return p.Invalidate()
}

// SetColor changes the base color.
func (p *Properties) SetColor(c color.RGBA) *Properties {
	p.Color = c
	return p.Invalidate()
}

// SetBorder applies a border of the given color and thickness.
func (p *Properties) SetBorder(c color.RGBA, width uint8) *Properties {
	p.Border = &Border{Color: c, Width: width}
	return p.Invalidate()
}

// ClearBorder removes the border, if any.
func (p *Properties) ClearBorder() *Properties {
	p.Border = nil
	return p.Invalidate()
}

// SetHidden toggles visibility. Changing it invalidates the widget so the
// frame is recomposed.
func (p *Properties) SetHidden(hidden bool) *Properties {
	if p.Hidden == hidden {
		return p
	}
	p.Hidden = hidden
	return p.Invalidate()
}

// Invalidate forces the widget to be redrawn on the next render pass.
func (p *Properties) Invalidate() *Properties {
	p.Invalidated = true
	return p
}
