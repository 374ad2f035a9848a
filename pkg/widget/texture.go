package widget

import (
	"fmt"
	"image"
	"image/color"
)

// Texture is a render target or decoded image owned by a Backend.
type Texture interface {
	Size() (width, height uint32)
}

// Backend is the rendering capability set the cache draws through. Any
// toolkit exposing these primitives can host a Cache.
type Backend interface {
	// Frame returns the window-sized target widgets are composed onto.
	Frame() Texture
	// CreateTarget allocates a render target of the given size.
	CreateTarget(width, height uint32) (Texture, error)
	// Clear fills the whole target with c.
	Clear(target Texture, c color.RGBA) error
	// DrawRect outlines r on target with a one pixel line.
	DrawRect(target Texture, r image.Rectangle, c color.RGBA) error
	// Blit copies src onto dst, scaled to fill r.
	Blit(dst, src Texture, r image.Rectangle) error
	// RenderText rasterizes message, wrapped to maxWidth pixels when
	// maxWidth is non-zero.
	RenderText(message string, pointSize int, c color.RGBA, maxWidth uint32) (Texture, error)
	// LoadImage decodes the image file at path.
	LoadImage(path string) (Texture, error)
	// Present publishes the composed frame atomically.
	Present() error
}

// Context is passed to every Widget.Draw call.
type Context struct {
	Backend  Backend
	Textures *Textures
}

// cachedTexture is the render target bound to one cache entry.
type cachedTexture struct {
	texture       Texture
	width, height uint32
}

// createOrResize returns the held texture when it already matches the
// requested size, allocating a new one otherwise. The bool reports whether a
// new texture was created.
func (t *cachedTexture) createOrResize(b Backend, width, height uint32) (Texture, bool, error) {
	if t.texture != nil && t.width == width && t.height == height {
		return t.texture, false, nil
	}
	tex, err := b.CreateTarget(width, height)
	if err != nil {
		return nil, false, fmt.Errorf("create %dx%d target: %w", width, height, err)
	}
	t.texture, t.width, t.height = tex, width, height
	return tex, true, nil
}

type textKey struct {
	message   string
	pointSize int
	color     color.RGBA
	maxWidth  uint32
}

// Textures memoizes decoded images by path and rasterized text by content,
// so widgets that redraw do not reload or re-rasterize unchanged inputs.
type Textures struct {
	backend Backend
	images  map[string]Texture
	text    map[textKey]Texture
}

// NewTextures returns an empty memo backed by b.
func NewTextures(b Backend) *Textures {
	return &Textures{
		backend: b,
		images:  make(map[string]Texture),
		text:    make(map[textKey]Texture),
	}
}

// LoadImage returns the texture for the image file at path, decoding it on
// first use.
func (t *Textures) LoadImage(path string) (Texture, error) {
	if tex, ok := t.images[path]; ok {
		return tex, nil
	}
	tex, err := t.backend.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	t.images[path] = tex
	return tex, nil
}

// RenderText returns a texture holding message, rasterizing it on first use.
func (t *Textures) RenderText(message string, pointSize int, c color.RGBA, maxWidth uint32) (Texture, error) {
	key := textKey{message: message, pointSize: pointSize, color: c, maxWidth: maxWidth}
	if tex, ok := t.text[key]; ok {
		return tex, nil
	}
	tex, err := t.backend.RenderText(message, pointSize, c, maxWidth)
	if err != nil {
		return nil, fmt.Errorf("render text: %w", err)
	}
	t.text[key] = tex
	return tex, nil
}

// Len returns the number of memoized textures.
func (t *Textures) Len() int {
	return len(t.images) + len(t.text)
}
