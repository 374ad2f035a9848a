// Package raster implements widget.Backend on in-memory RGBA images. The
// composed frame is double buffered: Present copies the back buffer into the
// front buffer under a lock, so readers on other goroutines always observe a
// complete frame.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // thumbnail decoding
	"image/png"
	"io"
	"os"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	_ "golang.org/x/image/webp" // thumbnail decoding

	"github.com/oakwood-commons/tilemenu/pkg/widget"
)

// ErrForeignTexture is returned when a texture from another backend is used.
var ErrForeignTexture = errors.New("raster: texture not created by this backend")

// Texture is an RGBA render target.
type Texture struct {
	img *image.RGBA
}

// Size returns the texture dimensions.
func (t *Texture) Size() (uint32, uint32) {
	b := t.img.Bounds()
	return uint32(b.Dx()), uint32(b.Dy())
}

// Image returns the underlying pixels.
func (t *Texture) Image() *image.RGBA {
	return t.img
}

// Backend renders into RGBA images.
type Backend struct {
	frame  *Texture
	face   font.Face
	scaler xdraw.Scaler

	mu      sync.RWMutex
	front   *image.RGBA
	version uint64
}

// Option configures a Backend.
type Option func(*Backend)

// WithFace sets the font face used by RenderText.
func WithFace(face font.Face) Option {
	return func(b *Backend) {
		b.face = face
	}
}

// WithScaler sets the interpolator used when blits resize their source.
func WithScaler(s xdraw.Scaler) Option {
	return func(b *Backend) {
		b.scaler = s
	}
}

// New returns a backend with a width x height frame.
func New(width, height int, opts ...Option) *Backend {
	b := &Backend{
		frame:  &Texture{img: image.NewRGBA(image.Rect(0, 0, width, height))},
		face:   basicfont.Face7x13,
		scaler: xdraw.ApproxBiLinear,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Resize replaces the back buffer with a width x height one. The front
// buffer keeps the last presented frame until the next Present.
func (b *Backend) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if r := b.frame.img.Bounds(); r.Dx() == width && r.Dy() == height {
		return
	}
	b.frame = &Texture{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Frame returns the back buffer.
func (b *Backend) Frame() widget.Texture {
	return b.frame
}

// CreateTarget allocates a transparent texture.
func (b *Backend) CreateTarget(width, height uint32) (widget.Texture, error) {
	return &Texture{img: image.NewRGBA(image.Rect(0, 0, int(width), int(height)))}, nil
}

// Clear fills target with c.
func (b *Backend) Clear(target widget.Texture, c color.RGBA) error {
	t, err := own(target)
	if err != nil {
		return err
	}
	draw.Draw(t.img, t.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return nil
}

// DrawRect outlines r with a one pixel line. Pixels outside target are
// ignored.
func (b *Backend) DrawRect(target widget.Texture, r image.Rectangle, c color.RGBA) error {
	t, err := own(target)
	if err != nil {
		return err
	}
	r = r.Canon()
	if r.Empty() {
		return nil
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		t.img.SetRGBA(x, r.Min.Y, c)
		t.img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		t.img.SetRGBA(r.Min.X, y, c)
		t.img.SetRGBA(r.Max.X-1, y, c)
	}
	return nil
}

// Blit composites src over dst, scaling it to r when sizes differ.
func (b *Backend) Blit(dst, src widget.Texture, r image.Rectangle) error {
	d, err := own(dst)
	if err != nil {
		return err
	}
	s, err := own(src)
	if err != nil {
		return err
	}
	sb := s.img.Bounds()
	if r.Empty() || sb.Empty() {
		return nil
	}
	if r.Dx() == sb.Dx() && r.Dy() == sb.Dy() {
		draw.Draw(d.img, r, s.img, sb.Min, draw.Over)
		return nil
	}
	b.scaler.Scale(d.img, r, s.img, sb, xdraw.Over, nil)
	return nil
}

// LoadImage decodes a JPEG, PNG or WebP file.
func (b *Backend) LoadImage(path string) (widget.Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	bounds := src.Bounds()
	if rgba, ok := src.(*image.RGBA); ok && bounds.Min == (image.Point{}) {
		return &Texture{img: rgba}, nil
	}
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	return &Texture{img: rgba}, nil
}

// Present copies the back buffer to the front buffer.
func (b *Backend) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.front == nil || b.front.Bounds() != b.frame.img.Bounds() {
		b.front = image.NewRGBA(b.frame.img.Bounds())
	}
	copy(b.front.Pix, b.frame.img.Pix)
	b.version++
	return nil
}

// Version returns the number of frames presented so far.
func (b *Backend) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Snapshot returns a copy of the last presented frame, or nil if nothing has
// been presented yet.
func (b *Backend) Snapshot() *image.RGBA {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.front == nil {
		return nil
	}
	out := image.NewRGBA(b.front.Bounds())
	copy(out.Pix, b.front.Pix)
	return out
}

// WritePNG encodes the last presented frame as PNG.
func (b *Backend) WritePNG(w io.Writer) error {
	img := b.Snapshot()
	if img == nil {
		return errors.New("raster: no frame presented")
	}
	return png.Encode(w, img)
}

func own(t widget.Texture) (*Texture, error) {
	rt, ok := t.(*Texture)
	if !ok || rt == nil || rt.img == nil {
		return nil, ErrForeignTexture
	}
	return rt, nil
}
