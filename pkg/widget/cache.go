package widget

import (
	"fmt"
	"image"
	"image/color"
)

// ID refers to a widget stored in a Cache. IDs are assigned monotonically and
// never reused within a cache.
type ID uint32

// Root is the ID of the root widget, which always exists.
const Root ID = 0

// RenderStats describes the work done by one Render pass.
type RenderStats struct {
	// Visited counts nodes reached by the traversal, hidden ones included.
	Visited int
	// Drawn counts nodes whose content was redrawn into their texture.
	Drawn int
	// Blitted counts textures composed onto the frame.
	Blitted int
	// Created counts textures allocated or resized.
	Created int
}

type entry[W Widget] struct {
	widget   W
	parent   ID
	children []ID
	texture  cachedTexture
	// borrows is the number of outstanding shared checkouts, or -1 while the
	// widget is checked out mutably.
	borrows int
}

// Cache owns a tree of widgets stored in a flat arena keyed by ID.
//
// Callers only hold IDs. Access goes through Get and GetMut, which enforce a
// single-writer/multi-reader discipline per node: a conflicting checkout is a
// programming error and panics. A Cache is not safe for concurrent use.
type Cache[W Widget] struct {
	entries  map[ID]*entry[W]
	nextID   ID
	backend  Backend
	textures *Textures

	// ClearColor fills the frame before the tree is composed.
	ClearColor color.RGBA
}

// New creates a cache whose root is root, rendering through backend.
func New[W Widget](root W, backend Backend) *Cache[W] {
	root.Props().Invalidate()
	return &Cache[W]{
		entries: map[ID]*entry[W]{
			Root: {widget: root, parent: Root},
		},
		nextID:     Root + 1,
		backend:    backend,
		textures:   NewTextures(backend),
		ClearColor: color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// Root returns the ID of the root widget.
func (c *Cache[W]) Root() ID {
	return Root
}

// Len returns the number of widgets in the cache, root included.
func (c *Cache[W]) Len() int {
	return len(c.entries)
}

// Backend returns the rendering backend.
func (c *Cache[W]) Backend() Backend {
	return c.backend
}

// Textures returns the shared texture memo.
func (c *Cache[W]) Textures() *Textures {
	return c.textures
}

// Insert adds w as the last child of parent and returns its ID. The widget is
// marked for drawing on the next pass.
//
// Insert panics if parent does not exist.
func (c *Cache[W]) Insert(w W, parent ID) ID {
	p := c.entry(parent)
	w.Props().Invalidate()

	id := c.nextID
	c.nextID++
	p.children = append(p.children, id)
	c.entries[id] = &entry[W]{widget: w, parent: parent}
	return id
}

// Contains reports whether id refers to a widget in the cache.
func (c *Cache[W]) Contains(id ID) bool {
	_, ok := c.entries[id]
	return ok
}

// Parent returns the parent of id. The root has no parent.
func (c *Cache[W]) Parent(id ID) (ID, bool) {
	if id == Root {
		return Root, false
	}
	e, ok := c.entries[id]
	if !ok {
		return Root, false
	}
	return e.parent, true
}

// ChildrenOf returns the children of id in insertion order.
func (c *Cache[W]) ChildrenOf(id ID) []ID {
	e := c.entry(id)
	if len(e.children) == 0 {
		return nil
	}
	return append([]ID(nil), e.children...)
}

// Ref is a shared checkout of a widget.
type Ref[W Widget] struct {
	id ID
	e  *entry[W]
}

// Widget returns the checked-out widget.
func (r *Ref[W]) Widget() W {
	if r.e == nil {
		panic(fmt.Sprintf("widget: use of released reference to %d", r.id))
	}
	return r.e.widget
}

// Release ends the checkout. Releasing twice is a no-op.
func (r *Ref[W]) Release() {
	if r.e == nil {
		return
	}
	r.e.borrows--
	r.e = nil
}

// RefMut is an exclusive checkout of a widget.
type RefMut[W Widget] struct {
	id ID
	e  *entry[W]
}

// Widget returns the checked-out widget.
func (r *RefMut[W]) Widget() W {
	if r.e == nil {
		panic(fmt.Sprintf("widget: use of released mutable reference to %d", r.id))
	}
	return r.e.widget
}

// Release ends the checkout. Releasing twice is a no-op.
func (r *RefMut[W]) Release() {
	if r.e == nil {
		return
	}
	r.e.borrows = 0
	r.e = nil
}

// Get checks out id for reading.
//
// Get panics if id is unknown or currently checked out mutably.
func (c *Cache[W]) Get(id ID) *Ref[W] {
	e := c.entry(id)
	if e.borrows < 0 {
		panic(fmt.Sprintf("widget: %d is already borrowed mutably", id))
	}
	e.borrows++
	return &Ref[W]{id: id, e: e}
}

// GetMut checks out id for writing.
//
// GetMut panics if id is unknown or has any outstanding checkout.
func (c *Cache[W]) GetMut(id ID) *RefMut[W] {
	e := c.entry(id)
	switch {
	case e.borrows < 0:
		panic(fmt.Sprintf("widget: %d is already borrowed mutably", id))
	case e.borrows > 0:
		panic(fmt.Sprintf("widget: %d is already borrowed", id))
	}
	e.borrows = -1
	return &RefMut[W]{id: id, e: e}
}

// View calls fn with a shared checkout of id.
func (c *Cache[W]) View(id ID, fn func(W)) {
	ref := c.Get(id)
	defer ref.Release()
	fn(ref.Widget())
}

// Mutate calls fn with an exclusive checkout of id.
func (c *Cache[W]) Mutate(id ID, fn func(W)) {
	ref := c.GetMut(id)
	defer ref.Release()
	fn(ref.Widget())
}

// Translate moves id and all of its descendants by (dx, dy). Every moved node
// is invalidated; a zero delta does nothing.
func (c *Cache[W]) Translate(id ID, dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	c.Mutate(id, func(w W) {
		p := w.Props()
		p.SetOrigin(p.Origin.X+dx, p.Origin.Y+dy)
	})
	for _, child := range c.entry(id).children {
		if child != id {
			c.Translate(child, dx, dy)
		}
	}
}

// Tick runs every widget's Update hook once.
func (c *Cache[W]) Tick() {
	for id := range c.entries {
		c.Mutate(id, func(w W) { w.Update() })
	}
}

// HasPendingRedraw reports whether any widget is invalidated.
func (c *Cache[W]) HasPendingRedraw() bool {
	for id, e := range c.entries {
		if e.borrows < 0 {
			panic(fmt.Sprintf("widget: %d is already borrowed mutably", id))
		}
		if e.widget.Props().Invalidated {
			return true
		}
	}
	return false
}

// Render clears the frame, composes the whole tree onto it starting at the
// root and presents the result. Only invalidated widgets are redrawn; the
// others reuse their cached texture.
func (c *Cache[W]) Render() (RenderStats, error) {
	var stats RenderStats
	frame := c.backend.Frame()
	if err := c.backend.Clear(frame, c.ClearColor); err != nil {
		return stats, fmt.Errorf("clear frame: %w", err)
	}
	if err := c.renderNode(Root, frame, &stats); err != nil {
		return stats, err
	}
	if err := c.backend.Present(); err != nil {
		return stats, fmt.Errorf("present frame: %w", err)
	}
	return stats, nil
}

func (c *Cache[W]) renderNode(id ID, frame Texture, stats *RenderStats) error {
	stats.Visited++
	if err := c.compose(id, frame, stats); err != nil {
		return err
	}
	for _, child := range c.entry(id).children {
		if child == id {
			continue
		}
		if err := c.renderNode(child, frame, stats); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache[W]) compose(id ID, frame Texture, stats *RenderStats) error {
	ref := c.GetMut(id)
	defer ref.Release()

	e := ref.e
	p := ref.Widget().Props()
	if p.Hidden || p.Width == 0 || p.Height == 0 {
		p.Invalidated = false
		return nil
	}

	target, created, err := e.texture.createOrResize(c.backend, p.Width, p.Height)
	if err != nil {
		return fmt.Errorf("widget %d: %w", id, err)
	}
	if created {
		stats.Created++
	}

	if p.Invalidated || created {
		ctx := &Context{Backend: c.backend, Textures: c.textures}
		if err := ref.Widget().Draw(ctx, target); err != nil {
			return fmt.Errorf("draw widget %d: %w", id, err)
		}
		if err := drawBorder(c.backend, target, p.Width, p.Height, p.Border); err != nil {
			return fmt.Errorf("draw border of widget %d: %w", id, err)
		}
		stats.Drawn++
	}

	if err := c.backend.Blit(frame, target, p.Bounds()); err != nil {
		return fmt.Errorf("blit widget %d: %w", id, err)
	}
	stats.Blitted++
	p.Invalidated = false
	return nil
}

func drawBorder(b Backend, target Texture, width, height uint32, border *Border) error {
	if border == nil || border.Width == 0 {
		return nil
	}
	for i := 0; i < int(border.Width); i++ {
		r := image.Rect(i, i, int(width)-i, int(height)-i)
		if r.Empty() {
			break
		}
		if err := b.DrawRect(target, r, border.Color); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache[W]) entry(id ID) *entry[W] {
	e, ok := c.entries[id]
	if !ok {
		panic(fmt.Sprintf("widget: unknown id %d", id))
	}
	return e
}
