// Package grid moves the highlighted tile around a menu of independently
// scrolled rows. Rows scroll horizontally one tile at a time and the whole
// grid scrolls vertically one row at a time, but only when the destination
// tile would otherwise leave the comfortable part of the viewport.
package grid

import (
	"image"
	"math"

	"github.com/oakwood-commons/tilemenu/pkg/widget"
)

// Layout holds the geometry the navigator scrolls by.
type Layout struct {
	TileWidth  uint32
	TileHeight uint32
	TileMargin int
	// RowHeight is the vertical distance between two rows.
	RowHeight int
	// SelectScale is the enlargement factor of the highlighted tile.
	SelectScale float64
	// Border outlines the highlighted tile.
	Border widget.Border

	ViewportWidth  int
	ViewportHeight int
}

// Selection is the (row, column) of the highlighted tile. Col indexes the
// row's children, not the visible position.
type Selection struct {
	Row int
	Col int
}

// FindTileIndex maps column col of a row scrolled by current to the child
// index showing at the same visible position in a row scrolled by target.
func FindTileIndex(col, current, target int) int {
	return col + current - target
}

// enlargement remembers how the highlighted tile was grown so it can be
// restored exactly.
type enlargement struct {
	width, height uint32
	dx, dy        int
}

// Navigator is the selection state machine over a grid anchor and its row
// anchors. It is driven from the render goroutine only.
type Navigator[W widget.Widget] struct {
	cache  *widget.Cache[W]
	grid   widget.ID
	rows   []widget.ID
	layout Layout

	sel      Selection
	selected widget.ID
	active   bool
	grown    *enlargement

	offsets []int
	vscroll int
}

// New returns a navigator over the rows anchored under grid. Nothing is
// highlighted until Select is called.
func New[W widget.Widget](cache *widget.Cache[W], grid widget.ID, rows []widget.ID, layout Layout) *Navigator[W] {
	if layout.SelectScale <= 0 {
		layout.SelectScale = 1
	}
	return &Navigator[W]{
		cache:   cache,
		grid:    grid,
		rows:    append([]widget.ID(nil), rows...),
		layout:  layout,
		offsets: make([]int, len(rows)),
	}
}

// SetViewport records the new viewport size used by the scroll checks.
func (n *Navigator[W]) SetViewport(width, height int) {
	n.layout.ViewportWidth = width
	n.layout.ViewportHeight = height
}

// Layout returns the current layout.
func (n *Navigator[W]) Layout() Layout {
	return n.layout
}

// Selection returns the highlighted position.
func (n *Navigator[W]) Selection() Selection {
	return n.sel
}

// Selected returns the highlighted tile.
func (n *Navigator[W]) Selected() (widget.ID, bool) {
	return n.selected, n.active
}

// Offset returns the horizontal scroll offset of row, in tiles. Negative
// values mean the row is shifted left.
func (n *Navigator[W]) Offset(row int) int {
	if row < 0 || row >= len(n.offsets) {
		return 0
	}
	return n.offsets[row]
}

// VerticalScroll returns how many rows the grid is scrolled up by.
func (n *Navigator[W]) VerticalScroll() int {
	return n.vscroll
}

// Rows returns the number of rows.
func (n *Navigator[W]) Rows() int {
	return len(n.rows)
}

// Select highlights the tile at (row, col) without scrolling.
func (n *Navigator[W]) Select(row, col int) bool {
	dest, ok := n.tileAt(row, col)
	if !ok {
		return false
	}
	n.shrink()
	n.enlarge(dest)
	n.sel = Selection{Row: row, Col: col}
	n.selected, n.active = dest, true
	return true
}

// MoveUp highlights the tile above. It reports whether the selection changed.
func (n *Navigator[W]) MoveUp() bool {
	if !n.active || n.sel.Row == 0 {
		return false
	}
	row := n.sel.Row - 1
	return n.moveTo(row, FindTileIndex(n.sel.Col, n.offsets[n.sel.Row], n.offsets[row]))
}

// MoveDown highlights the tile below.
func (n *Navigator[W]) MoveDown() bool {
	if !n.active || n.sel.Row+1 >= len(n.rows) {
		return false
	}
	row := n.sel.Row + 1
	return n.moveTo(row, FindTileIndex(n.sel.Col, n.offsets[n.sel.Row], n.offsets[row]))
}

// MoveLeft highlights the previous tile of the row.
func (n *Navigator[W]) MoveLeft() bool {
	if !n.active || n.sel.Col == 0 {
		return false
	}
	return n.moveTo(n.sel.Row, n.sel.Col-1)
}

// MoveRight highlights the next tile of the row.
func (n *Navigator[W]) MoveRight() bool {
	if !n.active {
		return false
	}
	return n.moveTo(n.sel.Row, n.sel.Col+1)
}

func (n *Navigator[W]) moveTo(row, col int) bool {
	dest, ok := n.tileAt(row, col)
	if !ok {
		return false
	}
	// Scroll decisions use the destination at rest, before it is enlarged.
	rest := n.bounds(dest)
	prev := n.sel

	n.shrink()
	n.enlarge(dest)

	mid := n.layout.ViewportHeight / 2
	switch {
	case row > prev.Row:
		if rest.Max.Y > mid {
			n.cache.Translate(n.grid, 0, -n.layout.RowHeight)
			n.vscroll++
		}
	case row < prev.Row:
		if rest.Min.Y < mid && n.vscroll > 0 {
			n.cache.Translate(n.grid, 0, n.layout.RowHeight)
			n.vscroll--
		}
	case col > prev.Col:
		if rest.Max.X > n.layout.ViewportWidth {
			n.cache.Translate(n.rows[row], -n.step(), 0)
			n.offsets[row]--
		}
	case col < prev.Col:
		if rest.Min.X < 0 {
			n.cache.Translate(n.rows[row], n.step(), 0)
			n.offsets[row]++
		}
	}

	n.sel = Selection{Row: row, Col: col}
	n.selected = dest
	return true
}

func (n *Navigator[W]) step() int {
	return int(n.layout.TileWidth) + n.layout.TileMargin
}

func (n *Navigator[W]) tileAt(row, col int) (widget.ID, bool) {
	if row < 0 || row >= len(n.rows) || col < 0 {
		return 0, false
	}
	children := n.cache.ChildrenOf(n.rows[row])
	if col >= len(children) {
		return 0, false
	}
	return children[col], true
}

func (n *Navigator[W]) bounds(id widget.ID) image.Rectangle {
	var r image.Rectangle
	n.cache.View(id, func(w W) { r = w.Props().Bounds() })
	return r
}

// enlarge grows id by SelectScale around its centre and applies the border.
func (n *Navigator[W]) enlarge(id widget.ID) {
	n.cache.Mutate(id, func(w W) {
		p := w.Props()
		width := uint32(math.Round(float64(p.Width) * n.layout.SelectScale))
		height := uint32(math.Round(float64(p.Height) * n.layout.SelectScale))
		dx := (int(width) - int(p.Width)) / 2
		dy := (int(height) - int(p.Height)) / 2
		n.grown = &enlargement{width: p.Width, height: p.Height, dx: dx, dy: dy}

		p.SetOrigin(p.Origin.X-dx, p.Origin.Y-dy).
			SetBounds(width, height).
			SetBorder(n.layout.Border.Color, n.layout.Border.Width)
	})
}

// shrink restores the highlighted tile to its resting size. It does nothing
// when the tile is not enlarged.
func (n *Navigator[W]) shrink() {
	if !n.active || n.grown == nil {
		return
	}
	g := n.grown
	n.grown = nil
	n.cache.Mutate(n.selected, func(w W) {
		p := w.Props()
		if p.Width == g.width && p.Height == g.height && p.Border == nil {
			return
		}
		p.SetOrigin(p.Origin.X+g.dx, p.Origin.Y+g.dy).
			SetBounds(g.width, g.height).
			ClearBorder()
	})
}
