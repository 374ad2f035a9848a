// Package menu turns a home menu document into a widget tree of titled rows
// of thumbnail tiles and drives the selection from key events.
package menu

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/oakwood-commons/tilemenu/internal/app"
	"github.com/oakwood-commons/tilemenu/internal/cel"
	"github.com/oakwood-commons/tilemenu/internal/config"
	"github.com/oakwood-commons/tilemenu/internal/grid"
	"github.com/oakwood-commons/tilemenu/internal/limiter"
	"github.com/oakwood-commons/tilemenu/pkg/fetch"
	"github.com/oakwood-commons/tilemenu/pkg/schema"
	"github.com/oakwood-commons/tilemenu/pkg/widget"
)

var (
	// ErrMissingTitle is returned when a row has no full title.
	ErrMissingTitle = errors.New("menu: row has no full title")
	// ErrMissingImage is returned when an item lacks the configured image.
	ErrMissingImage = errors.New("menu: item has no image for the configured name and aspect ratio")
)

// Row kinds reported to the row filter.
const (
	kindCurated = "curated"
	kindRef     = "ref"
)

// Fetcher is the part of the fetch engine the menu uses.
type Fetcher interface {
	Poller
	Fetch(ctx context.Context, locator string) (string, error)
	Stats() fetch.Stats
}

type row struct {
	title string
	slug  string
	kind  string
	index int
	items []*schema.Collection

	anchor widget.ID
	tiles  []widget.ID
	names  []string
}

// Menu is the application state of the tile menu.
type Menu struct {
	cfg     config.Config
	colors  config.Colors
	fetcher Fetcher
	filter  *cel.RowFilter
	log     logr.Logger

	cache *widget.Cache[widget.Widget]
	nav   *grid.Navigator[widget.Widget]
	rows  []*row
}

var _ app.State[widget.Widget] = (*Menu)(nil)

// New validates cfg and returns a menu that loads its document through
// fetcher.
func New(cfg config.Config, fetcher Fetcher, log logr.Logger) (*Menu, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	colors, err := cfg.Palette.Colors()
	if err != nil {
		return nil, err
	}
	filter, err := cel.NewRowFilter(cfg.Menu.RowFilter)
	if err != nil {
		return nil, err
	}
	return &Menu{
		cfg:     cfg,
		colors:  colors,
		fetcher: fetcher,
		filter:  filter,
		log:     log,
	}, nil
}

// NewRoot returns the root widget for a frame of the given size.
func (m *Menu) NewRoot(width, height uint32) widget.Widget {
	return NewRoot(width, height, m.colors.Background)
}

// Navigator returns the selection state machine, or nil before Initialize.
func (m *Menu) Navigator() *grid.Navigator[widget.Widget] {
	return m.nav
}

// Initialize downloads and parses the home document, then builds one label
// and one anchored row of tiles per visible row.
func (m *Menu) Initialize(ctx context.Context, cache *widget.Cache[widget.Widget]) error {
	start := time.Now()
	home, err := m.loadHome(ctx)
	if err != nil {
		return err
	}
	collection, err := home.Collection(m.cfg.Menu.CollectionKey)
	if err != nil {
		return err
	}
	containers, err := collection.Containers()
	if err != nil {
		return fmt.Errorf("collection %q: %w", m.cfg.Menu.CollectionKey, err)
	}

	rows, err := m.resolveRows(ctx, containers)
	if err != nil {
		return err
	}
	rows, err = m.applyFilter(rows)
	if err != nil {
		return err
	}
	if w := m.cfg.Menu.Rows; w.IsActive() {
		start, end := w.Bounds(len(rows))
		m.log.V(1).Info("rows windowed", "from", start, "to", end, "of", len(rows))
		rows = limiter.Apply(w, rows)
	}

	m.cache = cache
	cache.ClearColor = m.colors.Background
	if err := m.build(cache, rows); err != nil {
		return err
	}
	m.log.Info("menu assembled", "rows", len(m.rows), "containers", len(containers), "elapsed", time.Since(start).String())
	return nil
}

func (m *Menu) loadHome(ctx context.Context) (*schema.Home, error) {
	path, err := m.fetcher.Fetch(ctx, m.cfg.Menu.HomeURL)
	if err != nil {
		return nil, fmt.Errorf("fetch home document: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open home document: %w", err)
	}
	defer func() { _ = f.Close() }()
	home, err := schema.ParseHome(f)
	if err != nil {
		return nil, fmt.Errorf("parse home document: %w", err)
	}
	return home, nil
}

// resolveRows turns containers into rows. Referenced sets are fetched
// concurrently; a row whose set cannot be downloaded is skipped.
func (m *Menu) resolveRows(ctx context.Context, containers []schema.Container) ([]*row, error) {
	all := make([]*row, len(containers))
	for i := range containers {
		set := &containers[i].Set
		title, ok := set.Title(schema.TitleFull)
		if !ok {
			return nil, fmt.Errorf("%w: row %d", ErrMissingTitle, i)
		}
		slug, _ := set.Title(schema.TitleSlug)
		all[i] = &row{title: title.Content, slug: slug.Content, index: i, kind: kindCurated}
	}

	rows := make([]*row, len(containers))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range all {
		set := &containers[i].Set
		if !set.IsRef() {
			r.items = set.Items()
			rows[i] = r
			continue
		}
		r.kind = kindRef
		if !m.cfg.Menu.ResolveRefSets {
			m.log.V(1).Info("skipping referenced set", "row", r.title, "ref_id", set.RefID)
			continue
		}
		refID := set.RefID
		g.Go(func() error {
			items, err := m.resolveRef(gctx, refID)
			if err != nil {
				var transient *fetchError
				if errors.As(err, &transient) {
					m.log.Info("skipping row, referenced set unavailable", "row", r.title, "ref_id", refID, "error", err.Error())
					return nil
				}
				return fmt.Errorf("row %q: %w", r.title, err)
			}
			r.items = items
			rows[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := rows[:0]
	for _, r := range rows {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

type fetchError struct {
	err error
}

func (e *fetchError) Error() string { return e.err.Error() }
func (e *fetchError) Unwrap() error { return e.err }

func (m *Menu) resolveRef(ctx context.Context, refID string) ([]*schema.Collection, error) {
	locator, err := m.cfg.RefSetURL(refID)
	if err != nil {
		return nil, err
	}
	path, err := m.fetcher.Fetch(ctx, locator)
	if err != nil {
		return nil, &fetchError{err: fmt.Errorf("fetch referenced set %s: %w", refID, err)}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &fetchError{err: err}
	}
	defer func() { _ = f.Close() }()
	doc, err := schema.ParseRefSet(f)
	if err != nil {
		return nil, fmt.Errorf("parse referenced set %s: %w", refID, err)
	}
	set, err := doc.Set()
	if err != nil {
		return nil, fmt.Errorf("referenced set %s: %w", refID, err)
	}
	return set.Items(), nil
}

func (m *Menu) applyFilter(rows []*row) ([]*row, error) {
	if m.filter == nil {
		return rows, nil
	}
	var kept []*row
	for _, r := range rows {
		ok, err := m.filter.Match(cel.Row{
			Title: r.title,
			Slug:  r.slug,
			Index: r.index,
			Size:  len(r.items),
			Kind:  r.kind,
		})
		if err != nil {
			return nil, fmt.Errorf("row %q: %w", r.title, err)
		}
		if ok {
			kept = append(kept, r)
		} else {
			m.log.V(1).Info("row filtered out", "row", r.title, "filter", m.filter.Expression())
		}
	}
	return kept, nil
}

func (m *Menu) build(cache *widget.Cache[widget.Widget], rows []*row) error {
	lay := m.cfg.Layout
	var rootWidth, rootHeight uint32
	cache.View(widget.Root, func(w widget.Widget) {
		p := w.Props()
		rootWidth, rootHeight = p.Width, p.Height
	})
	labelWidth := uint32(1)
	if int(rootWidth) > lay.SideMargin+1 {
		labelWidth = rootWidth - uint32(lay.SideMargin)
	}

	gridID := cache.Insert(NewAnchor(), widget.Root)
	anchors := make([]widget.ID, 0, len(rows))
	tileLog := m.log.WithName("tile")
	for i, r := range rows {
		y := lay.TopMargin + i*lay.RowHeight()
		label := NewLabel(r.title, lay.FontSize, lay.SideMargin, y, labelWidth, m.colors.Label, m.colors.Background)
		cache.Insert(label, gridID)

		r.anchor = cache.Insert(NewAnchor(), gridID)
		anchors = append(anchors, r.anchor)
		tileY := y + int(label.Height) + lay.LabelPadding

		items := limiter.Apply(limiter.Config{Limit: m.cfg.Menu.TilesPerRow}, r.items)
		for j, item := range items {
			img, ok := item.Image(m.cfg.Menu.ImageName, m.cfg.Menu.AspectRatio)
			if !ok {
				return fmt.Errorf("%w: row %q item %d (%s %s)", ErrMissingImage, r.title, j, m.cfg.Menu.ImageName, m.cfg.Menu.AspectRatio)
			}
			x := lay.SideMargin + j*(int(lay.TileWidth)+lay.TileMargin)
			tile := NewTile(x, tileY, lay.TileWidth, lay.TileHeight, m.colors.Tile, m.colors.Placeholder,
				img.URL, m.fetcher, m.cfg.Menu.RetryTicks, tileLog)
			if t, ok := item.Title(schema.TitleFull); ok {
				tile.Title = t.Content
			}
			r.tiles = append(r.tiles, cache.Insert(tile, r.anchor))
			r.names = append(r.names, tile.Title)
		}
	}
	m.rows = rows

	m.nav = grid.New(cache, gridID, anchors, grid.Layout{
		TileWidth:      lay.TileWidth,
		TileHeight:     lay.TileHeight,
		TileMargin:     lay.TileMargin,
		RowHeight:      lay.RowHeight(),
		SelectScale:    lay.SelectScale,
		Border:         widget.Border{Color: m.colors.Border, Width: lay.BorderWidth},
		ViewportWidth:  int(rootWidth),
		ViewportHeight: int(rootHeight),
	})
	for i := range rows {
		if m.nav.Select(i, 0) {
			break
		}
	}
	return nil
}

// HandleEvent moves the selection on arrow keys, quits on escape and
// follows frame resizes.
func (m *Menu) HandleEvent(ev app.Event, cache *widget.Cache[widget.Widget]) app.Action {
	switch ev.Kind {
	case app.EventQuit:
		return app.Quit
	case app.EventResize:
		if ev.Width <= 0 || ev.Height <= 0 {
			return app.Continue
		}
		cache.Mutate(widget.Root, func(w widget.Widget) {
			w.Props().SetBounds(uint32(ev.Width), uint32(ev.Height))
		})
		if m.nav != nil {
			m.nav.SetViewport(ev.Width, ev.Height)
		}
	case app.EventKey:
		if ev.Key == app.KeyEscape {
			return app.Quit
		}
		m.handleKey(ev.Key)
	}
	return app.Continue
}

func (m *Menu) handleKey(k app.Key) {
	if m.nav == nil {
		return
	}
	var moved bool
	switch k {
	case app.KeyUp:
		moved = m.nav.MoveUp()
	case app.KeyDown:
		moved = m.nav.MoveDown()
	case app.KeyLeft:
		moved = m.nav.MoveLeft()
	case app.KeyRight:
		moved = m.nav.MoveRight()
	case app.KeyEnter:
		if title, name, ok := m.selected(); ok {
			m.log.Info("item chosen", "row", title, "item", name)
		}
		return
	default:
		return
	}
	sel := m.nav.Selection()
	m.log.V(1).Info("key", "key", k.String(), "moved", moved, "row", sel.Row, "col", sel.Col,
		"offset", m.nav.Offset(sel.Row), "vscroll", m.nav.VerticalScroll())
}

func (m *Menu) selected() (rowTitle, itemTitle string, ok bool) {
	if m.nav == nil {
		return "", "", false
	}
	if _, active := m.nav.Selected(); !active {
		return "", "", false
	}
	sel := m.nav.Selection()
	r := m.rows[sel.Row]
	return r.title, r.names[sel.Col], true
}

// Status describes the selection and download progress in one line.
func (m *Menu) Status() string {
	var b strings.Builder
	if rowTitle, item, ok := m.selected(); ok {
		sel := m.nav.Selection()
		fmt.Fprintf(&b, "%s %d/%d", rowTitle, sel.Col+1, len(m.rows[sel.Row].tiles))
		if item != "" {
			fmt.Fprintf(&b, " · %s", item)
		}
		b.WriteString(" · ")
	}
	s := m.fetcher.Stats()
	fmt.Fprintf(&b, "downloads %d ok %d failed %d active", s.Succeeded, s.Failed, s.InFlight())
	return b.String()
}

// Idle reports whether no tile is waiting for its thumbnail.
func (m *Menu) Idle() bool {
	if m.cache == nil {
		return true
	}
	idle := true
	for _, r := range m.rows {
		for _, id := range r.tiles {
			m.cache.View(id, func(w widget.Widget) {
				if t, ok := w.(*Tile); ok && t.Pending() {
					idle = false
				}
			})
			if !idle {
				return false
			}
		}
	}
	return true
}
