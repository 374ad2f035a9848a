package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tilemenu/internal/app"
	"github.com/oakwood-commons/tilemenu/internal/config"
	"github.com/oakwood-commons/tilemenu/pkg/fetch"
	"github.com/oakwood-commons/tilemenu/pkg/raster"
	"github.com/oakwood-commons/tilemenu/pkg/widget"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

type obj = map[string]any

func titled(owner, content string) obj {
	return obj{"title": obj{"full": obj{owner: obj{"default": obj{"content": content, "language": "en"}}}}}
}

func item(name, url string) obj {
	return obj{
		"type":        "DmcVideo",
		"programType": "movie",
		"text":        titled("program", name),
		"image": obj{"tile": obj{"1.78": obj{"program": obj{"default": obj{
			"masterWidth": 1920, "masterHeight": 1080, "url": url,
		}}}}},
	}
}

func curated(name string, items ...obj) obj {
	return obj{"set": obj{"type": "CuratedSet", "text": titled("set", name), "items": items}}
}

func setRef(name, refID string) obj {
	return obj{"set": obj{"type": "SetRef", "refId": refID, "text": titled("set", name)}}
}

func homeDoc(containers ...obj) obj {
	return obj{"data": obj{"StandardCollection": obj{
		"type":       "StandardCollection",
		"text":       titled("collection", "Home"),
		"containers": containers,
	}}}
}

// docs writes menu documents and thumbnails into a temp dir.
type docs struct {
	t   *testing.T
	dir string
}

func newDocs(t *testing.T) *docs {
	t.Helper()
	return &docs{t: t, dir: t.TempDir()}
}

func (d *docs) path(name string) string {
	return filepath.Join(d.dir, name)
}

func (d *docs) writeJSON(name string, v any) string {
	d.t.Helper()
	data, err := json.Marshal(v)
	require.NoError(d.t, err)
	p := d.path(name)
	require.NoError(d.t, os.WriteFile(p, data, 0o600))
	return p
}

func (d *docs) writePNG(name string, c color.RGBA) string {
	d.t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 50, 28))
	for y := 0; y < 28; y++ {
		for x := 0; x < 50; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	p := d.path(name)
	f, err := os.Create(p)
	require.NoError(d.t, err)
	require.NoError(d.t, png.Encode(f, img))
	require.NoError(d.t, f.Close())
	return p
}

// items returns n items sharing one thumbnail.
func (d *docs) items(prefix string, n int, thumb string) []obj {
	out := make([]obj, n)
	for i := range out {
		out[i] = item(fmt.Sprintf("%s %d", prefix, i), thumb)
	}
	return out
}

func (d *docs) config(home string) config.Config {
	d.t.Helper()
	cfg, err := config.Default()
	require.NoError(d.t, err)
	cfg.Menu.HomeURL = home
	cfg.Menu.RefSetURL = filepath.Join(d.dir, "{{.RefID}}.json")
	cfg.Menu.RetryTicks = 0
	return cfg
}

func newEngine(t *testing.T) *fetch.Engine {
	t.Helper()
	e, err := fetch.New(fetch.WithDir(t.TempDir()), fetch.WithPollInterval(time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// harness is a menu running inside an app over the raster backend.
type harness struct {
	menu    *Menu
	app     *app.App[widget.Widget]
	backend *raster.Backend
	engine  *fetch.Engine
}

func newHarness(t *testing.T, cfg config.Config) (*harness, error) {
	t.Helper()
	engine := newEngine(t)
	m, err := New(cfg, engine, logr.Discard())
	require.NoError(t, err)
	backend := raster.New(1920, 1080)
	a := app.New[widget.Widget](m, m.NewRoot(1920, 1080), backend, logr.Discard())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Initialize(ctx); err != nil {
		return nil, err
	}
	return &harness{menu: m, app: a, backend: backend, engine: engine}, nil
}

func (h *harness) settle(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, h.app.Settle(ctx, time.Millisecond))
}

func (h *harness) props(id widget.ID) widget.Properties {
	var p widget.Properties
	h.app.Cache().View(id, func(w widget.Widget) { p = *w.Props() })
	return p
}
