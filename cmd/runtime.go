package cmd

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tilemenu/internal/app"
	"github.com/oakwood-commons/tilemenu/internal/config"
	"github.com/oakwood-commons/tilemenu/internal/menu"
	"github.com/oakwood-commons/tilemenu/pkg/fetch"
	"github.com/oakwood-commons/tilemenu/pkg/raster"
	"github.com/oakwood-commons/tilemenu/pkg/widget"
)

// menuRuntime is an initialized menu with everything it renders through.
type menuRuntime struct {
	engine  *fetch.Engine
	menu    *menu.Menu
	backend *raster.Backend
	app     *app.App[widget.Widget]
}

// newMenuRuntime starts the fetch engine and assembles the menu into a frame
// of width×height pixels. Initialization blocks on the home document.
func newMenuRuntime(ctx context.Context, cfg config.Config, width, height int, log logr.Logger) (*menuRuntime, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("frame size must be positive, got %dx%d", width, height)
	}
	engine, err := fetch.New(
		fetch.WithDir(cfg.Fetch.Dir),
		fetch.WithConcurrency(cfg.Fetch.Concurrency),
		fetch.WithTimeout(cfg.Fetch.Timeout.Std()),
		fetch.WithDownloader(fetch.DefaultDownloader(cfg.Fetch.UserAgent)),
		fetch.WithLogger(log.WithName("fetch")),
	)
	if err != nil {
		return nil, err
	}

	m, err := menu.New(cfg, engine, log.WithName("menu"))
	if err != nil {
		_ = engine.Close()
		return nil, err
	}
	backend := raster.New(width, height)
	a := app.New[widget.Widget](m, m.NewRoot(uint32(width), uint32(height)), backend, log.WithName("app"))
	if err := a.Initialize(ctx); err != nil {
		_ = engine.Close()
		return nil, fmt.Errorf("build menu: %w", err)
	}
	return &menuRuntime{engine: engine, menu: m, backend: backend, app: a}, nil
}

// Close stops downloads and removes downloaded files.
func (r *menuRuntime) Close() error {
	return r.engine.Close()
}
