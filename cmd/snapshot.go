package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tilemenu/internal/app"
	"github.com/oakwood-commons/tilemenu/internal/config"
	"github.com/oakwood-commons/tilemenu/internal/ui"
)

const settleInterval = 10 * time.Millisecond

type snapshotOptions struct {
	path          string
	width, height int
	// settleTimeout bounds each wait for thumbnails; 0 waits until ctx ends.
	settleTimeout time.Duration
	keys          []string
	// out receives the PNG when path is "-".
	out io.Writer
}

// runSnapshot renders the menu headless: it waits for thumbnails, replays
// the startup keys the way the terminal front-end would and writes the
// final frame as PNG.
func runSnapshot(ctx context.Context, cfg config.Config, opts snapshotOptions, log logr.Logger) error {
	events, err := ui.StartupEvents(ui.NewKeyMap(ui.KeyMode(cfg.UI.KeyMode)), opts.keys)
	if err != nil {
		return err
	}

	rt, err := newMenuRuntime(ctx, cfg, opts.width, opts.height, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Error(err, "close fetch engine")
		}
	}()

	settle := func() error {
		sctx := ctx
		if opts.settleTimeout > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(ctx, opts.settleTimeout)
			defer cancel()
		}
		err := rt.app.Settle(sctx, settleInterval)
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			log.Info("thumbnails still loading, writing what is there", "timeout", opts.settleTimeout.String())
			return nil
		}
		return err
	}

	if err := settle(); err != nil {
		return err
	}
	for _, ev := range events {
		if rt.app.HandleEvent(ev) == app.Quit {
			break
		}
		if err := settle(); err != nil {
			return err
		}
	}
	// A settle cut short may leave invalidated nodes behind.
	if _, err := rt.app.Step(); err != nil {
		return err
	}

	if err := writeSnapshot(opts, rt); err != nil {
		return err
	}
	log.Info("snapshot written", "path", opts.path, "frames", rt.app.Frames(), "status", rt.menu.Status())
	return nil
}

func writeSnapshot(opts snapshotOptions, rt *menuRuntime) error {
	if opts.path == "-" {
		return rt.backend.WritePNG(opts.out)
	}
	f, err := os.Create(opts.path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := rt.backend.WritePNG(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	return f.Close()
}
