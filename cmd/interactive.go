package cmd

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tilemenu/internal/config"
	"github.com/oakwood-commons/tilemenu/internal/ui"
)

// runInteractive assembles the menu for the current terminal and runs the
// Bubble Tea front-end until the user quits.
func runInteractive(ctx context.Context, cfg config.Config, startKeys []string, log logr.Logger) error {
	presses, err := ui.ParseStartupKeys(startKeys)
	if err != nil {
		return err
	}
	colors, err := cfg.Palette.Colors()
	if err != nil {
		return err
	}

	progOpts, out, cleanup := getProgramOptions()
	defer cleanup()
	cols, rows := ui.TerminalSize(out)
	width, height := ui.FrameSize(cols, rows, cfg.UI.Scale, cfg.UI.StatusBar)

	rt, err := newMenuRuntime(ctx, cfg, width, height, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Error(err, "close fetch engine")
		}
	}()

	m := ui.NewModel(rt.app, rt.backend, ui.Options{
		FPS:         cfg.UI.FPS,
		Scale:       cfg.UI.Scale,
		StatusBar:   cfg.UI.StatusBar,
		Status:      rt.menu.Status,
		StatusColor: colors.Status,
		Background:  colors.Background,
		Keys:        ui.NewKeyMap(ui.KeyMode(cfg.UI.KeyMode)),
		Cols:        cols,
		Rows:        rows,
		Log:         log.WithName("ui"),
	})
	if m.Press(presses...) {
		log.Info("quit by startup keys")
		return nil
	}
	return ui.RunModel(ctx, m, progOpts...)
}
