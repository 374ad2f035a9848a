package cmd

import (
	"context"
	"os"
	"runtime"
	"time"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

var (
	stdinIsPiped = func() bool {
		stat, err := os.Stdin.Stat()
		return err == nil && (stat.Mode()&os.ModeCharDevice) == 0
	}
	openTerminalIOFn = openTerminalIO
	termGetSize      = term.GetSize
	newResizeTicker  = func(d time.Duration) resizeTicker { return realResizeTicker{Ticker: time.NewTicker(d)} }
	sendWindowSize   = func(p *tea.Program, msg tea.WindowSizeMsg) { p.Send(msg) }
)

type resizeTicker interface {
	C() <-chan time.Time
	Stop()
}

type realResizeTicker struct {
	*time.Ticker
}

func (t realResizeTicker) C() <-chan time.Time { return t.Ticker.C }

// getProgramOptions reopens the terminal when stdin is piped so key presses
// and resizes still reach the program. It returns the program options, the
// file the program draws to and a cleanup func.
func getProgramOptions() ([]tea.ProgramOption, *os.File, func()) {
	cleanup := func() {}
	if !stdinIsPiped() {
		return nil, os.Stdout, cleanup
	}

	ttyIn, ttyOut, err := openTerminalIOFn()
	if err != nil {
		// No controlling terminal (CI). Keys will not arrive but the menu still renders.
		return nil, os.Stdout, cleanup
	}
	cleanup = func() {
		_ = ttyIn.Close()
		if ttyOut != nil && ttyOut != ttyIn {
			_ = ttyOut.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	opts := []tea.ProgramOption{tea.WithInput(ttyIn)}
	out := os.Stdout
	if ttyOut != nil {
		out = ttyOut
		opts = append(opts, tea.WithOutput(ttyOut), withTTYResizeWatcher(ctx, ttyOut))
	}
	return opts, out, func() {
		cancel()
		cleanup()
	}
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if out == "" || out == in {
		return input, input, nil
	}
	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, err
	}
	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}

// withTTYResizeWatcher polls the terminal size of out and sends a
// WindowSizeMsg whenever it changes, until ctx is canceled.
func withTTYResizeWatcher(ctx context.Context, out *os.File) tea.ProgramOption {
	return func(p *tea.Program) {
		if ctx == nil || out == nil {
			return
		}
		go func() {
			t := newResizeTicker(250 * time.Millisecond)
			defer t.Stop()

			lastW, lastH := 0, 0
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C():
					w, h, err := termGetSize(int(out.Fd()))
					if err != nil || (w == lastW && h == lastH) {
						continue
					}
					lastW, lastH = w, h
					sendWindowSize(p, tea.WindowSizeMsg{Width: w, Height: h})
				}
			}
		}()
	}
}
