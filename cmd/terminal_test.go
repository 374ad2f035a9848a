package cmd

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalDeviceNames(t *testing.T) {
	in, out := terminalDeviceNames("windows")
	assert.Equal(t, "CONIN$", in)
	assert.Equal(t, "CONOUT$", out)

	in, out = terminalDeviceNames("linux")
	assert.Equal(t, "/dev/tty", in)
	assert.Equal(t, "/dev/tty", out)
}

func TestGetProgramOptionsWithoutPipe(t *testing.T) {
	orig := stdinIsPiped
	t.Cleanup(func() { stdinIsPiped = orig })
	stdinIsPiped = func() bool { return false }

	opts, out, cleanup := getProgramOptions()
	defer cleanup()
	assert.Empty(t, opts)
	assert.Equal(t, os.Stdout, out)
}

func TestGetProgramOptionsFallsBackWithoutTTY(t *testing.T) {
	origPiped, origOpen := stdinIsPiped, openTerminalIOFn
	t.Cleanup(func() { stdinIsPiped, openTerminalIOFn = origPiped, origOpen })
	stdinIsPiped = func() bool { return true }
	openTerminalIOFn = func() (*os.File, *os.File, error) { return nil, nil, errors.New("no tty") }

	opts, out, cleanup := getProgramOptions()
	defer cleanup()
	assert.Empty(t, opts)
	assert.Equal(t, os.Stdout, out)
}

func TestGetProgramOptionsReopensTTY(t *testing.T) {
	origPiped, origOpen := stdinIsPiped, openTerminalIOFn
	t.Cleanup(func() { stdinIsPiped, openTerminalIOFn = origPiped, origOpen })
	stdinIsPiped = func() bool { return true }

	r, w, err := os.Pipe()
	require.NoError(t, err)
	openTerminalIOFn = func() (*os.File, *os.File, error) { return r, w, nil }

	opts, out, cleanup := getProgramOptions()
	assert.Len(t, opts, 3, "input, output and the resize watcher")
	assert.Equal(t, w, out)
	cleanup()
	_, err = w.Write([]byte("x"))
	assert.Error(t, err, "cleanup closes the reopened terminal")
}

type fakeTicker struct {
	c chan time.Time
}

func (f fakeTicker) C() <-chan time.Time { return f.c }
func (f fakeTicker) Stop()               {}

func TestTTYResizeWatcherSendsChanges(t *testing.T) {
	origTicker, origSize, origSend := newResizeTicker, termGetSize, sendWindowSize
	t.Cleanup(func() { newResizeTicker, termGetSize, sendWindowSize = origTicker, origSize, origSend })

	ticks := make(chan time.Time)
	newResizeTicker = func(time.Duration) resizeTicker { return fakeTicker{c: ticks} }
	sizes := [][2]int{{80, 24}, {80, 24}, {100, 30}}
	i := 0
	termGetSize = func(int) (int, int, error) {
		s := sizes[i]
		i++
		return s[0], s[1], nil
	}
	sent := make(chan tea.WindowSizeMsg, 3)
	sendWindowSize = func(_ *tea.Program, msg tea.WindowSizeMsg) { sent <- msg }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	withTTYResizeWatcher(ctx, os.Stdout)(nil)

	for range sizes {
		ticks <- time.Now()
	}
	assert.Equal(t, tea.WindowSizeMsg{Width: 80, Height: 24}, <-sent)
	assert.Equal(t, tea.WindowSizeMsg{Width: 100, Height: 30}, <-sent)
	assert.Empty(t, sent, "unchanged sizes are not resent")
}
