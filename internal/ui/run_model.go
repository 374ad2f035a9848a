package ui

import (
	"context"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// TerminalSize returns the size of the terminal behind f, falling back to
// 80x24 when it cannot be determined.
func TerminalSize(f *os.File) (cols, rows int) {
	cols, rows = 80, 24
	if f == nil {
		return cols, rows
	}
	if w, h, err := term.GetSize(int(f.Fd())); err == nil {
		if w > 0 {
			cols = w
		}
		if h > 0 {
			rows = h
		}
	}
	return cols, rows
}

// RunModel runs m as a Bubble Tea program until the user quits or ctx ends.
// Extra ProgramOptions (e.g., custom IO) are passed to tea.NewProgram.
func RunModel(ctx context.Context, m *Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	prog := tea.NewProgram(m, opts...)
	if _, err := prog.Run(); err != nil {
		return err
	}
	return m.Err()
}
