package ui

import (
	"image/color"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tilemenu/internal/app"
	"github.com/oakwood-commons/tilemenu/pkg/raster"
	"github.com/oakwood-commons/tilemenu/pkg/widget"
)

// Options configures the terminal front-end.
type Options struct {
	// FPS is the tick rate driving App.Step.
	FPS int
	// Scale is the number of frame pixels per cell column.
	Scale     int
	StatusBar bool
	// Status returns the text of the status line. When nil the key help is
	// shown instead.
	Status      func() string
	StatusColor color.RGBA
	Background  color.RGBA
	Keys        KeyMap
	// Cols and Rows are the terminal size the frame was created for.
	Cols, Rows int
	Log        logr.Logger
}

type tickMsg time.Time

// Model is the Bubble Tea model presenting the raster frame as half-block
// cells and feeding key presses and resizes to the app.
type Model struct {
	app     *app.App[widget.Widget]
	backend *raster.Backend
	opts    Options

	width, height int
	quitting      bool
	err           error

	view               string
	viewVersion        uint64
	viewCols, viewRows int
	statusStyle        lipgloss.Style
}

// NewModel returns a model over a and the backend it renders into.
func NewModel(a *app.App[widget.Widget], backend *raster.Backend, opts Options) *Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Scale <= 0 {
		opts.Scale = 8
	}
	if len(opts.Keys.Quit.Keys()) == 0 {
		opts.Keys = NewKeyMap(DefaultKeyMode)
	}
	return &Model{
		app:         a,
		backend:     backend,
		opts:        opts,
		width:       opts.Cols,
		height:      opts.Rows,
		statusStyle: lipgloss.NewStyle().Foreground(opts.StatusColor).Background(opts.Background),
	}
}

// FrameSize returns the frame size in pixels for a terminal of cols×rows
// cells. Each cell shows two vertically stacked pixels, so cells map to
// square scale×scale pixel blocks.
func FrameSize(cols, rows, scale int, statusBar bool) (width, height int) {
	if statusBar {
		rows--
	}
	return max(cols, 1) * scale, max(rows, 1) * 2 * scale
}

// Err returns the error that stopped the model, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyPressMsg:
		ev, ok := m.opts.Keys.Event(msg)
		if !ok {
			return m, nil
		}
		if m.app.HandleEvent(ev) == app.Quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		if _, err := m.app.Step(); err != nil {
			m.opts.Log.Error(err, "frame failed")
			m.err = err
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

// Press feeds key presses through Update, stopping early on quit. It
// reports whether a press asked to quit.
func (m *Model) Press(msgs ...tea.KeyPressMsg) bool {
	for _, msg := range msgs {
		m.Update(msg)
		if m.quitting {
			return true
		}
	}
	return false
}

// Resize adapts the frame to a terminal of cols×rows cells.
func (m *Model) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	if cols == m.width && rows == m.height {
		return
	}
	m.width, m.height = cols, rows
	w, h := FrameSize(cols, rows, m.opts.Scale, m.opts.StatusBar)
	m.backend.Resize(w, h)
	m.app.HandleEvent(app.ResizeEvent(w, h))
	m.opts.Log.V(1).Info("terminal resized", "cols", cols, "rows", rows, "frame_width", w, "frame_height", h)
}

func (m *Model) frameRows() int {
	rows := m.height
	if m.opts.StatusBar {
		rows--
	}
	return max(rows, 1)
}

func (m *Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	cols, rows := m.width, m.frameRows()
	version := m.backend.Version()
	if version != m.viewVersion || cols != m.viewCols || rows != m.viewRows {
		m.view = ""
		if snap := m.backend.Snapshot(); snap != nil {
			m.view = HalfBlocks(snap, cols, rows)
		}
		m.viewVersion, m.viewCols, m.viewRows = version, cols, rows
	}
	if !m.opts.StatusBar {
		return m.view
	}
	return m.view + "\n" + m.statusLine(cols)
}

func (m *Model) statusLine(cols int) string {
	text := m.opts.Keys.Help()
	if m.opts.Status != nil {
		text = m.opts.Status()
	}
	text = runewidth.Truncate(text, cols, "…")
	return m.statusStyle.Render(runewidth.FillRight(text, cols))
}
