package ui

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/tilemenu/internal/app"
)

// KeyMode selects the navigation key set. Arrow keys work in every mode.
type KeyMode string

const (
	// KeyModeVim adds h/j/k/l.
	KeyModeVim KeyMode = "vim"
	// KeyModeEmacs adds ctrl+b/n/p/f.
	KeyModeEmacs KeyMode = "emacs"
	// KeyModeFunction uses the arrow keys only.
	KeyModeFunction KeyMode = "function"
)

// DefaultKeyMode is the default keybinding mode.
const DefaultKeyMode = KeyModeVim

// ValidKeyModes lists all valid key modes for validation.
var ValidKeyModes = []KeyMode{KeyModeVim, KeyModeEmacs, KeyModeFunction}

// IsValidKeyMode checks if a key mode string is valid.
func IsValidKeyMode(mode string) bool {
	for _, m := range ValidKeyModes {
		if string(m) == mode {
			return true
		}
	}
	return false
}

// KeyMap binds terminal keys to menu actions.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding
	Quit   key.Binding
}

// NewKeyMap returns the bindings for mode. Unknown modes get the default.
func NewKeyMap(mode KeyMode) KeyMap {
	up, down, left, right := []string{"up"}, []string{"down"}, []string{"left"}, []string{"right"}
	switch mode {
	case KeyModeEmacs:
		up, down = append(up, "ctrl+p"), append(down, "ctrl+n")
		left, right = append(left, "ctrl+b"), append(right, "ctrl+f")
	case KeyModeFunction:
	default:
		up, down = append(up, "k"), append(down, "j")
		left, right = append(left, "h"), append(right, "l")
	}
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys(up...), key.WithHelp(helpKeys(up), "up")),
		Down:   key.NewBinding(key.WithKeys(down...), key.WithHelp(helpKeys(down), "down")),
		Left:   key.NewBinding(key.WithKeys(left...), key.WithHelp(helpKeys(left), "left")),
		Right:  key.NewBinding(key.WithKeys(right...), key.WithHelp(helpKeys(right), "right")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "quit")),
	}
}

var arrowGlyphs = map[string]string{"up": "↑", "down": "↓", "left": "←", "right": "→"}

func helpKeys(keys []string) string {
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += "/"
		}
		if g, ok := arrowGlyphs[k]; ok {
			k = g
		}
		out += k
	}
	return out
}

// Event maps a key press to an application event.
func (k KeyMap) Event(msg tea.KeyPressMsg) (app.Event, bool) {
	switch {
	case key.Matches(msg, k.Quit):
		return app.Event{Kind: app.EventQuit}, true
	case key.Matches(msg, k.Up):
		return app.KeyEvent(app.KeyUp), true
	case key.Matches(msg, k.Down):
		return app.KeyEvent(app.KeyDown), true
	case key.Matches(msg, k.Left):
		return app.KeyEvent(app.KeyLeft), true
	case key.Matches(msg, k.Right):
		return app.KeyEvent(app.KeyRight), true
	case key.Matches(msg, k.Select):
		return app.KeyEvent(app.KeyEnter), true
	}
	return app.Event{}, false
}

// Help returns the short help line.
func (k KeyMap) Help() string {
	out := ""
	for i, b := range []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Select, k.Quit} {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
