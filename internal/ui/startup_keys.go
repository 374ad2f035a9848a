package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/tilemenu/internal/app"
)

// ParseStartupKeys turns Vim-like tokens into key presses. A token may mix
// bracketed keys with literal text, e.g. "<Down>ll" is down, l, l. A leading
// backslash forces the whole token to be literal text.
func ParseStartupKeys(tokens []string) ([]tea.KeyPressMsg, error) {
	var msgs []tea.KeyPressMsg
	for _, raw := range tokens {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, `\`) {
			msgs = append(msgs, literalKeys(strings.TrimPrefix(token, `\`))...)
			continue
		}
		for _, segment := range parseTokenSegments(token) {
			if !segment.isVimKey {
				msgs = append(msgs, literalKeys(segment.text)...)
				continue
			}
			msg, ok := keyMsgFromToken(segment.text)
			if !ok {
				return nil, fmt.Errorf("unknown key %s", segment.text)
			}
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

// StartupEvents parses tokens and maps the resulting key presses through
// keys. Presses with no binding are dropped.
func StartupEvents(keys KeyMap, tokens []string) ([]app.Event, error) {
	msgs, err := ParseStartupKeys(tokens)
	if err != nil {
		return nil, err
	}
	var events []app.Event
	for _, msg := range msgs {
		if ev, ok := keys.Event(msg); ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

func literalKeys(text string) []tea.KeyPressMsg {
	var msgs []tea.KeyPressMsg
	for _, r := range text {
		msgs = append(msgs, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return msgs
}

// tokenSegment is either a bracketed key or a run of literal text.
type tokenSegment struct {
	text     string
	isVimKey bool
}

// parseTokenSegments splits a token into bracketed keys and literal text.
// Example: "<Right>jj" -> [{"<Right>", true}, {"jj", false}]
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	remaining := token

	for len(remaining) > 0 {
		startIdx := strings.Index(remaining, "<")
		if startIdx == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if startIdx > 0 {
			segments = append(segments, tokenSegment{text: remaining[:startIdx]})
		}

		endIdx := strings.Index(remaining[startIdx:], ">")
		if endIdx == -1 {
			// No closing >, the rest is literal text.
			segments = append(segments, tokenSegment{text: remaining[startIdx:]})
			break
		}
		segments = append(segments, tokenSegment{text: remaining[startIdx : startIdx+endIdx+1], isVimKey: true})
		remaining = remaining[startIdx+endIdx+1:]
	}

	return segments
}

// keyMsgFromToken parses one bracketed key such as "<Esc>", "<CR>",
// "<Down>" or "<C-c>".
func keyMsgFromToken(token string) (tea.KeyPressMsg, bool) {
	inner := strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">")
	lower := strings.ToLower(inner)
	switch lower {
	case "esc", "c-[", "escape":
		return tea.KeyPressMsg{Code: tea.KeyEscape}, true
	case "cr", "enter", "return":
		return tea.KeyPressMsg{Code: tea.KeyEnter}, true
	case "space":
		return tea.KeyPressMsg{Code: ' ', Text: " "}, true
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}, true
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}, true
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}, true
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}, true
	}
	if strings.HasPrefix(lower, "c-") && len([]rune(lower)) == 3 {
		r := []rune(lower)[2]
		if r >= 'a' && r <= 'z' {
			return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}, true
		}
	}
	return tea.KeyPressMsg{}, false
}
