// Package display prints game events to a terminal.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/spudgame/internal/game"
)

// Options controls monitor output
type Options struct {
	Color       bool // Style lines with ANSI colours
	ShowGuesses bool
	ShowGameID  bool
}

// Styles used for each kind of line
type Styles struct {
	Header  lipgloss.Style
	Round   lipgloss.Style
	Warning lipgloss.Style
	Winner  lipgloss.Style
	Broke   lipgloss.Style
	Info    lipgloss.Style
}

// NewStyles builds the palette on a renderer bound to the output writer
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true),
		Round: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")),
		Warning: r.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true),
		Winner: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		Broke: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		Info: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
	}
}

// Monitor is an event subscriber that writes one transcript line per event.
// Write errors are ignored; the transcript is best effort.
type Monitor struct {
	mu        sync.Mutex
	w         io.Writer
	formatter *game.EventFormatter
	styles    Styles
}

// NewMonitor creates a monitor writing to w
func NewMonitor(w io.Writer, opts Options) *Monitor {
	r := lipgloss.NewRenderer(w)
	if !opts.Color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Monitor{
		w: w,
		formatter: game.NewEventFormatter(game.FormattingOptions{
			ShowGuesses: opts.ShowGuesses,
			ShowGameID:  opts.ShowGameID,
		}),
		styles: NewStyles(r),
	}
}

// OnEvent implements game.EventSubscriber
func (m *Monitor) OnEvent(event game.GameEvent) {
	text := m.Render(event)
	if text == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintln(m.w, text)
}

// Render returns the styled text for an event
func (m *Monitor) Render(event game.GameEvent) string {
	text := strings.TrimRight(m.formatter.Format(event), "\n")
	if text == "" {
		return ""
	}

	switch e := event.(type) {
	case game.GameStartEvent:
		return m.styleLines(text, m.styles.Header, m.styles.Info)
	case game.RoundEvent:
		return m.styles.Round.Render(text)
	case game.InsufficientFundsEvent:
		return m.styles.Warning.Render(text)
	case game.GameEndEvent:
		if e.HasWinner() {
			return m.styleLines(text, m.styles.Winner, m.styles.Info)
		}
		return m.styleLines(text, m.styles.Broke, m.styles.Info)
	default:
		return text
	}
}

// styleLines renders the first line with lead and the rest with rest.
// Lines are styled one at a time so lipgloss does not pad them to a block.
func (m *Monitor) styleLines(text string, lead, rest lipgloss.Style) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = lead.Render(line)
		} else {
			lines[i] = rest.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
