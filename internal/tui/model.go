// Package tui steps through a single game one round per key press.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/spudgame/internal/game"
)

const sidebarWidth = 30

// Model is the Bubble Tea model for the round stepper
type Model struct {
	engine    *game.Engine
	logger    *log.Logger
	formatter *game.EventFormatter

	logViewport viewport.Model
	gameLog     []string

	err      error
	quitting bool
	width    int
	height   int
}

// NewModel creates a stepper over engine. Every event the engine publishes
// is appended to the log pane.
func NewModel(engine *game.Engine, logger *log.Logger, showGuesses bool) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	m := &Model{
		engine:      engine,
		logger:      logger.WithPrefix("tui"),
		formatter:   game.NewEventFormatter(game.FormattingOptions{ShowGuesses: showGuesses}),
		logViewport: vp,
	}
	engine.Events().Subscribe(game.SubscriberFunc(m.onEvent))
	return m
}

func (m *Model) onEvent(event game.GameEvent) {
	text := strings.TrimRight(m.formatter.Format(event), "\n")
	if text == "" {
		return
	}
	m.gameLog = append(m.gameLog, strings.Split(text, "\n")...)
	m.logViewport.SetContent(m.renderLog())
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// renderLog styles each transcript line on its own so lines keep their width
func (m *Model) renderLog() string {
	styled := make([]string, len(m.gameLog))
	for i, line := range m.gameLog {
		styled[i] = GameLogStyle.Render(line)
	}
	return strings.Join(styled, "\n")
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles key presses and resizes
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "n", " ", "enter":
			m.step()
			return m, nil
		case "a":
			for !m.engine.GameOver() && m.err == nil {
				m.step()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m *Model) step() {
	if m.engine.GameOver() {
		return
	}
	if _, err := m.engine.AdvanceRound(); err != nil && !errors.Is(err, game.ErrGameOver) {
		m.logger.Error("Failed to advance round", "error", err)
		m.err = err
	}
}

func (m *Model) resize() {
	w := m.width - sidebarWidth - 4
	h := m.height - 3
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	m.logViewport.Width = w
	m.logViewport.Height = h
	m.logViewport.GotoBottom()
}

// View renders the log pane, the state sidebar and a help line
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	logPane := paneStyle.
		Width(m.logViewport.Width).
		Height(m.logViewport.Height).
		Render(m.logViewport.View())
	sidebar := paneStyle.
		Width(sidebarWidth).
		Height(m.logViewport.Height).
		Render(m.renderSidebar())

	top := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebar)
	return lipgloss.JoinVertical(lipgloss.Left, top, m.renderHelp())
}

func (m *Model) renderSidebar() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(" Spud Game "))
	b.WriteString("\n\n")
	b.WriteString(PoolStyle.Render(fmt.Sprintf("Pool: $%.2f", m.engine.PrizePool())))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Attempts: %d\n", m.engine.StealCount())
	fmt.Fprintf(&b, "Numbers left: %d\n", len(m.engine.AvailableNumbers()))
	if !m.engine.GameOver() {
		fmt.Fprintf(&b, "Next fee: $%.2f\n", m.engine.NextFee())
	}
	b.WriteString("\n")

	for _, balance := range m.engine.Balances() {
		line := fmt.Sprintf("%-10s $%.2f", balance.Player, balance.Amount)
		if balance.Player == m.engine.Holder() && !m.engine.GameOver() {
			line = HolderStyle.Render(line + " *")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch status := m.engine.Status(); status {
	case game.StatusWinner:
		b.WriteString(SuccessStyle.Render(status.String()))
	case game.StatusNoWinner:
		b.WriteString(ErrorStyle.Render(status.String()))
	default:
		b.WriteString(InfoStyle.Render(status.String()))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(m.err.Error()))
	}
	return b.String()
}

func (m *Model) renderHelp() string {
	if m.engine.GameOver() {
		return InfoStyle.Render("game over • q quit")
	}
	return InfoStyle.Render("n/space next round • a play to end • q quit")
}

// Log returns the transcript lines shown in the log pane
func (m *Model) Log() []string {
	return m.gameLog
}

// Quitting reports whether the user asked to quit
func (m *Model) Quitting() bool {
	return m.quitting
}

// Run starts the stepper on the alternate screen
func Run(engine *game.Engine, logger *log.Logger, showGuesses bool) error {
	model := NewModel(engine, logger, showGuesses)
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
