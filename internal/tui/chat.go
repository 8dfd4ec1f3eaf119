// Package tui renders the chat session: a scrolling transcript, an input
// field, and a spinner while a turn is being processed. Input is blocked
// while a dispatch is outstanding, so at most one turn runs at a time.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kanba/internal/router"
	"kanba/internal/session"
	"kanba/internal/util"
)

// Dialog is the slice of the router the chat view needs. Injected so tests
// can drive the view with a scripted implementation.
type Dialog interface {
	HandleUserTurn(ctx context.Context, input string) ([]session.Turn, error)
	Phase() router.Phase
}

// chatState tracks what the view is doing.
type chatState int

const (
	chatStateIdle    chatState = iota // waiting for user input
	chatStateWorking                  // a turn is being processed
	chatStateDone                     // session terminated
)

// turnDoneMsg carries the outcome of one processed user turn.
type turnDoneMsg struct {
	turns []session.Turn
	err   error
}

// ChatModel is the bubbletea model for one chat session.
type ChatModel struct {
	dialog Dialog
	state  chatState

	lines      []string
	transcript viewport.Model
	input      textarea.Model
	spinner    spinner.Model

	errorMsg string

	width  int
	height int
}

// NewChatModel creates the chat view over the given dialog.
func NewChatModel(dialog Dialog) ChatModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = userStyle

	ta := textarea.New()
	ta.Placeholder = "Describe your project idea..."
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	m := ChatModel{
		dialog:     dialog,
		state:      chatStateIdle,
		transcript: viewport.New(80, 20),
		input:      ta,
		spinner:    s,
	}
	m.appendLine(subtleStyle.Render("Let's define your idea. Describe what you want to build."))
	return m
}

// Init implements tea.Model.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textarea.Blink)
}

// Update implements tea.Model.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil

	case spinner.TickMsg:
		if m.state == chatStateWorking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case turnDoneMsg:
		return m.handleTurnDone(msg), nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	if m.state == chatStateIdle {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.transcript, cmd = m.transcript.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m ChatModel) handleKeyPress(msg tea.KeyMsg) (ChatModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "q":
		if m.state == chatStateDone {
			return m, tea.Quit
		}

	case "enter":
		if m.state == chatStateIdle && strings.TrimSpace(m.input.Value()) != "" {
			return m.sendMessage()
		}
	}

	if m.state == chatStateIdle {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// sendMessage hands the typed message to the router and blocks further
// input until the turn completes.
func (m ChatModel) sendMessage() (ChatModel, tea.Cmd) {
	message := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	m.errorMsg = ""

	m.appendLine(userStyle.Render("You: ") + message)
	m.state = chatStateWorking

	dialog := m.dialog
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			turns, err := dialog.HandleUserTurn(context.Background(), message)
			return turnDoneMsg{turns: turns, err: err}
		},
	)
}

// handleTurnDone renders the produced turns and decides the next state.
func (m ChatModel) handleTurnDone(msg turnDoneMsg) ChatModel {
	for _, t := range msg.turns {
		switch t.Kind {
		case session.TurnAssistant:
			m.appendLine(t.Content)
		case session.TurnAction:
			label := "-> " + t.Action
			if len(t.Args) > 0 {
				label += " " + util.Truncate(fmt.Sprintf("%v", t.Args), 48)
			}
			m.appendLine(subtleStyle.Render(label))
		case session.TurnResult:
			if t.Failed {
				m.appendLine(errorStyle.Render("x " + t.Content))
			} else {
				m.appendLine(successStyle.Render("+ " + t.Content))
			}
		}
	}

	if msg.err != nil {
		m.errorMsg = msg.err.Error()
		m.appendLine(errorStyle.Render("Error: " + msg.err.Error()))
	}

	if m.dialog.Phase() == router.PhaseTerminated {
		m.state = chatStateDone
		m.appendLine("")
		m.appendLine(successStyle.Render("Session complete. Press q to quit."))
		return m
	}

	m.state = chatStateIdle
	m.input.Focus()
	return m
}

func (m *ChatModel) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.transcript.SetContent(strings.Join(m.lines, "\n"))
	m.transcript.GotoBottom()
}

func (m *ChatModel) updateLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	// Total minus title, input area, status line and borders.
	transcriptHeight := m.height - 9
	if transcriptHeight < 5 {
		transcriptHeight = 5
	}
	m.transcript.Width = m.width - 4
	m.transcript.Height = transcriptHeight
	m.input.SetWidth(m.width - 4)
	m.transcript.SetContent(strings.Join(m.lines, "\n"))
}

// View implements tea.Model.
func (m ChatModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := titleStyle.Render("kanba")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	b.WriteString("\n")

	b.WriteString(boxStyle.Width(m.width - 2).Render(m.transcript.View()))
	b.WriteString("\n")

	switch m.state {
	case chatStateWorking:
		b.WriteString(fmt.Sprintf("%s Thinking...", m.spinner.View()))
	case chatStateDone:
		b.WriteString(subtleStyle.Render("Session ended."))
	default:
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")

	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m ChatModel) renderStatusBar() string {
	switch m.state {
	case chatStateWorking:
		return subtleStyle.Render("Ctrl+C Quit")
	case chatStateDone:
		return subtleStyle.Render("q Quit")
	}
	return subtleStyle.Render("Enter Send  Ctrl+C Quit")
}

// State exposes the view state for tests.
func (m ChatModel) State() chatState { return m.state }

// Lines returns a copy of the transcript lines.
func (m ChatModel) Lines() []string {
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}
