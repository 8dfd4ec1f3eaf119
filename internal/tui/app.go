package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// appModel adapts the chat view to tea.Model.
type appModel struct {
	chat ChatModel
}

func (a appModel) Init() tea.Cmd {
	return a.chat.Init()
}

func (a appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	return a, cmd
}

func (a appModel) View() string {
	return a.chat.View()
}

// Run starts the chat UI over the given dialog and blocks until it exits.
func Run(dialog Dialog) error {
	p := tea.NewProgram(appModel{chat: NewChatModel(dialog)}, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
