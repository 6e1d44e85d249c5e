package cli

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/flowcross/internal/section"
)

// runProgram is a test seam for running a bubbletea program.
var runProgram = func(ctx context.Context, m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

type keyMap struct {
	Up, Down, Top, Bottom, Help, Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Top, k.Bottom}, {k.Help, k.Quit}}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j", "tab"), key.WithHelp("↓/j", "down")),
	Top:    key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
	Bottom: key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// dashboardModel is the full-screen dashboard: a section sidebar on the left
// and the selected section on the right.
type dashboardModel struct {
	sections []section.Section
	cursor   int
	view     view
	help     help.Model
	quitting bool
}

func newDashboardModel(v view, start section.Section) dashboardModel {
	m := dashboardModel{sections: section.All(), view: v, help: help.New()}
	for i, s := range m.sections {
		if s == start {
			m.cursor = i
		}
	}
	return m
}

func (m dashboardModel) Init() tea.Cmd {
	return nil
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.sections)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Top):
		m.cursor = 0
	case key.Matches(msg, keys.Bottom):
		m.cursor = len(m.sections) - 1
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m dashboardModel) selected() section.Section {
	return m.sections[m.cursor]
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var side strings.Builder
	side.WriteString(headerStyle.Render("FlowCross") + "\n")
	side.WriteString(subHeaderStyle.Render(m.view.session.Username) + "\n")
	for i, s := range m.sections {
		if i == m.cursor {
			side.WriteString(selectedStyle.Render("▸ "+s.Title()) + "\n")
		} else {
			side.WriteString("  " + s.Title() + "\n")
		}
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(strings.TrimRight(side.String(), "\n")),
		"  ",
		render(m.selected(), m.view),
	)
	return body + "\n" + footerStyle.Render(m.help.View(keys))
}

// Dashboard opens the interactive dashboard for the current session.
func (a *App) Dashboard(ctx context.Context) error {
	v, err := a.loadView(ctx)
	if err != nil {
		return err
	}
	return runProgram(ctx, newDashboardModel(v, section.Profile))
}
