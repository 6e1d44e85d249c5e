package cli

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#00ff88")
	muted  = lipgloss.Color("#888888")
	text   = lipgloss.Color("#FFFFFF")
	good   = lipgloss.Color("#39FF14")
	bad    = lipgloss.Color("#FF3131")

	headerStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	subHeaderStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginBottom(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(muted).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(text)

	okStyle  = lipgloss.NewStyle().Foreground(good)
	offStyle = lipgloss.NewStyle().Foreground(bad)

	cardStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(muted)

	sidebarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Width(26)

	selectedStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(muted).
			Faint(true).
			MarginTop(1)
)

func kv(key, value string) string {
	return keyStyle.Render(key) + valueStyle.Render(value)
}

func check(ok bool, on, off string) string {
	if ok {
		return okStyle.Render("✓ " + on)
	}
	return offStyle.Render("✗ " + off)
}
