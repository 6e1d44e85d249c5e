package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/flowcross/internal/models"
	"github.com/dmitrijs2005/flowcross/internal/section"
	"github.com/dmitrijs2005/flowcross/internal/stats"
	"github.com/dmitrijs2005/flowcross/internal/theme"
)

// view is the data every section renders from.
type view struct {
	session *models.Session
	stats   stats.Stats
}

type renderer func(v view) string

// renderers must hold an entry for every section.All().
var renderers = map[section.Section]renderer{
	section.Profile:       renderProfile,
	section.Settings:      renderSettings,
	section.Themes:        func(v view) string { return renderThemes(activeTheme(v.session)) },
	section.Security:      renderSecurity,
	section.Notifications: renderNotifications,
	section.Downloads:     renderDownloads,
	section.Subscription:  renderSubscription,
	section.Activity:      renderActivity,
	section.Help:          renderHelp,
}

func (a *App) loadView(ctx context.Context) (view, error) {
	s, err := a.current(ctx)
	if err != nil {
		return view{}, err
	}
	st, err := a.accounts.Stats(ctx)
	if err != nil {
		return view{}, err
	}
	return view{session: s, stats: st}, nil
}

// render draws the header and body of s.
func render(s section.Section, v view) string {
	r, ok := renderers[s]
	if !ok {
		return ""
	}
	return headerStyle.Render(s.Title()) + "\n" +
		subHeaderStyle.Render(s.Description()) + "\n" +
		cardStyle.Render(strings.TrimRight(r(v), "\n"))
}

// Stats prints the activity section.
func (a *App) Stats(ctx context.Context) error {
	return a.Section(ctx, []string{section.Activity.String()})
}

func (a *App) Section(ctx context.Context, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	s, err := section.Parse(name)
	if err != nil {
		return err
	}
	v, err := a.loadView(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, render(s, v))
	return nil
}

func activeTheme(s *models.Session) string {
	if s == nil || s.Theme() == "" {
		return theme.DefaultID
	}
	return s.Theme()
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n")
}

func renderProfile(v view) string {
	s := v.session
	avatar := "none"
	switch {
	case strings.HasPrefix(s.Avatar, "data:"):
		avatar = "uploaded image"
	case s.Avatar != "":
		avatar = s.Avatar
	}
	return lines(
		kv("Username", s.Username),
		kv("Email", orDash(s.Email)),
		kv("Member since", s.LoginAt().Format(time.DateOnly)),
		kv("Avatar", avatar),
		kv("Status", check(s.Verified, "Verified", "Not verified")),
	)
}

func renderSettings(v view) string {
	t, _ := theme.Lookup(activeTheme(v.session))
	return lines(
		kv("Language", "English"),
		kv("Autostart", check(false, "", "off")),
		kv("Auto-update", check(true, "on", "")),
		kv("Theme", t.Name),
		kv("Background", orDash(v.session.Background())),
	)
}

func renderSecurity(v view) string {
	ver := v.session.Verification
	if ver == nil {
		ver = &models.Verification{}
	}
	phone := check(ver.Phone, "Verified", "Not verified")
	if ver.Phone && ver.PhoneNumber != "" {
		phone += " " + valueStyle.Render(ver.PhoneNumber)
	}
	flowID := check(ver.FlowID, "Verified", "Not verified")
	if ver.FlowID && ver.FlowIDValue != "" {
		flowID += " " + valueStyle.Render(ver.FlowIDValue)
	}
	return lines(
		kv("Account", check(v.session.Verified, "Verified", "Not verified")),
		kv("Phone", phone),
		kv("FlowID", flowID),
		kv("FlowSecurity", check(ver.FlowSecurity, "Enabled", "Disabled")),
	)
}

func renderNotifications(view) string {
	return lines(
		kv("Game updates", check(true, "on", "")),
		kv("New releases", check(true, "on", "")),
		kv("Friend activity", check(false, "", "off")),
		kv("Promotions", check(false, "", "off")),
	)
}

func renderDownloads(v view) string {
	return lines(
		kv("Downloads", fmt.Sprint(v.stats.Downloads)),
		kv("Favorites", fmt.Sprint(v.stats.Favorites)),
		kv("Hours played", fmt.Sprint(v.stats.HoursPlayed)),
	)
}

func renderSubscription(view) string {
	return lines(
		selectedStyle.Render("FLOW+ PREMIUM"),
		kv("Price", "$4.99 / month"),
		kv("Includes", "premium themes, priority downloads"),
	)
}

func renderActivity(v view) string {
	st := v.stats
	return lines(
		kv("Days active", fmt.Sprint(st.DaysActive)),
		kv("Status", string(st.Status)),
		kv("Hours played", fmt.Sprint(st.HoursPlayed)),
		kv("XP", fmt.Sprint(st.XP)),
		kv("Level progress", fmt.Sprintf("%d%%", st.LevelProgress)),
		kv("Daily usage", fmt.Sprintf("%dh", st.DailyUsage)),
		kv("Weekly progress", fmt.Sprintf("%d%%", st.WeeklyProgress)),
		kv("Login streak", fmt.Sprintf("%d days", st.LoginStreak)),
		"",
		weeklyChart(st.Weekly),
	)
}

var weekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// weeklyChart draws one bar per weekday, a cell per ten percent.
func weeklyChart(w [7]int) string {
	bar := lipgloss.NewStyle().Foreground(accent)
	rows := make([]string, len(w))
	for i, v := range w {
		rows[i] = fmt.Sprintf("%s %s %3d%%", weekdays[i], bar.Render(strings.Repeat("█", v/10)+strings.Repeat("░", 10-v/10)), v)
	}
	return lines(rows...)
}

func renderHelp(view) string {
	return lines(
		kv("Commands", "type 'help' at the prompt"),
		kv("Dashboard", "↑/↓ or j/k to move, q to leave"),
		kv("Support", "support@flowcross.example"),
	)
}
