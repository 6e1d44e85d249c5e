// Package section enumerates the account dashboard sections. The set is
// closed: renderers are keyed by Section and tests check they cover All().
package section

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/flowcross/internal/common"
)

type Section int

const (
	Profile Section = iota
	Settings
	Themes
	Security
	Notifications
	Downloads
	Subscription
	Activity
	Help
)

type info struct {
	id, title, description string
}

var table = [...]info{
	Profile:       {"profile", "Profile", "Basic information"},
	Settings:      {"settings", "Settings", "General settings"},
	Themes:        {"themes", "Themes", "Personalisation"},
	Security:      {"security", "Security", "Verification and protection"},
	Notifications: {"notifications", "Notifications", "Alert preferences"},
	Downloads:     {"downloads", "Downloads", "Download history"},
	Subscription:  {"subscription", "Subscription", "Premium status"},
	Activity:      {"activity", "Activity", "Usage statistics"},
	Help:          {"help", "Help", "FAQ and support"},
}

// All returns every section in sidebar order.
func All() []Section {
	out := make([]Section, len(table))
	for i := range table {
		out[i] = Section(i)
	}
	return out
}

// Parse maps an id such as "security" to its Section.
func Parse(s string) (Section, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, in := range table {
		if in.id == s {
			return Section(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown section %q", common.ErrValidation, s)
}

func (s Section) valid() bool { return s >= 0 && int(s) < len(table) }

// String returns the section id.
func (s Section) String() string {
	if !s.valid() {
		return fmt.Sprintf("section(%d)", int(s))
	}
	return table[s].id
}

func (s Section) Title() string {
	if !s.valid() {
		return ""
	}
	return table[s].title
}

func (s Section) Description() string {
	if !s.valid() {
		return ""
	}
	return table[s].description
}
