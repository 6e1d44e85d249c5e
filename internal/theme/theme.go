// Package theme is the read-only catalog of dashboard themes and background
// presets, and the entitlement boundary that gates premium themes.
package theme

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Palette struct {
	Primary    string `yaml:"primary"`
	Secondary  string `yaml:"secondary"`
	Background string `yaml:"background"`
}

type Theme struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preview     string  `yaml:"preview"`
	Colors      Palette `yaml:"colors"`
	Premium     bool    `yaml:"premium"`
}

// Background is a named CSS gradient preset.
type Background struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type catalog struct {
	Themes      []Theme      `yaml:"themes"`
	Backgrounds []Background `yaml:"backgrounds"`
}

// DefaultID is the theme shown when the session has no preference.
const DefaultID = "default"

var builtin = mustParse(catalogYAML)

func parse(data []byte) (*catalog, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("theme catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Themes))
	for _, t := range c.Themes {
		if t.ID == "" {
			return nil, fmt.Errorf("theme catalog: theme %q has no id", t.Name)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("theme catalog: duplicate theme id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return &c, nil
}

func mustParse(data []byte) *catalog {
	c, err := parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the catalog in display order.
func All() []Theme {
	return append([]Theme(nil), builtin.Themes...)
}

// Lookup finds a theme by id.
func Lookup(id string) (Theme, bool) {
	for _, t := range builtin.Themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

// Backgrounds returns the background presets in display order.
func Backgrounds() []Background {
	return append([]Background(nil), builtin.Backgrounds...)
}

// ResolveBackground maps a preset id or name (case-insensitive) to its CSS
// value. Any other input is returned unchanged, as free-form CSS.
func ResolveBackground(s string) string {
	for _, b := range builtin.Backgrounds {
		if strings.EqualFold(s, b.ID) || strings.EqualFold(s, b.Name) {
			return b.Value
		}
	}
	return s
}

// Swatch renders the palette as three coloured blocks followed by the name.
func Swatch(t Theme) string {
	block := func(hex string) string {
		return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("   ")
	}
	name := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Colors.Primary)).Bold(true).Render(t.Name)
	return block(t.Colors.Primary) + block(t.Colors.Secondary) + block(t.Colors.Background) + " " + name
}

// Entitlements answers whether a user may select premium themes.
type Entitlements interface {
	HasPremium(ctx context.Context, username string) (bool, error)
}

// StaticEntitlements gives every user the same answer. There is no billing
// backend yet, so this is the only implementation.
type StaticEntitlements struct {
	Premium bool
}

func (s StaticEntitlements) HasPremium(context.Context, string) (bool, error) {
	return s.Premium, nil
}
