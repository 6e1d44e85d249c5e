package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/flowcross/internal/common"
	"github.com/dmitrijs2005/flowcross/internal/filex"
	"github.com/dmitrijs2005/flowcross/internal/models"
	"github.com/dmitrijs2005/flowcross/internal/services"
	"github.com/dmitrijs2005/flowcross/internal/theme"
)

// verifyCommands maps REPL commands to the channel they verify and the
// prompt used to ask for its value.
var verifyCommands = map[string]struct {
	channel services.Channel
	prompt  string
}{
	"verify-phone":    {services.ChannelPhone, "Phone number"},
	"verify-flowid":   {services.ChannelFlowID, "FlowID"},
	"verify-security": {services.ChannelFlowSecurity, "FlowSecurity code"},
}

func (a *App) current(ctx context.Context) (*models.Session, error) {
	s, err := a.accounts.Current(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, common.ErrNoSession
	}
	return s, nil
}

// Edit asks for a new username and email. Empty answers keep the current
// values; if both are kept nothing is written.
func (a *App) Edit(ctx context.Context) error {
	s, err := a.current(ctx)
	if err != nil {
		return err
	}

	username, err := GetOptionalText(a.reader, "Username", s.Username, a.out)
	if err != nil {
		return err
	}
	email, err := GetOptionalText(a.reader, "Email", s.Email, a.out)
	if err != nil {
		return err
	}
	if username == nil && email == nil {
		fmt.Fprintln(a.out, "Nothing changed")
		return nil
	}

	_, err = a.profile.UpdateProfile(ctx, services.ProfileFields{Username: username, Email: email})
	return err
}

// Avatar uploads the image at args[0], or the built-in avatar without args.
func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		_, err := a.profile.SetDefaultAvatar(ctx)
		return err
	}

	img, err := filex.ReadLimited(args[0], services.MaxAvatarSize)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	_, err = a.profile.SetAvatar(ctx, img)
	return err
}

// Verify toggles the account-level verified flag.
func (a *App) Verify(ctx context.Context) error {
	s, err := a.current(ctx)
	if err != nil {
		return err
	}
	_, err = a.profile.SetVerified(ctx, !s.Verified)
	return err
}

// VerifyChannel prompts for the channel value and runs the simulated
// verification. It blocks for the configured delay.
func (a *App) VerifyChannel(ctx context.Context, cmd string) error {
	vc, ok := verifyCommands[cmd]
	if !ok {
		return fmt.Errorf("%w: unknown verification channel %q", common.ErrValidation, cmd)
	}
	if _, err := a.current(ctx); err != nil {
		return err
	}

	var value string
	if vc.channel == services.ChannelFlowSecurity {
		code, err := getPassword(vc.prompt, a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(code)
		value = string(code)
	} else {
		v, err := getSimpleText(a.reader, vc.prompt, a.out)
		if err != nil {
			return err
		}
		value = v
	}

	fmt.Fprintln(a.out, subHeaderStyle.Render("Verifying..."))
	_, err := a.profile.SetVerificationChannel(ctx, vc.channel, value)
	return err
}

// Themes lists the catalogue, marking the active theme.
func (a *App) Themes(ctx context.Context) error {
	active := theme.DefaultID
	if s, err := a.accounts.Current(ctx); err == nil && s != nil && s.Theme() != "" {
		active = s.Theme()
	}
	fmt.Fprint(a.out, renderThemes(active))
	return nil
}

func renderThemes(active string) string {
	var b strings.Builder
	for _, t := range theme.All() {
		marker := "  "
		if t.ID == active {
			marker = selectedStyle.Render("● ")
		}
		line := marker + theme.Swatch(t) + " " + subHeaderStyle.UnsetMarginBottom().Render("("+t.ID+")")
		if t.Premium {
			line += " " + selectedStyle.Render("PREMIUM")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (a *App) Theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: theme <id>", common.ErrValidation)
	}
	_, err := a.profile.SetTheme(ctx, args[0])
	return err
}

func (a *App) Backgrounds(context.Context) error {
	for _, bg := range theme.Backgrounds() {
		fmt.Fprintln(a.out, kv(bg.ID, bg.Name))
	}
	return nil
}

// Background sets a preset (by id or name) or free-form CSS given as the
// rest of the line.
func (a *App) Background(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: background <css|preset>", common.ErrValidation)
	}
	_, err := a.profile.SetBackground(ctx, theme.ResolveBackground(strings.Join(args, " ")))
	return err
}
