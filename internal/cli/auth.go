package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/flowcross/internal/common"
	"github.com/dmitrijs2005/flowcross/internal/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for username, email, password and its confirmation and
// creates the account. A successful registration also signs the user in.
// Both password buffers are wiped before returning.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	_, err = a.accounts.Register(ctx, services.RegisterInput{
		Username:        username,
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
	})
	return err
}

// Login prompts for username and password and starts a session.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	_, err = a.accounts.Login(ctx, username, string(password))
	return err
}

// QuickLogin starts a session without credentials. The name comes from the
// first argument or, when absent, from a prompt.
func (a *App) QuickLogin(ctx context.Context, args []string) error {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		var err error
		if username, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
			return err
		}
	}
	_, err := a.accounts.QuickLogin(ctx, username)
	return err
}

func (a *App) Logout(ctx context.Context) error {
	return a.accounts.Logout(ctx)
}

// WhoAmI prints a short summary of the current session.
func (a *App) WhoAmI(ctx context.Context) error {
	s, err := a.accounts.Current(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintln(a.out, kv("Username", s.Username))
	fmt.Fprintln(a.out, kv("Email", orDash(s.Email)))
	fmt.Fprintln(a.out, kv("Logged in", s.LoginAt().Format(time.DateTime)))
	fmt.Fprintln(a.out, kv("Verified", check(s.Verified, "yes", "no")))
	return nil
}

// Accounts lists registered accounts. Password fields are never shown.
func (a *App) Accounts(ctx context.Context) error {
	list, err := a.accounts.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No registered accounts")
		return nil
	}
	for _, c := range list {
		fmt.Fprintf(a.out, "%s  %s  %s\n",
			keyStyle.Render(c.Username),
			valueStyle.Render(c.Email),
			time.UnixMilli(c.RegistrationTime).Format(time.DateOnly))
	}
	return nil
}

// Reset wipes local accounts and the session after a typed confirmation.
func (a *App) Reset(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, `Delete all local accounts and the session? Type "yes"`, a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(answer), "yes") {
		fmt.Fprintln(a.out, "Reset cancelled")
		return nil
	}
	return a.accounts.Reset(ctx)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
