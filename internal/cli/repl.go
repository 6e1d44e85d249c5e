package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a recording stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	QuickLogin(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Edit(ctx context.Context) error
	Avatar(ctx context.Context, args []string) error
	Verify(ctx context.Context) error
	VerifyChannel(ctx context.Context, cmd string) error
	Themes(ctx context.Context) error
	Theme(ctx context.Context, args []string) error
	Backgrounds(ctx context.Context) error
	Background(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Section(ctx context.Context, args []string) error
	Dashboard(ctx context.Context) error
	Accounts(ctx context.Context) error
	Reset(ctx context.Context) error
	Fail(ctx context.Context, err error)
}

const (
	guestHelp = "Available commands: register, login, quicklogin [name], accounts, reset, exit"
	userHelp  = "Available commands: whoami, edit, avatar [file], verify, verify-phone, verify-flowid, " +
		"verify-security, themes, theme <id>, backgrounds, background <css|preset>, stats, " +
		"section <name>, dashboard, accounts, reset, logout, exit"
)

// runREPL reads commands from in and dispatches them to a until EOF or
// "exit". Handler errors are handed to a.Fail so the loop keeps going.
//
// in is shared with the interactive prompts of the handlers, so it must be
// the same reader they consume.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("flow> %s > ", statusFn()))
		line, rerr := in.ReadString('\n')
		if rerr != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn(userHelp)
			} else {
				printlnFn(guestHelp)
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "quicklogin":
			err = a.QuickLogin(ctx, args)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)
		case "edit":
			err = a.Edit(ctx)
		case "avatar":
			err = a.Avatar(ctx, args)
		case "verify":
			err = a.Verify(ctx)
		case "verify-phone", "verify-flowid", "verify-security":
			err = a.VerifyChannel(ctx, cmd)
		case "themes":
			err = a.Themes(ctx)
		case "theme":
			err = a.Theme(ctx, args)
		case "backgrounds":
			err = a.Backgrounds(ctx)
		case "background":
			err = a.Background(ctx, args)
		case "stats":
			err = a.Stats(ctx)
		case "section":
			err = a.Section(ctx, args)
		case "dashboard":
			err = a.Dashboard(ctx)
		case "accounts":
			err = a.Accounts(ctx)
		case "reset":
			err = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			a.Fail(ctx, err)
		}
	}
}
