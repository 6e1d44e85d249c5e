package cli

import (
	"context"
	"fmt"
)

// getStatus renders the prompt status: the signed-in user or "guest".
func (a *App) getStatus(ctx context.Context) string {
	s, err := a.accounts.Current(ctx)
	if err != nil || s == nil {
		return "(guest)"
	}
	if s.Verified {
		return fmt.Sprintf("(%s ✓)", s.Username)
	}
	return fmt.Sprintf("(%s)", s.Username)
}

// Root greets the user and runs the command loop on stdin.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, headerStyle.Render("Welcome to FlowCross")+" (type 'help' for commands)")
	if s, err := a.accounts.Current(ctx); err == nil && s != nil {
		fmt.Fprintf(a.out, "Resuming session of %s\n", s.Username)
	}

	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader)
}
