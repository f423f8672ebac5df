// Package cli implements the finance command line tool. Every command works
// directly against the configured store, acting as the user named by -user.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/atharvakonge/finance/internal/app"
	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// Env is shared by every command.
type Env struct {
	// Open returns the wired application and a func releasing it.
	Open func(ctx context.Context) (*app.App, func(), error)

	Out io.Writer
	Err io.Writer

	User  string
	Raw   bool
	Style string
}

// SetFlags registers the global flags.
func (e *Env) SetFlags(f *flag.FlagSet) {
	f.StringVar(&e.User, "user", "", "username to act as")
	f.BoolVar(&e.Raw, "raw", false, "print plain markdown instead of rendering it")
	f.StringVar(&e.Style, "style", "dark", "glamour style used to render output")
}

// Register the subcommands.
func Register(c *subcommands.Commander, e *Env) {
	c.Register(&registerCmd{env: e}, "account")

	c.Register(&buyCmd{env: e}, "trading")
	c.Register(&sellCmd{env: e}, "trading")
	c.Register(&quoteCmd{env: e}, "trading")

	c.Register(&portfolioCmd{env: e}, "reports")
	c.Register(&historyCmd{env: e}, "reports")
	c.Register(&verifyCmd{env: e}, "reports")
}

func (e *Env) printMarkdown(md string) {
	if e.Raw {
		fmt.Fprint(e.Out, md)
		return
	}
	out, err := glamour.Render(md, e.Style)
	if err != nil {
		fmt.Fprint(e.Out, md)
		return
	}
	fmt.Fprint(e.Out, out)
}

func (e *Env) fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// session opens the application and resolves -user.
func (e *Env) session(ctx context.Context) (*app.App, int64, func(), error) {
	if e.User == "" {
		return nil, 0, nil, errors.New("-user is required")
	}
	a, release, err := e.Open(ctx)
	if err != nil {
		return nil, 0, nil, err
	}
	u, err := a.Store.UserByUsername(ctx, e.User)
	if err != nil {
		release()
		if errors.Is(err, ledger.ErrUserNotFound) {
			return nil, 0, nil, fmt.Errorf("no such user %q", e.User)
		}
		return nil, 0, nil, err
	}
	return a, u.ID, release, nil
}
