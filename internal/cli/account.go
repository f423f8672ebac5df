package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/atharvakonge/finance/internal/render"
	"github.com/google/subcommands"
)

type registerCmd struct {
	env          *Env
	password     string
	confirmation string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create the account named by -user" }
func (*registerCmd) Usage() string {
	return `finance -user <name> register -p <password> -c <confirmation>

  Creates an account with the configured starting cash.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.password, "p", "", "password, at least 8 letters or digits")
	f.StringVar(&c.confirmation, "c", "", "password again")
}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, release, err := c.env.Open(ctx)
	if err != nil {
		return c.env.fail("%v", err)
	}
	defer release()

	u, err := a.Credentials.Register(ctx, c.env.User, c.password, c.confirmation)
	if err != nil {
		return c.env.fail("%v", err)
	}

	c.env.printMarkdown(fmt.Sprintf("Registered **%s** with %s.\n", u.Username, render.USD(u.Cash)))
	return subcommands.ExitSuccess
}
