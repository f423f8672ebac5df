package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/atharvakonge/finance/internal/render"
	"github.com/google/subcommands"
)

type portfolioCmd struct{ env *Env }

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "display holdings at live prices, cash and net worth" }
func (*portfolioCmd) Usage() string {
	return `finance -user <name> portfolio
`
}
func (*portfolioCmd) SetFlags(*flag.FlagSet) {}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, userID, release, err := c.env.session(ctx)
	if err != nil {
		return c.env.fail("%v", err)
	}
	defer release()

	p, err := a.Ledger.Portfolio(ctx, userID)
	if err != nil {
		return c.env.fail("%v", err)
	}
	c.env.printMarkdown(render.PortfolioMarkdown(p))
	return subcommands.ExitSuccess
}

type historyCmd struct{ env *Env }

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list every transaction, oldest first" }
func (*historyCmd) Usage() string {
	return `finance -user <name> history
`
}
func (*historyCmd) SetFlags(*flag.FlagSet) {}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, userID, release, err := c.env.session(ctx)
	if err != nil {
		return c.env.fail("%v", err)
	}
	defer release()

	log, err := a.Ledger.History(ctx, userID)
	if err != nil {
		return c.env.fail("%v", err)
	}
	c.env.printMarkdown(render.HistoryMarkdown(log))
	return subcommands.ExitSuccess
}

// verifyCmd checks the account against the ledger invariants.
type verifyCmd struct{ env *Env }

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "check that holdings and cash agree with the transaction log" }
func (*verifyCmd) Usage() string {
	return `finance -user <name> verify

  Fails when cash is negative, a holding is negative, or a holding's shares
  differ from the sum of its transactions.
`
}
func (*verifyCmd) SetFlags(*flag.FlagSet) {}

func (c *verifyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, userID, release, err := c.env.session(ctx)
	if err != nil {
		return c.env.fail("%v", err)
	}
	defer release()

	if err := a.Ledger.CheckInvariants(ctx, userID); err != nil {
		return c.env.fail("%v", err)
	}
	c.env.printMarkdown(fmt.Sprintf("Account **%s** is consistent.\n", c.env.User))
	return subcommands.ExitSuccess
}
