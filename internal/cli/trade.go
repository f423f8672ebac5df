package cli

import (
	"context"
	"flag"

	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/atharvakonge/finance/internal/models"
	"github.com/atharvakonge/finance/internal/render"
	"github.com/google/subcommands"
)

type tradeFunc func(l *ledger.Ledger, ctx context.Context, userID int64, symbol string, shares int64) (models.Receipt, error)

// trade parses "<symbol> <shares>" and runs do for the current user.
func trade(ctx context.Context, e *Env, f *flag.FlagSet, do tradeFunc) subcommands.ExitStatus {
	if f.NArg() != 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	shares, err := ledger.ParseShares(f.Arg(1))
	if err != nil {
		return e.fail("%v", err)
	}

	a, userID, release, err := e.session(ctx)
	if err != nil {
		return e.fail("%v", err)
	}
	defer release()

	r, err := do(a.Ledger, ctx, userID, f.Arg(0), shares)
	if err != nil {
		return e.fail("%v", err)
	}
	e.printMarkdown(render.ReceiptMarkdown(r))
	return subcommands.ExitSuccess
}

type buyCmd struct{ env *Env }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy shares at the current price" }
func (*buyCmd) Usage() string {
	return `finance -user <name> buy <symbol> <shares>
`
}
func (*buyCmd) SetFlags(*flag.FlagSet) {}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return trade(ctx, c.env, f, (*ledger.Ledger).Buy)
}

type sellCmd struct{ env *Env }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell held shares at the current price" }
func (*sellCmd) Usage() string {
	return `finance -user <name> sell <symbol> <shares>
`
}
func (*sellCmd) SetFlags(*flag.FlagSet) {}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return trade(ctx, c.env, f, (*ledger.Ledger).Sell)
}

type quoteCmd struct{ env *Env }

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "look up the current price of a symbol" }
func (*quoteCmd) Usage() string {
	return `finance quote <symbol>
`
}
func (*quoteCmd) SetFlags(*flag.FlagSet) {}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, release, err := c.env.Open(ctx)
	if err != nil {
		return c.env.fail("%v", err)
	}
	defer release()

	q, err := a.Quotes.Lookup(ctx, ledger.NormalizeSymbol(f.Arg(0)))
	if err != nil {
		return c.env.fail("%v", err)
	}
	c.env.printMarkdown(render.QuoteMarkdown(q))
	return subcommands.ExitSuccess
}
