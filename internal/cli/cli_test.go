package cli

import (
	"bytes"
	"context"
	"flag"
	"testing"

	"github.com/atharvakonge/finance/internal/app"
	"github.com/atharvakonge/finance/internal/auth"
	"github.com/atharvakonge/finance/internal/events"
	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/atharvakonge/finance/internal/quote"
	"github.com/atharvakonge/finance/internal/store/memory"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testApp(t *testing.T) (*app.App, *quote.Simulated) {
	t.Helper()

	store := memory.New()
	quotes := quote.NewStatic()
	quotes.Set("AAPL", "Apple Inc.", decimal.NewFromInt(100))
	return &app.App{
		Store:       store,
		Quotes:      quotes,
		Publisher:   events.Nop{},
		Ledger:      ledger.New(store, quotes),
		Credentials: auth.NewCredentials(store, decimal.NewFromInt(10000), bcrypt.MinCost),
	}, quotes
}

// run executes one command line against a and returns its exit status,
// stdout and stderr.
func run(t *testing.T, a *app.App, args ...string) (subcommands.ExitStatus, string, string) {
	t.Helper()

	var out, errOut bytes.Buffer
	env := &Env{
		Open: func(context.Context) (*app.App, func(), error) { return a, func() {}, nil },
		Out:  &out,
		Err:  &errOut,
	}

	fs := flag.NewFlagSet("finance", flag.ContinueOnError)
	cdr := subcommands.NewCommander(fs, "finance")
	cdr.Output, cdr.Error = &out, &errOut
	env.SetFlags(fs)
	Register(cdr, env)

	require.NoError(t, fs.Parse(append([]string{"-raw"}, args...)))
	status := cdr.Execute(context.Background())
	return status, out.String(), errOut.String()
}

func TestCLI_TradingSession(t *testing.T) {
	a, quotes := testApp(t)

	status, out, _ := run(t, a, "-user", "alice", "register", "-p", "password1", "-c", "password1")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Registered **alice** with $10,000.00.")

	status, out, errOut := run(t, a, "-user", "alice", "buy", "aapl", "10")
	require.Equal(t, subcommands.ExitSuccess, status, errOut)
	assert.Contains(t, out, "**Bought!** 10 × AAPL")
	assert.Contains(t, out, "Cash left: $9,000.00.")

	quotes.Set("AAPL", "Apple Inc.", decimal.NewFromInt(120))
	status, out, errOut = run(t, a, "-user", "alice", "sell", "AAPL", "4")
	require.Equal(t, subcommands.ExitSuccess, status, errOut)
	assert.Contains(t, out, "Cash left: $9,480.00.")

	status, out, _ = run(t, a, "-user", "alice", "portfolio")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "| AAPL | Apple Inc. | 6 | $120.00 | $720.00 |")
	assert.Contains(t, out, "**$10,200.00**")

	status, out, _ = run(t, a, "-user", "alice", "history")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "| +10 |")
	assert.Contains(t, out, "| -4 |")

	status, out, _ = run(t, a, "-user", "alice", "verify")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "is consistent")

	status, out, _ = run(t, a, "quote", "aapl")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "costs **$120.00**")
}

func TestCLI_Failures(t *testing.T) {
	a, _ := testApp(t)
	status, _, _ := run(t, a, "-user", "bob", "register", "-p", "password1", "-c", "password1")
	require.Equal(t, subcommands.ExitSuccess, status)

	cases := []struct {
		name string
		args []string
		want subcommands.ExitStatus
		msg  string
	}{
		{"no user", []string{"portfolio"}, subcommands.ExitFailure, "-user is required"},
		{"unknown user", []string{"-user", "carol", "history"}, subcommands.ExitFailure, `no such user "carol"`},
		{"fractional shares", []string{"-user", "bob", "buy", "AAPL", "1.5"}, subcommands.ExitFailure, "invalid"},
		{"too expensive", []string{"-user", "bob", "buy", "AAPL", "101"}, subcommands.ExitFailure, "not enough cash"},
		{"not held", []string{"-user", "bob", "sell", "AAPL", "1"}, subcommands.ExitFailure, ""},
		{"missing shares", []string{"-user", "bob", "buy", "AAPL"}, subcommands.ExitUsageError, ""},
		{"unknown symbol", []string{"quote", "NOPE"}, subcommands.ExitFailure, ""},
		{"bad confirmation", []string{"-user", "dave", "register", "-p", "password1", "-c", "password2"}, subcommands.ExitFailure, "passwords don't match"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _, errOut := run(t, a, tc.args...)
			assert.Equal(t, tc.want, status)
			if tc.msg != "" {
				assert.Contains(t, errOut, tc.msg)
			}
		})
	}

	status, out, _ := run(t, a, "-user", "bob", "history")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "No transactions yet")
}
