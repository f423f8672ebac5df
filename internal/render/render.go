// Package render formats ledger values for people: USD amounts and
// markdown tables for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/atharvakonge/finance/internal/models"
	"github.com/shopspring/decimal"
)

var usd = money.GetCurrency(money.USD)

// USD formats d as dollars, e.g. $1,234.56. Values are rounded to cents.
func USD(d decimal.Decimal) string {
	cents := d.Shift(int32(usd.Fraction)).Round(0).IntPart()
	return usd.Formatter().Format(cents)
}

// PortfolioMarkdown renders the index page: one row per position, then cash
// and the grand total.
func PortfolioMarkdown(p models.Portfolio) string {
	var b strings.Builder
	b.WriteString("# Portfolio\n\n")
	b.WriteString("| Symbol | Name | Shares | Price | Total |\n")
	b.WriteString("|:---|:---|---:|---:|---:|\n")
	for _, pos := range p.Positions {
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n",
			pos.Symbol, escape(pos.Name), pos.Shares, USD(pos.Price), USD(pos.Total))
	}
	fmt.Fprintf(&b, "| **Cash** | | | | %s |\n", USD(p.Cash))
	fmt.Fprintf(&b, "| **Total** | | | | **%s** |\n", USD(p.NetWorth))
	return b.String()
}

// HistoryMarkdown renders the transaction log, oldest first.
func HistoryMarkdown(log []models.Transaction) string {
	var b strings.Builder
	b.WriteString("# History\n\n")
	if len(log) == 0 {
		b.WriteString("_No transactions yet._\n")
		return b.String()
	}
	b.WriteString("| Symbol | Name | Shares | Price | Transacted |\n")
	b.WriteString("|:---|:---|---:|---:|:---|\n")
	for _, t := range log {
		fmt.Fprintf(&b, "| %s | %s | %+d | %s | %s |\n",
			t.Symbol, escape(t.Name), t.Shares, USD(t.SharePrice), t.Timestamp.Format("02/01/2006 15:04:05"))
	}
	return b.String()
}

// QuoteMarkdown renders a single quote line.
func QuoteMarkdown(q models.Quote) string {
	return fmt.Sprintf("A share of %s (%s) costs **%s**.\n", escape(q.Name), q.Symbol, USD(q.Price))
}

// ReceiptMarkdown confirms an executed trade: "Bought!" for a purchase,
// "Sold!" for a sale.
func ReceiptMarkdown(r models.Receipt) string {
	t := r.Transaction
	verb, n := "Bought!", t.Shares
	if n < 0 {
		verb, n = "Sold!", -n
	}
	return fmt.Sprintf("**%s** %d × %s (%s) at %s. Cash left: %s.\n",
		verb, n, t.Symbol, escape(t.Name), USD(t.SharePrice), USD(r.Cash))
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
