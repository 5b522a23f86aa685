// Package report renders the performance table and run summary for the operator.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/buylow/internal/domain"
)

var (
	subtle  = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	special = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warning = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F87"}

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	worstStyle  = cellStyle.Foreground(warning)
	noteStyle   = lipgloss.NewStyle().Foreground(subtle)
	okStyle     = lipgloss.NewStyle().Foreground(special).Bold(true)
	alertStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
)

// Dollars formats an amount as $1,234.56.
func Dollars(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return "$" + humanize.FormatFloat("#,###.##", f)
}

// Percent formats a percent change as -10.00%.
func Percent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// Printer writes human readable run output.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Table renders records, which the caller has already sorted, highlighting worst.
func Table(records []domain.PerformanceRecord, worst string) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Symbol, Dollars(r.BaselinePrice), Dollars(r.CurrentPrice), Percent(r.PercentChange)})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(noteStyle).
		Headers("Equity", "Starting Price", "Ending Price", "Percent Change").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(records) && records[row].Symbol == worst:
				return worstStyle
			default:
				return cellStyle
			}
		}).
		String()
}

// Performance prints the performance table and the worst performer.
func (p *Printer) Performance(sorted []domain.PerformanceRecord, worst domain.PerformanceRecord) {
	fmt.Fprintln(p.w, Table(sorted, worst.Symbol))
	fmt.Fprintf(p.w, "Worst performing equity: %s\n", worst.Symbol)
}

// Decision prints the sizing outcome.
func (p *Printer) Decision(d domain.TradeDecision) {
	fmt.Fprintf(p.w, "Maximum amount to spend: %s\n", Dollars(d.Budget))
	fmt.Fprintf(p.w, "Maximum whole shares of %s to purchase: %d\n", d.Symbol, d.AffordableShares)
}

// CashBalance prints the balance that passed the affordability check.
func (p *Printer) CashBalance(cash decimal.Decimal) {
	fmt.Fprintf(p.w, "Current cash balance: %s\n", Dollars(cash))
}

// InsufficientFunds prints the aborted run notice.
func (p *Printer) InsufficientFunds(e *domain.InsufficientFundsError) {
	fmt.Fprintln(p.w, alertStyle.Render(
		fmt.Sprintf("Insufficient cash balance (%s) to make the purchase of %s.", Dollars(e.CashBalance), Dollars(e.Budget))))
}

// NothingToBuy prints the notice for a decision with zero shares.
func (p *Printer) NothingToBuy(d domain.TradeDecision) {
	fmt.Fprintf(p.w, "%s at %s is above the budget, no order will be placed.\n", d.Symbol, Dollars(d.Price))
}

// DryRun prints what a live run would have bought.
func (p *Printer) DryRun(d domain.TradeDecision) {
	fmt.Fprintf(p.w, "Test mode, otherwise %d shares of %s would be purchased.\n", d.AffordableShares, d.Symbol)
	fmt.Fprintln(p.w, noteStyle.Render("If you're ready, run with --live"))
}

// OrderPlaced prints the broker confirmation.
func (p *Printer) OrderPlaced(c domain.OrderConfirmation) {
	msg := fmt.Sprintf("Order placed: buy %d %s", c.Quantity, c.Symbol)
	if c.ID != "" {
		msg += fmt.Sprintf(" (order %s)", c.ID)
	}
	fmt.Fprintln(p.w, okStyle.Render(msg))
}

// OrderHistory prints journaled orders, oldest first.
func (p *Printer) OrderHistory(records []domain.OrderRecord) {
	if len(records) == 0 {
		fmt.Fprintln(p.w, noteStyle.Render("No orders recorded."))
		return
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.PlacedAt.Local().Format("2006-01-02 15:04"),
			r.Instruction,
			r.Symbol,
			fmt.Sprintf("%d", r.Quantity),
			r.BrokerOrderID,
		})
	}

	fmt.Fprintln(p.w, table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(noteStyle).
		Headers("Placed", "Side", "Equity", "Shares", "Order ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String())
}

// Done prints the final line.
func (p *Printer) Done() {
	fmt.Fprintln(p.w, "Done!")
}
