package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"darkfinance/internal/calendar"
	"darkfinance/internal/core"
	"darkfinance/internal/payoff"
)

var (
	ColorBorder    = lipgloss.Color("#3A3A3A")
	ColorTextMuted = lipgloss.Color("#7A7A7A")
	ColorText      = lipgloss.Color("#EDEDED")
	ColorAccent    = lipgloss.Color("#5FAFD7")
	ColorGreen     = lipgloss.Color("#87AF5F")
	ColorRed       = lipgloss.Color("#D75F5F")
	ColorYellow    = lipgloss.Color("#D7AF5F")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorText).Align(lipgloss.Center)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	valueStyle  = lipgloss.NewStyle().Foreground(ColorText)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorTextMuted)
	goodStyle   = lipgloss.NewStyle().Foreground(ColorGreen)
	badStyle    = lipgloss.NewStyle().Foreground(ColorRed)
	warnStyle   = lipgloss.NewStyle().Foreground(ColorYellow)
	borderStyle = lipgloss.NewStyle().Foreground(ColorBorder)
)

// Table is a bordered text table. A row holding the single cell "---" draws
// a separator.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

const separatorRow = "---"

// RenderTitle renders a centered title in a rounded box.
func RenderTitle(title string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)
	return box.Render(titleStyle.Render(title))
}

// RenderTable draws t with the first column left-aligned and the others
// right-aligned.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	for _, row := range t.Rows {
		numCols = max(numCols, len(row))
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	measure := func(cells []string) {
		if len(cells) == 1 && cells[0] == separatorRow {
			return
		}
		for i, c := range cells {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(borderStyle.Render(left))
		for i, w := range widths {
			b.WriteString(borderStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(borderStyle.Render(mid))
			}
		}
		b.WriteString(borderStyle.Render(right) + "\n")
	}
	line := func(cells []string, style lipgloss.Style) {
		b.WriteString(borderStyle.Render("│"))
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", w-lipgloss.Width(cell))
			if i == 0 {
				b.WriteString(style.Render(" " + cell + pad + " "))
			} else {
				b.WriteString(style.Render(" " + pad + cell + " "))
			}
			if i < numCols-1 {
				b.WriteString(borderStyle.Render("│"))
			}
		}
		b.WriteString(borderStyle.Render("│") + "\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		line(t.Headers, headerStyle)
		rule("├", "┼", "┤")
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == separatorRow {
			rule("├", "┼", "┤")
			continue
		}
		line(row, valueStyle)
	}
	rule("╰", "┴", "╯")
	return b.String()
}

// FormatPayoff renders a time to payoff as "2y 6m"; zero reads as "-".
func FormatPayoff(t payoff.TimeToPayoff) string {
	switch {
	case t.IsZero():
		return "-"
	case t.Years == 0:
		return fmt.Sprintf("%dm", t.Months)
	case t.Months == 0:
		return fmt.Sprintf("%dy", t.Years)
	default:
		return fmt.Sprintf("%dy %dm", t.Years, t.Months)
	}
}

// FormatPayoffYear renders the aggregate payoff year; 0 means no projection.
func FormatPayoffYear(year int) string {
	if year == 0 {
		return "-"
	}
	return strconv.Itoa(year)
}

func formatPercent(v float64) string {
	return core.FormatNumber(v, 1) + "%"
}

// RenderAccountPayoff prints the projection of a single account.
func RenderAccountPayoff(a core.Account, p payoff.TimeToPayoff, acc *payoff.Acceleration) string {
	rows := [][]string{
		{"Balance", core.FormatCurrency(a.CurrentBalance, 2)},
		{"Monthly payment", core.FormatCurrency(a.MyMonthlyPay, 2)},
		{"Minimum payment", core.FormatCurrency(a.MinimumPayment, 2)},
		{separatorRow},
		{"Time to payoff", FormatPayoff(p)},
		{"Months", strconv.Itoa(p.TotalMonths())},
	}
	if acc != nil {
		rows = append(rows,
			[]string{separatorRow},
			[]string{"Suggested payment", core.FormatCurrency(acc.SuggestedPayment, 2)},
			[]string{"Est. interest savings", core.FormatCurrency(acc.InterestSavingsEstimate, 2)},
		)
	}
	return RenderTable(Table{Title: a.DisplayName(), Headers: []string{"Metric", "Value"}, Rows: rows})
}

// RenderAccounts lists projected accounts, one row each.
func RenderAccounts(accounts []payoff.AccountProjection) string {
	if len(accounts) == 0 {
		return "  " + mutedStyle.Render("No accounts.") + "\n"
	}
	rows := make([][]string, 0, len(accounts))
	for _, p := range accounts {
		suggestion := "-"
		if p.Acceleration != nil {
			suggestion = core.FormatCurrency(p.Acceleration.SuggestedPayment, 2)
		}
		rows = append(rows, []string{
			p.Account.DisplayName(),
			p.Account.DisplayType(),
			core.FormatCurrency(p.Account.CurrentBalance, 2),
			core.FormatCurrency(p.Account.MyMonthlyPay, 2),
			FormatPayoff(p.Payoff),
			suggestion,
		})
	}
	return RenderTable(Table{
		Title:   "Accounts",
		Headers: []string{"Account", "Type", "Balance", "Pay", "Payoff", "Suggested"},
		Rows:    rows,
	})
}

// RenderOverview prints the aggregate metrics, the budget split and the
// account list.
func RenderOverview(ov payoff.Overview) string {
	m := ov.Metrics
	remaining := core.FormatCurrency(m.RemainingAfterBills, 2)
	if m.RemainingAfterBills < 0 {
		remaining = badStyle.Render(remaining)
	} else {
		remaining = goodStyle.Render(remaining)
	}
	dti := formatPercent(m.DebtToIncomeRatio)
	if m.DebtToIncomeRatio > 100 {
		dti = warnStyle.Render(dti)
	}

	summary := RenderTable(Table{
		Title:   "Overview",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Monthly income", core.FormatCurrency(ov.MonthlyIncome, 2)},
			{"Fixed bills", core.FormatCurrency(ov.FixedBillsTotal, 2)},
			{"Remaining after bills", remaining},
			{separatorRow},
			{"Total debt", core.FormatCurrency(m.TotalDebt, 2)},
			{"Accounts", strconv.Itoa(m.TotalAccounts)},
			{"Monthly debt payments", core.FormatCurrency(m.TotalMonthlyPayments, 2)},
			{"Debt-free year", FormatPayoffYear(m.PayoffYear)},
			{"Debt to income", dti},
			{separatorRow},
			{"Spent on bills", formatPercent(ov.Budget.PercentSpent)},
			{"Available", formatPercent(ov.Budget.PercentAvailable)},
		},
	})
	return summary + "\n" + RenderAccounts(ov.Accounts)
}

var weekdayHeaders = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// RenderCalendar draws each month as a week grid. Days with a due payment
// are marked with "*"; the events are listed under the grid.
func RenderCalendar(months []calendar.Month) string {
	var b strings.Builder
	for i, m := range months {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderMonth(m))
	}
	return b.String()
}

func renderMonth(m calendar.Month) string {
	cells := make([]string, 0, m.LeadingBlanks+len(m.Days))
	for range m.LeadingBlanks {
		cells = append(cells, "")
	}
	for _, d := range m.Days {
		cell := strconv.Itoa(d.Date.Day())
		if len(d.Events) > 0 {
			cell += "*"
		}
		if d.IsToday {
			cell = "[" + cell + "]"
		}
		cells = append(cells, cell)
	}

	var rows [][]string
	for start := 0; start < len(cells); start += 7 {
		week := make([]string, 7)
		copy(week, cells[start:min(start+7, len(cells))])
		rows = append(rows, week)
	}

	title := fmt.Sprintf("%d-%02d", m.Year, m.Month)
	if m.Label != "" {
		title += " " + m.Label
	}
	title += "  " + core.FormatCurrency(m.Total, 2) + " due"

	var b strings.Builder
	b.WriteString(RenderTable(Table{Title: title, Headers: weekdayHeaders, Rows: rows}))
	for _, d := range m.Days {
		for _, ev := range d.Events {
			amount := core.FormatCompact(ev.Amount)
			if ev.Paid {
				amount = mutedStyle.Render("paid")
			}
			fmt.Fprintf(&b, "  %2d  %-24s %s\n", d.Date.Day(), ev.Name, amount)
		}
	}
	return b.String()
}
