package payoff

import (
	"slices"
	"strings"

	"darkfinance/internal/core"
)

// SortOrder selects the balance ordering of an account list.
type SortOrder string

const (
	SortNone      SortOrder = ""
	SortHighToLow SortOrder = "high_to_low"
	SortLowToHigh SortOrder = "low_to_high"
)

type (
	// Snapshot is the merged input of one projection: everything fetched for
	// a user before the engine runs.
	Snapshot struct {
		Accounts      []core.Account
		Bills         []core.FixedBill
		MonthlyIncome float64
	}

	AccountProjection struct {
		Account      core.Account  `json:"account"`
		Payoff       TimeToPayoff  `json:"payoff"`
		Acceleration *Acceleration `json:"acceleration,omitempty"`
	}

	// Overview bundles every derived figure the dashboard and planning views
	// show for one snapshot.
	Overview struct {
		Metrics         AggregateMetrics    `json:"metrics"`
		Budget          BudgetSplit         `json:"budget"`
		MonthlyIncome   float64             `json:"monthly_income"`
		FixedBillsTotal float64             `json:"fixed_bills_total"`
		Accounts        []AccountProjection `json:"accounts"`
	}
)

// ParseSortOrder accepts the API spellings of a sort order. Unknown values
// map to SortNone.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high_to_low", "desc", "high":
		return SortHighToLow
	case "low_to_high", "asc", "low":
		return SortLowToHigh
	default:
		return SortNone
	}
}

// SortByBalance returns a sorted copy of accounts. Ties keep input order.
func SortByBalance(accounts []core.Account, order SortOrder) []core.Account {
	out := slices.Clone(accounts)
	switch order {
	case SortHighToLow:
		slices.SortStableFunc(out, func(a, b core.Account) int {
			return compareFloat(finite(b.CurrentBalance), finite(a.CurrentBalance))
		})
	case SortLowToHigh:
		slices.SortStableFunc(out, func(a, b core.Account) int {
			return compareFloat(finite(a.CurrentBalance), finite(b.CurrentBalance))
		})
	}
	return out
}

// ProjectAccounts computes payoff time and acceleration for every account,
// preserving input order.
func ProjectAccounts(accounts []core.Account) []AccountProjection {
	out := make([]AccountProjection, 0, len(accounts))
	for _, a := range accounts {
		p := AccountProjection{Account: a, Payoff: ComputeAccountPayoff(a)}
		if acc, ok := SuggestAcceleratedPayment(a); ok {
			p.Acceleration = &acc
		}
		out = append(out, p)
	}
	return out
}

// BuildOverview runs every engine computation over one snapshot.
func BuildOverview(s Snapshot, year int) Overview {
	bills := FixedBillsTotal(s.Bills)
	income := finite(s.MonthlyIncome)
	metrics := ComputeAggregateMetricsAt(s.Accounts, income, bills, year)
	return Overview{
		Metrics:         metrics,
		Budget:          ComputeBudgetSplit(income, bills, metrics.RemainingAfterBills),
		MonthlyIncome:   income,
		FixedBillsTotal: bills,
		Accounts:        ProjectAccounts(s.Accounts),
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
