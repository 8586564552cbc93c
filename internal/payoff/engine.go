// Package payoff computes debt payoff projections from account, bill and
// income snapshots.
//
// Every function here is pure and total: no I/O, no shared state, no errors.
// Degenerate input (zero or negative payment, zero income, NaN) resolves to a
// defined fallback value instead of failing. A zero result can mean "no data"
// as well as "paid off"; callers that care must look at the raw balance.
package payoff

import (
	"math"
	"time"

	"darkfinance/internal/core"
)

const (
	// MaxProjectionMonths caps month counts so absurd ratios (a balance of
	// 1e300 paid at 0.01/month) stay representable as int.
	MaxProjectionMonths = 12 * 10000

	// Acceleration heuristics. These are flat multipliers, not amortization.
	accelerationPaymentFactor = 1.5
	accelerationSavingsFactor = 0.15
)

type (
	// TimeToPayoff is a duration split into whole years and leftover months.
	TimeToPayoff struct {
		Years  int `json:"years"`
		Months int `json:"months"`
	}

	// AggregateMetrics summarizes all of a user's accounts against income.
	// PayoffYear is 0 when no projection applies.
	AggregateMetrics struct {
		TotalDebt            float64 `json:"total_debt"`
		TotalAccounts        int     `json:"total_accounts"`
		TotalMonthlyPayments float64 `json:"total_monthly_payments"`
		PayoffYear           int     `json:"payoff_year"`
		RemainingAfterBills  float64 `json:"remaining_after_bills"`
		DebtToIncomeRatio    float64 `json:"debt_to_income_ratio"`
	}

	// BudgetSplit expresses bills and leftover income as percentages of
	// income. PercentAvailable goes negative on overspend.
	BudgetSplit struct {
		PercentSpent     float64 `json:"percent_spent"`
		PercentAvailable float64 `json:"percent_available"`
	}

	// Acceleration is the flat-multiplier payoff suggestion: 1.5x the minimum
	// payment and 15% of the balance as estimated savings.
	Acceleration struct {
		SuggestedPayment        float64 `json:"suggested_payment"`
		InterestSavingsEstimate float64 `json:"interest_savings_estimate"`
	}
)

// TotalMonths returns years*12 + months.
func (t TimeToPayoff) TotalMonths() int {
	return t.Years*12 + t.Months
}

// IsZero reports whether no payoff time applies.
func (t TimeToPayoff) IsZero() bool {
	return t.Years == 0 && t.Months == 0
}

// ComputeAccountPayoff estimates how long the account takes to clear at its
// current monthly payment, counting a partial final month as a full one.
// Interest is not compounded.
func ComputeAccountPayoff(a core.Account) TimeToPayoff {
	total := monthsToClear(finite(a.CurrentBalance), finite(a.MyMonthlyPay))
	return TimeToPayoff{Years: total / 12, Months: total % 12}
}

// ComputeAggregateMetrics is ComputeAggregateMetricsAt for the current year.
func ComputeAggregateMetrics(accounts []core.Account, monthlyIncome, fixedBillsTotal float64) AggregateMetrics {
	return ComputeAggregateMetricsAt(accounts, monthlyIncome, fixedBillsTotal, time.Now().Year())
}

// ComputeAggregateMetricsAt sums the accounts and derives payoff year,
// leftover income and debt-to-income ratio relative to the given year.
func ComputeAggregateMetricsAt(accounts []core.Account, monthlyIncome, fixedBillsTotal float64, year int) AggregateMetrics {
	income := finite(monthlyIncome)
	bills := finite(fixedBillsTotal)

	m := AggregateMetrics{TotalAccounts: len(accounts)}
	for _, a := range accounts {
		m.TotalDebt += finite(a.CurrentBalance)
		m.TotalMonthlyPayments += finite(a.MyMonthlyPay)
	}
	m.TotalDebt = finite(m.TotalDebt)
	m.TotalMonthlyPayments = finite(m.TotalMonthlyPayments)

	if months := monthsToClear(m.TotalDebt, m.TotalMonthlyPayments); months > 0 {
		m.PayoffYear = year + months/12
	}
	m.RemainingAfterBills = income - bills
	if income > 0 {
		m.DebtToIncomeRatio = finite(m.TotalDebt / (income * 12) * 100)
	}
	return m
}

// ComputeBudgetSplit returns bills and remaining income as percentages of
// income, or zeros when there is no income. Values are not clamped.
func ComputeBudgetSplit(monthlyIncome, fixedBillsTotal, remainingAfterBills float64) BudgetSplit {
	income := finite(monthlyIncome)
	if income <= 0 {
		return BudgetSplit{}
	}
	return BudgetSplit{
		PercentSpent:     finite(finite(fixedBillsTotal) / income * 100),
		PercentAvailable: finite(finite(remainingAfterBills) / income * 100),
	}
}

// SuggestAcceleratedPayment returns a suggestion only for accounts already paid
// above their minimum. The boolean is false when no suggestion applies.
func SuggestAcceleratedPayment(a core.Account) (Acceleration, bool) {
	pay, minimum := finite(a.MyMonthlyPay), finite(a.MinimumPayment)
	if pay <= minimum {
		return Acceleration{}, false
	}
	return Acceleration{
		SuggestedPayment:        finite(minimum * accelerationPaymentFactor),
		InterestSavingsEstimate: finite(finite(a.CurrentBalance) * accelerationSavingsFactor),
	}, true
}

// FixedBillsTotal sums bill costs.
func FixedBillsTotal(bills []core.FixedBill) float64 {
	var total float64
	for _, b := range bills {
		total += finite(b.Cost)
	}
	return finite(total)
}

// monthsToClear is ceil(balance/pay), 0 when either side is not positive.
func monthsToClear(balance, pay float64) int {
	if pay <= 0 || balance <= 0 {
		return 0
	}
	months := math.Ceil(balance / pay)
	if math.IsNaN(months) || months > MaxProjectionMonths {
		return MaxProjectionMonths
	}
	return int(months)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
