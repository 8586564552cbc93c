package core

import "time"

// ProjectionSnapshot is a persisted point-in-time copy of a user's aggregate
// metrics. PayoffYear keeps the engine's 0 "not applicable" marker.
type ProjectionSnapshot struct {
	ID                   int64     `json:"id"`
	UserID               string    `json:"user_id"`
	TotalDebt            float64   `json:"total_debt"`
	TotalMonthlyPayments float64   `json:"total_monthly_payments"`
	TotalAccounts        int       `json:"total_accounts"`
	PayoffYear           int       `json:"payoff_year"`
	RemainingAfterBills  float64   `json:"remaining_after_bills"`
	DebtToIncomeRatio    float64   `json:"debt_to_income_ratio"`
	ComputedAt           time.Time `json:"computed_at"`
}
