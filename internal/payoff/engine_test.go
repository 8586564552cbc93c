package payoff

import (
	"math"
	"testing"

	"darkfinance/internal/core"
)

func TestComputeAccountPayoff(t *testing.T) {
	tests := []struct {
		name    string
		account core.Account
		want    TimeToPayoff
	}{
		{
			name:    "under a year rounds partial month up",
			account: core.Account{CurrentBalance: 1500, MyMonthlyPay: 365, MinimumPayment: 365},
			want:    TimeToPayoff{Years: 0, Months: 5},
		},
		{
			name:    "multi year loan",
			account: core.Account{CurrentBalance: 250000, MyMonthlyPay: 6777},
			want:    TimeToPayoff{Years: 3, Months: 1},
		},
		{
			name:    "exact division",
			account: core.Account{CurrentBalance: 1200, MyMonthlyPay: 100},
			want:    TimeToPayoff{Years: 1, Months: 0},
		},
		{
			name:    "no payment",
			account: core.Account{CurrentBalance: 1000},
			want:    TimeToPayoff{},
		},
		{
			name:    "negative payment",
			account: core.Account{CurrentBalance: 1000, MyMonthlyPay: -50},
			want:    TimeToPayoff{},
		},
		{
			name:    "paid off",
			account: core.Account{CurrentBalance: 0, MyMonthlyPay: 200},
			want:    TimeToPayoff{},
		},
		{
			name:    "credit balance",
			account: core.Account{CurrentBalance: -20, MyMonthlyPay: 200},
			want:    TimeToPayoff{},
		},
		{
			name:    "NaN balance",
			account: core.Account{CurrentBalance: math.NaN(), MyMonthlyPay: 200},
			want:    TimeToPayoff{},
		},
		{
			name:    "infinite payment",
			account: core.Account{CurrentBalance: 100, MyMonthlyPay: math.Inf(1)},
			want:    TimeToPayoff{},
		},
		{
			name:    "absurd ratio is clamped",
			account: core.Account{CurrentBalance: 1e300, MyMonthlyPay: 1e-300},
			want:    TimeToPayoff{Years: MaxProjectionMonths / 12, Months: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAccountPayoff(tt.account)
			if got != tt.want {
				t.Errorf("ComputeAccountPayoff() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeAccountPayoff_TotalMonthsMatchesCeil(t *testing.T) {
	balances := []float64{0.01, 1, 99.99, 100, 101, 1500, 12345.67, 250000}
	pays := []float64{0.5, 1, 33, 100, 365, 6777}
	for _, b := range balances {
		for _, p := range pays {
			got := ComputeAccountPayoff(core.Account{CurrentBalance: b, MyMonthlyPay: p})
			want := int(math.Ceil(b / p))
			if got.TotalMonths() != want {
				t.Fatalf("balance=%v pay=%v: total months %d, want %d", b, p, got.TotalMonths(), want)
			}
			if got.Months < 0 || got.Months > 11 {
				t.Fatalf("balance=%v pay=%v: months out of range: %d", b, p, got.Months)
			}
		}
	}
}

func TestComputeAccountPayoff_Monotonic(t *testing.T) {
	const pay = 275
	prev := 0
	for balance := 0.0; balance <= 20000; balance += 137.5 {
		got := ComputeAccountPayoff(core.Account{CurrentBalance: balance, MyMonthlyPay: pay}).TotalMonths()
		if got < prev {
			t.Fatalf("payoff time decreased at balance %v: %d < %d", balance, got, prev)
		}
		prev = got
	}
}

func TestComputeAggregateMetrics_Empty(t *testing.T) {
	got := ComputeAggregateMetricsAt(nil, 0, 0, 2025)
	if got != (AggregateMetrics{}) {
		t.Fatalf("expected all-zero metrics, got %+v", got)
	}
	got = ComputeAggregateMetrics([]core.Account{}, 0, 0)
	if got != (AggregateMetrics{}) {
		t.Fatalf("expected all-zero metrics, got %+v", got)
	}
}

func TestComputeAggregateMetrics_PayoffYear(t *testing.T) {
	accounts := []core.Account{
		{CurrentBalance: 1000, MyMonthlyPay: 100},
		{CurrentBalance: 2000, MyMonthlyPay: 0},
	}
	got := ComputeAggregateMetricsAt(accounts, 0, 0, 2025)
	if got.TotalDebt != 3000 {
		t.Errorf("TotalDebt = %v, want 3000", got.TotalDebt)
	}
	if got.TotalMonthlyPayments != 100 {
		t.Errorf("TotalMonthlyPayments = %v, want 100", got.TotalMonthlyPayments)
	}
	if got.TotalAccounts != 2 {
		t.Errorf("TotalAccounts = %d, want 2", got.TotalAccounts)
	}
	if got.PayoffYear != 2027 {
		t.Errorf("PayoffYear = %d, want 2027", got.PayoffYear)
	}
}

func TestComputeAggregateMetrics_CurrentYear(t *testing.T) {
	accounts := []core.Account{{CurrentBalance: 3000, MyMonthlyPay: 100}}
	got := ComputeAggregateMetrics(accounts, 0, 0)
	// 30 months: two whole years ahead of whatever year the test runs in.
	at := ComputeAggregateMetricsAt(accounts, 0, 0, got.PayoffYear-2)
	if got != at {
		t.Fatalf("ComputeAggregateMetrics = %+v, ComputeAggregateMetricsAt = %+v", got, at)
	}
}

func TestComputeAggregateMetrics_PayoffYearNotApplicable(t *testing.T) {
	tests := []struct {
		name     string
		accounts []core.Account
	}{
		{"no payments", []core.Account{{CurrentBalance: 500}}},
		{"no debt", []core.Account{{MyMonthlyPay: 100}}},
		{"net credit", []core.Account{{CurrentBalance: -500, MyMonthlyPay: 100}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeAggregateMetricsAt(tt.accounts, 1000, 0, 2025).PayoffYear; got != 0 {
				t.Errorf("PayoffYear = %d, want 0", got)
			}
		})
	}
}

func TestComputeAggregateMetrics_IncomeDerived(t *testing.T) {
	accounts := []core.Account{{CurrentBalance: 12000, MyMonthlyPay: 500}}
	got := ComputeAggregateMetricsAt(accounts, 5000, 1500, 2025)
	if got.RemainingAfterBills != 3500 {
		t.Errorf("RemainingAfterBills = %v, want 3500", got.RemainingAfterBills)
	}
	if !approx(got.DebtToIncomeRatio, 20) {
		t.Errorf("DebtToIncomeRatio = %v, want 20", got.DebtToIncomeRatio)
	}
}

func TestComputeAggregateMetrics_ZeroIncome(t *testing.T) {
	accounts := []core.Account{{CurrentBalance: 12000, MyMonthlyPay: 500}}
	got := ComputeAggregateMetricsAt(accounts, 0, 500, 2025)
	if got.RemainingAfterBills != -500 {
		t.Errorf("RemainingAfterBills = %v, want -500", got.RemainingAfterBills)
	}
	if got.DebtToIncomeRatio != 0 {
		t.Errorf("DebtToIncomeRatio = %v, want 0", got.DebtToIncomeRatio)
	}
	split := ComputeBudgetSplit(0, 500, got.RemainingAfterBills)
	if split != (BudgetSplit{}) {
		t.Errorf("ComputeBudgetSplit = %+v, want zeros", split)
	}
}

func TestComputeAggregateMetrics_NonFinite(t *testing.T) {
	accounts := []core.Account{
		{CurrentBalance: math.NaN(), MyMonthlyPay: math.Inf(1)},
		{CurrentBalance: 600, MyMonthlyPay: 100},
	}
	got := ComputeAggregateMetricsAt(accounts, math.NaN(), math.Inf(-1), 2025)
	want := AggregateMetrics{
		TotalDebt:            600,
		TotalAccounts:        2,
		TotalMonthlyPayments: 100,
		PayoffYear:           2025,
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestComputeAggregateMetrics_Idempotent(t *testing.T) {
	accounts := []core.Account{
		{CurrentBalance: 1234.56, MyMonthlyPay: 78.9},
		{CurrentBalance: 98765.4, MyMonthlyPay: 1111.11},
		{CurrentBalance: 0.1, MyMonthlyPay: 0.2},
	}
	first := ComputeAggregateMetricsAt(accounts, 4321.09, 876.5, 2025)
	second := ComputeAggregateMetricsAt(accounts, 4321.09, 876.5, 2025)
	if first != second {
		t.Fatalf("outputs differ: %+v vs %+v", first, second)
	}
	if math.Float64bits(first.DebtToIncomeRatio) != math.Float64bits(second.DebtToIncomeRatio) {
		t.Fatalf("ratio not bitwise identical")
	}
}

func TestComputeBudgetSplit(t *testing.T) {
	tests := []struct {
		name                  string
		income, bills, remain float64
		wantSpent, wantAvail  float64
	}{
		{"normal", 4000, 1000, 3000, 25, 75},
		{"overspend is not clamped", 1000, 1500, -500, 150, -50},
		{"no income", 0, 500, -500, 0, 0},
		{"negative income", -100, 50, -150, 0, 0},
		{"NaN income", math.NaN(), 50, 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBudgetSplit(tt.income, tt.bills, tt.remain)
			if got.PercentSpent != tt.wantSpent || got.PercentAvailable != tt.wantAvail {
				t.Errorf("ComputeBudgetSplit() = %+v, want {%v %v}", got, tt.wantSpent, tt.wantAvail)
			}
		})
	}
}

func TestSuggestAcceleratedPayment(t *testing.T) {
	tests := []struct {
		name    string
		account core.Account
		want    Acceleration
		wantOK  bool
	}{
		{
			name:    "paying above minimum",
			account: core.Account{CurrentBalance: 2000, MyMonthlyPay: 600, MinimumPayment: 400},
			want:    Acceleration{SuggestedPayment: 600, InterestSavingsEstimate: 300},
			wantOK:  true,
		},
		{
			name:    "paying exactly minimum",
			account: core.Account{CurrentBalance: 1500, MyMonthlyPay: 365, MinimumPayment: 365},
		},
		{
			name:    "paying below minimum",
			account: core.Account{CurrentBalance: 1500, MyMonthlyPay: 100, MinimumPayment: 365},
		},
		{
			name:    "no minimum on record",
			account: core.Account{CurrentBalance: 1000, MyMonthlyPay: 50},
			want:    Acceleration{SuggestedPayment: 0, InterestSavingsEstimate: 150},
			wantOK:  true,
		},
		{
			name:    "NaN pay",
			account: core.Account{CurrentBalance: 1000, MyMonthlyPay: math.NaN(), MinimumPayment: 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SuggestAcceleratedPayment(tt.account)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("SuggestAcceleratedPayment() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFixedBillsTotal(t *testing.T) {
	bills := []core.FixedBill{{Cost: 1200}, {Cost: 85.5}, {Cost: math.NaN()}, {Cost: 14.5}}
	if got := FixedBillsTotal(bills); got != 1300 {
		t.Fatalf("FixedBillsTotal() = %v, want 1300", got)
	}
	if got := FixedBillsTotal(nil); got != 0 {
		t.Fatalf("FixedBillsTotal(nil) = %v, want 0", got)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
