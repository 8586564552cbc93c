package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"darkfinance/internal/calendar"
	"darkfinance/internal/payoff"
)

const snapshotTOML = `
monthly_income = 6000

[[accounts]]
name = "Visa"
current_balance = 3000
minimum_payment = 50
my_monthly_pay = 100
due_date = "2025-01-20"

[[accounts]]
name = "Car"
acct_type = "Loan"
current_balance = 9000
my_monthly_pay = 500

[[bills]]
name = "Rent"
cost = 1500
due_date = "2025-01-01"
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.toml")
	if err := os.WriteFile(path, []byte(snapshotTOML), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAccountCommand(t *testing.T) {
	out, err := run(t, "account", "--balance", "$3,000", "--pay", "100", "--min", "50")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"2y 6m", "30", "$75.00", "$450.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAccountCommand_Errors(t *testing.T) {
	if _, err := run(t, "account", "--balance", "-3", "--pay", "100"); err == nil {
		t.Error("negative balance accepted")
	}
	if _, err := run(t, "account", "--pay", "100"); err == nil {
		t.Error("missing --balance accepted")
	}
}

func TestProjectCommand_JSON(t *testing.T) {
	out, err := run(t, "project", "--file", writeSnapshot(t), "--year", "2025", "--order", "high", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var ov payoff.Overview
	if err := json.Unmarshal([]byte(out), &ov); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	// 12000 total over 600 a month is 20 months.
	if ov.Metrics.PayoffYear != 2026 || ov.Metrics.TotalDebt != 12000 || ov.Metrics.TotalAccounts != 2 {
		t.Errorf("metrics = %+v", ov.Metrics)
	}
	if ov.Metrics.RemainingAfterBills != 4500 {
		t.Errorf("remaining = %v", ov.Metrics.RemainingAfterBills)
	}
	if len(ov.Accounts) != 2 || ov.Accounts[0].Account.Name != "Car" {
		t.Errorf("accounts not sorted high to low: %+v", ov.Accounts)
	}
}

func TestProjectCommand_Table(t *testing.T) {
	out, err := run(t, "project", "--file", writeSnapshot(t), "--year", "2025")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"$6,000.00", "$12,000.00", "2026", "Loan", "1y 6m"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProjectCommand_MissingFile(t *testing.T) {
	if _, err := run(t, "project", "--file", filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCalendarCommand(t *testing.T) {
	path := writeSnapshot(t)
	out, err := run(t, "calendar", "--file", path, "--months", "3", "--from", "2025-01-15", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var months []calendar.Month
	if err := json.Unmarshal([]byte(out), &months); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(months) != 3 || months[0].Label != "CURRENT" || months[0].Month != 1 {
		t.Fatalf("unexpected window: %d months", len(months))
	}
	if months[0].Total != 1600 {
		t.Errorf("january total = %v, want 1600", months[0].Total)
	}

	if _, err := run(t, "calendar", "--file", path, "--months", "13"); err == nil {
		t.Error("13 months accepted")
	}
}
