package records

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"darkfinance/internal/core"
)

// SnapshotFile is the TOML layout used to seed the memory backend and to feed
// the offline CLI:
//
//	user_id        = "2f0c..."   # optional
//	monthly_income = 5200
//
//	[[accounts]]
//	name            = "Visa"
//	current_balance = 1500
//	minimum_payment = 365
//	my_monthly_pay  = 365
//	due_date        = "2025-01-01"
//
//	[[bills]]
//	name = "Rent"
//	cost = 1200
type SnapshotFile struct {
	UserID        string           `toml:"user_id"`
	MonthlyIncome float64          `toml:"monthly_income"`
	Accounts      []core.Account   `toml:"accounts"`
	Bills         []core.FixedBill `toml:"bills"`
}

// LoadSnapshotFile decodes a snapshot file. Unknown keys are rejected so a
// typo like "curent_balance" does not silently read as 0.
func LoadSnapshotFile(path string) (SnapshotFile, error) {
	var f SnapshotFile
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("reading snapshot file: %w", err)
	}
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return f, fmt.Errorf("parsing snapshot file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return f, fmt.Errorf("parsing snapshot file: unknown keys %s", strings.Join(keys, ", "))
	}
	f.assignIDs()
	return f, nil
}

// assignIDs numbers rows that omit an id, in file order, starting after the
// largest explicit id of the same table.
func (f *SnapshotFile) assignIDs() {
	var next int64
	for _, a := range f.Accounts {
		next = max(next, a.ID)
	}
	for i := range f.Accounts {
		if f.Accounts[i].ID == 0 {
			next++
			f.Accounts[i].ID = next
		}
	}

	next = 0
	for _, b := range f.Bills {
		next = max(next, b.ID)
	}
	for i := range f.Bills {
		if f.Bills[i].ID == 0 {
			next++
			f.Bills[i].ID = next
		}
	}
}
