// Package calendar lays out monthly due-date grids for accounts and bills.
package calendar

import (
	"time"

	"darkfinance/internal/core"
)

// MaxWindowMonths bounds BuildWindow.
const MaxWindowMonths = 12

type EventKind string

const (
	EventAccount EventKind = "account"
	EventBill    EventKind = "bill"
)

type (
	// Event is one payment falling due on a calendar day.
	Event struct {
		Kind           EventKind `json:"kind"`
		ItemID         int64     `json:"item_id"`
		Name           string    `json:"name"`
		Type           string    `json:"type"`
		Amount         float64   `json:"amount"`
		CurrentBalance float64   `json:"current_balance"`
		MinimumPayment float64   `json:"minimum_payment"`
		Paid           bool      `json:"paid"`
	}

	Day struct {
		Date    core.Date `json:"date"`
		IsToday bool      `json:"is_today"`
		Events  []Event   `json:"events,omitempty"`
	}

	// Month is a grid for one calendar month. LeadingBlanks is the weekday of
	// the 1st (Sunday = 0), i.e. the empty cells before day one.
	Month struct {
		Year          int     `json:"year"`
		Month         int     `json:"month"`
		Label         string  `json:"label,omitempty"`
		LeadingBlanks int     `json:"leading_blanks"`
		Days          []Day   `json:"days"`
		Total         float64 `json:"total"`
	}
)

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DueDay reports the day a monthly item with the given first due date falls
// on in year/month. Items recur from their first due month onward; a day
// past the end of a short month clamps to its last day.
func DueDay(due core.Date, year, month int) (int, bool) {
	if due.IsEmpty() {
		return 0, false
	}
	if year < due.Year() || (year == due.Year() && month < due.Month()) {
		return 0, false
	}
	day := due.Day()
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return day, true
}

// BuildMonth builds the grid for year/month. today marks the current day.
func BuildMonth(year, month int, today time.Time, accounts []core.Account, bills []core.FixedBill) Month {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	n := DaysIn(year, month)

	m := Month{
		Year:          year,
		Month:         month,
		LeadingBlanks: int(first.Weekday()),
		Days:          make([]Day, n),
	}
	for i := range m.Days {
		m.Days[i] = Day{
			Date:    core.NewDate(year, month, i+1),
			IsToday: today.Year() == year && int(today.Month()) == month && today.Day() == i+1,
		}
	}

	for _, a := range accounts {
		day, ok := DueDay(a.DueDate, year, month)
		if !ok {
			continue
		}
		amount := a.MyMonthlyPay
		if amount <= 0 {
			amount = a.MinimumPayment
		}
		m.add(day, Event{
			Kind:           EventAccount,
			ItemID:         a.ID,
			Name:           a.DisplayName(),
			Type:           a.DisplayType(),
			Amount:         amount,
			CurrentBalance: a.CurrentBalance,
			MinimumPayment: a.MinimumPayment,
			Paid:           a.CurrentBalance <= 0,
		})
	}
	for _, b := range bills {
		day, ok := DueDay(b.DueDate, year, month)
		if !ok {
			continue
		}
		m.add(day, Event{
			Kind:           EventBill,
			ItemID:         b.ID,
			Name:           b.Name,
			Type:           "Bill",
			Amount:         b.Cost,
			CurrentBalance: b.Cost,
			MinimumPayment: b.Cost,
		})
	}
	return m
}

func (m *Month) add(day int, ev Event) {
	d := &m.Days[day-1]
	d.Events = append(d.Events, ev)
	if !ev.Paid {
		m.Total += ev.Amount
	}
}

// BuildWindow returns n consecutive months starting at today's month. The
// first two are labelled CURRENT and NEXT. n is clamped to [1, MaxWindowMonths].
func BuildWindow(today time.Time, n int, accounts []core.Account, bills []core.FixedBill) []Month {
	n = max(1, min(n, MaxWindowMonths))
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	months := make([]Month, 0, n)
	for i := 0; i < n; i++ {
		t := start.AddDate(0, i, 0)
		m := BuildMonth(t.Year(), int(t.Month()), today, accounts, bills)
		switch i {
		case 0:
			m.Label = "CURRENT"
		case 1:
			m.Label = "NEXT"
		}
		months = append(months, m)
	}
	return months
}

// EventCount returns the number of events in the month.
func (m Month) EventCount() int {
	var n int
	for _, d := range m.Days {
		n += len(d.Events)
	}
	return n
}
