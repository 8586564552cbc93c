package core

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"time"
)

const (
	DefaultAccountName = "Unnamed Account"
	DefaultAccountType = "Credit Card"

	dateLayout    = "2006-01-02"
	maxNameLength = 200
)

type (
	Date struct {
		time.Time
	}

	// Account is one debt instrument (credit card, loan).
	Account struct {
		ID             int64   `json:"id" toml:"id"`
		UserID         string  `json:"user_id" toml:"-"`
		Name           string  `json:"acct_name" toml:"name"`
		CurrentBalance float64 `json:"current_balance" toml:"current_balance"`
		MinimumPayment float64 `json:"minimum_payment" toml:"minimum_payment"`
		MyMonthlyPay   float64 `json:"my_monthly_pay" toml:"my_monthly_pay"`
		APRInterest    float64 `json:"apr_interest" toml:"apr_interest"` // informational, never compounded
		AccountType    string  `json:"acct_type" toml:"acct_type"`
		DueDate        Date    `json:"due_date" toml:"due_date"`
		LoanLimit      float64 `json:"loan_limit" toml:"loan_limit"`
	}

	// FixedBill is a recurring non-debt monthly expense.
	FixedBill struct {
		ID      int64   `json:"id" toml:"id"`
		UserID  string  `json:"user_id" toml:"-"`
		Name    string  `json:"bill_name" toml:"name"`
		Cost    float64 `json:"bill_cost" toml:"cost"`
		DueDate Date    `json:"due_date" toml:"due_date"`
	}

	// IncomeRecord holds the single monthly income value of a user.
	IncomeRecord struct {
		UserID        string  `json:"user_id"`
		MonthlyIncome float64 `json:"monthly_income"`
	}
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty name")
	ErrNameTooLong   = errors.New("name too long (max 200 characters)")
	ErrInvalidUser   = errors.New("invalid user id")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	// Timestamps coming back from some drivers carry a time part.
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty returns true if the date is unset.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// String renders the date as YYYY-MM-DD, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	return d.UnmarshalText(bytes.Trim(b, `"`))
}

// DisplayName returns the account name or the default label.
func (a Account) DisplayName() string {
	if strings.TrimSpace(a.Name) == "" {
		return DefaultAccountName
	}
	return a.Name
}

// DisplayType returns the account type or the default classification.
func (a Account) DisplayType() string {
	if strings.TrimSpace(a.AccountType) == "" {
		return DefaultAccountType
	}
	return a.AccountType
}

// Validate checks an account before it is written. The projection engine does
// not require valid accounts; this guards the write path only.
func (a Account) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return ErrInvalidUser
	}
	if len(a.Name) > maxNameLength {
		return ErrNameTooLong
	}
	for _, v := range []float64{a.CurrentBalance, a.MinimumPayment, a.MyMonthlyPay, a.APRInterest, a.LoanLimit} {
		if !validAmount(v) {
			return ErrInvalidAmount
		}
	}
	return nil
}

func (b FixedBill) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrInvalidUser
	}
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if len(b.Name) > maxNameLength {
		return ErrNameTooLong
	}
	if !validAmount(b.Cost) {
		return ErrInvalidAmount
	}
	return nil
}

func (r IncomeRecord) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrInvalidUser
	}
	if !validAmount(r.MonthlyIncome) {
		return ErrInvalidAmount
	}
	return nil
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
