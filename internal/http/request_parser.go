// This file implements request parsing: user scoping, path and query
// parameters, and body fields coerced into domain values exactly once.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"darkfinance/internal/core"
)

const (
	// HeaderUserID scopes a request to one user's records.
	HeaderUserID = "X-User-ID"

	maxBodyBytes = 1 << 20
)

var errInvalidID = errors.New("invalid id")

// resolveUserID returns the canonical form of the X-User-ID header, or
// fallback when the header is absent.
func resolveUserID(r *http.Request, fallback string) (string, error) {
	raw := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if raw == "" {
		raw = fallback
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", core.ErrInvalidUser
	}
	return id.String(), nil
}

// pathID reads the {id} wildcard as a positive integer.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(q url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// RequestBodyParser reads a JSON or form-encoded body once and exposes its
// fields as strings.
type RequestBodyParser struct {
	jsonData map[string]any
	formData url.Values
}

// ParseRequestBody reads at most 1 MiB. An empty body parses to no fields.
func ParseRequestBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return parseBody(body)
}

func parseBody(body []byte) (*RequestBodyParser, error) {
	p := &RequestBodyParser{}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		p.formData = url.Values{}
		return p, nil
	}

	if trimmed[0] == '{' {
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			return nil, fmt.Errorf("malformed JSON body: %w", err)
		}
		return p, nil
	}
	if trimmed[0] == '[' {
		return nil, errors.New("body must be a JSON object")
	}

	form, err := url.ParseQuery(trimmed)
	if err != nil {
		return nil, fmt.Errorf("malformed form body: %w", err)
	}
	p.formData = form
	return p, nil
}

// Has reports whether the field was sent, even as null or "".
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	_, ok := p.formData[key]
	return ok
}

// Get returns a field as sanitized text; missing and null read as "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return sanitizeInput(stringValue(p.jsonData[key]))
	}
	return sanitizeInput(p.formData.Get(key))
}

// Amount parses a money field. Blank input and null read as 0; a JSON value
// that is neither a string nor a number is ErrInvalidAmount.
func (p *RequestBodyParser) Amount(key string) (float64, error) {
	if p.jsonData != nil {
		switch p.jsonData[key].(type) {
		case string, float64, nil:
		default:
			return 0, fmt.Errorf("%s: %w", key, core.ErrInvalidAmount)
		}
	}
	v := p.Get(key)
	if v == "" {
		return 0, nil
	}
	f, err := core.ParseAmount(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// stringValue renders a decoded JSON value the way a form would carry it.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput strips control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// applyAccountFields overlays the fields present in p onto a. Absent
// fields keep their current value, so the same code serves create and
// partial update.
func applyAccountFields(p *RequestBodyParser, a *core.Account) error {
	if p.Has("acct_name") {
		a.Name = p.Get("acct_name")
	}
	if p.Has("acct_type") {
		a.AccountType = p.Get("acct_type")
	}
	amounts := []struct {
		key string
		dst *float64
	}{
		{"current_balance", &a.CurrentBalance},
		{"minimum_payment", &a.MinimumPayment},
		{"my_monthly_pay", &a.MyMonthlyPay},
		{"apr_interest", &a.APRInterest},
		{"loan_limit", &a.LoanLimit},
	}
	for _, f := range amounts {
		if !p.Has(f.key) {
			continue
		}
		v, err := p.Amount(f.key)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if p.Has("due_date") {
		d, err := core.ParseDate(p.Get("due_date"))
		if err != nil {
			return fmt.Errorf("due_date: %w", err)
		}
		a.DueDate = d
	}
	return nil
}

func applyBillFields(p *RequestBodyParser, b *core.FixedBill) error {
	if p.Has("bill_name") {
		b.Name = p.Get("bill_name")
	}
	if p.Has("bill_cost") {
		v, err := p.Amount("bill_cost")
		if err != nil {
			return err
		}
		b.Cost = v
	}
	if p.Has("due_date") {
		d, err := core.ParseDate(p.Get("due_date"))
		if err != nil {
			return fmt.Errorf("due_date: %w", err)
		}
		b.DueDate = d
	}
	return nil
}
