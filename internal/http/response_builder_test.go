package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"darkfinance/internal/core"
)

func TestJSONResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Cache", "MISS").
		Data(map[string]int{"n": 1}).
		Write(rec)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" && ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Error("custom header missing")
	}
	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["n"] != 1 {
		t.Errorf("body = %s (%v)", rec.Body, err)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"not found", fmt.Errorf("delete account: %w", core.ErrNotFound), http.StatusNotFound, "record not found"},
		{"bad user", core.ErrInvalidUser, http.StatusBadRequest, "invalid user id"},
		{"amount", fmt.Errorf("bill_cost: %w", core.ErrInvalidAmount), http.StatusUnprocessableEntity, "invalid amount"},
		{"date", fmt.Errorf("due_date: %w", core.ErrInvalidDate), http.StatusUnprocessableEntity, "invalid date"},
		{"name", core.ErrEmptyName, http.StatusUnprocessableEntity, "empty name"},
		{"name too long", fmt.Errorf("save bill: %w", core.ErrNameTooLong), http.StatusUnprocessableEntity, core.ErrNameTooLong.Error()},
		{"internal", errors.New("connection refused to 10.0.0.5"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := statusFor(tt.err)
			if code != tt.code || msg != tt.message {
				t.Errorf("statusFor() = %d %q, want %d %q", code, msg, tt.code, tt.message)
			}
		})
	}
}

func TestWriteServiceError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
	writeServiceError(rec, req, errors.New("pq: password authentication failed"), "overview")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "internal error" {
		t.Errorf("error leaked: %q", body.Error)
	}
}

func TestErrorResponse_NoRequestIDOutsideTrace(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFoundError(context.Background(), "record not found").Write(rec)
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotFound || body.RequestID != "" {
		t.Errorf("code=%d body=%+v", rec.Code, body)
	}
}
