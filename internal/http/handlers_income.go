package http

import (
	"net/http"

	"darkfinance/internal/log"
)

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	rec, err := s.planner.MonthlyIncome(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().Data(rec).Write(w)
}

// handleSetIncome replaces the user's monthly income. The field is required;
// "$6,000" and 6000 are both accepted.
func (s *Server) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	p, err := ParseRequestBody(w, r)
	if err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}
	if !p.Has("monthly_income") {
		UnprocessableEntityError(r.Context(), "monthly_income is required").Write(w)
		return
	}
	amount, err := p.Amount("monthly_income")
	if err != nil {
		writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	if err := s.planner.SetMonthlyIncome(r.Context(), userID, amount); err != nil {
		writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	s.invalidate(userID)
	rec, err := s.planner.MonthlyIncome(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().Data(rec).Write(w)
}
