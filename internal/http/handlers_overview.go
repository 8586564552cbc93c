package http

import (
	"net/http"

	"darkfinance/internal/calendar"
)

const (
	defaultCalendarMonths = 2
	defaultSnapshotLimit  = 30
	maxSnapshotLimit      = 500
)

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	ov, hit, err := s.overview(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "overview")
		return
	}
	cacheStatus := "MISS"
	if hit {
		cacheStatus = "HIT"
	}
	NewJSONResponse().Header("X-Cache", cacheStatus).Data(ov).Write(w)
}

// handleCalendar returns ?months= consecutive months (1..12, default 2).
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	months, err := queryInt(r.URL.Query(), "months", defaultCalendarMonths)
	if err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}
	if months < 1 || months > calendar.MaxWindowMonths {
		UnprocessableEntityError(r.Context(), "months must be between 1 and 12").Write(w)
		return
	}

	window, err := s.planner.Calendar(r.Context(), userID, months)
	if err != nil {
		writeServiceError(w, r, err, "calendar")
		return
	}
	NewJSONResponse().Data(window).Write(w)
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r.URL.Query(), "limit", defaultSnapshotLimit)
	if err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}
	limit = max(1, min(limit, maxSnapshotLimit))

	snaps, err := s.planner.ListSnapshots(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, r, err, "list_snapshots")
		return
	}
	NewJSONResponse().Data(snaps).Write(w)
}
