package http

import (
	"net/http"

	"darkfinance/internal/core"
	"darkfinance/internal/log"
	"darkfinance/internal/payoff"
)

// handleListAccounts returns projected accounts; ?order=high_to_low|low_to_high
// sorts by balance.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	order := payoff.ParseSortOrder(r.URL.Query().Get("order"))
	accounts, err := s.planner.ListAccounts(r.Context(), userID, order)
	if err != nil {
		writeServiceError(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().Data(nonNil(accounts)).Write(w)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}
	proj, err := s.planner.GetAccount(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().Data(proj).Write(w)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	p, err := ParseRequestBody(w, r)
	if err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}

	a := core.Account{UserID: userID}
	if err := applyAccountFields(p, &a); err != nil {
		writeServiceError(w, r, err, log.OpCreate)
		return
	}
	created, err := s.planner.CreateAccount(r.Context(), a)
	if err != nil {
		writeServiceError(w, r, err, log.OpCreate)
		return
	}
	s.invalidate(userID)

	s.logger.InfoContext(r.Context(), "Account created", log.NewFields().
		WithUser(userID).
		WithRecord("accounts", created.ID).
		ToSlice()...)
	NewJSONResponse().Status(http.StatusCreated).Data(payoff.ProjectAccounts([]core.Account{created})[0]).Write(w)
}

// handleUpdateAccount applies the fields present in the body to the stored
// account; fields left out keep their value.
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}
	p, err := ParseRequestBody(w, r)
	if err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}

	current, err := s.planner.GetAccount(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	a := current.Account
	a.UserID = userID
	if err := applyAccountFields(p, &a); err != nil {
		writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	if err := s.planner.UpdateAccount(r.Context(), a); err != nil {
		writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	s.invalidate(userID)
	NewJSONResponse().Data(payoff.ProjectAccounts([]core.Account{a})[0]).Write(w)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}
	if err := s.planner.DeleteAccount(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err, log.OpDelete)
		return
	}
	s.invalidate(userID)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
