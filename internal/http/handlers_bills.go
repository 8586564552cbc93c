package http

import (
	"net/http"

	"darkfinance/internal/core"
	"darkfinance/internal/log"
)

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	bills, err := s.planner.ListBills(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().Data(nonNil(bills)).Write(w)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	p, err := ParseRequestBody(w, r)
	if err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}

	b := core.FixedBill{UserID: userID}
	if err := applyBillFields(p, &b); err != nil {
		writeServiceError(w, r, err, log.OpCreate)
		return
	}
	created, err := s.planner.CreateBill(r.Context(), b)
	if err != nil {
		writeServiceError(w, r, err, log.OpCreate)
		return
	}
	s.invalidate(userID)
	NewJSONResponse().Status(http.StatusCreated).Data(created).Write(w)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
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

	b, err := s.planner.GetBill(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	b.UserID = userID
	if err := applyBillFields(p, &b); err != nil {
		writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	if err := s.planner.UpdateBill(r.Context(), b); err != nil {
		writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	s.invalidate(userID)
	NewJSONResponse().Data(b).Write(w)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}
	if err := s.planner.DeleteBill(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err, log.OpDelete)
		return
	}
	s.invalidate(userID)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
