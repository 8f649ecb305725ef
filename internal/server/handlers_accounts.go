package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gharmitra/societyledger/internal/ledger"
	"github.com/gharmitra/societyledger/internal/store"
)

type createAccountRequest struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	SubType        string `json:"sub_type"`
	IsFixedExpense bool   `json:"is_fixed_expense"`
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	acct := &ledger.Account{
		Code:           req.Code,
		Name:           req.Name,
		Type:           ledger.AccountType(req.Type),
		SubType:        ledger.SubType(req.SubType),
		IsFixedExpense: req.IsFixedExpense,
	}
	if err := s.store.CreateAccount(r.Context(), acct); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	filter := store.AccountFilter{
		Type: ledger.AccountType(r.URL.Query().Get("type")),
	}
	accounts, err := s.store.ListAccounts(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if accounts == nil {
		accounts = []ledger.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	acct, err := s.store.GetAccount(r.Context(), code)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) getAccountBalance(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	asOn, err := queryDate(r, "as_on_date", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_on_date: "+err.Error())
		return
	}
	acct, err := s.store.AccountBalance(r.Context(), code, asOn)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) getAccountLedger(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	report, err := s.store.GeneralLedger(r.Context(), code, from, to)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type updateAccountRequest struct {
	Name           *string `json:"name"`
	SubType        *string `json:"sub_type"`
	IsFixedExpense *bool   `json:"is_fixed_expense"`
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	upd := store.AccountUpdate{
		Name:           req.Name,
		IsFixedExpense: req.IsFixedExpense,
	}
	if req.SubType != nil {
		st := ledger.SubType(*req.SubType)
		upd.SubType = &st
	}
	acct, err := s.store.UpdateAccount(r.Context(), code, upd)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := s.store.DeleteAccount(r.Context(), code); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
