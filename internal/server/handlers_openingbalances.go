package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gharmitra/societyledger/internal/ledger"
)

func (s *Server) listOpeningBalances(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListOpeningBalances(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type overrideOpeningBalanceRequest struct {
	Amount      decimal.Decimal `json:"opening_balance"`
	BalanceType string          `json:"balance_type"`
	Reason      string          `json:"reason"`
}

func (s *Server) overrideOpeningBalance(w http.ResponseWriter, r *http.Request) {
	var req overrideOpeningBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	ob, err := s.store.OverrideOpeningBalance(r.Context(), chi.URLParam(r, "id"),
		req.Amount, ledger.Side(req.BalanceType), req.Reason)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ob)
}

func (s *Server) finalizeOpeningBalance(w http.ResponseWriter, r *http.Request) {
	ob, err := s.store.FinalizeOpeningBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ob)
}

func (s *Server) finalizeAllOpeningBalances(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.FinalizeAllOpeningBalances(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}
