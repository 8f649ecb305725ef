package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	asOn, err := queryDate(r, "as_on_date", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_on_date: "+err.Error())
		return
	}
	report, err := s.store.TrialBalance(r.Context(), asOn)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) balanceSheet(w http.ResponseWriter, r *http.Request) {
	asOn, err := queryDate(r, "as_on_date", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_on_date: "+err.Error())
		return
	}
	report, err := s.store.BalanceSheet(r.Context(), asOn)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) incomeExpenditure(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	report, err := s.store.IncomeExpenditure(r.Context(), from, to)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) receiptsPayments(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	report, err := s.store.ReceiptsPayments(r.Context(), from, to)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) generalLedger(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("account_code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "account_code is required")
		return
	}
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

func (s *Server) cashBook(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	report, err := s.store.CashBook(r.Context(), from, to)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) bankBook(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	report, err := s.store.BankBook(r.Context(), from, to)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) memberDues(w http.ResponseWriter, r *http.Request) {
	asOn, err := queryDate(r, "as_on_date", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_on_date: "+err.Error())
		return
	}
	report, err := s.store.MemberDues(r.Context(), asOn)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) memberLedger(w http.ResponseWriter, r *http.Request) {
	flatID := chi.URLParam(r, "flatID")
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	report, err := s.store.MemberLedger(r.Context(), flatID, from, to)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}
