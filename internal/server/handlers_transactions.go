package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gharmitra/societyledger/internal/ledger"
	"github.com/gharmitra/societyledger/internal/store"
)

type createTransactionRequest struct {
	Type           string          `json:"type"`
	AccountCode    string          `json:"account_code"`
	FlatID         string          `json:"flat_id"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	Date           string          `json:"date"`
	DocumentNumber string          `json:"document_number"`
	PaymentMode    string          `json:"payment_mode"`
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: "+err.Error())
		return
	}

	txn := &ledger.Transaction{
		Type:           ledger.TransactionType(req.Type),
		AccountCode:    req.AccountCode,
		FlatID:         req.FlatID,
		Amount:         req.Amount,
		Description:    req.Description,
		Date:           date,
		DocumentNumber: req.DocumentNumber,
		PaymentMode:    ledger.PaymentMode(req.PaymentMode),
	}
	if err := s.store.CreateTransaction(r.Context(), txn); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	created, err := s.store.GetTransaction(r.Context(), txn.ID)
	if err != nil {
		writeJSON(w, http.StatusCreated, txn)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TxnFilter{
		AccountCode: q.Get("account_code"),
		FlatID:      q.Get("flat_id"),
		Type:        ledger.TransactionType(q.Get("type")),
	}
	var err error
	if filter.FromDate, err = queryDate(r, "from_date", time.Time{}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid from_date: "+err.Error())
		return
	}
	if filter.ToDate, err = queryDate(r, "to_date", time.Time{}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid to_date: "+err.Error())
		return
	}
	if raw := q.Get("limit"); raw != "" {
		filter.Limit, _ = strconv.Atoi(raw)
	}
	if raw := q.Get("offset"); raw != "" {
		filter.Offset, _ = strconv.Atoi(raw)
	}

	txns, err := s.store.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if txns == nil {
		txns = []ledger.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	txn, err := s.store.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
