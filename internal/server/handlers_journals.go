package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gharmitra/societyledger/internal/ledger"
	"github.com/gharmitra/societyledger/internal/store"
)

type journalLineRequest struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

type createJournalEntryRequest struct {
	Date        string               `json:"date"`
	Description string               `json:"description"`
	Lines       []journalLineRequest `json:"lines"`
}

func (s *Server) createJournalEntry(w http.ResponseWriter, r *http.Request) {
	var req createJournalEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: "+err.Error())
		return
	}

	entry := &ledger.JournalEntry{
		Date:        date,
		Description: req.Description,
		Source:      ledger.JournalManual,
	}
	for _, l := range req.Lines {
		entry.Lines = append(entry.Lines, ledger.JournalLine{
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		})
	}

	if err := s.store.CreateJournalEntry(r.Context(), entry); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) listJournalEntries(w http.ResponseWriter, r *http.Request) {
	filter := store.JournalFilter{
		Source: ledger.JournalSource(r.URL.Query().Get("source")),
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

	entries, err := s.store.ListJournalEntries(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []ledger.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getJournalEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := s.store.GetJournalEntry(r.Context(), id)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
