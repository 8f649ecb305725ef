package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gharmitra/societyledger/internal/ledger"
)

type billingPeriodRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (s *Server) generateBills(w http.ResponseWriter, r *http.Request) {
	var req billingPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	result, err := s.store.GenerateBills(r.Context(), req.Month, req.Year)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func (s *Server) listBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.store.ListBills(r.Context(),
		queryInt(r, "month"), queryInt(r, "year"), r.URL.Query().Get("flat_id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	if bills == nil {
		bills = []ledger.MaintenanceBill{}
	}
	writeJSON(w, http.StatusOK, bills)
}

func (s *Server) deleteBills(w http.ResponseWriter, r *http.Request) {
	month, year := queryInt(r, "month"), queryInt(r, "year")
	if month < 1 || month > 12 || year == 0 {
		writeError(w, http.StatusBadRequest, "month and year are required")
		return
	}
	deleted, err := s.store.DeleteBills(r.Context(), month, year)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

type flatRequest struct {
	Number    string          `json:"number"`
	OwnerName string          `json:"owner_name"`
	AreaSqft  decimal.Decimal `json:"area_sqft"`
	Occupants int             `json:"occupants"`
}

func (s *Server) createFlat(w http.ResponseWriter, r *http.Request) {
	var req flatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	flat := &ledger.Flat{
		Number:    req.Number,
		OwnerName: req.OwnerName,
		AreaSqft:  req.AreaSqft,
		Occupants: req.Occupants,
	}
	if err := s.store.CreateFlat(r.Context(), flat); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, flat)
}

func (s *Server) listFlats(w http.ResponseWriter, r *http.Request) {
	flats, err := s.store.ListFlats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if flats == nil {
		flats = []ledger.Flat{}
	}
	writeJSON(w, http.StatusOK, flats)
}

func (s *Server) getFlat(w http.ResponseWriter, r *http.Request) {
	flat, err := s.store.GetFlat(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, flat)
}

func (s *Server) updateFlat(w http.ResponseWriter, r *http.Request) {
	var req flatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	flat := &ledger.Flat{
		ID:        chi.URLParam(r, "id"),
		Number:    req.Number,
		OwnerName: req.OwnerName,
		AreaSqft:  req.AreaSqft,
		Occupants: req.Occupants,
	}
	if err := s.store.UpdateFlat(r.Context(), flat); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, flat)
}

func (s *Server) deleteFlat(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteFlat(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type waterExpenseRequest struct {
	Month             int             `json:"month"`
	Year              int             `json:"year"`
	TankerCharges     decimal.Decimal `json:"tanker_charges"`
	GovernmentCharges decimal.Decimal `json:"government_charges"`
	OtherCharges      decimal.Decimal `json:"other_charges"`
}

func (s *Server) createWaterExpense(w http.ResponseWriter, r *http.Request) {
	var req waterExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	we := &ledger.WaterExpense{
		Month:             req.Month,
		Year:              req.Year,
		TankerCharges:     req.TankerCharges,
		GovernmentCharges: req.GovernmentCharges,
		OtherCharges:      req.OtherCharges,
	}
	if err := s.store.CreateWaterExpense(r.Context(), we); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, we)
}

func (s *Server) listWaterExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ListWaterExpenses(r.Context(), queryInt(r, "month"), queryInt(r, "year"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if expenses == nil {
		expenses = []ledger.WaterExpense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) deleteWaterExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteWaterExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
