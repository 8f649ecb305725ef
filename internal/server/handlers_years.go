package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gharmitra/societyledger/internal/ledger"
)

type createYearRequest struct {
	YearName       string `json:"year_name"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	PreviousYearID string `json:"previous_year_id"`
}

func (s *Server) createYear(w http.ResponseWriter, r *http.Request) {
	var req createYearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date: "+err.Error())
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date: "+err.Error())
		return
	}

	year := &ledger.FinancialYear{
		YearName:       req.YearName,
		StartDate:      start,
		EndDate:        end,
		PreviousYearID: req.PreviousYearID,
	}
	if err := s.store.CreateYear(r.Context(), year); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, year)
}

func (s *Server) listYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.store.ListYears(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if years == nil {
		years = []ledger.FinancialYear{}
	}
	writeJSON(w, http.StatusOK, years)
}

func (s *Server) getYear(w http.ResponseWriter, r *http.Request) {
	year, err := s.store.GetYear(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, year)
}

func (s *Server) activateYear(w http.ResponseWriter, r *http.Request) {
	year, err := s.store.ActivateYear(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, year)
}

type provisionalCloseRequest struct {
	ClosingDate string `json:"closing_date"`
	Notes       string `json:"notes"`
	ActingUser  string `json:"acting_user"`
}

func (s *Server) provisionalCloseYear(w http.ResponseWriter, r *http.Request) {
	var req provisionalCloseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	closingDate := time.Time{}
	if req.ClosingDate != "" {
		var err error
		closingDate, err = time.Parse("2006-01-02", req.ClosingDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid closing_date: "+err.Error())
			return
		}
	}

	summary, err := s.store.ProvisionalClose(r.Context(), chi.URLParam(r, "id"), closingDate, req.Notes, req.ActingUser)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type adjustmentLineRequest struct {
	AccountCode string          `json:"account_code"`
	EntryType   string          `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
}

type adjustmentRequest struct {
	EffectiveDate    string                  `json:"effective_date"`
	AdjustmentType   string                  `json:"adjustment_type"`
	Description      string                  `json:"description"`
	Reason           string                  `json:"reason"`
	AuditorReference string                  `json:"auditor_reference"`
	Entries          []adjustmentLineRequest `json:"entries"`
}

func (s *Server) postAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	effective, err := time.Parse("2006-01-02", req.EffectiveDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid effective_date: "+err.Error())
		return
	}

	in := &ledger.AdjustmentInput{
		EffectiveDate:    effective,
		Type:             ledger.AdjustmentType(req.AdjustmentType),
		Description:      req.Description,
		Reason:           req.Reason,
		AuditorReference: req.AuditorReference,
	}
	for _, e := range req.Entries {
		in.Entries = append(in.Entries, ledger.AdjustmentLine{
			AccountCode: e.AccountCode,
			Side:        ledger.Side(e.EntryType),
			Amount:      e.Amount,
		})
	}

	result, err := s.store.PostAdjustment(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type finalCloseRequest struct {
	AuditCompletionDate     string `json:"audit_completion_date"`
	AuditorName             string `json:"auditor_name"`
	AuditorFirm             string `json:"auditor_firm"`
	AuditReportFileURL      string `json:"audit_report_file_url"`
	FinalStatementsApproved bool   `json:"final_statements_approved"`
	CommitteeApprovalDate   string `json:"committee_approval_date"`
	Notes                   string `json:"notes"`
	ActingUser              string `json:"acting_user"`
}

func (s *Server) finalCloseYear(w http.ResponseWriter, r *http.Request) {
	var req finalCloseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	in := ledger.FinalCloseInput{
		AuditorName:             req.AuditorName,
		AuditorFirm:             req.AuditorFirm,
		AuditReportFileURL:      req.AuditReportFileURL,
		FinalStatementsApproved: req.FinalStatementsApproved,
		Notes:                   req.Notes,
	}
	var err error
	if req.AuditCompletionDate != "" {
		if in.AuditCompletionDate, err = time.Parse("2006-01-02", req.AuditCompletionDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid audit_completion_date: "+err.Error())
			return
		}
	}
	if req.CommitteeApprovalDate != "" {
		if in.CommitteeApprovalDate, err = time.Parse("2006-01-02", req.CommitteeApprovalDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid committee_approval_date: "+err.Error())
			return
		}
	}

	year, err := s.store.FinalClose(r.Context(), chi.URLParam(r, "id"), in, req.ActingUser)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, year)
}

type reopenRequest struct {
	ActingUser string `json:"acting_user"`
	Notes      string `json:"notes"`
}

func (s *Server) reopenYear(w http.ResponseWriter, r *http.Request) {
	var req reopenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	year, err := s.store.Reopen(r.Context(), chi.URLParam(r, "id"), req.ActingUser, req.Notes)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, year)
}

func (s *Server) yearAuditLog(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.AuditLog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	if events == nil {
		events = []ledger.YearAuditEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}
