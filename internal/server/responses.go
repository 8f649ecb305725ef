package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gharmitra/societyledger/internal/ledger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func mapError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound),
		errors.Is(err, ledger.ErrJournalEntryNotFound),
		errors.Is(err, ledger.ErrYearNotFound),
		errors.Is(err, ledger.ErrOpeningBalanceNotFound),
		errors.Is(err, ledger.ErrFlatNotFound),
		errors.Is(err, ledger.ErrWaterExpenseNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateAccount),
		errors.Is(err, ledger.ErrDuplicateYear),
		errors.Is(err, ledger.ErrDuplicateFlat),
		errors.Is(err, ledger.ErrPeriodAlreadyBilled),
		errors.Is(err, ledger.ErrAlreadyFinalized):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidAccountCode),
		errors.Is(err, ledger.ErrInvalidAccountType),
		errors.Is(err, ledger.ErrInvalidSubType),
		errors.Is(err, ledger.ErrInvalidTransactionType),
		errors.Is(err, ledger.ErrInvalidPaymentMode),
		errors.Is(err, ledger.ErrNegativeAmount),
		errors.Is(err, ledger.ErrNonPositiveAmount),
		errors.Is(err, ledger.ErrEmptyDescription),
		errors.Is(err, ledger.ErrTooPrecise),
		errors.Is(err, ledger.ErrUnbalancedEntry),
		errors.Is(err, ledger.ErrTooFewLines),
		errors.Is(err, ledger.ErrOneSidePerLine),
		errors.Is(err, ledger.ErrInvalidEntrySide),
		errors.Is(err, ledger.ErrInvalidAdjustment),
		errors.Is(err, ledger.ErrReasonRequired),
		errors.Is(err, ledger.ErrActorRequired),
		errors.Is(err, ledger.ErrInvalidBillingMethod),
		errors.Is(err, ledger.ErrInvalidSettings),
		errors.Is(err, ledger.ErrNoFlats),
		errors.Is(err, ledger.ErrAuditIncomplete):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrInvalidTransition),
		errors.Is(err, ledger.ErrYearFinalClosed),
		errors.Is(err, ledger.ErrYearProvisional),
		errors.Is(err, ledger.ErrApprovalRequired),
		errors.Is(err, ledger.ErrDateOutOfRange),
		errors.Is(err, ledger.ErrAccountHasPostings),
		errors.Is(err, ledger.ErrAccountReferenced):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// queryDate parses a YYYY-MM-DD query parameter, falling back to def
// when absent.
func queryDate(r *http.Request, key string, def time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return time.Parse("2006-01-02", raw)
}

// dateRange reads from_date and to_date, defaulting to all history up
// to today. Writes the error response itself when parsing fails.
func dateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, err := queryDate(r, "from_date", time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from_date: "+err.Error())
		return time.Time{}, time.Time{}, false
	}
	to, err := queryDate(r, "to_date", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to_date: "+err.Error())
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
