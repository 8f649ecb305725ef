package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type YearStatus string

const (
	YearOpen             YearStatus = "open"
	YearProvisionalClose YearStatus = "provisional_close"
	YearFinalClose       YearStatus = "final_close"
)

type OpeningStatus string

const (
	OpeningProvisional OpeningStatus = "provisional"
	OpeningFinalized   OpeningStatus = "finalized"
)

// FinancialYear is the unit of the closing workflow. Transitions move
// only forward (open → provisional_close → final_close) except through
// the explicit, logged Reopen. PreviousYearID is an explicit link; the
// predecessor is never inferred from date adjacency.
type FinancialYear struct {
	ID             string     `json:"id"`
	YearName       string     `json:"year_name"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	Status         YearStatus `json:"status"`
	IsActive       bool       `json:"is_active"`
	PreviousYearID string     `json:"previous_year_id,omitempty"`

	OpeningBalancesStatus OpeningStatus `json:"opening_balances_status"`

	ClosingDate        time.Time       `json:"closing_date,omitempty"`
	ClosingNotes       string          `json:"closing_notes,omitempty"`
	ClosingBankBalance decimal.Decimal `json:"closing_bank_balance"`
	ClosingCashBalance decimal.Decimal `json:"closing_cash_balance"`
	TotalIncome        decimal.Decimal `json:"total_income"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	NetSurplusDeficit  decimal.Decimal `json:"net_surplus_deficit"`

	AuditorName           string    `json:"auditor_name,omitempty"`
	AuditorFirm           string    `json:"auditor_firm,omitempty"`
	AuditCompletionDate   time.Time `json:"audit_completion_date,omitempty"`
	AuditReportFileURL    string    `json:"audit_report_file_url,omitempty"`
	CommitteeApprovalDate time.Time `json:"committee_approval_date,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Validate checks invariants of a new financial year.
func (y *FinancialYear) Validate() error {
	if y.YearName == "" {
		return fmt.Errorf("year name is required")
	}
	if y.StartDate.IsZero() || y.EndDate.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if !y.EndDate.After(y.StartDate) {
		return fmt.Errorf("end date must be after start date")
	}
	return nil
}

// Contains reports whether a date falls within the year (inclusive).
func (y *FinancialYear) Contains(d time.Time) bool {
	return !d.Before(y.StartDate) && !d.After(y.EndDate)
}

// ProvisionalClose moves an open year to provisional_close. The caller
// supplies the computed closing figures; this only enforces the
// transition guards and records them.
func (y *FinancialYear) ProvisionalClose(closingDate time.Time, notes string) error {
	if y.Status != YearOpen {
		return fmt.Errorf("%w: cannot provisional-close a %s year", ErrInvalidTransition, y.Status)
	}
	if closingDate.IsZero() {
		return fmt.Errorf("closing date is required")
	}
	if !y.Contains(closingDate) {
		return fmt.Errorf("%w: closing date %s not in %s..%s", ErrDateOutOfRange,
			closingDate.Format("2006-01-02"), y.StartDate.Format("2006-01-02"), y.EndDate.Format("2006-01-02"))
	}
	y.Status = YearProvisionalClose
	y.ClosingDate = closingDate
	y.ClosingNotes = notes
	return nil
}

// FinalCloseInput carries the audit completion metadata required to
// final-close a year.
type FinalCloseInput struct {
	AuditCompletionDate     time.Time `json:"audit_completion_date"`
	AuditorName             string    `json:"auditor_name"`
	AuditorFirm             string    `json:"auditor_firm"`
	AuditReportFileURL      string    `json:"audit_report_file_url"`
	FinalStatementsApproved bool      `json:"final_statements_approved"`
	CommitteeApprovalDate   time.Time `json:"committee_approval_date,omitempty"`
	Notes                   string    `json:"notes,omitempty"`
}

// FinalClose moves a provisionally closed year to final_close. It fails
// without changing status if the approval flag is not set or the audit
// metadata is incomplete.
func (y *FinancialYear) FinalClose(in FinalCloseInput) error {
	if y.Status != YearProvisionalClose {
		return fmt.Errorf("%w: cannot final-close a %s year", ErrInvalidTransition, y.Status)
	}
	if !in.FinalStatementsApproved {
		return fmt.Errorf("%w: final-close rejected", ErrApprovalRequired)
	}
	if in.AuditorName == "" {
		return fmt.Errorf("%w: auditor name is required", ErrAuditIncomplete)
	}
	if in.AuditorFirm == "" {
		return fmt.Errorf("%w: auditor firm is required", ErrAuditIncomplete)
	}
	if in.AuditCompletionDate.IsZero() {
		return fmt.Errorf("%w: audit completion date is required", ErrAuditIncomplete)
	}
	if in.AuditReportFileURL == "" {
		return fmt.Errorf("%w: audit report file reference is required", ErrAuditIncomplete)
	}
	y.Status = YearFinalClose
	y.AuditorName = in.AuditorName
	y.AuditorFirm = in.AuditorFirm
	y.AuditCompletionDate = in.AuditCompletionDate
	y.AuditReportFileURL = in.AuditReportFileURL
	y.CommitteeApprovalDate = in.CommitteeApprovalDate
	if in.Notes != "" {
		y.ClosingNotes = in.Notes
	}
	return nil
}

// Reopen reverts a closed year to open. It unlocks audited books, so the
// caller must record who did it in the year's audit log.
func (y *FinancialYear) Reopen(actor string) error {
	if y.Status == YearOpen {
		return fmt.Errorf("%w: year is already open", ErrInvalidTransition)
	}
	if actor == "" {
		return fmt.Errorf("%w: reopen must name the acting user", ErrActorRequired)
	}
	y.Status = YearOpen
	return nil
}

// CanPostTransaction rejects normal transaction writes for dates inside
// a closed year.
func (y *FinancialYear) CanPostTransaction(d time.Time) error {
	if !y.Contains(d) {
		return nil
	}
	switch y.Status {
	case YearFinalClose:
		return fmt.Errorf("%w: %s is final_close, postings dated %s are rejected",
			ErrYearFinalClosed, y.YearName, d.Format("2006-01-02"))
	case YearProvisionalClose:
		return fmt.Errorf("%w: %s is provisional_close, only adjustment entries may post",
			ErrYearProvisional, y.YearName)
	}
	return nil
}

// CanPostAdjustment allows adjustment entries only against this year
// while provisionally closed, dated within range.
func (y *FinancialYear) CanPostAdjustment(d time.Time) error {
	if y.Status != YearProvisionalClose {
		return fmt.Errorf("%w: adjustments require provisional_close, year %s is %s",
			ErrInvalidTransition, y.YearName, y.Status)
	}
	if !y.Contains(d) {
		return fmt.Errorf("%w: effective date %s not in %s..%s", ErrDateOutOfRange,
			d.Format("2006-01-02"), y.StartDate.Format("2006-01-02"), y.EndDate.Format("2006-01-02"))
	}
	return nil
}

// YearEndClosingSummary is returned by the provisional close operation.
type YearEndClosingSummary struct {
	BankBalance       decimal.Decimal `json:"bank_balance"`
	CashBalance       decimal.Decimal `json:"cash_balance"`
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	NetSurplusDeficit decimal.Decimal `json:"net_surplus_deficit"`
	Message           string          `json:"message"`
}

// YearAuditEvent records a privileged action against a year.
type YearAuditEvent struct {
	ID              string    `json:"id"`
	FinancialYearID string    `json:"financial_year_id"`
	Action          string    `json:"action"`
	Actor           string    `json:"actor"`
	Notes           string    `json:"notes,omitempty"`
	At              time.Time `json:"at"`
}
