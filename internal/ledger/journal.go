package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// JournalSource distinguishes how a journal entry was created.
type JournalSource string

const (
	JournalManual     JournalSource = "manual"
	JournalAdjustment JournalSource = "adjustment"
	JournalBilling    JournalSource = "billing"
)

// AdjustmentType enumerates the audit adjustment categories.
type AdjustmentType string

const (
	AdjustExpenseCorrection AdjustmentType = "expense_correction"
	AdjustIncomeCorrection  AdjustmentType = "income_correction"
	AdjustDepreciation      AdjustmentType = "depreciation"
	AdjustProvision         AdjustmentType = "provision"
	AdjustBadDebt           AdjustmentType = "bad_debt"
	AdjustAccrual           AdjustmentType = "accrual"
	AdjustPrepayment        AdjustmentType = "prepayment"
	AdjustReclassification  AdjustmentType = "reclassification"
	AdjustOther             AdjustmentType = "other"
)

var AllAdjustmentTypes = []AdjustmentType{
	AdjustExpenseCorrection,
	AdjustIncomeCorrection,
	AdjustDepreciation,
	AdjustProvision,
	AdjustBadDebt,
	AdjustAccrual,
	AdjustPrepayment,
	AdjustReclassification,
	AdjustOther,
}

func ValidAdjustmentType(t AdjustmentType) bool {
	for _, a := range AllAdjustmentTypes {
		if a == t {
			return true
		}
	}
	return false
}

// JournalLine is one side of a double-entry posting. Exactly one of
// Debit/Credit must be non-zero.
type JournalLine struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// JournalEntry is a balanced set of journal lines. Unbalanced entries
// are rejected at validation and never stored.
type JournalEntry struct {
	ID               string         `json:"id"`
	EntryNumber      string         `json:"entry_number"`
	Date             time.Time      `json:"date"`
	Description      string         `json:"description"`
	Lines            []JournalLine  `json:"lines"`
	Source           JournalSource  `json:"source"`
	AdjustmentType   AdjustmentType `json:"adjustment_type,omitempty"`
	Reason           string         `json:"reason,omitempty"`
	AuditorReference string         `json:"auditor_reference,omitempty"`
	CreatedAt        time.Time      `json:"created_at,omitempty"`
}

// TotalDebit sums the debit side of all lines.
func (e *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredit sums the credit side of all lines.
func (e *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Credit)
	}
	return total
}

// Validate checks journal entry invariants: every line has an account
// and exactly one positive side, and the entry balances within the
// tolerance.
func (e *JournalEntry) Validate(tol Tolerance) error {
	if e.Description == "" {
		return ErrEmptyDescription
	}
	if e.Date.IsZero() {
		return fmt.Errorf("entry date is required")
	}
	if len(e.Lines) < 2 {
		return ErrTooFewLines
	}

	for i, l := range e.Lines {
		if l.AccountCode == "" {
			return fmt.Errorf("%w: line %d", ErrInvalidAccountCode, i+1)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d", ErrNegativeAmount, i+1)
		}
		hasDebit := l.Debit.Sign() > 0
		hasCredit := l.Credit.Sign() > 0
		if hasDebit == hasCredit {
			return fmt.Errorf("%w: line %d", ErrOneSidePerLine, i+1)
		}
		if _, err := ToPaise(l.Debit); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
		if _, err := ToPaise(l.Credit); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	diff := e.TotalDebit().Sub(e.TotalCredit())
	if !tol.Within(diff) {
		return fmt.Errorf("%w: difference of %s", ErrUnbalancedEntry, diff.Abs().StringFixed(2))
	}
	return nil
}

// PostingLines expands the entry into unified posting lines.
func (e *JournalEntry) PostingLines() []PostingLine {
	lines := make([]PostingLine, 0, len(e.Lines))
	for _, l := range e.Lines {
		lines = append(lines, PostingLine{
			Date:        e.Date,
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: e.Description,
			Reference:   e.EntryNumber,
			Source:      SourceJournal,
		})
	}
	return lines
}

// AdjustmentLine is one requested side of an audit adjustment.
type AdjustmentLine struct {
	AccountCode string          `json:"account_code"`
	Side        Side            `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
}

// AdjustmentInput is an audit adjustment request against a provisionally
// closed year.
type AdjustmentInput struct {
	EffectiveDate    time.Time        `json:"effective_date"`
	Type             AdjustmentType   `json:"adjustment_type"`
	Description      string           `json:"description"`
	Reason           string           `json:"reason"`
	AuditorReference string           `json:"auditor_reference,omitempty"`
	Entries          []AdjustmentLine `json:"entries"`
}

// Validate checks the adjustment request before any state changes.
func (in *AdjustmentInput) Validate(tol Tolerance) error {
	if in.EffectiveDate.IsZero() {
		return fmt.Errorf("effective date is required")
	}
	if !ValidAdjustmentType(in.Type) {
		return fmt.Errorf("%w: %q", ErrInvalidAdjustment, in.Type)
	}
	if in.Description == "" {
		return ErrEmptyDescription
	}
	if in.Reason == "" {
		return fmt.Errorf("%w: audit adjustments need a reason", ErrReasonRequired)
	}
	if len(in.Entries) < 2 {
		return ErrTooFewLines
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, l := range in.Entries {
		if l.AccountCode == "" {
			return fmt.Errorf("%w: entry %d", ErrInvalidAccountCode, i+1)
		}
		if l.Amount.Sign() <= 0 {
			return fmt.Errorf("%w: entry %d", ErrNonPositiveAmount, i+1)
		}
		if _, err := ToPaise(l.Amount); err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
		switch l.Side {
		case SideDebit:
			totalDebit = totalDebit.Add(l.Amount)
		case SideCredit:
			totalCredit = totalCredit.Add(l.Amount)
		default:
			return fmt.Errorf("%w: entry %d has %q", ErrInvalidEntrySide, i+1, l.Side)
		}
	}

	diff := totalDebit.Sub(totalCredit)
	if !tol.Within(diff) {
		return fmt.Errorf("%w: difference of %s", ErrUnbalancedEntry, diff.Abs().StringFixed(2))
	}
	return nil
}

// JournalEntry converts a validated adjustment into a journal entry.
func (in *AdjustmentInput) JournalEntry() *JournalEntry {
	e := &JournalEntry{
		Date:             in.EffectiveDate,
		Description:      in.Description,
		Source:           JournalAdjustment,
		AdjustmentType:   in.Type,
		Reason:           in.Reason,
		AuditorReference: in.AuditorReference,
	}
	for _, l := range in.Entries {
		jl := JournalLine{AccountCode: l.AccountCode, Description: in.Description}
		if l.Side == SideDebit {
			jl.Debit = l.Amount
		} else {
			jl.Credit = l.Amount
		}
		e.Lines = append(e.Lines, jl)
	}
	return e
}

// AffectedAccount itemizes one account touched by an adjustment, for
// audit display.
type AffectedAccount struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Adjustment  decimal.Decimal `json:"adjustment"`
	Side        Side            `json:"type"`
}
