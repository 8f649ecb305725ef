package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OpeningBalance carries one account's balance into a financial year,
// either calculated from the prior year's close or entered manually.
type OpeningBalance struct {
	ID              string          `json:"id"`
	FinancialYearID string          `json:"financial_year_id"`
	AccountCode     string          `json:"account_code"`
	AccountName     string          `json:"account_name"`
	Amount          decimal.Decimal `json:"opening_balance"`
	Side            Side            `json:"balance_type"`
	Status          OpeningStatus   `json:"status"`
	CalculatedFromPreviousYear bool `json:"calculated_from_previous_year"`
	ManualEntry       bool          `json:"manual_entry"`
	ManualEntryReason string        `json:"manual_entry_reason,omitempty"`
	CreatedAt         time.Time     `json:"created_at,omitempty"`
}

// Validate checks opening balance invariants. Manual entries must carry
// a reason for the audit trail.
func (b *OpeningBalance) Validate() error {
	if b.FinancialYearID == "" {
		return fmt.Errorf("financial year id is required")
	}
	if b.AccountCode == "" {
		return ErrInvalidAccountCode
	}
	if b.Side != SideDebit && b.Side != SideCredit {
		return fmt.Errorf("%w: %q", ErrInvalidEntrySide, b.Side)
	}
	if b.Amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeAmount, b.Amount)
	}
	if _, err := ToPaise(b.Amount); err != nil {
		return err
	}
	if b.ManualEntry && b.ManualEntryReason == "" {
		return fmt.Errorf("%w: manual opening balance overrides need a reason", ErrReasonRequired)
	}
	return nil
}

// OpeningBalanceSummary aggregates a year's opening balances. A non-zero
// difference is surfaced, never corrected.
type OpeningBalanceSummary struct {
	TotalDebit       decimal.Decimal `json:"total_debit"`
	TotalCredit      decimal.Decimal `json:"total_credit"`
	Difference       decimal.Decimal `json:"difference"`
	IsBalanced       bool            `json:"is_balanced"`
	ProvisionalCount int             `json:"provisional_count"`
	FinalizedCount   int             `json:"finalized_count"`
	AllFinalized     bool            `json:"all_finalized"`
}

// SummarizeOpeningBalances computes the balance check and finalization
// progress over a year's opening balances.
func SummarizeOpeningBalances(rows []OpeningBalance, tol Tolerance) OpeningBalanceSummary {
	s := OpeningBalanceSummary{
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, b := range rows {
		if b.Side == SideDebit {
			s.TotalDebit = s.TotalDebit.Add(b.Amount)
		} else {
			s.TotalCredit = s.TotalCredit.Add(b.Amount)
		}
		if b.Status == OpeningFinalized {
			s.FinalizedCount++
		} else {
			s.ProvisionalCount++
		}
	}
	s.Difference = s.TotalDebit.Sub(s.TotalCredit)
	s.IsBalanced = tol.Within(s.Difference)
	s.AllFinalized = len(rows) > 0 && s.ProvisionalCount == 0
	return s
}
