package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gharmitra/societyledger/internal/ledger"
)

// OpeningBalanceList pairs a year's opening balance rows with their
// balance-check summary.
type OpeningBalanceList struct {
	Balances []ledger.OpeningBalance      `json:"balances"`
	Summary  ledger.OpeningBalanceSummary `json:"summary"`
}

func (s *Store) ListOpeningBalances(ctx context.Context, yearID string) (*OpeningBalanceList, error) {
	if _, err := s.GetYear(ctx, yearID); err != nil {
		return nil, err
	}

	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, financial_year_id, account_code, account_name, amount, side, status, calculated, manual_entry, manual_entry_reason, created_at
		 FROM opening_balances WHERE financial_year_id = ? ORDER BY account_code`, yearID)
	if err != nil {
		return nil, fmt.Errorf("list opening balances: %w", err)
	}
	defer rows.Close()

	var balances []ledger.OpeningBalance
	for rows.Next() {
		b, err := scanOpeningBalance(rows.Scan)
		if err != nil {
			return nil, err
		}
		balances = append(balances, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &OpeningBalanceList{
		Balances: balances,
		Summary:  ledger.SummarizeOpeningBalances(balances, s.tol),
	}, nil
}

func (s *Store) GetOpeningBalance(ctx context.Context, id string) (*ledger.OpeningBalance, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, financial_year_id, account_code, account_name, amount, side, status, calculated, manual_entry, manual_entry_reason, created_at
		 FROM opening_balances WHERE id = ?`, id)
	return scanOpeningBalance(row.Scan)
}

// OverrideOpeningBalance replaces a provisional balance with a manual
// entry. The reason is mandatory; finalized rows are immutable.
func (s *Store) OverrideOpeningBalance(ctx context.Context, id string, amount decimal.Decimal, side ledger.Side, reason string) (*ledger.OpeningBalance, error) {
	b, err := s.GetOpeningBalance(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == ledger.OpeningFinalized {
		return nil, fmt.Errorf("%w: %s cannot be overridden", ledger.ErrAlreadyFinalized, b.AccountCode)
	}

	b.Amount = amount
	b.Side = side
	b.ManualEntry = true
	b.ManualEntryReason = reason
	b.CalculatedFromPreviousYear = false
	if err := b.Validate(); err != nil {
		return nil, err
	}

	paise, err := ledger.ToPaise(amount)
	if err != nil {
		return nil, err
	}
	_, err = s.writer.ExecContext(ctx,
		`UPDATE opening_balances SET amount = ?, side = ?, calculated = 0, manual_entry = 1, manual_entry_reason = ? WHERE id = ?`,
		paise, string(side), reason, id,
	)
	if err != nil {
		return nil, fmt.Errorf("override opening balance: %w", err)
	}
	return b, nil
}

// FinalizeOpeningBalance marks one row finalized.
func (s *Store) FinalizeOpeningBalance(ctx context.Context, id string) (*ledger.OpeningBalance, error) {
	b, err := s.GetOpeningBalance(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == ledger.OpeningFinalized {
		return nil, fmt.Errorf("%w: %s", ledger.ErrAlreadyFinalized, b.AccountCode)
	}

	if _, err := s.writer.ExecContext(ctx,
		`UPDATE opening_balances SET status = 'finalized' WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("finalize opening balance: %w", err)
	}
	b.Status = ledger.OpeningFinalized
	if err := s.syncYearOpeningStatus(ctx, b.FinancialYearID); err != nil {
		return nil, err
	}
	return b, nil
}

// FinalizeAllOpeningBalances finalizes every remaining provisional row
// for a year and returns the refreshed list.
func (s *Store) FinalizeAllOpeningBalances(ctx context.Context, yearID string) (*OpeningBalanceList, error) {
	if _, err := s.GetYear(ctx, yearID); err != nil {
		return nil, err
	}
	if _, err := s.writer.ExecContext(ctx,
		`UPDATE opening_balances SET status = 'finalized' WHERE financial_year_id = ? AND status = 'provisional'`, yearID); err != nil {
		return nil, fmt.Errorf("finalize opening balances: %w", err)
	}
	if err := s.syncYearOpeningStatus(ctx, yearID); err != nil {
		return nil, err
	}
	return s.ListOpeningBalances(ctx, yearID)
}

// syncYearOpeningStatus rolls the per-row finalization state up to the
// year's opening_balances_status.
func (s *Store) syncYearOpeningStatus(ctx context.Context, yearID string) error {
	var provisional int
	err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM opening_balances WHERE financial_year_id = ? AND status = 'provisional'`, yearID).Scan(&provisional)
	if err != nil {
		return fmt.Errorf("count provisional balances: %w", err)
	}
	status := ledger.OpeningFinalized
	if provisional > 0 {
		status = ledger.OpeningProvisional
	}
	if _, err := s.writer.ExecContext(ctx,
		`UPDATE financial_years SET opening_balances_status = ? WHERE id = ?`, string(status), yearID); err != nil {
		return fmt.Errorf("sync opening status: %w", err)
	}
	return nil
}

func scanOpeningBalance(scan func(...any) error) (*ledger.OpeningBalance, error) {
	var b ledger.OpeningBalance
	var amount int64
	var calculated, manual int
	var createdAt string
	err := scan(&b.ID, &b.FinancialYearID, &b.AccountCode, &b.AccountName, &amount, &b.Side,
		&b.Status, &calculated, &manual, &b.ManualEntryReason, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrOpeningBalanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan opening balance: %w", err)
	}
	b.Amount = ledger.FromPaise(amount)
	b.CalculatedFromPreviousYear = calculated == 1
	b.ManualEntry = manual == 1
	b.CreatedAt = parseTimestamp(createdAt)
	return &b, nil
}
