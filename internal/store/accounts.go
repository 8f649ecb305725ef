package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gharmitra/societyledger/internal/ledger"
)

func (s *Store) CreateAccount(ctx context.Context, acct *ledger.Account) error {
	if err := acct.Validate(); err != nil {
		return err
	}
	opening, err := ledger.ToPaise(acct.OpeningBalance)
	if err != nil {
		return err
	}

	_, err = s.writer.ExecContext(ctx,
		`INSERT INTO accounts (code, name, type, sub_type, opening_balance, is_fixed_expense) VALUES (?, ?, ?, ?, ?, ?)`,
		acct.Code, acct.Name, string(acct.Type), string(acct.SubType), opening, boolToInt(acct.IsFixedExpense),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateAccount, acct.Code)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, code string) (*ledger.Account, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT code, name, type, sub_type, opening_balance, is_fixed_expense, created_at FROM accounts WHERE code = ?`, code)
	return scanAccount(row.Scan)
}

func (s *Store) ListAccounts(ctx context.Context, filter AccountFilter) ([]ledger.Account, error) {
	query := `SELECT code, name, type, sub_type, opening_balance, is_fixed_expense, created_at FROM accounts WHERE 1=1`
	args := []any{}

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.IsFixedExpense != nil {
		query += ` AND is_fixed_expense = ?`
		args = append(args, boolToInt(*filter.IsFixedExpense))
	}
	query += ` ORDER BY code`

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		acct, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acct)
	}
	return accounts, rows.Err()
}

// AccountUpdate carries the mutable account fields for PATCH. Nil means
// leave unchanged.
type AccountUpdate struct {
	Name           *string
	SubType        *ledger.SubType
	IsFixedExpense *bool
}

func (s *Store) UpdateAccount(ctx context.Context, code string, upd AccountUpdate) (*ledger.Account, error) {
	acct, err := s.GetAccount(ctx, code)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		acct.Name = *upd.Name
	}
	if upd.SubType != nil {
		acct.SubType = *upd.SubType
	}
	if upd.IsFixedExpense != nil {
		acct.IsFixedExpense = *upd.IsFixedExpense
	}
	if err := acct.Validate(); err != nil {
		return nil, err
	}

	_, err = s.writer.ExecContext(ctx,
		`UPDATE accounts SET name = ?, sub_type = ?, is_fixed_expense = ? WHERE code = ?`,
		acct.Name, string(acct.SubType), boolToInt(acct.IsFixedExpense), code,
	)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return acct, nil
}

func (s *Store) DeleteAccount(ctx context.Context, code string) error {
	if _, err := s.GetAccount(ctx, code); err != nil {
		return err
	}

	// Cash/bank accounts back every transaction's payment mode, and
	// the receivable/income accounts back billing accruals. Deleting
	// one would orphan a side of those postings.
	settings, err := s.Settings(ctx)
	if err != nil {
		return err
	}
	for _, ref := range []string{settings.CashAccountCode, settings.BankAccountCode,
		settings.ReceivableAccountCode, settings.MaintenanceIncomeAccountCode} {
		if code == ref {
			return fmt.Errorf("%w: account %s", ledger.ErrAccountReferenced, code)
		}
	}

	var count int
	err = s.reader.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM transactions WHERE account_code = ?)
		     + (SELECT COUNT(*) FROM journal_lines WHERE account_code = ?)`,
		code, code).Scan(&count)
	if err != nil {
		return fmt.Errorf("check postings: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: account %s has %d postings", ledger.ErrAccountHasPostings, code, count)
	}

	if _, err := s.writer.ExecContext(ctx, `DELETE FROM accounts WHERE code = ?`, code); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// AccountBalance computes an account's balance in its normal direction
// as of asOn.
func (s *Store) AccountBalance(ctx context.Context, code string, asOn time.Time) (*ledger.Account, error) {
	acct, err := s.GetAccount(ctx, code)
	if err != nil {
		return nil, err
	}
	lines, err := s.PostingLines(ctx)
	if err != nil {
		return nil, err
	}
	acct.CurrentBalance = ledger.AccountBalance(*acct, lines, asOn)
	return acct, nil
}

func scanAccount(scan func(...any) error) (*ledger.Account, error) {
	var acct ledger.Account
	var subType string
	var opening int64
	var isFixed int
	var createdAt string
	err := scan(&acct.Code, &acct.Name, &acct.Type, &subType, &opening, &isFixed, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	acct.ID = acct.Code
	acct.SubType = ledger.SubType(subType)
	acct.OpeningBalance = ledger.FromPaise(opening)
	acct.CurrentBalance = acct.OpeningBalance
	acct.IsFixedExpense = isFixed == 1
	acct.CreatedAt = parseTimestamp(createdAt)
	return &acct, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
