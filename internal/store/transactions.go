package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gharmitra/societyledger/internal/ledger"
)

// CreateTransaction validates the transaction, checks the year guard for
// its date, and stores it. Normal transactions are rejected for dates in
// provisionally or finally closed years.
func (s *Store) CreateTransaction(ctx context.Context, txn *ledger.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.Must(uuid.NewV7()).String()
	}
	if err := txn.Validate(); err != nil {
		return err
	}
	if _, err := s.GetAccount(ctx, txn.AccountCode); err != nil {
		return err
	}
	if txn.FlatID != "" {
		if _, err := s.GetFlat(ctx, txn.FlatID); err != nil {
			return err
		}
	}
	if err := s.checkPostingAllowed(ctx, txn.Date); err != nil {
		return err
	}

	amount, err := ledger.ToPaise(txn.Amount)
	if err != nil {
		return err
	}

	_, err = s.writer.ExecContext(ctx,
		`INSERT INTO transactions (id, type, account_code, flat_id, amount, description, date, document_number, payment_mode)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, string(txn.Type), txn.AccountCode, txn.FlatID, amount,
		txn.Description, fmtDate(txn.Date), txn.DocumentNumber, string(txn.PaymentMode),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*ledger.Transaction, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, type, account_code, flat_id, amount, description, date, document_number, payment_mode, created_at
		 FROM transactions WHERE id = ?`, id)
	return scanTransaction(row.Scan)
}

func (s *Store) ListTransactions(ctx context.Context, filter TxnFilter) ([]ledger.Transaction, error) {
	query := `SELECT id, type, account_code, flat_id, amount, description, date, document_number, payment_mode, created_at
		FROM transactions WHERE 1=1`
	args := []any{}

	if filter.AccountCode != "" {
		query += ` AND account_code = ?`
		args = append(args, filter.AccountCode)
	}
	if filter.FlatID != "" {
		query += ` AND flat_id = ?`
		args = append(args, filter.FlatID)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if !filter.FromDate.IsZero() {
		query += ` AND date >= ?`
		args = append(args, fmtDate(filter.FromDate))
	}
	if !filter.ToDate.IsZero() {
		query += ` AND date <= ?`
		args = append(args, fmtDate(filter.ToDate))
	}
	query += ` ORDER BY date, created_at`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
		}
	}

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []ledger.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *txn)
	}
	return txns, rows.Err()
}

// DeleteTransaction removes a transaction unless its date falls in a
// closed year.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	txn, err := s.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkPostingAllowed(ctx, txn.Date); err != nil {
		return err
	}
	if _, err := s.writer.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// checkPostingAllowed applies the year state guard for a posting date.
func (s *Store) checkPostingAllowed(ctx context.Context, d time.Time) error {
	year, err := s.YearForDate(ctx, d)
	if err != nil {
		return err
	}
	if year == nil {
		return nil
	}
	return year.CanPostTransaction(d)
}

// PostingLines assembles the unified double-entry view: every
// transaction expanded against the settings' cash/bank accounts plus
// every journal line, ordered by date.
func (s *Store) PostingLines(ctx context.Context) ([]ledger.PostingLine, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	txns, err := s.ListTransactions(ctx, TxnFilter{})
	if err != nil {
		return nil, err
	}
	entries, err := s.ListJournalEntries(ctx, JournalFilter{})
	if err != nil {
		return nil, err
	}

	var lines []ledger.PostingLine
	for i := range txns {
		lines = append(lines, txns[i].PostingLines(settings.CashAccountCode, settings.BankAccountCode)...)
	}
	for i := range entries {
		lines = append(lines, entries[i].PostingLines()...)
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Date.Before(lines[j].Date) })
	return lines, nil
}

func scanTransaction(scan func(...any) error) (*ledger.Transaction, error) {
	var txn ledger.Transaction
	var amount int64
	var date, createdAt string
	err := scan(&txn.ID, &txn.Type, &txn.AccountCode, &txn.FlatID, &amount,
		&txn.Description, &date, &txn.DocumentNumber, &txn.PaymentMode, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	txn.Amount = ledger.FromPaise(amount)
	txn.Date = parseDate(date)
	txn.CreatedAt = parseTimestamp(createdAt)
	return &txn, nil
}
