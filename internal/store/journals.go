package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gharmitra/societyledger/internal/ledger"
)

// JournalFilter narrows journal entry listings.
type JournalFilter struct {
	Source   ledger.JournalSource
	FromDate time.Time
	ToDate   time.Time
}

// CreateJournalEntry validates and stores a manual journal entry. The
// year guard applies: closed years reject the normal journal path.
func (s *Store) CreateJournalEntry(ctx context.Context, entry *ledger.JournalEntry) error {
	if entry.Source == "" {
		entry.Source = ledger.JournalManual
	}
	if err := entry.Validate(s.tol); err != nil {
		return err
	}
	for _, l := range entry.Lines {
		if _, err := s.GetAccount(ctx, l.AccountCode); err != nil {
			return fmt.Errorf("line account %s: %w", l.AccountCode, err)
		}
	}
	if entry.Source != ledger.JournalAdjustment {
		if err := s.checkPostingAllowed(ctx, entry.Date); err != nil {
			return err
		}
	}
	return s.insertJournalEntry(ctx, entry)
}

// insertJournalEntry writes the entry and its lines in one transaction,
// assigning the id and entry number.
func (s *Store) insertJournalEntry(ctx context.Context, entry *ledger.JournalEntry) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertJournalEntryTx(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// insertJournalEntryTx writes the entry and its lines inside the
// caller's transaction, so callers can make the entry atomic with
// their own writes.
func insertJournalEntryTx(ctx context.Context, tx *sql.Tx, entry *ledger.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.Must(uuid.NewV7()).String()
	}

	if entry.EntryNumber == "" {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_entries`).Scan(&n); err != nil {
			return fmt.Errorf("next entry number: %w", err)
		}
		entry.EntryNumber = fmt.Sprintf("JE-%04d", n+1)
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO journal_entries (id, entry_number, date, description, source, adjustment_type, reason, auditor_reference)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.EntryNumber, fmtDate(entry.Date), entry.Description,
		string(entry.Source), string(entry.AdjustmentType), entry.Reason, entry.AuditorReference,
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}

	for i, l := range entry.Lines {
		debit, err := ledger.ToPaise(l.Debit)
		if err != nil {
			return err
		}
		credit, err := ledger.ToPaise(l.Credit)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO journal_lines (entry_id, account_code, debit, credit, description) VALUES (?, ?, ?, ?, ?)`,
			entry.ID, l.AccountCode, debit, credit, l.Description,
		)
		if err != nil {
			return fmt.Errorf("insert journal line %d: %w", i+1, err)
		}
	}

	return nil
}

func (s *Store) GetJournalEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, entry_number, date, description, source, adjustment_type, reason, auditor_reference, created_at
		 FROM journal_entries WHERE id = ?`, id)
	entry, err := scanJournalEntry(row.Scan)
	if err != nil {
		return nil, err
	}
	entry.Lines, err = s.journalLines(ctx, entry.ID)
	return entry, err
}

func (s *Store) ListJournalEntries(ctx context.Context, filter JournalFilter) ([]ledger.JournalEntry, error) {
	query := `SELECT id, entry_number, date, description, source, adjustment_type, reason, auditor_reference, created_at
		FROM journal_entries WHERE 1=1`
	args := []any{}

	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, string(filter.Source))
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

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.JournalEntry
	for rows.Next() {
		entry, err := scanJournalEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Lines, err = s.journalLines(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *Store) journalLines(ctx context.Context, entryID string) ([]ledger.JournalLine, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT account_code, debit, credit, description FROM journal_lines WHERE entry_id = ? ORDER BY id`, entryID)
	if err != nil {
		return nil, fmt.Errorf("journal lines: %w", err)
	}
	defer rows.Close()

	var lines []ledger.JournalLine
	for rows.Next() {
		var l ledger.JournalLine
		var debit, credit int64
		if err := rows.Scan(&l.AccountCode, &debit, &credit, &l.Description); err != nil {
			return nil, fmt.Errorf("scan journal line: %w", err)
		}
		l.Debit = ledger.FromPaise(debit)
		l.Credit = ledger.FromPaise(credit)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func scanJournalEntry(scan func(...any) error) (*ledger.JournalEntry, error) {
	var e ledger.JournalEntry
	var date, createdAt string
	err := scan(&e.ID, &e.EntryNumber, &date, &e.Description, &e.Source,
		&e.AdjustmentType, &e.Reason, &e.AuditorReference, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrJournalEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan journal entry: %w", err)
	}
	e.Date = parseDate(date)
	e.CreatedAt = parseTimestamp(createdAt)
	return &e, nil
}
