package store

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gharmitra/societyledger/internal/ledger"
)

// Store is the SQLite persistence layer. A single-connection writer
// serializes all mutations; reads go through a pooled reader.
type Store struct {
	writer *sql.DB
	reader *sql.DB
	tol    ledger.Tolerance
}

// TxnFilter narrows transaction listings.
type TxnFilter struct {
	AccountCode string
	FlatID      string
	Type        ledger.TransactionType
	FromDate    time.Time
	ToDate      time.Time
	Limit       int
	Offset      int
}

// AccountFilter narrows account listings.
type AccountFilter struct {
	Type           ledger.AccountType
	IsFixedExpense *bool
}

func Open(dbPath string, tol ledger.Tolerance) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(runtime.NumCPU())

	s := &Store{writer: writer, reader: reader, tol: tol}

	if err := s.migrate(context.Background()); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	err1 := s.writer.Close()
	err2 := s.reader.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Tolerance returns the balance-check tolerance the store was opened with.
func (s *Store) Tolerance() ledger.Tolerance {
	return s.tol
}

const dateFormat = "2006-01-02"

func fmtDate(t time.Time) string {
	return t.Format(dateFormat)
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateFormat, s)
	return t
}

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
