package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gharmitra/societyledger/internal/ledger"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		// Chart of accounts. Amounts are stored in paise.
		`CREATE TABLE IF NOT EXISTS accounts (
			code             TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			type             TEXT NOT NULL CHECK (type IN ('asset','liability','capital','income','expense')),
			sub_type         TEXT NOT NULL DEFAULT '',
			opening_balance  INTEGER NOT NULL DEFAULT 0,
			is_fixed_expense INTEGER NOT NULL DEFAULT 0,
			created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_type ON accounts(type)`,

		// Income/expense transactions. date is 'YYYY-MM-DD'.
		`CREATE TABLE IF NOT EXISTS transactions (
			id              TEXT PRIMARY KEY,
			type            TEXT NOT NULL CHECK (type IN ('income','expense')),
			account_code    TEXT NOT NULL REFERENCES accounts(code),
			flat_id         TEXT NOT NULL DEFAULT '',
			amount          INTEGER NOT NULL CHECK (amount >= 0),
			description     TEXT NOT NULL,
			date            TEXT NOT NULL,
			document_number TEXT NOT NULL DEFAULT '',
			payment_mode    TEXT NOT NULL CHECK (payment_mode IN ('cash','bank')),
			created_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_code)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_flat ON transactions(flat_id)`,

		// Journal entries and lines.
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id                TEXT PRIMARY KEY,
			entry_number      TEXT NOT NULL UNIQUE,
			date              TEXT NOT NULL,
			description       TEXT NOT NULL,
			source            TEXT NOT NULL CHECK (source IN ('manual','adjustment','billing')),
			adjustment_type   TEXT NOT NULL DEFAULT '',
			adjustment_number TEXT NOT NULL DEFAULT '',
			reason            TEXT NOT NULL DEFAULT '',
			auditor_reference TEXT NOT NULL DEFAULT '',
			created_at        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_date ON journal_entries(date)`,
		`CREATE TABLE IF NOT EXISTS journal_lines (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			entry_id     TEXT NOT NULL REFERENCES journal_entries(id) ON DELETE CASCADE,
			account_code TEXT NOT NULL REFERENCES accounts(code),
			debit        INTEGER NOT NULL DEFAULT 0 CHECK (debit >= 0),
			credit       INTEGER NOT NULL DEFAULT 0 CHECK (credit >= 0),
			description  TEXT NOT NULL DEFAULT '',
			CHECK ((debit > 0) != (credit > 0))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_lines_entry ON journal_lines(entry_id)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_lines_account ON journal_lines(account_code)`,

		// Financial years.
		`CREATE TABLE IF NOT EXISTS financial_years (
			id                      TEXT PRIMARY KEY,
			year_name               TEXT NOT NULL UNIQUE,
			start_date              TEXT NOT NULL,
			end_date                TEXT NOT NULL,
			status                  TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open','provisional_close','final_close')),
			is_active               INTEGER NOT NULL DEFAULT 0,
			previous_year_id        TEXT NOT NULL DEFAULT '',
			opening_balances_status TEXT NOT NULL DEFAULT 'provisional' CHECK (opening_balances_status IN ('provisional','finalized')),
			closing_date            TEXT NOT NULL DEFAULT '',
			closing_notes           TEXT NOT NULL DEFAULT '',
			closing_bank_balance    INTEGER NOT NULL DEFAULT 0,
			closing_cash_balance    INTEGER NOT NULL DEFAULT 0,
			total_income            INTEGER NOT NULL DEFAULT 0,
			total_expenses          INTEGER NOT NULL DEFAULT 0,
			net_surplus_deficit     INTEGER NOT NULL DEFAULT 0,
			auditor_name            TEXT NOT NULL DEFAULT '',
			auditor_firm            TEXT NOT NULL DEFAULT '',
			audit_completion_date   TEXT NOT NULL DEFAULT '',
			audit_report_file_url   TEXT NOT NULL DEFAULT '',
			committee_approval_date TEXT NOT NULL DEFAULT '',
			created_at              TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,

		// Privileged year actions (close, reopen) with actor.
		`CREATE TABLE IF NOT EXISTS year_audit_log (
			id                TEXT PRIMARY KEY,
			financial_year_id TEXT NOT NULL REFERENCES financial_years(id),
			action            TEXT NOT NULL,
			actor             TEXT NOT NULL DEFAULT '',
			notes             TEXT NOT NULL DEFAULT '',
			at                TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_year_audit_log_year ON year_audit_log(financial_year_id)`,

		// Opening balances per year per account.
		`CREATE TABLE IF NOT EXISTS opening_balances (
			id                  TEXT PRIMARY KEY,
			financial_year_id   TEXT NOT NULL REFERENCES financial_years(id),
			account_code        TEXT NOT NULL REFERENCES accounts(code),
			account_name        TEXT NOT NULL,
			amount              INTEGER NOT NULL CHECK (amount >= 0),
			side                TEXT NOT NULL CHECK (side IN ('debit','credit')),
			status              TEXT NOT NULL DEFAULT 'provisional' CHECK (status IN ('provisional','finalized')),
			calculated          INTEGER NOT NULL DEFAULT 0,
			manual_entry        INTEGER NOT NULL DEFAULT 0,
			manual_entry_reason TEXT NOT NULL DEFAULT '',
			created_at          TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (financial_year_id, account_code)
		)`,

		// Billing.
		`CREATE TABLE IF NOT EXISTS flats (
			id         TEXT PRIMARY KEY,
			number     TEXT NOT NULL UNIQUE,
			owner_name TEXT NOT NULL DEFAULT '',
			area_sqft  INTEGER NOT NULL CHECK (area_sqft > 0),
			occupants  INTEGER NOT NULL DEFAULT 0 CHECK (occupants >= 0),
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE TABLE IF NOT EXISTS water_expenses (
			id                 TEXT PRIMARY KEY,
			month              INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
			year               INTEGER NOT NULL,
			tanker_charges     INTEGER NOT NULL DEFAULT 0,
			government_charges INTEGER NOT NULL DEFAULT 0,
			other_charges      INTEGER NOT NULL DEFAULT 0,
			created_at         TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_water_expenses_period ON water_expenses(year, month)`,
		`CREATE TABLE IF NOT EXISTS maintenance_bills (
			id         TEXT PRIMARY KEY,
			flat_id    TEXT NOT NULL REFERENCES flats(id),
			month      INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
			year       INTEGER NOT NULL,
			amount     INTEGER NOT NULL CHECK (amount >= 0),
			due_date   TEXT NOT NULL,
			breakdown  TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (flat_id, year, month)
		)`,

		// Society settings aggregate, single row.
		`CREATE TABLE IF NOT EXISTS settings (
			id                              INTEGER PRIMARY KEY CHECK (id = 1),
			society_name                    TEXT NOT NULL,
			billing_method                  TEXT NOT NULL CHECK (billing_method IN ('sqft_rate','variable')),
			sqft_rate                       INTEGER NOT NULL DEFAULT 0,
			sinking_fund_monthly            INTEGER NOT NULL DEFAULT 0,
			cash_account_code               TEXT NOT NULL,
			bank_account_code               TEXT NOT NULL,
			receivable_account_code         TEXT NOT NULL,
			maintenance_income_account_code TEXT NOT NULL,
			due_grace_days                  INTEGER NOT NULL DEFAULT 10
		)`,

		// Backstop: the storage layer itself refuses postings dated
		// inside a final-closed year. The Go guards run first and give
		// the typed errors.
		`CREATE TRIGGER IF NOT EXISTS trg_txn_insert_final_close
		BEFORE INSERT ON transactions
		WHEN EXISTS (
			SELECT 1 FROM financial_years y
			WHERE y.status = 'final_close' AND NEW.date BETWEEN y.start_date AND y.end_date
		)
		BEGIN
			SELECT RAISE(ABORT, 'cannot post a transaction into a final closed financial year');
		END`,
		`CREATE TRIGGER IF NOT EXISTS trg_txn_delete_final_close
		BEFORE DELETE ON transactions
		WHEN EXISTS (
			SELECT 1 FROM financial_years y
			WHERE y.status = 'final_close' AND OLD.date BETWEEN y.start_date AND y.end_date
		)
		BEGIN
			SELECT RAISE(ABORT, 'cannot delete a transaction from a final closed financial year');
		END`,
		`CREATE TRIGGER IF NOT EXISTS trg_journal_insert_final_close
		BEFORE INSERT ON journal_entries
		WHEN EXISTS (
			SELECT 1 FROM financial_years y
			WHERE y.status = 'final_close' AND NEW.date BETWEEN y.start_date AND y.end_date
		)
		BEGIN
			SELECT RAISE(ABORT, 'cannot post a journal entry into a final closed financial year');
		END`,
		`CREATE TRIGGER IF NOT EXISTS trg_journal_delete_final_close
		BEFORE DELETE ON journal_entries
		WHEN EXISTS (
			SELECT 1 FROM financial_years y
			WHERE y.status = 'final_close' AND OLD.date BETWEEN y.start_date AND y.end_date
		)
		BEGIN
			SELECT RAISE(ABORT, 'cannot delete a journal entry from a final closed financial year');
		END`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	// Seed the default chart of accounts.
	for _, e := range ledger.DefaultChart {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO accounts (code, name, type, sub_type, is_fixed_expense) VALUES (?, ?, ?, ?, ?)`,
			e.Code, e.Name, string(e.Type), string(e.SubType), boolToInt(e.IsFixedExpense),
		)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", e.Code, err)
		}
	}

	// Seed default settings.
	def := ledger.DefaultSettings()
	sqftRate, _ := ledger.ToPaise(def.SqftRate)
	sinking, _ := ledger.ToPaise(def.SinkingFundMonthly)
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (
			id, society_name, billing_method, sqft_rate, sinking_fund_monthly,
			cash_account_code, bank_account_code, receivable_account_code,
			maintenance_income_account_code, due_grace_days
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		def.SocietyName, string(def.BillingMethod), sqftRate, sinking,
		def.CashAccountCode, def.BankAccountCode, def.ReceivableAccountCode,
		def.MaintenanceIncomeAccountCode, def.DueGraceDays,
	); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	return nil
}
