package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gharmitra/societyledger/internal/ledger"
)

func (s *Store) CreateYear(ctx context.Context, y *ledger.FinancialYear) error {
	if y.ID == "" {
		y.ID = uuid.Must(uuid.NewV7()).String()
	}
	if y.Status == "" {
		y.Status = ledger.YearOpen
	}
	if y.OpeningBalancesStatus == "" {
		y.OpeningBalancesStatus = ledger.OpeningProvisional
	}
	if err := y.Validate(); err != nil {
		return err
	}
	if y.PreviousYearID != "" {
		if _, err := s.GetYear(ctx, y.PreviousYearID); err != nil {
			return fmt.Errorf("previous year: %w", err)
		}
	}

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO financial_years (id, year_name, start_date, end_date, status, is_active, previous_year_id, opening_balances_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		y.ID, y.YearName, fmtDate(y.StartDate), fmtDate(y.EndDate),
		string(y.Status), boolToInt(y.IsActive), y.PreviousYearID, string(y.OpeningBalancesStatus),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateYear, y.YearName)
		}
		return fmt.Errorf("insert financial year: %w", err)
	}
	return nil
}

const yearColumns = `id, year_name, start_date, end_date, status, is_active, previous_year_id,
	opening_balances_status, closing_date, closing_notes, closing_bank_balance, closing_cash_balance,
	total_income, total_expenses, net_surplus_deficit, auditor_name, auditor_firm,
	audit_completion_date, audit_report_file_url, committee_approval_date, created_at`

func (s *Store) GetYear(ctx context.Context, id string) (*ledger.FinancialYear, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+yearColumns+` FROM financial_years WHERE id = ?`, id)
	return scanYear(row.Scan)
}

func (s *Store) ListYears(ctx context.Context) ([]ledger.FinancialYear, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT `+yearColumns+` FROM financial_years ORDER BY start_date`)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	defer rows.Close()

	var years []ledger.FinancialYear
	for rows.Next() {
		y, err := scanYear(rows.Scan)
		if err != nil {
			return nil, err
		}
		years = append(years, *y)
	}
	return years, rows.Err()
}

// ActiveYear returns the single active year, or ErrNoActiveYear.
func (s *Store) ActiveYear(ctx context.Context) (*ledger.FinancialYear, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+yearColumns+` FROM financial_years WHERE is_active = 1`)
	y, err := scanYear(row.Scan)
	if err == ledger.ErrYearNotFound {
		return nil, ledger.ErrNoActiveYear
	}
	return y, err
}

// YearForDate finds the year whose range contains d, or nil.
func (s *Store) YearForDate(ctx context.Context, d time.Time) (*ledger.FinancialYear, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+yearColumns+` FROM financial_years WHERE ? BETWEEN start_date AND end_date`, fmtDate(d))
	y, err := scanYear(row.Scan)
	if err == ledger.ErrYearNotFound {
		return nil, nil
	}
	return y, err
}

// ActivateYear marks one year active and all others inactive.
func (s *Store) ActivateYear(ctx context.Context, id string) (*ledger.FinancialYear, error) {
	if _, err := s.GetYear(ctx, id); err != nil {
		return nil, err
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE financial_years SET is_active = 0 WHERE is_active = 1`); err != nil {
		return nil, fmt.Errorf("deactivate years: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE financial_years SET is_active = 1 WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("activate year: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetYear(ctx, id)
}

// ProvisionalClose runs the year-end closing: computes closing cash/bank
// balances and income/expense totals, moves the year to
// provisional_close, and generates provisional opening balances for the
// successor year (creating it when absent).
func (s *Store) ProvisionalClose(ctx context.Context, id string, closingDate time.Time, notes, actor string) (*ledger.YearEndClosingSummary, error) {
	year, err := s.GetYear(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := year.ProvisionalClose(closingDate, notes); err != nil {
		return nil, err
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.ListAccounts(ctx, AccountFilter{})
	if err != nil {
		return nil, err
	}
	lines, err := s.PostingLines(ctx)
	if err != nil {
		return nil, err
	}

	summary := &ledger.YearEndClosingSummary{
		BankBalance: decimal.Zero,
		CashBalance: decimal.Zero,
	}
	for _, a := range accounts {
		switch a.Code {
		case settings.CashAccountCode:
			summary.CashBalance = ledger.AccountBalance(a, lines, closingDate)
		case settings.BankAccountCode:
			summary.BankBalance = ledger.AccountBalance(a, lines, closingDate)
		}
	}
	ie := ledger.DeriveIncomeExpenditure(accounts, lines, year.StartDate, closingDate)
	summary.TotalIncome = ie.TotalIncome
	summary.TotalExpenses = ie.TotalExpenditure
	summary.NetSurplusDeficit = ie.Surplus
	summary.Message = fmt.Sprintf("%s provisionally closed as of %s", year.YearName, fmtDate(closingDate))

	year.ClosingBankBalance = summary.BankBalance
	year.ClosingCashBalance = summary.CashBalance
	year.TotalIncome = summary.TotalIncome
	year.TotalExpenses = summary.TotalExpenses
	year.NetSurplusDeficit = summary.NetSurplusDeficit

	next, err := s.successorYear(ctx, year)
	if err != nil {
		return nil, err
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if next.ID == "" {
		next.ID = uuid.Must(uuid.NewV7()).String()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO financial_years (id, year_name, start_date, end_date, status, previous_year_id)
			 VALUES (?, ?, ?, ?, 'open', ?)`,
			next.ID, next.YearName, fmtDate(next.StartDate), fmtDate(next.EndDate), year.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("create successor year: %w", err)
		}
	}

	if err := updateYearClose(ctx, tx, year); err != nil {
		return nil, err
	}

	// Replace any previously calculated rows from an earlier close of
	// this year (after a reopen); manual overrides survive.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM opening_balances WHERE financial_year_id = ? AND calculated = 1 AND manual_entry = 0`, next.ID)
	if err != nil {
		return nil, fmt.Errorf("clear calculated opening balances: %w", err)
	}

	for _, a := range accounts {
		bal := ledger.AccountBalance(a, lines, closingDate)
		if bal.IsZero() {
			continue
		}
		side := ledger.NormalSide(a.Type)
		if bal.Sign() < 0 {
			// Inverted balance carries on the opposite side.
			if side == ledger.SideDebit {
				side = ledger.SideCredit
			} else {
				side = ledger.SideDebit
			}
			bal = bal.Neg()
		}
		amount, err := ledger.ToPaise(bal)
		if err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO opening_balances (id, financial_year_id, account_code, account_name, amount, side, status, calculated)
			 VALUES (?, ?, ?, ?, ?, ?, 'provisional', 1)
			 ON CONFLICT (financial_year_id, account_code) DO NOTHING`,
			uuid.Must(uuid.NewV7()).String(), next.ID, a.Code, a.Name, amount, string(side),
		)
		if err != nil {
			return nil, fmt.Errorf("insert opening balance %s: %w", a.Code, err)
		}
	}

	if err := insertAuditEvent(ctx, tx, year.ID, "provisional_close", actor, notes); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return summary, nil
}

// successorYear finds the year referencing y as its predecessor, or
// proposes a new adjacent one.
func (s *Store) successorYear(ctx context.Context, y *ledger.FinancialYear) (*ledger.FinancialYear, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+yearColumns+` FROM financial_years WHERE previous_year_id = ?`, y.ID)
	next, err := scanYear(row.Scan)
	if err == nil {
		return next, nil
	}
	if err != ledger.ErrYearNotFound {
		return nil, err
	}

	start := y.EndDate.AddDate(0, 0, 1)
	end := start.AddDate(1, 0, -1)
	return &ledger.FinancialYear{
		YearName:       fmt.Sprintf("FY %d-%02d", start.Year(), (start.Year()+1)%100),
		StartDate:      start,
		EndDate:        end,
		Status:         ledger.YearOpen,
		PreviousYearID: y.ID,
	}, nil
}

// AdjustmentResult is returned by the adjustment-entry operation.
type AdjustmentResult struct {
	AdjustmentID     string                   `json:"adjustment_id"`
	AdjustmentNumber string                   `json:"adjustment_number"`
	EntryNumber      string                   `json:"entry_number"`
	AffectedAccounts []ledger.AffectedAccount `json:"affected_accounts"`
}

// PostAdjustment posts an audit adjustment against a provisionally
// closed year. This is the only write path into such a year.
func (s *Store) PostAdjustment(ctx context.Context, yearID string, in *ledger.AdjustmentInput) (*AdjustmentResult, error) {
	year, err := s.GetYear(ctx, yearID)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(s.tol); err != nil {
		return nil, err
	}
	if err := year.CanPostAdjustment(in.EffectiveDate); err != nil {
		return nil, err
	}

	affected := make([]ledger.AffectedAccount, 0, len(in.Entries))
	for _, e := range in.Entries {
		acct, err := s.GetAccount(ctx, e.AccountCode)
		if err != nil {
			return nil, fmt.Errorf("entry account %s: %w", e.AccountCode, err)
		}
		affected = append(affected, ledger.AffectedAccount{
			AccountCode: acct.Code,
			AccountName: acct.Name,
			Adjustment:  e.Amount,
			Side:        e.Side,
		})
	}

	entry := in.JournalEntry()
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertJournalEntryTx(ctx, tx, entry); err != nil {
		return nil, err
	}
	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journal_entries WHERE source = 'adjustment'`).Scan(&n); err != nil {
		return nil, fmt.Errorf("next adjustment number: %w", err)
	}
	adjNumber := fmt.Sprintf("ADJ-%04d", n)
	if _, err := tx.ExecContext(ctx,
		`UPDATE journal_entries SET adjustment_number = ? WHERE id = ?`, adjNumber, entry.ID); err != nil {
		return nil, fmt.Errorf("set adjustment number: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if err := s.refreshYearTotals(ctx, year); err != nil {
		return nil, err
	}

	return &AdjustmentResult{
		AdjustmentID:     entry.ID,
		AdjustmentNumber: adjNumber,
		EntryNumber:      entry.EntryNumber,
		AffectedAccounts: affected,
	}, nil
}

// refreshYearTotals recomputes a closed year's totals after an
// adjustment, without changing its state.
func (s *Store) refreshYearTotals(ctx context.Context, year *ledger.FinancialYear) error {
	settings, err := s.Settings(ctx)
	if err != nil {
		return err
	}
	accounts, err := s.ListAccounts(ctx, AccountFilter{})
	if err != nil {
		return err
	}
	lines, err := s.PostingLines(ctx)
	if err != nil {
		return err
	}

	asOf := year.ClosingDate
	if asOf.IsZero() {
		asOf = year.EndDate
	}
	for _, a := range accounts {
		switch a.Code {
		case settings.CashAccountCode:
			year.ClosingCashBalance = ledger.AccountBalance(a, lines, asOf)
		case settings.BankAccountCode:
			year.ClosingBankBalance = ledger.AccountBalance(a, lines, asOf)
		}
	}
	ie := ledger.DeriveIncomeExpenditure(accounts, lines, year.StartDate, asOf)
	year.TotalIncome = ie.TotalIncome
	year.TotalExpenses = ie.TotalExpenditure
	year.NetSurplusDeficit = ie.Surplus

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := updateYearClose(ctx, tx, year); err != nil {
		return err
	}
	return tx.Commit()
}

// FinalClose moves a provisionally closed year to final_close given
// complete audit metadata.
func (s *Store) FinalClose(ctx context.Context, id string, in ledger.FinalCloseInput, actor string) (*ledger.FinancialYear, error) {
	year, err := s.GetYear(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := year.FinalClose(in); err != nil {
		return nil, err
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	committee := ""
	if !in.CommitteeApprovalDate.IsZero() {
		committee = fmtDate(in.CommitteeApprovalDate)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE financial_years SET status = 'final_close', auditor_name = ?, auditor_firm = ?,
			audit_completion_date = ?, audit_report_file_url = ?, committee_approval_date = ?, closing_notes = ?
		 WHERE id = ?`,
		year.AuditorName, year.AuditorFirm, fmtDate(year.AuditCompletionDate),
		year.AuditReportFileURL, committee, year.ClosingNotes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("final close: %w", err)
	}
	if err := insertAuditEvent(ctx, tx, id, "final_close", actor, in.Notes); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetYear(ctx, id)
}

// Reopen reverts a closed year to open. Privileged and always logged.
func (s *Store) Reopen(ctx context.Context, id, actor, notes string) (*ledger.FinancialYear, error) {
	year, err := s.GetYear(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := year.Reopen(actor); err != nil {
		return nil, err
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE financial_years SET status = 'open' WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("reopen year: %w", err)
	}
	if err := insertAuditEvent(ctx, tx, id, "reopen", actor, notes); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetYear(ctx, id)
}

// AuditLog lists privileged actions for a year, newest first.
func (s *Store) AuditLog(ctx context.Context, yearID string) ([]ledger.YearAuditEvent, error) {
	if _, err := s.GetYear(ctx, yearID); err != nil {
		return nil, err
	}
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, financial_year_id, action, actor, notes, at FROM year_audit_log
		 WHERE financial_year_id = ? ORDER BY at DESC`, yearID)
	if err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}
	defer rows.Close()

	var events []ledger.YearAuditEvent
	for rows.Next() {
		var e ledger.YearAuditEvent
		var at string
		if err := rows.Scan(&e.ID, &e.FinancialYearID, &e.Action, &e.Actor, &e.Notes, &at); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.At = parseTimestamp(at)
		events = append(events, e)
	}
	return events, rows.Err()
}

func insertAuditEvent(ctx context.Context, tx *sql.Tx, yearID, action, actor, notes string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO year_audit_log (id, financial_year_id, action, actor, notes) VALUES (?, ?, ?, ?, ?)`,
		uuid.Must(uuid.NewV7()).String(), yearID, action, actor, notes,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func updateYearClose(ctx context.Context, tx *sql.Tx, y *ledger.FinancialYear) error {
	bank, err := ledger.ToPaise(y.ClosingBankBalance.Round(2))
	if err != nil {
		return err
	}
	cash, err := ledger.ToPaise(y.ClosingCashBalance.Round(2))
	if err != nil {
		return err
	}
	income, err := ledger.ToPaise(y.TotalIncome.Round(2))
	if err != nil {
		return err
	}
	expenses, err := ledger.ToPaise(y.TotalExpenses.Round(2))
	if err != nil {
		return err
	}
	net, err := ledger.ToPaise(y.NetSurplusDeficit.Round(2))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE financial_years SET status = ?, closing_date = ?, closing_notes = ?,
			closing_bank_balance = ?, closing_cash_balance = ?,
			total_income = ?, total_expenses = ?, net_surplus_deficit = ?
		 WHERE id = ?`,
		string(y.Status), fmtDate(y.ClosingDate), y.ClosingNotes,
		bank, cash, income, expenses, net, y.ID,
	)
	if err != nil {
		return fmt.Errorf("update year: %w", err)
	}
	return nil
}

func scanYear(scan func(...any) error) (*ledger.FinancialYear, error) {
	var y ledger.FinancialYear
	var startDate, endDate, closingDate, auditDate, committeeDate, createdAt string
	var isActive int
	var bank, cash, income, expenses, net int64

	err := scan(&y.ID, &y.YearName, &startDate, &endDate, &y.Status, &isActive, &y.PreviousYearID,
		&y.OpeningBalancesStatus, &closingDate, &y.ClosingNotes, &bank, &cash,
		&income, &expenses, &net, &y.AuditorName, &y.AuditorFirm,
		&auditDate, &y.AuditReportFileURL, &committeeDate, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrYearNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan year: %w", err)
	}

	y.StartDate = parseDate(startDate)
	y.EndDate = parseDate(endDate)
	y.IsActive = isActive == 1
	if closingDate != "" {
		y.ClosingDate = parseDate(closingDate)
	}
	if auditDate != "" {
		y.AuditCompletionDate = parseDate(auditDate)
	}
	if committeeDate != "" {
		y.CommitteeApprovalDate = parseDate(committeeDate)
	}
	y.ClosingBankBalance = ledger.FromPaise(bank)
	y.ClosingCashBalance = ledger.FromPaise(cash)
	y.TotalIncome = ledger.FromPaise(income)
	y.TotalExpenses = ledger.FromPaise(expenses)
	y.NetSurplusDeficit = ledger.FromPaise(net)
	y.CreatedAt = parseTimestamp(createdAt)
	return &y, nil
}
