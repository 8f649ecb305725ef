package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gharmitra/societyledger/internal/ledger"
)

// --- Flats ---

func (s *Store) CreateFlat(ctx context.Context, f *ledger.Flat) error {
	if f.ID == "" {
		f.ID = uuid.Must(uuid.NewV7()).String()
	}
	if err := f.Validate(); err != nil {
		return err
	}
	area, err := ledger.ToPaise(f.AreaSqft)
	if err != nil {
		return err
	}
	_, err = s.writer.ExecContext(ctx,
		`INSERT INTO flats (id, number, owner_name, area_sqft, occupants) VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.Number, f.OwnerName, area, f.Occupants,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateFlat, f.Number)
		}
		return fmt.Errorf("insert flat: %w", err)
	}
	return nil
}

func (s *Store) GetFlat(ctx context.Context, id string) (*ledger.Flat, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, number, owner_name, area_sqft, occupants, created_at FROM flats WHERE id = ?`, id)
	return scanFlat(row.Scan)
}

func (s *Store) ListFlats(ctx context.Context) ([]ledger.Flat, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, number, owner_name, area_sqft, occupants, created_at FROM flats ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("list flats: %w", err)
	}
	defer rows.Close()

	var flats []ledger.Flat
	for rows.Next() {
		f, err := scanFlat(rows.Scan)
		if err != nil {
			return nil, err
		}
		flats = append(flats, *f)
	}
	return flats, rows.Err()
}

func (s *Store) UpdateFlat(ctx context.Context, f *ledger.Flat) error {
	if _, err := s.GetFlat(ctx, f.ID); err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}
	area, err := ledger.ToPaise(f.AreaSqft)
	if err != nil {
		return err
	}
	_, err = s.writer.ExecContext(ctx,
		`UPDATE flats SET number = ?, owner_name = ?, area_sqft = ?, occupants = ? WHERE id = ?`,
		f.Number, f.OwnerName, area, f.Occupants, f.ID,
	)
	if err != nil {
		return fmt.Errorf("update flat: %w", err)
	}
	return nil
}

func (s *Store) DeleteFlat(ctx context.Context, id string) error {
	if _, err := s.GetFlat(ctx, id); err != nil {
		return err
	}
	var bills int
	if err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM maintenance_bills WHERE flat_id = ?`, id).Scan(&bills); err != nil {
		return fmt.Errorf("check bills: %w", err)
	}
	if bills > 0 {
		return fmt.Errorf("cannot delete flat: %d bills reference it", bills)
	}
	if _, err := s.writer.ExecContext(ctx, `DELETE FROM flats WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete flat: %w", err)
	}
	return nil
}

func scanFlat(scan func(...any) error) (*ledger.Flat, error) {
	var f ledger.Flat
	var area int64
	var createdAt string
	err := scan(&f.ID, &f.Number, &f.OwnerName, &area, &f.Occupants, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrFlatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan flat: %w", err)
	}
	f.AreaSqft = ledger.FromPaise(area)
	f.CreatedAt = parseTimestamp(createdAt)
	return &f, nil
}

// --- Water expenses ---

func (s *Store) CreateWaterExpense(ctx context.Context, w *ledger.WaterExpense) error {
	if w.ID == "" {
		w.ID = uuid.Must(uuid.NewV7()).String()
	}
	if err := w.Validate(); err != nil {
		return err
	}
	tanker, err := ledger.ToPaise(w.TankerCharges)
	if err != nil {
		return err
	}
	govt, err := ledger.ToPaise(w.GovernmentCharges)
	if err != nil {
		return err
	}
	other, err := ledger.ToPaise(w.OtherCharges)
	if err != nil {
		return err
	}
	_, err = s.writer.ExecContext(ctx,
		`INSERT INTO water_expenses (id, month, year, tanker_charges, government_charges, other_charges) VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.Month, w.Year, tanker, govt, other,
	)
	if err != nil {
		return fmt.Errorf("insert water expense: %w", err)
	}
	return nil
}

func (s *Store) ListWaterExpenses(ctx context.Context, month, year int) ([]ledger.WaterExpense, error) {
	query := `SELECT id, month, year, tanker_charges, government_charges, other_charges, created_at FROM water_expenses WHERE 1=1`
	args := []any{}
	if month > 0 {
		query += ` AND month = ?`
		args = append(args, month)
	}
	if year > 0 {
		query += ` AND year = ?`
		args = append(args, year)
	}
	query += ` ORDER BY year, month`

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list water expenses: %w", err)
	}
	defer rows.Close()

	var expenses []ledger.WaterExpense
	for rows.Next() {
		var w ledger.WaterExpense
		var tanker, govt, other int64
		var createdAt string
		if err := rows.Scan(&w.ID, &w.Month, &w.Year, &tanker, &govt, &other, &createdAt); err != nil {
			return nil, fmt.Errorf("scan water expense: %w", err)
		}
		w.TankerCharges = ledger.FromPaise(tanker)
		w.GovernmentCharges = ledger.FromPaise(govt)
		w.OtherCharges = ledger.FromPaise(other)
		w.CreatedAt = parseTimestamp(createdAt)
		expenses = append(expenses, w)
	}
	return expenses, rows.Err()
}

func (s *Store) DeleteWaterExpense(ctx context.Context, id string) error {
	res, err := s.writer.ExecContext(ctx, `DELETE FROM water_expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete water expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrWaterExpenseNotFound
	}
	return nil
}

// --- Bill generation ---

func billingDescription(month, year int) string {
	return fmt.Sprintf("Maintenance bills %04d-%02d", year, month)
}

// GenerateBills runs the billing calculator for a period and stores one
// bill per flat plus one accrual journal entry (member receivable ↔
// maintenance income). Regenerating an already-billed period fails;
// callers must delete first.
func (s *Store) GenerateBills(ctx context.Context, month, year int) (*ledger.BillGenerationResult, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	flats, err := s.ListFlats(ctx)
	if err != nil {
		return nil, err
	}

	var existing int
	if err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM maintenance_bills WHERE year = ? AND month = ?`, year, month).Scan(&existing); err != nil {
		return nil, fmt.Errorf("check existing bills: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: %04d-%02d has %d bills", ledger.ErrPeriodAlreadyBilled, year, month, existing)
	}

	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, -1)
	if err := s.checkPostingAllowed(ctx, periodEnd); err != nil {
		return nil, err
	}

	waterTotal := decimal.Zero
	waterExpenses, err := s.ListWaterExpenses(ctx, month, year)
	if err != nil {
		return nil, err
	}
	for i := range waterExpenses {
		waterTotal = waterTotal.Add(waterExpenses[i].Total())
	}

	fixedTotal, err := s.fixedExpenseTotal(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	bills, err := ledger.CalculateBills(*settings, ledger.BillingPeriodInput{
		Month:             month,
		Year:              year,
		Flats:             flats,
		WaterTotal:        waterTotal,
		FixedExpenseTotal: fixedTotal,
		SinkingFundTotal:  settings.SinkingFundMonthly,
	})
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for i := range bills {
		total = total.Add(bills[i].Amount)
	}

	// The accrual entry must resolve and validate before any bill row
	// is written.
	var entry *ledger.JournalEntry
	if total.Sign() > 0 {
		entry = &ledger.JournalEntry{
			Date:        periodEnd,
			Description: billingDescription(month, year),
			Source:      ledger.JournalBilling,
			Lines: []ledger.JournalLine{
				{AccountCode: settings.ReceivableAccountCode, Debit: total},
				{AccountCode: settings.MaintenanceIncomeAccountCode, Credit: total},
			},
		}
		if err := entry.Validate(s.tol); err != nil {
			return nil, fmt.Errorf("billing journal entry: %w", err)
		}
		for _, l := range entry.Lines {
			if _, err := s.GetAccount(ctx, l.AccountCode); err != nil {
				return nil, fmt.Errorf("billing journal entry: line account %s: %w", l.AccountCode, err)
			}
		}
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range bills {
		bills[i].ID = uuid.Must(uuid.NewV7()).String()
		amount, err := ledger.ToPaise(bills[i].Amount)
		if err != nil {
			return nil, err
		}
		breakdown, err := json.Marshal(bills[i].Breakdown)
		if err != nil {
			return nil, fmt.Errorf("marshal breakdown: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO maintenance_bills (id, flat_id, month, year, amount, due_date, breakdown) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			bills[i].ID, bills[i].FlatID, month, year, amount, fmtDate(bills[i].DueDate), string(breakdown),
		)
		if err != nil {
			return nil, fmt.Errorf("insert bill for flat %s: %w", bills[i].FlatNumber, err)
		}
	}
	if entry != nil {
		if err := insertJournalEntryTx(ctx, tx, entry); err != nil {
			return nil, fmt.Errorf("billing journal entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &ledger.BillGenerationResult{
		TotalBillsGenerated: len(bills),
		TotalAmount:         total,
		Bills:               bills,
	}, nil
}

// fixedExpenseTotal sums the period's postings to accounts flagged
// is_fixed_expense.
func (s *Store) fixedExpenseTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	fixed := true
	accounts, err := s.ListAccounts(ctx, AccountFilter{IsFixedExpense: &fixed})
	if err != nil {
		return decimal.Zero, err
	}
	if len(accounts) == 0 {
		return decimal.Zero, nil
	}
	lines, err := s.PostingLines(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, a := range accounts {
		opening := ledger.AccountBalance(a, lines, from.AddDate(0, 0, -1))
		closing := ledger.AccountBalance(a, lines, to)
		total = total.Add(closing.Sub(opening))
	}
	return total, nil
}

func (s *Store) ListBills(ctx context.Context, month, year int, flatID string) ([]ledger.MaintenanceBill, error) {
	query := `SELECT b.id, b.flat_id, f.number, b.month, b.year, b.amount, b.due_date, b.breakdown, b.created_at
		FROM maintenance_bills b JOIN flats f ON f.id = b.flat_id WHERE 1=1`
	args := []any{}
	if month > 0 {
		query += ` AND b.month = ?`
		args = append(args, month)
	}
	if year > 0 {
		query += ` AND b.year = ?`
		args = append(args, year)
	}
	if flatID != "" {
		query += ` AND b.flat_id = ?`
		args = append(args, flatID)
	}
	query += ` ORDER BY b.year, b.month, f.number`

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []ledger.MaintenanceBill
	for rows.Next() {
		var b ledger.MaintenanceBill
		var amount int64
		var dueDate, breakdown, createdAt string
		if err := rows.Scan(&b.ID, &b.FlatID, &b.FlatNumber, &b.Month, &b.Year, &amount, &dueDate, &breakdown, &createdAt); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		b.Amount = ledger.FromPaise(amount)
		b.DueDate = parseDate(dueDate)
		b.CreatedAt = parseTimestamp(createdAt)
		if err := json.Unmarshal([]byte(breakdown), &b.Breakdown); err != nil {
			return nil, fmt.Errorf("unmarshal breakdown: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// DeleteBills removes a period's bills and its accrual journal entry,
// the explicit first half of delete-then-regenerate.
func (s *Store) DeleteBills(ctx context.Context, month, year int) (int, error) {
	periodEnd := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
	if err := s.checkPostingAllowed(ctx, periodEnd); err != nil {
		return 0, err
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM maintenance_bills WHERE year = ? AND month = ?`, year, month)
	if err != nil {
		return 0, fmt.Errorf("delete bills: %w", err)
	}
	deleted, _ := res.RowsAffected()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM journal_entries WHERE source = 'billing' AND description = ?`, billingDescription(month, year))
	if err != nil {
		return 0, fmt.Errorf("delete billing entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(deleted), nil
}
