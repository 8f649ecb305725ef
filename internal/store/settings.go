package store

import (
	"context"
	"fmt"

	"github.com/gharmitra/societyledger/internal/ledger"
)

// Settings returns the society configuration aggregate. The row is
// seeded at migration time, so a missing row is a store corruption.
func (s *Store) Settings(ctx context.Context) (*ledger.Settings, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT society_name, billing_method, sqft_rate, sinking_fund_monthly,
			cash_account_code, bank_account_code, receivable_account_code,
			maintenance_income_account_code, due_grace_days
		FROM settings WHERE id = 1`)

	var st ledger.Settings
	var method string
	var sqftRate, sinking int64
	err := row.Scan(&st.SocietyName, &method, &sqftRate, &sinking,
		&st.CashAccountCode, &st.BankAccountCode, &st.ReceivableAccountCode,
		&st.MaintenanceIncomeAccountCode, &st.DueGraceDays)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	st.BillingMethod = ledger.BillingMethod(method)
	st.SqftRate = ledger.FromPaise(sqftRate)
	st.SinkingFundMonthly = ledger.FromPaise(sinking)
	return &st, nil
}

// UpdateSettings validates and replaces the whole aggregate.
func (s *Store) UpdateSettings(ctx context.Context, st *ledger.Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	for _, code := range []string{st.CashAccountCode, st.BankAccountCode,
		st.ReceivableAccountCode, st.MaintenanceIncomeAccountCode} {
		if _, err := s.GetAccount(ctx, code); err != nil {
			return fmt.Errorf("settings account %s: %w", code, err)
		}
	}
	sqftRate, err := ledger.ToPaise(st.SqftRate)
	if err != nil {
		return err
	}
	sinking, err := ledger.ToPaise(st.SinkingFundMonthly)
	if err != nil {
		return err
	}
	_, err = s.writer.ExecContext(ctx,
		`UPDATE settings SET society_name = ?, billing_method = ?, sqft_rate = ?,
			sinking_fund_monthly = ?, cash_account_code = ?, bank_account_code = ?,
			receivable_account_code = ?, maintenance_income_account_code = ?,
			due_grace_days = ? WHERE id = 1`,
		st.SocietyName, string(st.BillingMethod), sqftRate, sinking,
		st.CashAccountCode, st.BankAccountCode, st.ReceivableAccountCode,
		st.MaintenanceIncomeAccountCode, st.DueGraceDays,
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}
