package store

import (
	"context"
	"time"

	"github.com/gharmitra/societyledger/internal/ledger"
)

// Report methods fetch rows once and hand them to the pure derivations
// in the ledger package. No report writes anything.

func (s *Store) reportInputs(ctx context.Context) ([]ledger.Account, []ledger.PostingLine, error) {
	accounts, err := s.ListAccounts(ctx, AccountFilter{})
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.PostingLines(ctx)
	if err != nil {
		return nil, nil, err
	}
	return accounts, lines, nil
}

func (s *Store) TrialBalance(ctx context.Context, asOn time.Time) (*ledger.TrialBalanceReport, error) {
	accounts, lines, err := s.reportInputs(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.DeriveTrialBalance(accounts, lines, asOn, s.tol), nil
}

func (s *Store) BalanceSheet(ctx context.Context, asOn time.Time) (*ledger.BalanceSheetReport, error) {
	accounts, lines, err := s.reportInputs(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.DeriveBalanceSheet(accounts, lines, asOn, s.tol), nil
}

func (s *Store) IncomeExpenditure(ctx context.Context, from, to time.Time) (*ledger.IncomeExpenditureReport, error) {
	accounts, lines, err := s.reportInputs(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.DeriveIncomeExpenditure(accounts, lines, from, to), nil
}

func (s *Store) ReceiptsPayments(ctx context.Context, from, to time.Time) (*ledger.ReceiptsPaymentsReport, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	accounts, lines, err := s.reportInputs(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.DeriveReceiptsPayments(accounts, lines, from, to, settings.CashAccountCode, settings.BankAccountCode), nil
}

func (s *Store) GeneralLedger(ctx context.Context, accountCode string, from, to time.Time) (*ledger.GeneralLedgerReport, error) {
	account, err := s.GetAccount(ctx, accountCode)
	if err != nil {
		return nil, err
	}
	lines, err := s.PostingLines(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.DeriveGeneralLedger(*account, lines, from, to), nil
}

// CashBook is the general ledger scoped to the configured cash account.
func (s *Store) CashBook(ctx context.Context, from, to time.Time) (*ledger.GeneralLedgerReport, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return s.GeneralLedger(ctx, settings.CashAccountCode, from, to)
}

// BankBook is the general ledger scoped to the configured bank account.
func (s *Store) BankBook(ctx context.Context, from, to time.Time) (*ledger.GeneralLedgerReport, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return s.GeneralLedger(ctx, settings.BankAccountCode, from, to)
}

// memberActivity is every bill plus every income transaction tagged with
// a flat, the inputs shared by the dues and member ledger reports.
func (s *Store) memberActivity(ctx context.Context) ([]ledger.MaintenanceBill, []ledger.Transaction, error) {
	bills, err := s.ListBills(ctx, 0, 0, "")
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.ListTransactions(ctx, TxnFilter{Type: ledger.TransactionIncome})
	if err != nil {
		return nil, nil, err
	}
	return bills, payments, nil
}

func (s *Store) MemberDues(ctx context.Context, asOn time.Time) (*ledger.MemberDuesReport, error) {
	flats, err := s.ListFlats(ctx)
	if err != nil {
		return nil, err
	}
	bills, payments, err := s.memberActivity(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.DeriveMemberDues(flats, bills, payments, asOn), nil
}

func (s *Store) MemberLedger(ctx context.Context, flatID string, from, to time.Time) (*ledger.MemberLedgerReport, error) {
	flat, err := s.GetFlat(ctx, flatID)
	if err != nil {
		return nil, err
	}
	bills, payments, err := s.memberActivity(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.DeriveMemberLedger(*flat, bills, payments, from, to), nil
}
