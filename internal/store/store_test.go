package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gharmitra/societyledger/internal/ledger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), ledger.DefaultTolerance())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func TestMigrateSeedsChartAndSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	accounts, err := s.ListAccounts(ctx, AccountFilter{})
	require.NoError(t, err)
	assert.Len(t, accounts, len(ledger.DefaultChart))

	cash, err := s.GetAccount(ctx, "1010")
	require.NoError(t, err)
	assert.Equal(t, "Cash in Hand", cash.Name)
	assert.Equal(t, ledger.AccountTypeAsset, cash.Type)

	settings, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.BillingSqftRate, settings.BillingMethod)
	assert.Equal(t, "1010", settings.CashAccountCode)
	assert.Equal(t, "1030", settings.ReceivableAccountCode)
	assert.Equal(t, 10, settings.DueGraceDays)
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	tol := ledger.DefaultTolerance()

	s, err := Open(path, tol)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening an existing database must not re-seed or fail.
	s, err = Open(path, tol)
	require.NoError(t, err)
	defer s.Close()

	accounts, err := s.ListAccounts(context.Background(), AccountFilter{})
	require.NoError(t, err)
	assert.Len(t, accounts, len(ledger.DefaultChart))
}

func TestCreateAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct := &ledger.Account{
		Code:           "5070",
		Name:           "Garden Upkeep",
		Type:           ledger.AccountTypeExpense,
		IsFixedExpense: true,
	}
	require.NoError(t, s.CreateAccount(ctx, acct))

	got, err := s.GetAccount(ctx, "5070")
	require.NoError(t, err)
	assert.Equal(t, "Garden Upkeep", got.Name)
	assert.True(t, got.IsFixedExpense)

	err = s.CreateAccount(ctx, acct)
	assert.ErrorIs(t, err, ledger.ErrDuplicateAccount)
}

func TestGetAccountNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAccount(context.Background(), "9999")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestListAccountsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	income, err := s.ListAccounts(ctx, AccountFilter{Type: ledger.AccountTypeIncome})
	require.NoError(t, err)
	require.NotEmpty(t, income)
	for _, a := range income {
		assert.Equal(t, ledger.AccountTypeIncome, a.Type)
	}

	fixed := true
	flagged, err := s.ListAccounts(ctx, AccountFilter{IsFixedExpense: &fixed})
	require.NoError(t, err)
	codes := make([]string, 0, len(flagged))
	for _, a := range flagged {
		codes = append(codes, a.Code)
	}
	assert.ElementsMatch(t, []string{"5020", "5030", "5040"}, codes)
}

func TestUpdateAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	name := "Security & Patrol"
	fixed := false
	got, err := s.UpdateAccount(ctx, "5030", AccountUpdate{Name: &name, IsFixedExpense: &fixed})
	require.NoError(t, err)
	assert.Equal(t, "Security & Patrol", got.Name)
	assert.False(t, got.IsFixedExpense)

	got, err = s.GetAccount(ctx, "5030")
	require.NoError(t, err)
	assert.Equal(t, "Security & Patrol", got.Name)
	assert.False(t, got.IsFixedExpense)
}

func TestDeleteAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAccount(ctx, &ledger.Account{
		Code: "4040", Name: "Parking Income", Type: ledger.AccountTypeIncome,
	}))
	require.NoError(t, s.DeleteAccount(ctx, "4040"))
	_, err := s.GetAccount(ctx, "4040")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestDeleteSettingsReferencedAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTransaction(ctx, incomeTxn(day(2025, time.April, 5), "5000")))

	// Every transaction posts implicitly against the settings cash or
	// bank account, so none of the settings-referenced accounts may go.
	for _, code := range []string{"1010", "1020", "1030", "4010"} {
		assert.ErrorIs(t, s.DeleteAccount(ctx, code), ledger.ErrAccountReferenced, code)
	}

	tb, err := s.TrialBalance(ctx, day(2025, time.June, 30))
	require.NoError(t, err)
	assert.True(t, tb.IsBalanced)
	assert.Equal(t, "5000.00", tb.TotalDebit.StringFixed(2))
}

func TestDeleteAccountWithPostings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTransaction(ctx, &ledger.Transaction{
		Type:        ledger.TransactionExpense,
		AccountCode: "5010",
		Amount:      d("500"),
		Description: "Tanker water bill",
		Date:        day(2025, time.April, 5),
		PaymentMode: ledger.PaymentCash,
	}))

	err := s.DeleteAccount(ctx, "5010")
	assert.ErrorIs(t, err, ledger.ErrAccountHasPostings)
}

func TestAccountBalance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTransaction(ctx, &ledger.Transaction{
		Type:        ledger.TransactionIncome,
		AccountCode: "4010",
		Amount:      d("1500"),
		Description: "April maintenance",
		Date:        day(2025, time.April, 5),
		PaymentMode: ledger.PaymentCash,
	}))
	require.NoError(t, s.CreateTransaction(ctx, &ledger.Transaction{
		Type:        ledger.TransactionExpense,
		AccountCode: "5010",
		Amount:      d("400"),
		Description: "Water tanker",
		Date:        day(2025, time.April, 20),
		PaymentMode: ledger.PaymentCash,
	}))

	cash, err := s.AccountBalance(ctx, "1010", day(2025, time.April, 30))
	require.NoError(t, err)
	assert.Equal(t, "1100.00", cash.CurrentBalance.StringFixed(2))

	// Before the expense posted.
	cash, err = s.AccountBalance(ctx, "1010", day(2025, time.April, 10))
	require.NoError(t, err)
	assert.Equal(t, "1500.00", cash.CurrentBalance.StringFixed(2))
}

func TestUpdateSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	settings, err := s.Settings(ctx)
	require.NoError(t, err)

	settings.SocietyName = "Amber Heights CHS"
	settings.BillingMethod = ledger.BillingVariable
	settings.SinkingFundMonthly = d("2500")
	settings.DueGraceDays = 15
	require.NoError(t, s.UpdateSettings(ctx, settings))

	got, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Amber Heights CHS", got.SocietyName)
	assert.Equal(t, ledger.BillingVariable, got.BillingMethod)
	assert.Equal(t, "2500.00", got.SinkingFundMonthly.StringFixed(2))
	assert.Equal(t, 15, got.DueGraceDays)
}

func TestUpdateSettingsUnknownAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	settings, err := s.Settings(ctx)
	require.NoError(t, err)
	settings.BankAccountCode = "9999"

	err = s.UpdateSettings(ctx, settings)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestUpdateSettingsInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	settings, err := s.Settings(ctx)
	require.NoError(t, err)
	settings.BillingMethod = "per_head"

	err = s.UpdateSettings(ctx, settings)
	assert.ErrorIs(t, err, ledger.ErrInvalidBillingMethod)
}
