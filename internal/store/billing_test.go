package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gharmitra/societyledger/internal/ledger"
)

func seedFlats(t *testing.T, s *Store) []ledger.Flat {
	t.Helper()
	ctx := context.Background()
	flats := []ledger.Flat{
		{Number: "A-101", OwnerName: "Deshpande", AreaSqft: d("800"), Occupants: 2},
		{Number: "A-102", OwnerName: "Iyer", AreaSqft: d("900"), Occupants: 3},
	}
	for i := range flats {
		require.NoError(t, s.CreateFlat(ctx, &flats[i]))
	}
	return flats
}

func TestFlatCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	flat := &ledger.Flat{Number: "B-204", OwnerName: "Shah", AreaSqft: d("1050"), Occupants: 4}
	require.NoError(t, s.CreateFlat(ctx, flat))
	require.NotEmpty(t, flat.ID)

	err := s.CreateFlat(ctx, &ledger.Flat{Number: "B-204", AreaSqft: d("900")})
	assert.ErrorIs(t, err, ledger.ErrDuplicateFlat)

	got, err := s.GetFlat(ctx, flat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shah", got.OwnerName)
	assert.Equal(t, "1050.00", got.AreaSqft.StringFixed(2))

	got.Occupants = 5
	require.NoError(t, s.UpdateFlat(ctx, got))
	got, err = s.GetFlat(ctx, flat.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Occupants)

	require.NoError(t, s.DeleteFlat(ctx, flat.ID))
	_, err = s.GetFlat(ctx, flat.ID)
	assert.ErrorIs(t, err, ledger.ErrFlatNotFound)
}

func TestWaterExpenseCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := &ledger.WaterExpense{
		Month: 5, Year: 2025,
		TankerCharges:     d("900"),
		GovernmentCharges: d("450"),
		OtherCharges:      d("150"),
	}
	require.NoError(t, s.CreateWaterExpense(ctx, w))

	listed, err := s.ListWaterExpenses(ctx, 5, 2025)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "1500.00", listed[0].Total().StringFixed(2))

	none, err := s.ListWaterExpenses(ctx, 6, 2025)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, s.DeleteWaterExpense(ctx, w.ID))
	err = s.DeleteWaterExpense(ctx, w.ID)
	assert.ErrorIs(t, err, ledger.ErrWaterExpenseNotFound)
}

func TestGenerateBillsSqftRate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedFlats(t, s)

	result, err := s.GenerateBills(ctx, 4, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalBillsGenerated)
	assert.Equal(t, "5100.00", result.TotalAmount.StringFixed(2))

	// Default settings: rate 3/sqft, 10 grace days.
	require.Len(t, result.Bills, 2)
	assert.Equal(t, "2400.00", result.Bills[0].Amount.StringFixed(2))
	assert.Equal(t, "2700.00", result.Bills[1].Amount.StringFixed(2))
	assert.Equal(t, day(2025, time.April, 11), result.Bills[0].DueDate)

	// One accrual entry: receivable debited, maintenance income credited.
	entries, err := s.ListJournalEntries(ctx, JournalFilter{Source: ledger.JournalBilling})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, day(2025, time.April, 30), entries[0].Date)
	require.Len(t, entries[0].Lines, 2)
	assert.Equal(t, "1030", entries[0].Lines[0].AccountCode)
	assert.Equal(t, "5100.00", entries[0].Lines[0].Debit.StringFixed(2))
	assert.Equal(t, "4010", entries[0].Lines[1].AccountCode)
	assert.Equal(t, "5100.00", entries[0].Lines[1].Credit.StringFixed(2))
}

func TestGenerateBillsBadAccrualAccountLeavesNoBills(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedFlats(t, s)

	// Corrupt the settings row directly; UpdateSettings would refuse a
	// missing account.
	_, err := s.writer.ExecContext(ctx,
		`UPDATE settings SET receivable_account_code = '9999' WHERE id = 1`)
	require.NoError(t, err)

	_, err = s.GenerateBills(ctx, 4, 2025)
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)

	bills, err := s.ListBills(ctx, 4, 2025, "")
	require.NoError(t, err)
	assert.Empty(t, bills, "failed generation must not persist bills")

	entries, err := s.ListJournalEntries(ctx, JournalFilter{Source: ledger.JournalBilling})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateBillsPeriodAlreadyBilled(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedFlats(t, s)

	_, err := s.GenerateBills(ctx, 4, 2025)
	require.NoError(t, err)

	_, err = s.GenerateBills(ctx, 4, 2025)
	assert.ErrorIs(t, err, ledger.ErrPeriodAlreadyBilled)
}

func TestGenerateBillsNoFlats(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GenerateBills(context.Background(), 4, 2025)
	assert.ErrorIs(t, err, ledger.ErrNoFlats)
}

func TestGenerateBillsVariable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedFlats(t, s)

	settings, err := s.Settings(ctx)
	require.NoError(t, err)
	settings.BillingMethod = ledger.BillingVariable
	settings.SinkingFundMonthly = d("1000")
	require.NoError(t, s.UpdateSettings(ctx, settings))

	require.NoError(t, s.CreateWaterExpense(ctx, &ledger.WaterExpense{
		Month: 5, Year: 2025, TankerCharges: d("1500"),
	}))
	// Fixed expense posted within the billing month.
	require.NoError(t, s.CreateTransaction(ctx, &ledger.Transaction{
		Type:        ledger.TransactionExpense,
		AccountCode: "5030",
		Amount:      d("2400"),
		Description: "Security agency",
		Date:        day(2025, time.May, 15),
		PaymentMode: ledger.PaymentBank,
	}))

	result, err := s.GenerateBills(ctx, 5, 2025)
	require.NoError(t, err)
	require.Len(t, result.Bills, 2)

	// Water 1500 over 5 occupants = 300/head; fixed 2400 and sinking
	// 1000 split across 2 flats.
	assert.Equal(t, "2300.00", result.Bills[0].Amount.StringFixed(2))
	assert.Equal(t, "2600.00", result.Bills[1].Amount.StringFixed(2))

	b := result.Bills[0].Breakdown
	assert.Equal(t, ledger.BillingVariable, b.Method)
	assert.Equal(t, "300.00", b.WaterRatePerOccupant.StringFixed(2))
	assert.Equal(t, "600.00", b.WaterCharge.StringFixed(2))
	assert.Equal(t, "1200.00", b.FixedExpenseShare.StringFixed(2))
	assert.Equal(t, "500.00", b.SinkingFundShare.StringFixed(2))
}

func TestListBills(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	flats := seedFlats(t, s)

	_, err := s.GenerateBills(ctx, 4, 2025)
	require.NoError(t, err)
	_, err = s.GenerateBills(ctx, 5, 2025)
	require.NoError(t, err)

	all, err := s.ListBills(ctx, 0, 0, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	april, err := s.ListBills(ctx, 4, 2025, "")
	require.NoError(t, err)
	require.Len(t, april, 2)
	assert.Equal(t, "A-101", april[0].FlatNumber)
	assert.Equal(t, ledger.BillingSqftRate, april[0].Breakdown.Method)

	byFlat, err := s.ListBills(ctx, 0, 0, flats[0].ID)
	require.NoError(t, err)
	assert.Len(t, byFlat, 2)
}

func TestDeleteFlatWithBills(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	flats := seedFlats(t, s)

	_, err := s.GenerateBills(ctx, 4, 2025)
	require.NoError(t, err)

	err = s.DeleteFlat(ctx, flats[0].ID)
	assert.Error(t, err)
}

func TestDeleteBillsAndRegenerate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedFlats(t, s)

	_, err := s.GenerateBills(ctx, 4, 2025)
	require.NoError(t, err)

	deleted, err := s.DeleteBills(ctx, 4, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	bills, err := s.ListBills(ctx, 4, 2025, "")
	require.NoError(t, err)
	assert.Empty(t, bills)

	// The accrual entry goes with the bills.
	entries, err := s.ListJournalEntries(ctx, JournalFilter{Source: ledger.JournalBilling})
	require.NoError(t, err)
	assert.Empty(t, entries)

	result, err := s.GenerateBills(ctx, 4, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalBillsGenerated)
}

func TestGenerateBillsClosedYear(t *testing.T) {
	s, _, _ := closedYearFixture(t)
	ctx := context.Background()
	seedFlats(t, s)

	_, err := s.GenerateBills(ctx, 7, 2025)
	assert.ErrorIs(t, err, ledger.ErrYearProvisional)
}
