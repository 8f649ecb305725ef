package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartAccounts() []Account {
	accounts := make([]Account, 0, len(DefaultChart))
	for _, e := range DefaultChart {
		accounts = append(accounts, Account{
			Code:           e.Code,
			Name:           e.Name,
			Type:           e.Type,
			SubType:        e.SubType,
			IsFixedExpense: e.IsFixedExpense,
		})
	}
	return accounts
}

// testLines builds a small but representative ledger: a cash maintenance
// collection, a bank security payment, and an accrual journal entry.
func testLines() []PostingLine {
	settings := DefaultSettings()

	collection := Transaction{
		Type:        TransactionIncome,
		AccountCode: "4010",
		FlatID:      "f1",
		Amount:      d("5000"),
		Description: "Maintenance collection A-101",
		Date:        time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		PaymentMode: PaymentCash,
	}
	security := Transaction{
		Type:        TransactionExpense,
		AccountCode: "5030",
		Amount:      d("2000"),
		Description: "Security agency invoice",
		Date:        time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
		PaymentMode: PaymentBank,
	}
	accrual := JournalEntry{
		EntryNumber: "JE-0001",
		Date:        time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		Description: "Maintenance bills 2025-04",
		Source:      JournalBilling,
		Lines: []JournalLine{
			{AccountCode: "1030", Debit: d("3000")},
			{AccountCode: "4010", Credit: d("3000")},
		},
	}

	var lines []PostingLine
	lines = append(lines, collection.PostingLines(settings.CashAccountCode, settings.BankAccountCode)...)
	lines = append(lines, security.PostingLines(settings.CashAccountCode, settings.BankAccountCode)...)
	lines = append(lines, accrual.PostingLines()...)
	return lines
}

func asOn() time.Time { return time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC) }

func TestTransactionPostingLinesBalance(t *testing.T) {
	lines := testLines()
	total := d("0")
	for _, l := range lines {
		total = total.Add(l.Debit).Sub(l.Credit)
	}
	assert.True(t, total.IsZero(), "every expansion must be balanced, got %s", total)
}

func TestDeriveTrialBalance(t *testing.T) {
	tb := DeriveTrialBalance(chartAccounts(), testLines(), asOn(), DefaultTolerance())

	assert.Equal(t, "2025-06-30", tb.AsOnDate)
	assert.Equal(t, "10000.00", tb.TotalDebit.StringFixed(2))
	assert.Equal(t, "10000.00", tb.TotalCredit.StringFixed(2))
	assert.True(t, tb.IsBalanced)
	assert.True(t, tb.Difference.IsZero())

	byCode := map[string]TrialBalanceLine{}
	for _, l := range tb.Lines {
		byCode[l.AccountCode] = l
	}
	assert.Equal(t, "5000.00", byCode["1010"].Debit.StringFixed(2))
	assert.Equal(t, "2000.00", byCode["1020"].Credit.StringFixed(2), "overdrawn bank shows on the credit side")
	assert.Equal(t, "3000.00", byCode["1030"].Debit.StringFixed(2))
	assert.Equal(t, "8000.00", byCode["4010"].Credit.StringFixed(2))
	assert.Equal(t, "2000.00", byCode["5030"].Debit.StringFixed(2))

	// Zero-balance accounts are omitted.
	_, ok := byCode["2020"]
	assert.False(t, ok)
}

func TestTrialBalanceExposesImbalance(t *testing.T) {
	lines := testLines()
	// A lone debit with no matching credit, as if data were corrupted.
	lines = append(lines, PostingLine{
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		AccountCode: "5050",
		Debit:       d("750"),
		Source:      SourceJournal,
	})

	tb := DeriveTrialBalance(chartAccounts(), lines, asOn(), DefaultTolerance())
	assert.False(t, tb.IsBalanced)
	assert.Equal(t, "750.00", tb.Difference.StringFixed(2), "difference is surfaced, never clamped")
}

func TestDeriveBalanceSheet(t *testing.T) {
	bs := DeriveBalanceSheet(chartAccounts(), testLines(), asOn(), DefaultTolerance())

	assert.Equal(t, "6000.00", bs.TotalAssets.StringFixed(2))
	assert.Equal(t, "0.00", bs.TotalLiabilities.StringFixed(2))
	assert.Equal(t, "6000.00", bs.Surplus.StringFixed(2))
	assert.Equal(t, "6000.00", bs.TotalCapital.StringFixed(2))
	assert.True(t, bs.IsBalanced)
	assert.True(t, bs.Difference.IsZero())

	// 1050 has no postings so the fixed asset section stays empty.
	assert.Empty(t, bs.FixedAssets)
	require.NotEmpty(t, bs.CurrentAssets)
}

func TestDeriveIncomeExpenditure(t *testing.T) {
	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	ie := DeriveIncomeExpenditure(chartAccounts(), testLines(), from, to)

	require.Len(t, ie.Income, 1)
	assert.Equal(t, "4010", ie.Income[0].AccountCode)
	assert.Equal(t, "8000.00", ie.Income[0].Amount.StringFixed(2), "accrual basis includes billed income")
	require.Len(t, ie.Expenditure, 1)
	assert.Equal(t, "2000.00", ie.TotalExpenditure.StringFixed(2))
	assert.Equal(t, "6000.00", ie.Surplus.StringFixed(2))
}

func TestDeriveReceiptsPaymentsIsCashBasis(t *testing.T) {
	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	settings := DefaultSettings()
	rp := DeriveReceiptsPayments(chartAccounts(), testLines(), from, to,
		settings.CashAccountCode, settings.BankAccountCode)

	assert.Equal(t, "0.00", rp.OpeningBalance.StringFixed(2))
	require.Len(t, rp.Receipts, 1)
	assert.Equal(t, "5000.00", rp.TotalReceipts.StringFixed(2), "billed-not-collected income is excluded")
	require.Len(t, rp.Payments, 1)
	assert.Equal(t, "2000.00", rp.TotalPayments.StringFixed(2))
	assert.Equal(t, "3000.00", rp.ClosingBalance.StringFixed(2))
}

func TestDeriveGeneralLedgerRunningBalance(t *testing.T) {
	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	cash := Account{Code: "1010", Name: "Cash in Hand", Type: AccountTypeAsset}

	gl := DeriveGeneralLedger(cash, testLines(), from, asOn())
	assert.Equal(t, "0.00", gl.OpeningBalance.StringFixed(2))
	require.Len(t, gl.Entries, 1)
	assert.Equal(t, "5000.00", gl.Entries[0].Balance.StringFixed(2))
	assert.Equal(t, "5000.00", gl.ClosingBalance.StringFixed(2))

	income := Account{Code: "4010", Name: "Maintenance Income", Type: AccountTypeIncome}
	gl = DeriveGeneralLedger(income, testLines(), from, asOn())
	require.Len(t, gl.Entries, 2)
	assert.Equal(t, "8000.00", gl.ClosingBalance.StringFixed(2), "credit-normal balance runs positive")
}

func TestGeneralLedgerIncludesOpeningBalance(t *testing.T) {
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	cash := Account{Code: "1010", Name: "Cash in Hand", Type: AccountTypeAsset, OpeningBalance: d("1200")}

	gl := DeriveGeneralLedger(cash, testLines(), from, asOn())
	// The April collection falls before the window, so it folds into the
	// opening balance together with the account's own opening amount.
	assert.Equal(t, "6200.00", gl.OpeningBalance.StringFixed(2))
	assert.Empty(t, gl.Entries)
	assert.Equal(t, "6200.00", gl.ClosingBalance.StringFixed(2))
}

func TestReportsAreIdempotent(t *testing.T) {
	accounts := chartAccounts()
	lines := testLines()
	tol := DefaultTolerance()

	first := DeriveTrialBalance(accounts, lines, asOn(), tol)
	second := DeriveTrialBalance(accounts, lines, asOn(), tol)
	assert.Equal(t, first, second)

	bs1 := DeriveBalanceSheet(accounts, lines, asOn(), tol)
	bs2 := DeriveBalanceSheet(accounts, lines, asOn(), tol)
	assert.Equal(t, bs1, bs2)
}

func TestDeriveMemberDues(t *testing.T) {
	flats := []Flat{
		{ID: "f1", Number: "A-101", OwnerName: "Joshi"},
		{ID: "f2", Number: "A-102", OwnerName: "Rao"},
		{ID: "f3", Number: "B-101", OwnerName: "Iyer"},
	}
	bills := []MaintenanceBill{
		{ID: "b1", FlatID: "f1", Month: 4, Year: 2025, Amount: d("3000"), DueDate: time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC)},
		{ID: "b2", FlatID: "f2", Month: 4, Year: 2025, Amount: d("2000"), DueDate: time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC)},
		{ID: "b3", FlatID: "f3", Month: 6, Year: 2025, Amount: d("2500"), DueDate: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)},
	}
	payments := []Transaction{
		{FlatID: "f1", Amount: d("5000"), Date: time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)},
	}

	report := DeriveMemberDues(flats, bills, payments, asOn())
	require.Len(t, report.Rows, 3)

	byFlat := map[string]MemberDuesRow{}
	for _, r := range report.Rows {
		byFlat[r.FlatNumber] = r
	}

	assert.Equal(t, DuesClear, byFlat["A-101"].Status)
	assert.Equal(t, "-2000.00", byFlat["A-101"].Balance.StringFixed(2), "advance payments show as negative balance")

	assert.Equal(t, DuesOverdue, byFlat["A-102"].Status, "unpaid bill past due date")
	assert.Equal(t, "2000.00", byFlat["A-102"].Balance.StringFixed(2))

	assert.Equal(t, DuesDue, byFlat["B-101"].Status, "unpaid bill whose due date has not passed")

	assert.Equal(t, "4500.00", report.TotalDue.StringFixed(2))
}

func TestDeriveMemberDuesOldestFirstSettlement(t *testing.T) {
	flats := []Flat{{ID: "f1", Number: "A-101"}}
	bills := []MaintenanceBill{
		{ID: "b1", FlatID: "f1", Month: 4, Year: 2025, Amount: d("3000"), DueDate: time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC)},
		{ID: "b2", FlatID: "f1", Month: 6, Year: 2025, Amount: d("3000"), DueDate: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)},
	}
	payments := []Transaction{
		{FlatID: "f1", Amount: d("3000"), Date: time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)},
	}

	report := DeriveMemberDues(flats, bills, payments, asOn())
	require.Len(t, report.Rows, 1)
	// The payment settles the April bill; the remaining June bill is not
	// yet past due, so the flat is due rather than overdue.
	assert.Equal(t, DuesDue, report.Rows[0].Status)
	assert.Equal(t, "3000.00", report.Rows[0].Balance.StringFixed(2))
}

func TestDeriveMemberLedger(t *testing.T) {
	flat := Flat{ID: "f1", Number: "A-101"}
	bills := []MaintenanceBill{
		{ID: "b1", FlatID: "f1", Month: 4, Year: 2025, Amount: d("3000"), DueDate: time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC)},
		{ID: "b2", FlatID: "f1", Month: 5, Year: 2025, Amount: d("3000"), DueDate: time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC)},
	}
	payments := []Transaction{
		{FlatID: "f1", Amount: d("3000"), Description: "April maintenance", DocumentNumber: "RCPT-12",
			Date: time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)},
	}

	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	ml := DeriveMemberLedger(flat, bills, payments, from, asOn())

	require.Len(t, ml.Entries, 3)
	assert.Equal(t, "3000.00", ml.Entries[0].Balance.StringFixed(2))
	assert.Equal(t, "0.00", ml.Entries[1].Balance.StringFixed(2))
	assert.Equal(t, "RCPT-12", ml.Entries[1].Reference)
	assert.Equal(t, "3000.00", ml.Balance.StringFixed(2))
	assert.Equal(t, "6000.00", ml.TotalBilled.StringFixed(2))
	assert.Equal(t, "3000.00", ml.TotalPaid.StringFixed(2))
}

func TestDeriveMemberLedgerFoldsHistoryIntoOpening(t *testing.T) {
	flat := Flat{ID: "f1", Number: "A-101"}
	bills := []MaintenanceBill{
		{ID: "b1", FlatID: "f1", Month: 3, Year: 2025, Amount: d("3000"), DueDate: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)},
		{ID: "b2", FlatID: "f1", Month: 5, Year: 2025, Amount: d("3000"), DueDate: time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC)},
	}

	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	ml := DeriveMemberLedger(flat, bills, nil, from, asOn())

	require.Len(t, ml.Entries, 1)
	// March's bill precedes the window but still counts toward the
	// running balance.
	assert.Equal(t, "6000.00", ml.Entries[0].Balance.StringFixed(2))
	assert.Equal(t, "6000.00", ml.Balance.StringFixed(2))
}
