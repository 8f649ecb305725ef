package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gharmitra/societyledger/internal/ledger"
	"github.com/gharmitra/societyledger/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), ledger.DefaultTolerance())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, ":0")
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

func TestAccountsAPI(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/accounts", map[string]any{
		"code": "5070", "name": "Garden Upkeep", "type": "expense", "is_fixed_expense": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, srv, http.MethodPost, "/api/v1/accounts", map[string]any{
		"code": "5070", "name": "Garden Upkeep", "type": "expense",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/accounts/5070", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var acct ledger.Account
	decode(t, w, &acct)
	assert.Equal(t, "Garden Upkeep", acct.Name)
	assert.True(t, acct.IsFixedExpense)

	w = do(t, srv, http.MethodGet, "/api/v1/accounts/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodPatch, "/api/v1/accounts/5070", map[string]any{
		"name": "Garden & Landscaping",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &acct)
	assert.Equal(t, "Garden & Landscaping", acct.Name)

	w = do(t, srv, http.MethodDelete, "/api/v1/accounts/5070", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, srv, http.MethodDelete, "/api/v1/accounts/1010", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "settings cash account must not be deletable")

	w = do(t, srv, http.MethodGet, "/api/v1/accounts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var accounts []ledger.Account
	decode(t, w, &accounts)
	assert.Len(t, accounts, len(ledger.DefaultChart))
}

func TestAccountBalanceEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/transactions", map[string]any{
		"type": "income", "account_code": "4010", "amount": "1500",
		"description": "April maintenance", "date": "2025-04-05", "payment_mode": "cash",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, srv, http.MethodGet, "/api/v1/accounts/1010/balance?as_on_date=2025-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var acct ledger.Account
	decode(t, w, &acct)
	assert.Equal(t, "1500.00", acct.CurrentBalance.StringFixed(2))
}

func TestTransactionsAPI(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/transactions", map[string]any{
		"type": "income", "account_code": "4010", "amount": "2400",
		"description": "Maintenance receipt", "date": "2025-04-10",
		"payment_mode": "cash", "document_number": "RCPT-42",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var txn ledger.Transaction
	decode(t, w, &txn)
	require.NotEmpty(t, txn.ID)
	assert.Equal(t, "RCPT-42", txn.DocumentNumber)

	// Malformed and invalid payloads.
	w = do(t, srv, http.MethodPost, "/api/v1/transactions", map[string]any{
		"type": "income", "account_code": "4010", "amount": "100",
		"description": "Bad date", "date": "10-04-2025", "payment_mode": "cash",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/transactions", map[string]any{
		"type": "income", "account_code": "4010", "amount": "0",
		"description": "Zero", "date": "2025-04-10", "payment_mode": "cash",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/transactions?type=income", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var txns []ledger.Transaction
	decode(t, w, &txns)
	assert.Len(t, txns, 1)

	w = do(t, srv, http.MethodDelete, "/api/v1/transactions/"+txn.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/transactions/"+txn.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJournalEntriesAPI(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/journal-entries", map[string]any{
		"date":        "2025-06-30",
		"description": "Transfer cash to bank",
		"lines": []map[string]any{
			{"account_code": "1020", "debit": "5000"},
			{"account_code": "1010", "credit": "5000"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var entry ledger.JournalEntry
	decode(t, w, &entry)
	assert.Equal(t, "JE-0001", entry.EntryNumber)
	assert.Equal(t, ledger.JournalManual, entry.Source)

	w = do(t, srv, http.MethodPost, "/api/v1/journal-entries", map[string]any{
		"date":        "2025-06-30",
		"description": "Lopsided",
		"lines": []map[string]any{
			{"account_code": "1020", "debit": "500"},
			{"account_code": "1010", "credit": "300"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/journal-entries/"+entry.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &entry)
	assert.Len(t, entry.Lines, 2)
}

func TestYearLifecycleAPI(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/financial-years", map[string]any{
		"year_name": "FY 2025-26", "start_date": "2025-04-01", "end_date": "2026-03-31",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var year ledger.FinancialYear
	decode(t, w, &year)
	require.NotEmpty(t, year.ID)

	w = do(t, srv, http.MethodPost, "/api/v1/financial-years/"+year.ID+"/activate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/transactions", map[string]any{
		"type": "income", "account_code": "4010", "amount": "5000",
		"description": "Maintenance receipts", "date": "2025-05-10", "payment_mode": "cash",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, srv, http.MethodPost, "/api/v1/financial-years/"+year.ID+"/provisional-close", map[string]any{
		"closing_date": "2026-03-31", "notes": "year end", "acting_user": "treasurer",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary ledger.YearEndClosingSummary
	decode(t, w, &summary)
	assert.Equal(t, "5000.00", summary.CashBalance.StringFixed(2))
	assert.Equal(t, "5000.00", summary.TotalIncome.StringFixed(2))

	// Normal postings are rejected while provisionally closed.
	w = do(t, srv, http.MethodPost, "/api/v1/transactions", map[string]any{
		"type": "income", "account_code": "4010", "amount": "100",
		"description": "Late receipt", "date": "2025-07-01", "payment_mode": "cash",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/financial-years/"+year.ID+"/adjustment-entry", map[string]any{
		"effective_date":  "2026-03-31",
		"adjustment_type": "depreciation",
		"description":     "Annual depreciation on pumps",
		"reason":          "Auditor requirement",
		"entries": []map[string]any{
			{"account_code": "5060", "entry_type": "debit", "amount": "500"},
			{"account_code": "1050", "entry_type": "credit", "amount": "500"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var adj store.AdjustmentResult
	decode(t, w, &adj)
	assert.Equal(t, "ADJ-0001", adj.AdjustmentNumber)
	assert.Len(t, adj.AffectedAccounts, 2)

	w = do(t, srv, http.MethodPost, "/api/v1/financial-years/"+year.ID+"/final-close", map[string]any{
		"auditor_name": "S. Kulkarni", "audit_completion_date": "2026-06-10",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/financial-years/"+year.ID+"/final-close", map[string]any{
		"auditor_name":              "S. Kulkarni",
		"audit_completion_date":     "2026-06-10",
		"final_statements_approved": true,
		"acting_user":               "chairman",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "incomplete audit metadata")

	w = do(t, srv, http.MethodPost, "/api/v1/financial-years/"+year.ID+"/final-close", map[string]any{
		"auditor_name":              "S. Kulkarni",
		"auditor_firm":              "Kulkarni & Associates",
		"audit_report_file_url":     "https://files.example.org/audit-fy-2025-26.pdf",
		"audit_completion_date":     "2026-06-10",
		"final_statements_approved": true,
		"acting_user":               "chairman",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &year)
	assert.Equal(t, ledger.YearFinalClose, year.Status)

	w = do(t, srv, http.MethodPost, "/api/v1/financial-years/"+year.ID+"/reopen", map[string]any{
		"acting_user": "secretary", "notes": "missed invoice batch",
	})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &year)
	assert.Equal(t, ledger.YearOpen, year.Status)

	w = do(t, srv, http.MethodGet, "/api/v1/financial-years/"+year.ID+"/audit-log", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var events []ledger.YearAuditEvent
	decode(t, w, &events)
	assert.Len(t, events, 3)
}

func TestOpeningBalancesAPI(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/financial-years", map[string]any{
		"year_name": "FY 2025-26", "start_date": "2025-04-01", "end_date": "2026-03-31",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var year ledger.FinancialYear
	decode(t, w, &year)

	w = do(t, srv, http.MethodPost, "/api/v1/transactions", map[string]any{
		"type": "income", "account_code": "4010", "amount": "5000",
		"description": "Maintenance receipts", "date": "2025-05-10", "payment_mode": "bank",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/financial-years/"+year.ID+"/provisional-close", map[string]any{
		"closing_date": "2026-03-31", "acting_user": "treasurer",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, srv, http.MethodGet, "/api/v1/financial-years", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var years []ledger.FinancialYear
	decode(t, w, &years)
	require.Len(t, years, 2)
	next := years[1]

	w = do(t, srv, http.MethodGet, "/api/v1/opening-balances/year/"+next.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list store.OpeningBalanceList
	decode(t, w, &list)
	require.Len(t, list.Balances, 2)
	assert.True(t, list.Summary.IsBalanced)

	target := list.Balances[0]

	w = do(t, srv, http.MethodPut, "/api/v1/opening-balances/"+target.ID, map[string]any{
		"opening_balance": "5200", "balance_type": "debit",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "override without a reason")

	w = do(t, srv, http.MethodPut, "/api/v1/opening-balances/"+target.ID, map[string]any{
		"opening_balance": "5200", "balance_type": "debit", "reason": "verified against bank statement",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ob ledger.OpeningBalance
	decode(t, w, &ob)
	assert.True(t, ob.ManualEntry)
	assert.Equal(t, "5200.00", ob.Amount.StringFixed(2))

	w = do(t, srv, http.MethodPost, "/api/v1/opening-balances/"+target.ID+"/finalize", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/opening-balances/"+target.ID+"/finalize", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/opening-balances/year/"+next.ID+"/finalize-all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.True(t, list.Summary.AllFinalized)
}

func TestReportsAPI(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/flats", map[string]any{
		"number": "A-101", "owner_name": "Deshpande", "area_sqft": "800", "occupants": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var flat ledger.Flat
	decode(t, w, &flat)

	w = do(t, srv, http.MethodPost, "/api/v1/maintenance/generate-bills", map[string]any{
		"month": 4, "year": 2025,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Receipt against the billed receivable, tagged with the flat.
	w = do(t, srv, http.MethodPost, "/api/v1/transactions", map[string]any{
		"type": "income", "account_code": "1030", "flat_id": flat.ID, "amount": "2400",
		"description": "April maintenance A-101", "date": "2025-05-03", "payment_mode": "cash",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/reports/trial-balance?as_on_date=2025-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tb ledger.TrialBalanceReport
	decode(t, w, &tb)
	assert.True(t, tb.IsBalanced)

	w = do(t, srv, http.MethodGet, "/api/v1/reports/balance-sheet?as_on_date=2025-06-30", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/reports/income-and-expenditure?from_date=2025-04-01&to_date=2025-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ie ledger.IncomeExpenditureReport
	decode(t, w, &ie)
	// Accrual basis: the billed amount counts; the receipt only settles
	// the receivable.
	assert.Equal(t, "2400.00", ie.TotalIncome.StringFixed(2))

	w = do(t, srv, http.MethodGet, "/api/v1/reports/receipts-and-payments?from_date=2025-04-01&to_date=2025-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rp ledger.ReceiptsPaymentsReport
	decode(t, w, &rp)
	assert.Equal(t, "2400.00", rp.TotalReceipts.StringFixed(2))

	w = do(t, srv, http.MethodGet, "/api/v1/reports/general-ledger?from_date=2025-04-01&to_date=2025-06-30", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "account_code is required")

	w = do(t, srv, http.MethodGet, "/api/v1/reports/general-ledger?account_code=1010&from_date=2025-04-01&to_date=2025-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var gl ledger.GeneralLedgerReport
	decode(t, w, &gl)
	assert.Equal(t, "1010", gl.AccountCode)
	assert.Len(t, gl.Entries, 1)

	w = do(t, srv, http.MethodGet, "/api/v1/reports/cash-book?from_date=2025-04-01&to_date=2025-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &gl)
	assert.Equal(t, "2400.00", gl.ClosingBalance.StringFixed(2))

	w = do(t, srv, http.MethodGet, "/api/v1/reports/bank-book?from_date=2025-04-01&to_date=2025-06-30", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/reports/member-dues?as_on_date=2025-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dues ledger.MemberDuesReport
	decode(t, w, &dues)
	require.Len(t, dues.Rows, 1)
	assert.Equal(t, ledger.DuesClear, dues.Rows[0].Status)

	w = do(t, srv, http.MethodGet, "/api/v1/reports/member-ledger/"+flat.ID+"?from_date=2025-04-01&to_date=2025-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ml ledger.MemberLedgerReport
	decode(t, w, &ml)
	assert.Len(t, ml.Entries, 2)
}

func TestBillingAPI(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/flats", map[string]any{
		"number": "A-101", "area_sqft": "800", "occupants": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, srv, http.MethodPost, "/api/v1/flats", map[string]any{
		"number": "A-102", "area_sqft": "900", "occupants": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/maintenance/generate-bills", map[string]any{
		"month": 4, "year": 2025,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result ledger.BillGenerationResult
	decode(t, w, &result)
	assert.Equal(t, 2, result.TotalBillsGenerated)
	assert.Equal(t, "5100.00", result.TotalAmount.StringFixed(2))

	w = do(t, srv, http.MethodPost, "/api/v1/maintenance/generate-bills", map[string]any{
		"month": 4, "year": 2025,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/maintenance/bills?month=4&year=2025", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bills []ledger.MaintenanceBill
	decode(t, w, &bills)
	assert.Len(t, bills, 2)

	w = do(t, srv, http.MethodDelete, "/api/v1/maintenance/bills", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "month and year are required")

	w = do(t, srv, http.MethodDelete, "/api/v1/maintenance/bills?month=4&year=2025", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var deleted map[string]int
	decode(t, w, &deleted)
	assert.Equal(t, 2, deleted["deleted"])
}

func TestWaterExpensesAPI(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/water-expenses", map[string]any{
		"month": 5, "year": 2025, "tanker_charges": "900", "government_charges": "450",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var we ledger.WaterExpense
	decode(t, w, &we)

	w = do(t, srv, http.MethodGet, "/api/v1/water-expenses?month=5&year=2025", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var expenses []ledger.WaterExpense
	decode(t, w, &expenses)
	assert.Len(t, expenses, 1)

	w = do(t, srv, http.MethodDelete, "/api/v1/water-expenses/"+we.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, srv, http.MethodDelete, "/api/v1/water-expenses/"+we.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettingsAPI(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var settings ledger.Settings
	decode(t, w, &settings)
	assert.Equal(t, ledger.BillingSqftRate, settings.BillingMethod)

	settings.BillingMethod = "per_head"
	w = do(t, srv, http.MethodPut, "/api/v1/settings", settings)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	settings.BillingMethod = ledger.BillingVariable
	settings.SocietyName = "Amber Heights CHS"
	w = do(t, srv, http.MethodPut, "/api/v1/settings", settings)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, srv, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &settings)
	assert.Equal(t, "Amber Heights CHS", settings.SocietyName)
	assert.Equal(t, ledger.BillingVariable, settings.BillingMethod)
}
