package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gharmitra/societyledger/internal/ledger"
	"github.com/gharmitra/societyledger/internal/store"
)

const dateFormat = "2006-01-02"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Accounts ---

func (c *Client) CreateAccount(ctx context.Context, acct *ledger.Account) (*ledger.Account, error) {
	body := map[string]any{
		"code":             acct.Code,
		"name":             acct.Name,
		"type":             acct.Type,
		"sub_type":         acct.SubType,
		"is_fixed_expense": acct.IsFixedExpense,
	}
	var result ledger.Account
	if err := c.post(ctx, "/api/v1/accounts", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListAccounts(ctx context.Context, accountType string) ([]ledger.Account, error) {
	params := url.Values{}
	if accountType != "" {
		params.Set("type", accountType)
	}
	var result []ledger.Account
	if err := c.get(ctx, "/api/v1/accounts?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetAccount(ctx context.Context, code string) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(code), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetAccountBalance(ctx context.Context, code string, asOn time.Time) (*ledger.Account, error) {
	params := url.Values{}
	if !asOn.IsZero() {
		params.Set("as_on_date", asOn.Format(dateFormat))
	}
	var result ledger.Account
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(code)+"/balance?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteAccount(ctx context.Context, code string) error {
	return c.del(ctx, "/api/v1/accounts/"+url.PathEscape(code))
}

// --- Transactions ---

func (c *Client) CreateTransaction(ctx context.Context, txn *ledger.Transaction) (*ledger.Transaction, error) {
	body := map[string]any{
		"type":            txn.Type,
		"account_code":    txn.AccountCode,
		"flat_id":         txn.FlatID,
		"amount":          txn.Amount,
		"description":     txn.Description,
		"date":            txn.Date.Format(dateFormat),
		"document_number": txn.DocumentNumber,
		"payment_mode":    txn.PaymentMode,
	}
	var result ledger.Transaction
	if err := c.post(ctx, "/api/v1/transactions", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListTransactions(ctx context.Context, accountCode, flatID string) ([]ledger.Transaction, error) {
	params := url.Values{}
	if accountCode != "" {
		params.Set("account_code", accountCode)
	}
	if flatID != "" {
		params.Set("flat_id", flatID)
	}
	var result []ledger.Transaction
	if err := c.get(ctx, "/api/v1/transactions?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*ledger.Transaction, error) {
	var result ledger.Transaction
	if err := c.get(ctx, "/api/v1/transactions/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/transactions/"+url.PathEscape(id))
}

// --- Journal entries ---

func (c *Client) CreateJournalEntry(ctx context.Context, entry *ledger.JournalEntry) (*ledger.JournalEntry, error) {
	lines := make([]map[string]any, len(entry.Lines))
	for i, l := range entry.Lines {
		lines[i] = map[string]any{
			"account_code": l.AccountCode,
			"debit":        l.Debit,
			"credit":       l.Credit,
			"description":  l.Description,
		}
	}
	body := map[string]any{
		"date":        entry.Date.Format(dateFormat),
		"description": entry.Description,
		"lines":       lines,
	}
	var result ledger.JournalEntry
	if err := c.post(ctx, "/api/v1/journal-entries", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListJournalEntries(ctx context.Context, source string) ([]ledger.JournalEntry, error) {
	params := url.Values{}
	if source != "" {
		params.Set("source", source)
	}
	var result []ledger.JournalEntry
	if err := c.get(ctx, "/api/v1/journal-entries?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// --- Financial years ---

func (c *Client) CreateYear(ctx context.Context, year *ledger.FinancialYear) (*ledger.FinancialYear, error) {
	body := map[string]any{
		"year_name":        year.YearName,
		"start_date":       year.StartDate.Format(dateFormat),
		"end_date":         year.EndDate.Format(dateFormat),
		"previous_year_id": year.PreviousYearID,
	}
	var result ledger.FinancialYear
	if err := c.post(ctx, "/api/v1/financial-years", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListYears(ctx context.Context) ([]ledger.FinancialYear, error) {
	var result []ledger.FinancialYear
	if err := c.get(ctx, "/api/v1/financial-years", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetYear(ctx context.Context, id string) (*ledger.FinancialYear, error) {
	var result ledger.FinancialYear
	if err := c.get(ctx, "/api/v1/financial-years/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ActivateYear(ctx context.Context, id string) (*ledger.FinancialYear, error) {
	var result ledger.FinancialYear
	if err := c.post(ctx, "/api/v1/financial-years/"+url.PathEscape(id)+"/activate", map[string]any{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ProvisionalClose(ctx context.Context, id string, closingDate time.Time, notes, actor string) (*ledger.YearEndClosingSummary, error) {
	body := map[string]any{
		"notes":       notes,
		"acting_user": actor,
	}
	if !closingDate.IsZero() {
		body["closing_date"] = closingDate.Format(dateFormat)
	}
	var result ledger.YearEndClosingSummary
	if err := c.post(ctx, "/api/v1/financial-years/"+url.PathEscape(id)+"/provisional-close", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PostAdjustment(ctx context.Context, id string, in *ledger.AdjustmentInput) (*store.AdjustmentResult, error) {
	entries := make([]map[string]any, len(in.Entries))
	for i, e := range in.Entries {
		entries[i] = map[string]any{
			"account_code": e.AccountCode,
			"entry_type":   e.Side,
			"amount":       e.Amount,
		}
	}
	body := map[string]any{
		"effective_date":    in.EffectiveDate.Format(dateFormat),
		"adjustment_type":   in.Type,
		"description":       in.Description,
		"reason":            in.Reason,
		"auditor_reference": in.AuditorReference,
		"entries":           entries,
	}
	var result store.AdjustmentResult
	if err := c.post(ctx, "/api/v1/financial-years/"+url.PathEscape(id)+"/adjustment-entry", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) FinalClose(ctx context.Context, id string, in ledger.FinalCloseInput, actor string) (*ledger.FinancialYear, error) {
	body := map[string]any{
		"auditor_name":              in.AuditorName,
		"auditor_firm":              in.AuditorFirm,
		"audit_report_file_url":     in.AuditReportFileURL,
		"final_statements_approved": in.FinalStatementsApproved,
		"notes":                     in.Notes,
		"acting_user":               actor,
	}
	if !in.AuditCompletionDate.IsZero() {
		body["audit_completion_date"] = in.AuditCompletionDate.Format(dateFormat)
	}
	if !in.CommitteeApprovalDate.IsZero() {
		body["committee_approval_date"] = in.CommitteeApprovalDate.Format(dateFormat)
	}
	var result ledger.FinancialYear
	if err := c.post(ctx, "/api/v1/financial-years/"+url.PathEscape(id)+"/final-close", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReopenYear(ctx context.Context, id, actor, notes string) (*ledger.FinancialYear, error) {
	body := map[string]any{"acting_user": actor, "notes": notes}
	var result ledger.FinancialYear
	if err := c.post(ctx, "/api/v1/financial-years/"+url.PathEscape(id)+"/reopen", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) YearAuditLog(ctx context.Context, id string) ([]ledger.YearAuditEvent, error) {
	var result []ledger.YearAuditEvent
	if err := c.get(ctx, "/api/v1/financial-years/"+url.PathEscape(id)+"/audit-log", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// --- Opening balances ---

func (c *Client) ListOpeningBalances(ctx context.Context, yearID string) (*store.OpeningBalanceList, error) {
	var result store.OpeningBalanceList
	if err := c.get(ctx, "/api/v1/opening-balances/year/"+url.PathEscape(yearID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) OverrideOpeningBalance(ctx context.Context, id string, amount decimal.Decimal, side ledger.Side, reason string) (*ledger.OpeningBalance, error) {
	body := map[string]any{
		"opening_balance": amount,
		"balance_type":    side,
		"reason":          reason,
	}
	var result ledger.OpeningBalance
	if err := c.put(ctx, "/api/v1/opening-balances/"+url.PathEscape(id), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) FinalizeOpeningBalance(ctx context.Context, id string) (*ledger.OpeningBalance, error) {
	var result ledger.OpeningBalance
	if err := c.post(ctx, "/api/v1/opening-balances/"+url.PathEscape(id)+"/finalize", map[string]any{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) FinalizeAllOpeningBalances(ctx context.Context, yearID string) (*store.OpeningBalanceList, error) {
	var result store.OpeningBalanceList
	if err := c.post(ctx, "/api/v1/opening-balances/year/"+url.PathEscape(yearID)+"/finalize-all", map[string]any{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Reports ---

func (c *Client) TrialBalance(ctx context.Context, asOn time.Time) (*ledger.TrialBalanceReport, error) {
	var result ledger.TrialBalanceReport
	if err := c.get(ctx, "/api/v1/reports/trial-balance?"+asOnParams(asOn), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) BalanceSheet(ctx context.Context, asOn time.Time) (*ledger.BalanceSheetReport, error) {
	var result ledger.BalanceSheetReport
	if err := c.get(ctx, "/api/v1/reports/balance-sheet?"+asOnParams(asOn), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) IncomeExpenditure(ctx context.Context, from, to time.Time) (*ledger.IncomeExpenditureReport, error) {
	var result ledger.IncomeExpenditureReport
	if err := c.get(ctx, "/api/v1/reports/income-and-expenditure?"+rangeParams(from, to), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReceiptsPayments(ctx context.Context, from, to time.Time) (*ledger.ReceiptsPaymentsReport, error) {
	var result ledger.ReceiptsPaymentsReport
	if err := c.get(ctx, "/api/v1/reports/receipts-and-payments?"+rangeParams(from, to), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GeneralLedger(ctx context.Context, accountCode string, from, to time.Time) (*ledger.GeneralLedgerReport, error) {
	params := url.Values{}
	params.Set("account_code", accountCode)
	if !from.IsZero() {
		params.Set("from_date", from.Format(dateFormat))
	}
	if !to.IsZero() {
		params.Set("to_date", to.Format(dateFormat))
	}
	var result ledger.GeneralLedgerReport
	if err := c.get(ctx, "/api/v1/reports/general-ledger?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CashBook(ctx context.Context, from, to time.Time) (*ledger.GeneralLedgerReport, error) {
	var result ledger.GeneralLedgerReport
	if err := c.get(ctx, "/api/v1/reports/cash-book?"+rangeParams(from, to), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) BankBook(ctx context.Context, from, to time.Time) (*ledger.GeneralLedgerReport, error) {
	var result ledger.GeneralLedgerReport
	if err := c.get(ctx, "/api/v1/reports/bank-book?"+rangeParams(from, to), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) MemberDues(ctx context.Context, asOn time.Time) (*ledger.MemberDuesReport, error) {
	var result ledger.MemberDuesReport
	if err := c.get(ctx, "/api/v1/reports/member-dues?"+asOnParams(asOn), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) MemberLedger(ctx context.Context, flatID string, from, to time.Time) (*ledger.MemberLedgerReport, error) {
	var result ledger.MemberLedgerReport
	if err := c.get(ctx, "/api/v1/reports/member-ledger/"+url.PathEscape(flatID)+"?"+rangeParams(from, to), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func asOnParams(asOn time.Time) string {
	params := url.Values{}
	if !asOn.IsZero() {
		params.Set("as_on_date", asOn.Format(dateFormat))
	}
	return params.Encode()
}

func rangeParams(from, to time.Time) string {
	params := url.Values{}
	if !from.IsZero() {
		params.Set("from_date", from.Format(dateFormat))
	}
	if !to.IsZero() {
		params.Set("to_date", to.Format(dateFormat))
	}
	return params.Encode()
}

// --- Billing ---

func (c *Client) GenerateBills(ctx context.Context, month, year int) (*ledger.BillGenerationResult, error) {
	body := map[string]any{"month": month, "year": year}
	var result ledger.BillGenerationResult
	if err := c.post(ctx, "/api/v1/maintenance/generate-bills", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListBills(ctx context.Context, month, year int, flatID string) ([]ledger.MaintenanceBill, error) {
	params := url.Values{}
	if month > 0 {
		params.Set("month", fmt.Sprint(month))
	}
	if year > 0 {
		params.Set("year", fmt.Sprint(year))
	}
	if flatID != "" {
		params.Set("flat_id", flatID)
	}
	var result []ledger.MaintenanceBill
	if err := c.get(ctx, "/api/v1/maintenance/bills?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) DeleteBills(ctx context.Context, month, year int) error {
	params := url.Values{}
	params.Set("month", fmt.Sprint(month))
	params.Set("year", fmt.Sprint(year))
	return c.del(ctx, "/api/v1/maintenance/bills?"+params.Encode())
}

func (c *Client) CreateFlat(ctx context.Context, flat *ledger.Flat) (*ledger.Flat, error) {
	body := map[string]any{
		"number":     flat.Number,
		"owner_name": flat.OwnerName,
		"area_sqft":  flat.AreaSqft,
		"occupants":  flat.Occupants,
	}
	var result ledger.Flat
	if err := c.post(ctx, "/api/v1/flats", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListFlats(ctx context.Context) ([]ledger.Flat, error) {
	var result []ledger.Flat
	if err := c.get(ctx, "/api/v1/flats", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// --- Settings ---

func (c *Client) GetSettings(ctx context.Context) (*ledger.Settings, error) {
	var result ledger.Settings
	if err := c.get(ctx, "/api/v1/settings", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UpdateSettings(ctx context.Context, settings *ledger.Settings) (*ledger.Settings, error) {
	var result ledger.Settings
	if err := c.put(ctx, "/api/v1/settings", settings, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/settings", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// --- Transport helpers ---

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, result)
}

func (c *Client) del(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, nil)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	return c.send(ctx, "POST", path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body any, result any) error {
	return c.send(ctx, "PUT", path, body, result)
}

func (c *Client) send(ctx context.Context, method, path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doRequest(req, result)
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
