package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Report derivations are pure: the same accounts, posting lines, and
// date range always produce the same report. Nothing here reads clocks
// or mutates shared state, and bodies carry no generation timestamps.
//
// Sign convention (uniform across all reports): a debit increases
// asset/expense balances and decreases the rest; a credit does the
// opposite. Internally balances are kept debit-positive ("raw") and
// flipped to the account's normal side for display.

const dateFormat = "2006-01-02"

// rawBalance is the debit-positive balance of an account over lines
// dated on or before upTo, including the account's opening balance.
func rawBalance(a Account, lines []PostingLine, upTo time.Time) decimal.Decimal {
	raw := a.OpeningBalance
	if NormalSide(a.Type) == SideCredit {
		raw = raw.Neg()
	}
	for _, l := range lines {
		if l.AccountCode != a.Code || l.Date.After(upTo) {
			continue
		}
		raw = raw.Add(l.Debit).Sub(l.Credit)
	}
	return raw
}

// AccountBalance is an account's balance in its normal direction as of
// upTo: opening balance plus the signed sum of its posting lines.
func AccountBalance(a Account, lines []PostingLine, upTo time.Time) decimal.Decimal {
	return normalBalance(a, rawBalance(a, lines, upTo))
}

// normalBalance flips a raw balance to the account's normal side.
func normalBalance(a Account, raw decimal.Decimal) decimal.Decimal {
	if NormalSide(a.Type) == SideCredit {
		return raw.Neg()
	}
	return raw
}

// activity is the normal-side movement of an account within [from, to],
// excluding its opening balance.
func activity(a Account, lines []PostingLine, from, to time.Time) decimal.Decimal {
	net := decimal.Zero
	for _, l := range lines {
		if l.AccountCode != a.Code || l.Date.Before(from) || l.Date.After(to) {
			continue
		}
		net = net.Add(l.Debit).Sub(l.Credit)
	}
	if NormalSide(a.Type) == SideCredit {
		return net.Neg()
	}
	return net
}

func sortAccounts(accounts []Account) []Account {
	sorted := make([]Account, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })
	return sorted
}

// --- Trial balance ---

type TrialBalanceLine struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Type        AccountType     `json:"type"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

type TrialBalanceReport struct {
	AsOnDate    string             `json:"as_on_date"`
	Lines       []TrialBalanceLine `json:"lines"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
	Difference  decimal.Decimal    `json:"difference"`
	IsBalanced  bool               `json:"is_balanced"`
}

// DeriveTrialBalance lists every account's debit or credit balance as of
// asOn. The raw difference is always exposed, never clamped.
func DeriveTrialBalance(accounts []Account, lines []PostingLine, asOn time.Time, tol Tolerance) *TrialBalanceReport {
	tb := &TrialBalanceReport{
		AsOnDate:    asOn.Format(dateFormat),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, a := range sortAccounts(accounts) {
		raw := rawBalance(a, lines, asOn)
		if raw.IsZero() {
			continue
		}
		line := TrialBalanceLine{
			AccountCode: a.Code,
			AccountName: a.Name,
			Type:        a.Type,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		if raw.Sign() > 0 {
			line.Debit = raw
			tb.TotalDebit = tb.TotalDebit.Add(raw)
		} else {
			line.Credit = raw.Neg()
			tb.TotalCredit = tb.TotalCredit.Add(raw.Neg())
		}
		tb.Lines = append(tb.Lines, line)
	}
	tb.Difference = tb.TotalDebit.Sub(tb.TotalCredit)
	tb.IsBalanced = tol.Within(tb.Difference)
	return tb
}

// --- Balance sheet ---

type BalanceSheetLine struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Balance     decimal.Decimal `json:"balance"`
}

type BalanceSheetReport struct {
	AsOnDate             string             `json:"as_on_date"`
	CurrentAssets        []BalanceSheetLine `json:"current_assets"`
	FixedAssets          []BalanceSheetLine `json:"fixed_assets"`
	CurrentLiabilities   []BalanceSheetLine `json:"current_liabilities"`
	LongTermLiabilities  []BalanceSheetLine `json:"long_term_liabilities"`
	Capital              []BalanceSheetLine `json:"capital"`
	Surplus              decimal.Decimal    `json:"surplus"`
	TotalAssets          decimal.Decimal    `json:"total_assets"`
	TotalLiabilities     decimal.Decimal    `json:"total_liabilities"`
	TotalCapital         decimal.Decimal    `json:"total_capital"`
	Difference           decimal.Decimal    `json:"difference"`
	IsBalanced           bool               `json:"is_balanced"`
}

// DeriveBalanceSheet splits assets current/fixed and liabilities
// current/long-term as of asOn. Capital includes the cumulative surplus
// from income and expense accounts for the period ending at asOn. The
// accounting equation is not enforced: a non-zero difference is a
// data-integrity signal for the caller.
func DeriveBalanceSheet(accounts []Account, lines []PostingLine, asOn time.Time, tol Tolerance) *BalanceSheetReport {
	bs := &BalanceSheetReport{
		AsOnDate:         asOn.Format(dateFormat),
		Surplus:          decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalCapital:     decimal.Zero,
	}
	for _, a := range sortAccounts(accounts) {
		bal := normalBalance(a, rawBalance(a, lines, asOn))
		if bal.IsZero() && a.Type != AccountTypeIncome && a.Type != AccountTypeExpense {
			continue
		}
		line := BalanceSheetLine{AccountCode: a.Code, AccountName: a.Name, Balance: bal}
		switch a.Type {
		case AccountTypeAsset:
			if a.SubType == SubTypeFixedAsset {
				bs.FixedAssets = append(bs.FixedAssets, line)
			} else {
				bs.CurrentAssets = append(bs.CurrentAssets, line)
			}
			bs.TotalAssets = bs.TotalAssets.Add(bal)
		case AccountTypeLiability:
			if a.SubType == SubTypeLongTermLiability {
				bs.LongTermLiabilities = append(bs.LongTermLiabilities, line)
			} else {
				bs.CurrentLiabilities = append(bs.CurrentLiabilities, line)
			}
			bs.TotalLiabilities = bs.TotalLiabilities.Add(bal)
		case AccountTypeCapital:
			bs.Capital = append(bs.Capital, line)
			bs.TotalCapital = bs.TotalCapital.Add(bal)
		case AccountTypeIncome:
			bs.Surplus = bs.Surplus.Add(bal)
		case AccountTypeExpense:
			bs.Surplus = bs.Surplus.Sub(bal)
		}
	}
	bs.TotalCapital = bs.TotalCapital.Add(bs.Surplus)
	bs.Difference = bs.TotalAssets.Sub(bs.TotalLiabilities.Add(bs.TotalCapital))
	bs.IsBalanced = tol.Within(bs.Difference)
	return bs
}

// --- Income & expenditure ---

type ReportLine struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

type IncomeExpenditureReport struct {
	FromDate         string          `json:"from_date"`
	ToDate           string          `json:"to_date"`
	Income           []ReportLine    `json:"income"`
	Expenditure      []ReportLine    `json:"expenditure"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenditure decimal.Decimal `json:"total_expenditure"`
	Surplus          decimal.Decimal `json:"surplus"`
}

// DeriveIncomeExpenditure is accrual-basis over all posting lines in the
// range. A negative surplus is a deficit, not an error.
func DeriveIncomeExpenditure(accounts []Account, lines []PostingLine, from, to time.Time) *IncomeExpenditureReport {
	ie := &IncomeExpenditureReport{
		FromDate:         from.Format(dateFormat),
		ToDate:           to.Format(dateFormat),
		TotalIncome:      decimal.Zero,
		TotalExpenditure: decimal.Zero,
	}
	for _, a := range sortAccounts(accounts) {
		if a.Type != AccountTypeIncome && a.Type != AccountTypeExpense {
			continue
		}
		amt := activity(a, lines, from, to)
		if amt.IsZero() {
			continue
		}
		line := ReportLine{AccountCode: a.Code, AccountName: a.Name, Amount: amt}
		if a.Type == AccountTypeIncome {
			ie.Income = append(ie.Income, line)
			ie.TotalIncome = ie.TotalIncome.Add(amt)
		} else {
			ie.Expenditure = append(ie.Expenditure, line)
			ie.TotalExpenditure = ie.TotalExpenditure.Add(amt)
		}
	}
	ie.Surplus = ie.TotalIncome.Sub(ie.TotalExpenditure)
	return ie
}

// --- Receipts & payments ---

type ReceiptsPaymentsReport struct {
	FromDate       string          `json:"from_date"`
	ToDate         string          `json:"to_date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Receipts       []ReportLine    `json:"receipts"`
	Payments       []ReportLine    `json:"payments"`
	TotalReceipts  decimal.Decimal `json:"total_receipts"`
	TotalPayments  decimal.Decimal `json:"total_payments"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// DeriveReceiptsPayments is cash-basis: only transaction-source lines
// count, grouped by account code. The opening balance is cash + bank as
// of the day before the range; closing = opening + receipts - payments.
func DeriveReceiptsPayments(accounts []Account, lines []PostingLine, from, to time.Time, cashCode, bankCode string) *ReceiptsPaymentsReport {
	rp := &ReceiptsPaymentsReport{
		FromDate:       from.Format(dateFormat),
		ToDate:         to.Format(dateFormat),
		OpeningBalance: decimal.Zero,
		TotalReceipts:  decimal.Zero,
		TotalPayments:  decimal.Zero,
	}

	dayBefore := from.AddDate(0, 0, -1)
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.Code] = a.Name
		if a.Code == cashCode || a.Code == bankCode {
			rp.OpeningBalance = rp.OpeningBalance.Add(rawBalance(a, lines, dayBefore))
		}
	}

	receipts := make(map[string]decimal.Decimal)
	payments := make(map[string]decimal.Decimal)
	for _, l := range lines {
		if l.Source != SourceTransaction || l.Date.Before(from) || l.Date.After(to) {
			continue
		}
		if l.AccountCode == cashCode || l.AccountCode == bankCode {
			continue
		}
		if l.Credit.Sign() > 0 {
			receipts[l.AccountCode] = receipts[l.AccountCode].Add(l.Credit)
		} else if l.Debit.Sign() > 0 {
			payments[l.AccountCode] = payments[l.AccountCode].Add(l.Debit)
		}
	}

	for _, code := range sortedKeys(receipts) {
		rp.Receipts = append(rp.Receipts, ReportLine{AccountCode: code, AccountName: names[code], Amount: receipts[code]})
		rp.TotalReceipts = rp.TotalReceipts.Add(receipts[code])
	}
	for _, code := range sortedKeys(payments) {
		rp.Payments = append(rp.Payments, ReportLine{AccountCode: code, AccountName: names[code], Amount: payments[code]})
		rp.TotalPayments = rp.TotalPayments.Add(payments[code])
	}

	rp.ClosingBalance = rp.OpeningBalance.Add(rp.TotalReceipts).Sub(rp.TotalPayments)
	return rp
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- General ledger / cash book / bank book ---

type LedgerEntry struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

type GeneralLedgerReport struct {
	AccountCode    string          `json:"account_code"`
	AccountName    string          `json:"account_name"`
	FromDate       string          `json:"from_date"`
	ToDate         string          `json:"to_date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Entries        []LedgerEntry   `json:"entries"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// DeriveGeneralLedger lists one account's postings chronologically with
// a running balance in the account's normal direction. The same shape
// serves the cash book and bank book.
func DeriveGeneralLedger(account Account, lines []PostingLine, from, to time.Time) *GeneralLedgerReport {
	gl := &GeneralLedgerReport{
		AccountCode:    account.Code,
		AccountName:    account.Name,
		FromDate:       from.Format(dateFormat),
		ToDate:         to.Format(dateFormat),
		OpeningBalance: normalBalance(account, rawBalance(account, lines, from.AddDate(0, 0, -1))),
	}

	var inRange []PostingLine
	for _, l := range lines {
		if l.AccountCode != account.Code || l.Date.Before(from) || l.Date.After(to) {
			continue
		}
		inRange = append(inRange, l)
	}
	sort.SliceStable(inRange, func(i, j int) bool { return inRange[i].Date.Before(inRange[j].Date) })

	balance := gl.OpeningBalance
	debitNormal := NormalSide(account.Type) == SideDebit
	for _, l := range inRange {
		delta := l.Debit.Sub(l.Credit)
		if !debitNormal {
			delta = delta.Neg()
		}
		balance = balance.Add(delta)
		gl.Entries = append(gl.Entries, LedgerEntry{
			Date:        l.Date.Format(dateFormat),
			Description: l.Description,
			Reference:   l.Reference,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Balance:     balance,
		})
	}
	gl.ClosingBalance = balance
	return gl
}

// --- Member dues & ledger ---

type DuesStatus string

const (
	DuesClear   DuesStatus = "clear"
	DuesDue     DuesStatus = "due"
	DuesOverdue DuesStatus = "overdue"
)

type MemberDuesRow struct {
	FlatID      string          `json:"flat_id"`
	FlatNumber  string          `json:"flat_number"`
	OwnerName   string          `json:"owner_name,omitempty"`
	TotalBilled decimal.Decimal `json:"total_billed"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Balance     decimal.Decimal `json:"balance"`
	Status      DuesStatus      `json:"status"`
}

type MemberDuesReport struct {
	AsOnDate string          `json:"as_on_date"`
	Rows     []MemberDuesRow `json:"rows"`
	TotalDue decimal.Decimal `json:"total_due"`
}

// DeriveMemberDues aggregates billed amounts against member payments per
// flat. Status is overdue when, after settling bills oldest-first, an
// unpaid bill's due date has passed as of asOn.
func DeriveMemberDues(flats []Flat, bills []MaintenanceBill, payments []Transaction, asOn time.Time) *MemberDuesReport {
	report := &MemberDuesReport{
		AsOnDate: asOn.Format(dateFormat),
		TotalDue: decimal.Zero,
	}

	billsByFlat := make(map[string][]MaintenanceBill)
	for _, b := range bills {
		if periodStart(b).After(asOn) {
			continue
		}
		billsByFlat[b.FlatID] = append(billsByFlat[b.FlatID], b)
	}
	paidByFlat := make(map[string]decimal.Decimal)
	for _, p := range payments {
		if p.FlatID == "" || p.Date.After(asOn) {
			continue
		}
		paidByFlat[p.FlatID] = paidByFlat[p.FlatID].Add(p.Amount)
	}

	sortedFlats := make([]Flat, len(flats))
	copy(sortedFlats, flats)
	sort.Slice(sortedFlats, func(i, j int) bool { return sortedFlats[i].Number < sortedFlats[j].Number })

	for _, f := range sortedFlats {
		row := MemberDuesRow{
			FlatID:      f.ID,
			FlatNumber:  f.Number,
			OwnerName:   f.OwnerName,
			TotalBilled: decimal.Zero,
			TotalPaid:   paidByFlat[f.ID],
		}
		if row.TotalPaid.IsZero() {
			row.TotalPaid = decimal.Zero
		}

		flatBills := billsByFlat[f.ID]
		sort.Slice(flatBills, func(i, j int) bool { return flatBills[i].DueDate.Before(flatBills[j].DueDate) })
		for _, b := range flatBills {
			row.TotalBilled = row.TotalBilled.Add(b.Amount)
		}
		row.Balance = row.TotalBilled.Sub(row.TotalPaid)

		row.Status = DuesClear
		if row.Balance.Sign() > 0 {
			row.Status = DuesDue
			// Settle oldest-first; the first bill the payments cannot
			// cover decides overdue vs due.
			remaining := row.TotalPaid
			for _, b := range flatBills {
				if remaining.GreaterThanOrEqual(b.Amount) {
					remaining = remaining.Sub(b.Amount)
					continue
				}
				if b.DueDate.Before(asOn) {
					row.Status = DuesOverdue
				}
				break
			}
			report.TotalDue = report.TotalDue.Add(row.Balance)
		}
		report.Rows = append(report.Rows, row)
	}
	return report
}

func periodStart(b MaintenanceBill) time.Time {
	return time.Date(b.Year, time.Month(b.Month), 1, 0, 0, 0, 0, time.UTC)
}

type MemberLedgerReport struct {
	FlatID      string          `json:"flat_id"`
	FlatNumber  string          `json:"flat_number"`
	FromDate    string          `json:"from_date"`
	ToDate      string          `json:"to_date"`
	Entries     []LedgerEntry   `json:"entries"`
	TotalBilled decimal.Decimal `json:"total_billed"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Balance     decimal.Decimal `json:"balance"`
}

// DeriveMemberLedger interleaves a flat's bills (debits) and payments
// (credits) into a running balance. The closing balance covers all
// history up to the end of the range, not just the window shown.
func DeriveMemberLedger(flat Flat, bills []MaintenanceBill, payments []Transaction, from, to time.Time) *MemberLedgerReport {
	ml := &MemberLedgerReport{
		FlatID:      flat.ID,
		FlatNumber:  flat.Number,
		FromDate:    from.Format(dateFormat),
		ToDate:      to.Format(dateFormat),
		TotalBilled: decimal.Zero,
		TotalPaid:   decimal.Zero,
	}

	type event struct {
		date        time.Time
		description string
		reference   string
		debit       decimal.Decimal
		credit      decimal.Decimal
	}
	var events []event
	opening := decimal.Zero

	for _, b := range bills {
		if b.FlatID != flat.ID {
			continue
		}
		d := periodStart(b)
		if d.After(to) {
			continue
		}
		if d.Before(from) {
			opening = opening.Add(b.Amount)
			continue
		}
		events = append(events, event{
			date:        d,
			description: "Maintenance bill " + d.Format("Jan 2006"),
			debit:       b.Amount,
			credit:      decimal.Zero,
		})
	}
	for _, p := range payments {
		if p.FlatID != flat.ID || p.Date.After(to) {
			continue
		}
		if p.Date.Before(from) {
			opening = opening.Sub(p.Amount)
			continue
		}
		events = append(events, event{
			date:        p.Date,
			description: p.Description,
			reference:   p.DocumentNumber,
			debit:       decimal.Zero,
			credit:      p.Amount,
		})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].date.Before(events[j].date) })

	balance := opening
	for _, ev := range events {
		balance = balance.Add(ev.debit).Sub(ev.credit)
		ml.TotalBilled = ml.TotalBilled.Add(ev.debit)
		ml.TotalPaid = ml.TotalPaid.Add(ev.credit)
		ml.Entries = append(ml.Entries, LedgerEntry{
			Date:        ev.date.Format(dateFormat),
			Description: ev.description,
			Reference:   ev.reference,
			Debit:       ev.debit,
			Credit:      ev.credit,
			Balance:     balance,
		})
	}
	ml.Balance = balance
	return ml
}
