package ledger

// ChartEntry is a predefined entry in the default society chart of
// accounts, seeded on first migration.
type ChartEntry struct {
	Code           string      `json:"code"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	SubType        SubType     `json:"sub_type,omitempty"`
	IsFixedExpense bool        `json:"is_fixed_expense"`
	Description    string      `json:"description"`
}

// DefaultChart is the starter chart of accounts for a housing society.
var DefaultChart = []ChartEntry{
	// Assets (1xxx)
	{Code: "1010", Name: "Cash in Hand", Type: AccountTypeAsset, SubType: SubTypeCurrentAsset, Description: "Physical cash held by the society"},
	{Code: "1020", Name: "Bank Account", Type: AccountTypeAsset, SubType: SubTypeCurrentAsset, Description: "Primary society bank account"},
	{Code: "1030", Name: "Member Receivable", Type: AccountTypeAsset, SubType: SubTypeCurrentAsset, Description: "Maintenance billed but not yet collected"},
	{Code: "1040", Name: "Fixed Deposits", Type: AccountTypeAsset, SubType: SubTypeCurrentAsset, Description: "Term deposits with banks"},
	{Code: "1050", Name: "Society Premises & Equipment", Type: AccountTypeAsset, SubType: SubTypeFixedAsset, Description: "Common property, pumps, generators"},

	// Liabilities (2xxx)
	{Code: "2010", Name: "Member Advances", Type: AccountTypeLiability, SubType: SubTypeCurrentLiability, Description: "Maintenance paid ahead of billing"},
	{Code: "2020", Name: "Security Deposits", Type: AccountTypeLiability, SubType: SubTypeCurrentLiability, Description: "Refundable deposits held from members and vendors"},
	{Code: "2030", Name: "Loans Payable", Type: AccountTypeLiability, SubType: SubTypeLongTermLiability, Description: "Outstanding loan obligations"},

	// Capital (3xxx)
	{Code: "3010", Name: "Sinking Fund", Type: AccountTypeCapital, Description: "Statutory reserve for major repairs"},
	{Code: "3020", Name: "Reserve Fund", Type: AccountTypeCapital, Description: "Accumulated surplus retained by the society"},

	// Income (4xxx)
	{Code: "4010", Name: "Maintenance Income", Type: AccountTypeIncome, Description: "Monthly maintenance charges billed to flats"},
	{Code: "4020", Name: "Interest Income", Type: AccountTypeIncome, Description: "Interest earned on deposits"},
	{Code: "4030", Name: "Other Income", Type: AccountTypeIncome, Description: "Hall booking, penalties, miscellaneous receipts"},

	// Expenses (5xxx)
	{Code: "5010", Name: "Water Charges", Type: AccountTypeExpense, Description: "Tanker, government and other water charges"},
	{Code: "5020", Name: "Electricity Charges", Type: AccountTypeExpense, IsFixedExpense: true, Description: "Common-area electricity"},
	{Code: "5030", Name: "Security Charges", Type: AccountTypeExpense, IsFixedExpense: true, Description: "Watchman and security agency fees"},
	{Code: "5040", Name: "Housekeeping", Type: AccountTypeExpense, IsFixedExpense: true, Description: "Cleaning staff and supplies"},
	{Code: "5050", Name: "Repairs & Maintenance", Type: AccountTypeExpense, Description: "Ad-hoc repairs to common property"},
	{Code: "5060", Name: "Audit & Professional Fees", Type: AccountTypeExpense, Description: "Auditor, accountant and legal fees"},
}

// LookupChartEntry finds a chart entry by code.
func LookupChartEntry(code string) *ChartEntry {
	for i := range DefaultChart {
		if DefaultChart[i].Code == code {
			return &DefaultChart[i]
		}
	}
	return nil
}
