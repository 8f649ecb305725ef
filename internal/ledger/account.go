package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeCapital   AccountType = "capital"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

var AllAccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeCapital,
	AccountTypeIncome,
	AccountTypeExpense,
}

// SubType refines balance-sheet placement. Empty means unclassified,
// which the balance sheet treats as current.
type SubType string

const (
	SubTypeCurrentAsset      SubType = "current_asset"
	SubTypeFixedAsset        SubType = "fixed_asset"
	SubTypeCurrentLiability  SubType = "current_liability"
	SubTypeLongTermLiability SubType = "long_term_liability"
)

// Side identifies the debit or credit side of a posting.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// Account is a row in the chart of accounts. Code is the stable
// identity. CurrentBalance is derived from postings and never stored.
type Account struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	SubType        SubType         `json:"sub_type,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsFixedExpense bool            `json:"is_fixed_expense"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NormalSide returns the side that increases an account's balance.
// Assets and expenses are debit-normal; liabilities, capital, and income
// are credit-normal.
func NormalSide(t AccountType) Side {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

func ValidAccountType(t AccountType) bool {
	for _, a := range AllAccountTypes {
		if a == t {
			return true
		}
	}
	return false
}

func validSubType(t AccountType, s SubType) bool {
	switch s {
	case "":
		return true
	case SubTypeCurrentAsset, SubTypeFixedAsset:
		return t == AccountTypeAsset
	case SubTypeCurrentLiability, SubTypeLongTermLiability:
		return t == AccountTypeLiability
	default:
		return false
	}
}

// Validate checks account invariants.
func (a *Account) Validate() error {
	if a.Code == "" {
		return ErrInvalidAccountCode
	}
	if a.Name == "" {
		return fmt.Errorf("account name is required")
	}
	if !ValidAccountType(a.Type) {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, a.Type)
	}
	if !validSubType(a.Type, a.SubType) {
		return fmt.Errorf("%w: %q for type %s", ErrInvalidSubType, a.SubType, a.Type)
	}
	if a.OpeningBalance.IsNegative() {
		return fmt.Errorf("%w: opening balance %s", ErrNegativeAmount, a.OpeningBalance)
	}
	if _, err := ToPaise(a.OpeningBalance); err != nil {
		return err
	}
	if a.IsFixedExpense && a.Type != AccountTypeExpense {
		return fmt.Errorf("%w: is_fixed_expense only applies to expense accounts", ErrInvalidAccountType)
	}
	return nil
}

// TypeLabel returns a human-readable label for an account type.
func TypeLabel(t AccountType) string {
	switch t {
	case AccountTypeAsset:
		return "Assets"
	case AccountTypeLiability:
		return "Liabilities"
	case AccountTypeCapital:
		return "Capital"
	case AccountTypeIncome:
		return "Income"
	case AccountTypeExpense:
		return "Expenses"
	default:
		return string(t)
	}
}
