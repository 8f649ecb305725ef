package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

type PaymentMode string

const (
	PaymentCash PaymentMode = "cash"
	PaymentBank PaymentMode = "bank"
)

// Transaction is a dated income or expense record. Income debits the
// cash/bank account and credits the linked account; expense does the
// reverse. FlatID links member payments to a flat for the dues ledger.
type Transaction struct {
	ID             string          `json:"id"`
	Type           TransactionType `json:"type"`
	AccountCode    string          `json:"account_code"`
	FlatID         string          `json:"flat_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	Date           time.Time       `json:"date"`
	DocumentNumber string          `json:"document_number,omitempty"`
	PaymentMode    PaymentMode     `json:"payment_mode"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
}

// Validate checks transaction invariants.
func (t *Transaction) Validate() error {
	if t.Type != TransactionIncome && t.Type != TransactionExpense {
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, t.Type)
	}
	if t.PaymentMode != PaymentCash && t.PaymentMode != PaymentBank {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMode, t.PaymentMode)
	}
	if t.AccountCode == "" {
		return ErrInvalidAccountCode
	}
	if t.Description == "" {
		return ErrEmptyDescription
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date is required")
	}
	if t.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: %s", ErrNonPositiveAmount, t.Amount)
	}
	if _, err := ToPaise(t.Amount); err != nil {
		return err
	}
	return nil
}

// PostingSource distinguishes where a posting line came from.
type PostingSource string

const (
	SourceTransaction PostingSource = "transaction"
	SourceJournal     PostingSource = "journal"
)

// PostingLine is the unified double-entry view of the ledger. Every
// report derives from a set of these; exactly one of Debit/Credit is
// non-zero per line.
type PostingLine struct {
	Date        time.Time       `json:"date"`
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	FlatID      string          `json:"flat_id,omitempty"`
	Source      PostingSource   `json:"source"`
}

// PostingLines expands a transaction into its two balanced lines. The
// cash or bank account code comes from the society settings.
func (t *Transaction) PostingLines(cashCode, bankCode string) []PostingLine {
	modeCode := cashCode
	if t.PaymentMode == PaymentBank {
		modeCode = bankCode
	}

	mode := PostingLine{
		Date:        t.Date,
		AccountCode: modeCode,
		Description: t.Description,
		Reference:   t.DocumentNumber,
		FlatID:      t.FlatID,
		Source:      SourceTransaction,
	}
	linked := mode
	linked.AccountCode = t.AccountCode

	if t.Type == TransactionIncome {
		mode.Debit = t.Amount
		linked.Credit = t.Amount
	} else {
		mode.Credit = t.Amount
		linked.Debit = t.Amount
	}
	return []PostingLine{mode, linked}
}
