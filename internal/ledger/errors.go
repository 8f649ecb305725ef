package ledger

import "errors"

var (
	ErrInvalidAccountCode = errors.New("invalid account code")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidSubType     = errors.New("invalid account sub-type")
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrAccountHasPostings = errors.New("account has postings")
	ErrAccountReferenced  = errors.New("account referenced by society settings")

	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidPaymentMode     = errors.New("invalid payment mode")
	ErrNegativeAmount         = errors.New("amount must not be negative")
	ErrNonPositiveAmount      = errors.New("amount must be greater than zero")
	ErrEmptyDescription       = errors.New("description is required")
	ErrTooPrecise             = errors.New("amount has more than 2 decimal places")
	ErrTransactionNotFound    = errors.New("transaction not found")

	ErrUnbalancedEntry      = errors.New("unbalanced entry")
	ErrTooFewLines          = errors.New("entry must have at least 2 lines")
	ErrOneSidePerLine       = errors.New("line must have exactly one of debit or credit")
	ErrInvalidEntrySide     = errors.New("entry side must be debit or credit")
	ErrInvalidAdjustment    = errors.New("invalid adjustment type")
	ErrReasonRequired       = errors.New("reason is required")
	ErrJournalEntryNotFound = errors.New("journal entry not found")

	ErrYearNotFound      = errors.New("financial year not found")
	ErrDuplicateYear     = errors.New("financial year already exists")
	ErrNoActiveYear      = errors.New("no active financial year")
	ErrInvalidTransition = errors.New("invalid financial year transition")
	ErrYearFinalClosed   = errors.New("financial year is final closed")
	ErrYearProvisional   = errors.New("financial year is provisionally closed")
	ErrApprovalRequired  = errors.New("final statements approval is required")
	ErrAuditIncomplete   = errors.New("audit metadata incomplete")
	ErrDateOutOfRange    = errors.New("date outside financial year")
	ErrActorRequired     = errors.New("acting user is required")

	ErrOpeningBalanceNotFound = errors.New("opening balance not found")
	ErrAlreadyFinalized       = errors.New("opening balance already finalized")

	ErrInvalidBillingMethod = errors.New("invalid billing method")
	ErrInvalidSettings      = errors.New("invalid settings")
	ErrFlatNotFound         = errors.New("flat not found")
	ErrDuplicateFlat        = errors.New("flat already exists")
	ErrWaterExpenseNotFound = errors.New("water expense not found")
	ErrPeriodAlreadyBilled  = errors.New("bills already generated for period")
	ErrNoFlats              = errors.New("no flats registered")
)
