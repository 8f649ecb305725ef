package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type BillingMethod string

const (
	BillingSqftRate BillingMethod = "sqft_rate"
	BillingVariable BillingMethod = "variable"
)

// Settings is the society-wide configuration aggregate. It is validated
// and replaced as a whole; handlers never mutate it in place.
type Settings struct {
	SocietyName         string          `json:"society_name"`
	BillingMethod       BillingMethod   `json:"billing_method"`
	SqftRate            decimal.Decimal `json:"sqft_rate"`
	SinkingFundMonthly  decimal.Decimal `json:"sinking_fund_monthly"`
	CashAccountCode     string          `json:"cash_account_code"`
	BankAccountCode     string          `json:"bank_account_code"`
	ReceivableAccountCode string        `json:"receivable_account_code"`
	MaintenanceIncomeAccountCode string `json:"maintenance_income_account_code"`
	DueGraceDays        int             `json:"due_grace_days"`
}

// DefaultSettings matches the seeded chart of accounts.
func DefaultSettings() Settings {
	return Settings{
		SocietyName:                  "Housing Society",
		BillingMethod:                BillingSqftRate,
		SqftRate:                     decimal.NewFromInt(3),
		SinkingFundMonthly:           decimal.Zero,
		CashAccountCode:              "1010",
		BankAccountCode:              "1020",
		ReceivableAccountCode:        "1030",
		MaintenanceIncomeAccountCode: "4010",
		DueGraceDays:                 10,
	}
}

// Validate checks the whole aggregate.
func (s *Settings) Validate() error {
	if s.BillingMethod != BillingSqftRate && s.BillingMethod != BillingVariable {
		return fmt.Errorf("%w: %q", ErrInvalidBillingMethod, s.BillingMethod)
	}
	if s.BillingMethod == BillingSqftRate && s.SqftRate.Sign() <= 0 {
		return fmt.Errorf("%w: sqft_rate must be positive for the sqft_rate method", ErrInvalidSettings)
	}
	if s.SinkingFundMonthly.IsNegative() {
		return fmt.Errorf("%w: sinking fund must not be negative", ErrInvalidSettings)
	}
	if s.CashAccountCode == "" || s.BankAccountCode == "" {
		return fmt.Errorf("%w: cash and bank account codes are required", ErrInvalidSettings)
	}
	if s.ReceivableAccountCode == "" || s.MaintenanceIncomeAccountCode == "" {
		return fmt.Errorf("%w: receivable and maintenance income account codes are required", ErrInvalidSettings)
	}
	if s.DueGraceDays < 0 {
		return fmt.Errorf("%w: due grace days must not be negative", ErrInvalidSettings)
	}
	return nil
}

// Flat is one billable unit in the society.
type Flat struct {
	ID        string          `json:"id"`
	Number    string          `json:"number"`
	OwnerName string          `json:"owner_name,omitempty"`
	AreaSqft  decimal.Decimal `json:"area_sqft"`
	Occupants int             `json:"occupants"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}

func (f *Flat) Validate() error {
	if f.Number == "" {
		return fmt.Errorf("flat number is required")
	}
	if f.AreaSqft.Sign() <= 0 {
		return fmt.Errorf("%w: area", ErrNonPositiveAmount)
	}
	if f.Occupants < 0 {
		return fmt.Errorf("occupants must not be negative")
	}
	return nil
}

// WaterExpense records one month's water charges, split by source.
type WaterExpense struct {
	ID                string          `json:"id"`
	Month             int             `json:"month"`
	Year              int             `json:"year"`
	TankerCharges     decimal.Decimal `json:"tanker_charges"`
	GovernmentCharges decimal.Decimal `json:"government_charges"`
	OtherCharges      decimal.Decimal `json:"other_charges"`
	CreatedAt         time.Time       `json:"created_at,omitempty"`
}

func (w *WaterExpense) Validate() error {
	if w.Month < 1 || w.Month > 12 {
		return fmt.Errorf("month must be 1-12, got %d", w.Month)
	}
	if w.Year < 1900 {
		return fmt.Errorf("invalid year %d", w.Year)
	}
	for _, d := range []decimal.Decimal{w.TankerCharges, w.GovernmentCharges, w.OtherCharges} {
		if d.IsNegative() {
			return ErrNegativeAmount
		}
	}
	return nil
}

// Total sums all water charge components.
func (w *WaterExpense) Total() decimal.Decimal {
	return w.TankerCharges.Add(w.GovernmentCharges).Add(w.OtherCharges)
}

// BillBreakdown keeps the formula components auditable per bill.
type BillBreakdown struct {
	Method               BillingMethod   `json:"method"`
	AreaSqft             decimal.Decimal `json:"area_sqft,omitempty"`
	SqftRate             decimal.Decimal `json:"sqft_rate,omitempty"`
	WaterRatePerOccupant decimal.Decimal `json:"water_rate_per_occupant,omitempty"`
	Occupants            int             `json:"occupants,omitempty"`
	WaterCharge          decimal.Decimal `json:"water_charge,omitempty"`
	FixedExpenseShare    decimal.Decimal `json:"fixed_expense_share,omitempty"`
	SinkingFundShare     decimal.Decimal `json:"sinking_fund_share,omitempty"`
}

// MaintenanceBill is one flat's bill for a (month, year) period.
type MaintenanceBill struct {
	ID         string          `json:"id"`
	FlatID     string          `json:"flat_id"`
	FlatNumber string          `json:"flat_number"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    time.Time       `json:"due_date"`
	Breakdown  BillBreakdown   `json:"breakdown"`
	CreatedAt  time.Time       `json:"created_at,omitempty"`
}

// BillingPeriodInput gathers the figures a billing run needs. The store
// assembles it from flats, water expenses, and fixed-expense postings.
type BillingPeriodInput struct {
	Month             int
	Year              int
	Flats             []Flat
	WaterTotal        decimal.Decimal // all water charges for the period
	FixedExpenseTotal decimal.Decimal // sum over accounts flagged is_fixed_expense
	SinkingFundTotal  decimal.Decimal
}

// CalculateBills derives one bill per flat using the configured method.
//
// sqft_rate: amount = area_sqft × sqft_rate.
// variable:  amount = water_rate × occupants + fixed_total/total_flats +
// sinking_fund/total_flats, where water_rate = water_total / total
// occupants across all flats for the month.
func CalculateBills(settings Settings, in BillingPeriodInput) ([]MaintenanceBill, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if in.Month < 1 || in.Month > 12 {
		return nil, fmt.Errorf("month must be 1-12, got %d", in.Month)
	}
	if len(in.Flats) == 0 {
		return nil, ErrNoFlats
	}

	periodStart := time.Date(in.Year, time.Month(in.Month), 1, 0, 0, 0, 0, time.UTC)
	dueDate := periodStart.AddDate(0, 0, settings.DueGraceDays)
	totalFlats := decimal.NewFromInt(int64(len(in.Flats)))

	var waterRate decimal.Decimal
	if settings.BillingMethod == BillingVariable {
		totalOccupants := int64(0)
		for _, f := range in.Flats {
			totalOccupants += int64(f.Occupants)
		}
		if totalOccupants > 0 {
			waterRate = in.WaterTotal.Div(decimal.NewFromInt(totalOccupants))
		}
	}
	fixedShare := in.FixedExpenseTotal.Div(totalFlats)
	sinkingShare := in.SinkingFundTotal.Div(totalFlats)

	bills := make([]MaintenanceBill, 0, len(in.Flats))
	for _, f := range in.Flats {
		b := MaintenanceBill{
			FlatID:     f.ID,
			FlatNumber: f.Number,
			Month:      in.Month,
			Year:       in.Year,
			DueDate:    dueDate,
		}
		switch settings.BillingMethod {
		case BillingSqftRate:
			b.Amount = f.AreaSqft.Mul(settings.SqftRate).Round(2)
			b.Breakdown = BillBreakdown{
				Method:   BillingSqftRate,
				AreaSqft: f.AreaSqft,
				SqftRate: settings.SqftRate,
			}
		case BillingVariable:
			waterCharge := waterRate.Mul(decimal.NewFromInt(int64(f.Occupants))).Round(2)
			b.Amount = waterCharge.Add(fixedShare.Round(2)).Add(sinkingShare.Round(2))
			b.Breakdown = BillBreakdown{
				Method:               BillingVariable,
				WaterRatePerOccupant: waterRate.Round(2),
				Occupants:            f.Occupants,
				WaterCharge:          waterCharge,
				FixedExpenseShare:    fixedShare.Round(2),
				SinkingFundShare:     sinkingShare.Round(2),
			}
		}
		bills = append(bills, b)
	}
	return bills, nil
}

// BillGenerationResult summarizes one billing run.
type BillGenerationResult struct {
	TotalBillsGenerated int               `json:"total_bills_generated"`
	TotalAmount         decimal.Decimal   `json:"total_amount"`
	Bills               []MaintenanceBill `json:"bills"`
}
