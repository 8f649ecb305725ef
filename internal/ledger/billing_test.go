package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlats() []Flat {
	return []Flat{
		{ID: "f1", Number: "A-101", AreaSqft: d("800"), Occupants: 2},
		{ID: "f2", Number: "A-102", AreaSqft: d("900"), Occupants: 3},
		{ID: "f3", Number: "B-101", AreaSqft: d("1000"), Occupants: 4},
		{ID: "f4", Number: "B-102", AreaSqft: d("1100"), Occupants: 1},
	}
}

func TestCalculateBillsSqftRate(t *testing.T) {
	settings := DefaultSettings()
	settings.BillingMethod = BillingSqftRate
	settings.SqftRate = d("3")
	settings.DueGraceDays = 10

	bills, err := CalculateBills(settings, BillingPeriodInput{
		Month: 4,
		Year:  2025,
		Flats: testFlats(),
	})
	require.NoError(t, err)
	require.Len(t, bills, 4)

	want := []string{"2400.00", "2700.00", "3000.00", "3300.00"}
	for i, b := range bills {
		assert.Equal(t, want[i], b.Amount.StringFixed(2), "flat %s", b.FlatNumber)
		assert.Equal(t, BillingSqftRate, b.Breakdown.Method)
		assert.Equal(t, time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC), b.DueDate)
	}
}

func TestCalculateBillsVariable(t *testing.T) {
	settings := DefaultSettings()
	settings.BillingMethod = BillingVariable
	settings.SinkingFundMonthly = d("1000")

	flats := []Flat{
		{ID: "f1", Number: "A-101", AreaSqft: d("800"), Occupants: 2},
		{ID: "f2", Number: "A-102", AreaSqft: d("900"), Occupants: 3},
	}
	bills, err := CalculateBills(settings, BillingPeriodInput{
		Month:             5,
		Year:              2025,
		Flats:             flats,
		WaterTotal:        d("1500"),  // 5 occupants -> 300 per head
		FixedExpenseTotal: d("2400"),  // 1200 per flat
		SinkingFundTotal:  d("1000"),  // 500 per flat
	})
	require.NoError(t, err)
	require.Len(t, bills, 2)

	// 300*2 + 1200 + 500 and 300*3 + 1200 + 500
	assert.Equal(t, "2300.00", bills[0].Amount.StringFixed(2))
	assert.Equal(t, "2600.00", bills[1].Amount.StringFixed(2))

	b := bills[0].Breakdown
	assert.Equal(t, BillingVariable, b.Method)
	assert.Equal(t, "300.00", b.WaterRatePerOccupant.StringFixed(2))
	assert.Equal(t, "600.00", b.WaterCharge.StringFixed(2))
	assert.Equal(t, "1200.00", b.FixedExpenseShare.StringFixed(2))
	assert.Equal(t, "500.00", b.SinkingFundShare.StringFixed(2))
}

func TestCalculateBillsVariableSharedCosts(t *testing.T) {
	settings := DefaultSettings()
	settings.BillingMethod = BillingVariable

	flats := []Flat{
		{ID: "f1", Number: "A-101", AreaSqft: d("800"), Occupants: 2},
		{ID: "f2", Number: "A-102", AreaSqft: d("900"), Occupants: 3},
	}
	bills, err := CalculateBills(settings, BillingPeriodInput{
		Month:             7,
		Year:              2025,
		Flats:             flats,
		WaterTotal:        d("500"),
		FixedExpenseTotal: d("1000"),
		SinkingFundTotal:  d("200"),
	})
	require.NoError(t, err)
	require.Len(t, bills, 2)

	// 100*2 + 500 + 100 and 100*3 + 500 + 100
	assert.Equal(t, "800.00", bills[0].Amount.StringFixed(2))
	assert.Equal(t, "900.00", bills[1].Amount.StringFixed(2))
	assert.Equal(t, "100.00", bills[0].Breakdown.WaterRatePerOccupant.StringFixed(2))
}

func TestCalculateBillsVariableZeroOccupants(t *testing.T) {
	settings := DefaultSettings()
	settings.BillingMethod = BillingVariable

	flats := []Flat{
		{ID: "f1", Number: "A-101", AreaSqft: d("800"), Occupants: 0},
		{ID: "f2", Number: "A-102", AreaSqft: d("900"), Occupants: 0},
	}
	bills, err := CalculateBills(settings, BillingPeriodInput{
		Month:             6,
		Year:              2025,
		Flats:             flats,
		WaterTotal:        d("1000"),
		FixedExpenseTotal: d("2000"),
	})
	require.NoError(t, err)

	// Water cannot be apportioned with no occupants; only the fixed
	// share is billed.
	assert.Equal(t, "1000.00", bills[0].Amount.StringFixed(2))
	assert.Equal(t, "1000.00", bills[1].Amount.StringFixed(2))
}

func TestCalculateBillsNoFlats(t *testing.T) {
	_, err := CalculateBills(DefaultSettings(), BillingPeriodInput{Month: 4, Year: 2025})
	assert.ErrorIs(t, err, ErrNoFlats)
}

func TestCalculateBillsInvalidMonth(t *testing.T) {
	_, err := CalculateBills(DefaultSettings(), BillingPeriodInput{Month: 13, Year: 2025, Flats: testFlats()})
	assert.Error(t, err)
}

func TestCalculateBillsSqftRequiresPositiveRate(t *testing.T) {
	settings := DefaultSettings()
	settings.SqftRate = decimal.Zero
	_, err := CalculateBills(settings, BillingPeriodInput{Month: 4, Year: 2025, Flats: testFlats()})
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())

	s = DefaultSettings()
	s.BillingMethod = "per_head"
	assert.ErrorIs(t, s.Validate(), ErrInvalidBillingMethod)

	s = DefaultSettings()
	s.CashAccountCode = ""
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)

	s = DefaultSettings()
	s.DueGraceDays = -1
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
}

func TestWaterExpenseTotal(t *testing.T) {
	w := WaterExpense{
		TankerCharges:     d("4500"),
		GovernmentCharges: d("1200.50"),
		OtherCharges:      d("299.50"),
	}
	assert.Equal(t, "6000.00", w.Total().StringFixed(2))
}
