package domain

import (
	"errors"
	"testing"

	"github.com/Origin-Inc/e-invoicing-backend/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rate(v int64) *money.Rate {
	r := money.Rate(v)
	return &r
}

func amount(v int64) *money.Amount {
	a := money.Amount(v)
	return &a
}

// Two items (2 @ 50.00, 1 @ 25.00), subtotal 125.00, 10% tax, no
// discount, total 137.50.
func twoItemInput() TotalsInput {
	return TotalsInput{
		Items: []LineItemInput{
			{Description: "Design work", Quantity: 2, Rate: 5000, Amount: 10000},
			{Description: "Review", Quantity: 1, Rate: 2500, Amount: 2500},
		},
		Subtotal: 12500,
		TaxRate:  rate(1000),
		Total:    13750,
	}
}

func TestReconcileTotals(t *testing.T) {
	totals, err := ReconcileTotals(twoItemInput())
	require.NoError(t, err)
	assert.Equal(t, money.Amount(12500), totals.Subtotal)
	assert.Equal(t, money.Amount(1250), totals.Tax)
	assert.Equal(t, money.Amount(0), totals.Discount)
	assert.Equal(t, money.Amount(13750), totals.Total)
}

func TestReconcileTotalsRejectsTotalMismatch(t *testing.T) {
	in := twoItemInput()
	in.Total = 14000

	_, err := ReconcileTotals(in)
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "totalAmount", fieldErr.Field)
	assert.Equal(t, "137.50", fieldErr.Expected)
	assert.Equal(t, "140.00", fieldErr.Actual)
}

func TestReconcileTotalsRejectsItemAmountMismatch(t *testing.T) {
	in := twoItemInput()
	in.Items[0].Amount = 9900
	in.Subtotal = 12400
	in.Total = 13640

	_, err := ReconcileTotals(in)
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "items[0].amount", fieldErr.Field)
	assert.Equal(t, "100.00", fieldErr.Expected)
	assert.Equal(t, "99.00", fieldErr.Actual)
}

func TestReconcileTotalsRejectsSubtotalMismatch(t *testing.T) {
	in := twoItemInput()
	in.Subtotal = 12000
	in.Total = 13200

	_, err := ReconcileTotals(in)
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "subtotal", fieldErr.Field)
}

func TestReconcileTotalsRejectsZeroQuantity(t *testing.T) {
	in := twoItemInput()
	in.Items[0].Quantity = 0

	_, err := ReconcileTotals(in)
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "items[0].quantity", fieldErr.Field)
}

func TestReconcileTotalsRejectsNoItems(t *testing.T) {
	_, err := ReconcileTotals(TotalsInput{})
	assert.True(t, errors.Is(err, ErrInvalidItems))
}

func TestReconcileTotalsRateAndAmountAgree(t *testing.T) {
	in := twoItemInput()
	in.TaxAmount = amount(1250)

	totals, err := ReconcileTotals(in)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(1250), totals.Tax)
}

func TestReconcileTotalsRateAndAmountWithinTolerance(t *testing.T) {
	in := twoItemInput()
	// One minor unit off the derived 12.50; allowed.
	in.TaxAmount = amount(1249)

	totals, err := ReconcileTotals(in)
	require.NoError(t, err)
	// The rate stays authoritative.
	assert.Equal(t, money.Amount(1250), totals.Tax)
}

func TestReconcileTotalsRejectsInconsistentTax(t *testing.T) {
	in := twoItemInput()
	in.TaxAmount = amount(2000)

	_, err := ReconcileTotals(in)
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "taxAmount", fieldErr.Field)
	assert.Equal(t, "12.50", fieldErr.Expected)
	assert.Equal(t, "20.00", fieldErr.Actual)
}

func TestReconcileTotalsAbsoluteTaxOnly(t *testing.T) {
	in := twoItemInput()
	in.TaxRate = nil
	in.TaxAmount = amount(600)
	in.Total = 13100

	totals, err := ReconcileTotals(in)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(600), totals.Tax)
}

func TestReconcileTotalsDiscount(t *testing.T) {
	in := twoItemInput()
	in.DiscountRate = rate(500) // 5% of 125.00 = 6.25
	in.Total = 13125

	totals, err := ReconcileTotals(in)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(625), totals.Discount)
	assert.Equal(t, money.Amount(13125), totals.Total)
}

func TestReconcileTotalsRejectsNegativeTotal(t *testing.T) {
	in := TotalsInput{
		Items:          []LineItemInput{{Description: "x", Quantity: 1, Rate: 100, Amount: 100}},
		Subtotal:       100,
		DiscountAmount: amount(500),
		Total:          -400,
	}

	_, err := ReconcileTotals(in)
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "negative_total", fieldErr.Code)
}
