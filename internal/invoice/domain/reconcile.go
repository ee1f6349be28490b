package domain

import (
	"fmt"
	"strconv"

	"github.com/Origin-Inc/e-invoicing-backend/internal/money"
)

// FieldError reports a reconciliation failure on a single field,
// carrying the expected and actual values for the caller.
type FieldError struct {
	Field    string
	Code     string
	Expected string
	Actual   string
}

func (e *FieldError) Error() string {
	if e.Expected == "" && e.Actual == "" {
		return e.Code + ": " + e.Field
	}
	return fmt.Sprintf("%s: %s (expected %s, got %s)", e.Code, e.Field, e.Expected, e.Actual)
}

func fieldError(field, code string, expected, actual money.Amount) *FieldError {
	return &FieldError{
		Field:    field,
		Code:     code,
		Expected: expected.String(),
		Actual:   actual.String(),
	}
}

// LineItemInput is one candidate invoice line.
type LineItemInput struct {
	Description string
	Quantity    int64
	Rate        money.Amount
	Amount      money.Amount
}

// TotalsInput is the declared arithmetic of a candidate invoice.
// Tax and discount each accept a rate, an absolute amount, or both;
// when both are present they must agree within money.Tolerance.
type TotalsInput struct {
	Items          []LineItemInput
	Subtotal       money.Amount
	TaxRate        *money.Rate
	TaxAmount      *money.Amount
	DiscountRate   *money.Rate
	DiscountAmount *money.Amount
	Total          money.Amount
}

// Totals is the normalized, internally consistent result.
type Totals struct {
	Subtotal money.Amount
	Tax      money.Amount
	Discount money.Amount
	Total    money.Amount
}

// ReconcileTotals validates every arithmetic invariant of a candidate
// invoice and returns the normalized totals. The rate is the source of
// truth when supplied; an absolute amount alongside it must agree.
func ReconcileTotals(in TotalsInput) (Totals, error) {
	if len(in.Items) == 0 {
		return Totals{}, ErrInvalidItems
	}

	var subtotal money.Amount
	for idx, item := range in.Items {
		field := "items[" + strconv.Itoa(idx) + "]"
		if item.Quantity <= 0 {
			return Totals{}, &FieldError{
				Field:    field + ".quantity",
				Code:     "invalid_quantity",
				Expected: "> 0",
				Actual:   strconv.FormatInt(item.Quantity, 10),
			}
		}
		if item.Rate < 0 {
			return Totals{}, &FieldError{
				Field:    field + ".rate",
				Code:     "invalid_rate",
				Expected: ">= 0.00",
				Actual:   item.Rate.String(),
			}
		}
		expected := money.Mul(item.Rate, item.Quantity)
		if item.Amount != expected {
			return Totals{}, fieldError(field+".amount", "amount_mismatch", expected, item.Amount)
		}
		subtotal += item.Amount
	}

	if in.Subtotal != subtotal {
		return Totals{}, fieldError("subtotal", "subtotal_mismatch", subtotal, in.Subtotal)
	}

	tax, err := resolveAdjustment("tax", subtotal, in.TaxRate, in.TaxAmount)
	if err != nil {
		return Totals{}, err
	}
	discount, err := resolveAdjustment("discount", subtotal, in.DiscountRate, in.DiscountAmount)
	if err != nil {
		return Totals{}, err
	}

	total := subtotal + tax - discount
	if total < 0 {
		return Totals{}, fieldError("totalAmount", "negative_total", 0, total)
	}
	if !money.WithinTolerance(in.Total, total) {
		return Totals{}, fieldError("totalAmount", "total_mismatch", total, in.Total)
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    total,
	}, nil
}

func resolveAdjustment(name string, subtotal money.Amount, rate *money.Rate, amount *money.Amount) (money.Amount, error) {
	if rate != nil && *rate < 0 {
		return 0, &FieldError{Field: name + "Rate", Code: "invalid_" + name + "_rate", Expected: ">= 0", Actual: strconv.FormatInt(int64(*rate), 10)}
	}
	if amount != nil && *amount < 0 {
		return 0, fieldError(name+"Amount", "invalid_"+name+"_amount", 0, *amount)
	}

	switch {
	case rate != nil:
		derived := rate.Apply(subtotal)
		if amount != nil && !money.WithinTolerance(*amount, derived) {
			return 0, fieldError(name+"Amount", name+"_mismatch", derived, *amount)
		}
		return derived, nil
	case amount != nil:
		return *amount, nil
	default:
		return 0, nil
	}
}
