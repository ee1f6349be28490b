package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/money"
	"github.com/Origin-Inc/e-invoicing-backend/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

// LineItemRequest is one invoice line on the wire. Rate and amount are
// minor units.
type LineItemRequest struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	Rate        int64  `json:"rate"`
	Amount      int64  `json:"amount"`
}

// CreateInvoiceRequest is the canonical line-item create shape. Rates
// are basis points; amounts are minor units. Tax and discount each
// accept a rate, an absolute amount, or both in agreement. Status may
// be draft (the default) or sent to issue the invoice immediately.
type CreateInvoiceRequest struct {
	ClientID       string            `json:"clientId"`
	InvoiceNumber  string            `json:"invoice_number"`
	Currency       string            `json:"currency"`
	IssueDate      string            `json:"issue_date"`
	DueDate        string            `json:"due_date"`
	Status         string            `json:"status"`
	Items          []LineItemRequest `json:"items"`
	Subtotal       int64             `json:"subtotal"`
	TaxRate        *int64            `json:"taxRate"`
	TaxAmount      *int64            `json:"taxAmount"`
	DiscountRate   *int64            `json:"discountRate"`
	DiscountAmount *int64            `json:"discountAmount"`
	TotalAmount    int64             `json:"totalAmount"`
	Description    *string           `json:"description"`
	Notes          *string           `json:"notes"`
	Terms          *string           `json:"terms"`
}

// UpdateInvoiceRequest edits a draft. Nil fields are untouched. When
// Items is present the whole totals block is revalidated from the
// request.
type UpdateInvoiceRequest struct {
	ID             string             `json:"-"`
	IssueDate      *string            `json:"issue_date"`
	DueDate        *string            `json:"due_date"`
	Currency       *string            `json:"currency"`
	Items          *[]LineItemRequest `json:"items"`
	Subtotal       *int64             `json:"subtotal"`
	TaxRate        *int64             `json:"taxRate"`
	TaxAmount      *int64             `json:"taxAmount"`
	DiscountRate   *int64             `json:"discountRate"`
	DiscountAmount *int64             `json:"discountAmount"`
	TotalAmount    *int64             `json:"totalAmount"`
	Description    *string            `json:"description"`
	Notes          *string            `json:"notes"`
	Terms          *string            `json:"terms"`
}

type ListInvoiceRequest struct {
	pagination.Pagination
	Status   string `form:"status"`
	ClientID string `form:"client_id"`
}

// LineItemResponse mirrors a stored invoice line.
type LineItemResponse struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	Rate        int64  `json:"rate"`
	Amount      int64  `json:"amount"`
}

// ClientSummary is the embedded client on invoice reads.
type ClientSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Response struct {
	ID             string             `json:"id"`
	ClientID       string             `json:"client_id"`
	Client         *ClientSummary     `json:"client,omitempty"`
	InvoiceNumber  string             `json:"invoice_number"`
	Status         InvoiceStatus      `json:"status"`
	Currency       string             `json:"currency"`
	IssueDate      string             `json:"issue_date"`
	DueDate        string             `json:"due_date"`
	Items          []LineItemResponse `json:"items"`
	Subtotal       int64              `json:"subtotal"`
	TaxRate        *int64             `json:"taxRate,omitempty"`
	TaxAmount      int64              `json:"taxAmount"`
	DiscountRate   *int64             `json:"discountRate,omitempty"`
	DiscountAmount int64              `json:"discountAmount"`
	TotalAmount    int64              `json:"totalAmount"`
	SettledAmount  int64              `json:"settledAmount"`
	Description    *string            `json:"description,omitempty"`
	Notes          *string            `json:"notes,omitempty"`
	Terms          *string            `json:"terms,omitempty"`
	SentAt         *time.Time         `json:"sent_at,omitempty"`
	PaidAt         *time.Time         `json:"paid_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Items []Response `json:"items"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Response, error)
	Update(ctx context.Context, req UpdateInvoiceRequest) (*Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	Send(ctx context.Context, id string) (*Response, error)
	Cancel(ctx context.Context, id string, reason string) (*Response, error)
}

// ParseID parses an invoice id from its string form.
func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

// ParseDate parses a calendar date in the wire layout.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

var (
	ErrInvalidID            = errors.New("invalid_invoice_id")
	ErrNotFound             = errors.New("invoice_not_found")
	ErrClientNotFound       = errors.New("invoice_client_not_found")
	ErrInvalidItems         = errors.New("invalid_items")
	ErrInvalidDate          = errors.New("invalid_date")
	ErrDueBeforeIssue       = errors.New("due_before_issue")
	ErrInvalidCurrency      = errors.New("invalid_currency")
	ErrInvalidStatus        = errors.New("invalid_invoice_status")
	ErrNumberTaken          = errors.New("invoice_number_taken")
	ErrNotDraft             = errors.New("invoice_not_draft")
	ErrIllegalTransition    = errors.New("illegal_status_transition")
	ErrHasCompletedPayments = errors.New("invoice_has_completed_payments")
	ErrConflict             = errors.New("invoice_version_conflict")
)

// FromModel converts a stored invoice into its response shape, with the
// derived status computed against now.
func FromModel(inv Invoice, now time.Time) Response {
	items := make([]LineItemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, LineItemResponse{
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        int64(item.Rate),
			Amount:      int64(item.Amount),
		})
	}

	resp := Response{
		ID:             inv.ID.String(),
		ClientID:       inv.ClientID.String(),
		InvoiceNumber:  inv.InvoiceNumber,
		Status:         inv.EffectiveStatus(now),
		Currency:       inv.Currency,
		IssueDate:      inv.IssueDate.Format(DateLayout),
		DueDate:        inv.DueDate.Format(DateLayout),
		Items:          items,
		Subtotal:       int64(inv.SubtotalAmount),
		TaxAmount:      int64(inv.TaxAmount),
		DiscountAmount: int64(inv.DiscountAmount),
		TotalAmount:    int64(inv.TotalAmount),
		SettledAmount:  int64(inv.SettledAmount),
		Description:    inv.Description,
		Notes:          inv.Notes,
		Terms:          inv.Terms,
		SentAt:         inv.SentAt,
		PaidAt:         inv.PaidAt,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
	if inv.TaxRateBps != nil {
		rate := int64(*inv.TaxRateBps)
		resp.TaxRate = &rate
	}
	if inv.DiscountRateBps != nil {
		rate := int64(*inv.DiscountRateBps)
		resp.DiscountRate = &rate
	}
	return resp
}

// rateFromInt converts an optional basis-point value.
func rateFromInt(v *int64) *money.Rate {
	if v == nil {
		return nil
	}
	rate := money.Rate(*v)
	return &rate
}

// amountFromInt converts an optional minor-unit value.
func amountFromInt(v *int64) *money.Amount {
	if v == nil {
		return nil
	}
	amount := money.Amount(*v)
	return &amount
}

// TotalsInputFromRequest assembles the reconciliation input from the
// canonical create shape.
func TotalsInputFromRequest(items []LineItemRequest, subtotal int64, taxRate, taxAmount, discountRate, discountAmount *int64, total int64) TotalsInput {
	lines := make([]LineItemInput, 0, len(items))
	for _, item := range items {
		lines = append(lines, LineItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        money.Amount(item.Rate),
			Amount:      money.Amount(item.Amount),
		})
	}
	return TotalsInput{
		Items:          lines,
		Subtotal:       money.Amount(subtotal),
		TaxRate:        rateFromInt(taxRate),
		TaxAmount:      amountFromInt(taxAmount),
		DiscountRate:   rateFromInt(discountRate),
		DiscountAmount: amountFromInt(discountAmount),
		Total:          money.Amount(total),
	}
}
