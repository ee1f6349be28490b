package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	invoicedomain "github.com/Origin-Inc/e-invoicing-backend/internal/invoice/domain"
	"github.com/Origin-Inc/e-invoicing-backend/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

// CreatePaymentRequest records money received against an invoice.
// Status defaults to pending; "completed" applies settlement
// immediately in the same transaction.
type CreatePaymentRequest struct {
	InvoiceID   string  `json:"invoiceId"`
	Amount      int64   `json:"amount"`
	PaymentDate string  `json:"payment_date"`
	Method      string  `json:"method"`
	Status      *string `json:"status"`
	Reference   *string `json:"reference"`
	Notes       *string `json:"notes"`
}

// UpdateStatusRequest moves a payment through its lifecycle.
type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

type ListPaymentRequest struct {
	pagination.Pagination
	InvoiceID string `form:"invoice_id"`
	Status    string `form:"status"`
}

// InvoiceSummary is the embedded invoice on payment detail reads.
type InvoiceSummary struct {
	ID            string `json:"id"`
	InvoiceNumber string `json:"invoice_number"`
	Status        string `json:"status"`
	TotalAmount   int64  `json:"totalAmount"`
}

type Response struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	Invoice     *InvoiceSummary `json:"invoice,omitempty"`
	Amount      int64           `json:"amount"`
	Currency    string          `json:"currency"`
	PaymentDate string          `json:"payment_date"`
	Method      PaymentMethod   `json:"method"`
	Status      PaymentStatus   `json:"status"`
	Reference   *string         `json:"reference,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ListPaymentResponse struct {
	pagination.PageInfo
	Items []Response `json:"items"`
}

type Service interface {
	Create(ctx context.Context, req CreatePaymentRequest) (*Response, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListPaymentRequest) (ListPaymentResponse, error)
}

// ParseID parses a payment id from its string form.
func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

var (
	ErrInvalidID         = errors.New("invalid_payment_id")
	ErrNotFound          = errors.New("payment_not_found")
	ErrInvalidAmount     = errors.New("invalid_payment_amount")
	ErrInvalidMethod     = errors.New("invalid_payment_method")
	ErrInvalidStatus     = errors.New("invalid_payment_status")
	ErrInvalidDate       = errors.New("invalid_payment_date")
	ErrInvoiceNotFound   = errors.New("payment_invoice_not_found")
	ErrInvoiceNotPayable = errors.New("payment_invoice_not_payable")
	ErrOverpayment       = errors.New("payment_exceeds_balance")
	ErrIllegalTransition = errors.New("illegal_payment_transition")
)

// FromModel converts a stored payment into its response shape.
func FromModel(p Payment) Response {
	return Response{
		ID:          p.ID.String(),
		InvoiceID:   p.InvoiceID.String(),
		Amount:      int64(p.Amount),
		Currency:    p.Currency,
		PaymentDate: p.PaymentDate.Format(invoicedomain.DateLayout),
		Method:      p.Method,
		Status:      p.Status,
		Reference:   p.Reference,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
