package domain

import (
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/money"
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Valid reports whether the status is one of the closed set.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transitions.
func (s InvoiceStatus) Terminal() bool {
	return s == InvoiceStatusCancelled
}

// DateLayout is the wire format for issue and due dates.
const DateLayout = "2006-01-02"

// Invoice is a billing document issued to a client. All monetary
// columns are minor units; rates are basis points.
type Invoice struct {
	ID              snowflake.ID      `gorm:"primaryKey"`
	ClientID        snowflake.ID      `gorm:"not null;index"`
	InvoiceNumber   string            `gorm:"type:text;not null;uniqueIndex:ux_invoices_number"`
	Status          InvoiceStatus     `gorm:"type:text;not null;default:'draft'"`
	Currency        string            `gorm:"type:text;not null;default:'USD'"`
	IssueDate       time.Time         `gorm:"not null"`
	DueDate         time.Time         `gorm:"not null"`
	SubtotalAmount  money.Amount      `gorm:"not null"`
	TaxRateBps      *money.Rate       `gorm:"column:tax_rate_bps"`
	TaxAmount       money.Amount      `gorm:"not null;default:0"`
	DiscountRateBps *money.Rate       `gorm:"column:discount_rate_bps"`
	DiscountAmount  money.Amount      `gorm:"not null;default:0"`
	TotalAmount     money.Amount      `gorm:"not null"`
	SettledAmount   money.Amount      `gorm:"not null;default:0"`
	// Version guards the settled amount against concurrent payment
	// application; every settlement update must match and bump it.
	Version     int64             `gorm:"not null;default:0"`
	Description *string           `gorm:"type:text"`
	Notes       *string           `gorm:"type:text"`
	Terms       *string           `gorm:"type:text"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	SentAt      *time.Time        `gorm:"column:sent_at"`
	PaidAt      *time.Time        `gorm:"column:paid_at"`
	CancelledAt *time.Time        `gorm:"column:cancelled_at"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	Items       []InvoiceItem     `gorm:"foreignKey:InvoiceID"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is a single billable line within an invoice. Items are
// owned by their invoice and have no independent lifecycle.
type InvoiceItem struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	InvoiceID   snowflake.ID `gorm:"not null;index"`
	Description string       `gorm:"type:text;not null"`
	Quantity    int64        `gorm:"not null"`
	Rate        money.Amount `gorm:"not null"`
	Amount      money.Amount `gorm:"not null"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// EffectiveStatus derives overdue at read time: a sent invoice past its
// due date without full settlement reads as overdue whether or not the
// reconciliation worker has persisted it yet.
func (i Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if i.Status == InvoiceStatusSent && now.After(i.DueDate) && i.SettledAmount < i.TotalAmount {
		return InvoiceStatusOverdue
	}
	return i.Status
}
