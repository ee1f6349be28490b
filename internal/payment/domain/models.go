package domain

import (
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/money"
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// PaymentMethod is how the money arrived.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheck        PaymentMethod = "check"
	MethodOther        PaymentMethod = "other"
)

// Valid reports whether the method is one of the closed set.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodCheck, MethodOther:
		return true
	default:
		return false
	}
}

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
	StatusRefunded  PaymentStatus = "refunded"
)

// Valid reports whether the status is one of the closed set.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a payment may move between statuses.
// Pending resolves to completed or failed; only a completed payment
// can be refunded.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusCompleted || to == StatusFailed
	case StatusCompleted:
		return to == StatusRefunded
	default:
		return false
	}
}

// Payment records money received against an invoice. Amount is minor
// units in the invoice currency.
type Payment struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	InvoiceID   snowflake.ID      `gorm:"not null;index"`
	Amount      money.Amount      `gorm:"not null"`
	Currency    string            `gorm:"type:text;not null"`
	PaymentDate time.Time         `gorm:"not null"`
	Method      PaymentMethod     `gorm:"type:text;not null"`
	Status      PaymentStatus     `gorm:"type:text;not null;default:'pending';index"`
	Reference   *string           `gorm:"type:text"`
	Notes       *string           `gorm:"type:text"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
