// Package events records domain events in a transactional outbox so
// that state changes and their notifications commit atomically.
package events

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	InvoiceCreated   = "invoice.created"
	InvoiceSent      = "invoice.sent"
	InvoicePaid      = "invoice.paid"
	InvoiceCancelled = "invoice.cancelled"
	InvoiceOverdue   = "invoice.overdue"

	PaymentCreated   = "payment.created"
	PaymentCompleted = "payment.completed"
	PaymentFailed    = "payment.failed"
	PaymentRefunded  = "payment.refunded"
)

// Event is one outbox row. Rows are written inside the transaction
// that produced the change and drained by a relay later.
type Event struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	Name        string            `gorm:"type:text;not null;index"`
	DedupeKey   string            `gorm:"type:text;not null;index:idx_outbox_dedupe"`
	Payload     datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
	PublishedAt *time.Time        `gorm:"column:published_at;index"`
}

// TableName sets the database table name.
func (Event) TableName() string { return "outbox_events" }
