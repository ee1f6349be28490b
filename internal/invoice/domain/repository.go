package domain

import (
	"context"
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/money"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// SettlementUpdate rewrites the settlement state of a locked invoice.
// Version must match the value read under the lock; the update bumps it.
type SettlementUpdate struct {
	ID      snowflake.ID
	Version int64
	Settled money.Amount
	Status  InvoiceStatus
	PaidAt  *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, inv *Invoice) error
	UpdateDraft(ctx context.Context, db *gorm.DB, inv *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, req ListInvoiceRequest) ([]Invoice, int64, error)
	// UpdateStatus applies a manual transition conditionally on the
	// current status; it reports whether a row changed.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to InvoiceStatus, at time.Time) (bool, error)
	// LockForSettlement reads the invoice under a row lock inside tx.
	LockForSettlement(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Invoice, error)
	// ApplySettlement writes the new settled total with an optimistic
	// version check, returning ErrConflict when the version moved.
	ApplySettlement(ctx context.Context, tx *gorm.DB, update SettlementUpdate) error
	CountCompletedPayments(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	// MarkOverdueBatch persists the derived overdue status for up to
	// limit sent invoices past due at now. Returns ids marked.
	MarkOverdueBatch(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]snowflake.ID, error)
	CountDueUnpaid(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}
