// Package ledger keeps a double-entry record of money movement. Every
// entry debits and credits equal amounts; an unbalanced entry is a bug
// in the caller.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/money"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Account names the books money moves between.
type Account string

const (
	AccountReceivable   Account = "accounts_receivable"
	AccountCashClearing Account = "cash_clearing"
	AccountRevenue      Account = "revenue"
)

// Direction is the side of the entry a line lands on.
type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

var ErrUnbalanced = errors.New("unbalanced_ledger_entry")

// Line is one account movement within an entry.
type Line struct {
	Account   Account
	Direction Direction
	Amount    money.Amount
}

// Entry is a balanced set of lines sharing a reference.
type Entry struct {
	Reference string
	InvoiceID snowflake.ID
	PaymentID snowflake.ID
	Currency  string
	Lines     []Line
}

// Row is the persisted form of a single ledger line.
type Row struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	EntryID   snowflake.ID `gorm:"not null;index"`
	Reference string       `gorm:"type:text;not null"`
	InvoiceID snowflake.ID `gorm:"not null;index"`
	PaymentID snowflake.ID `gorm:"not null;index"`
	Account   Account      `gorm:"type:text;not null"`
	Direction Direction    `gorm:"type:text;not null"`
	Amount    money.Amount `gorm:"not null"`
	Currency  string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Row) TableName() string { return "ledger_rows" }

// ValidateBalanced checks that debits equal credits and every amount
// is positive.
func ValidateBalanced(lines []Line) error {
	if len(lines) < 2 {
		return ErrUnbalanced
	}
	var debits, credits money.Amount
	for _, line := range lines {
		if line.Amount <= 0 {
			return ErrUnbalanced
		}
		switch line.Direction {
		case Debit:
			debits += line.Amount
		case Credit:
			credits += line.Amount
		default:
			return ErrUnbalanced
		}
	}
	if debits != credits {
		return ErrUnbalanced
	}
	return nil
}

// Recorder persists balanced entries inside the caller's transaction.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
}

type Params struct {
	fx.In

	GenID *snowflake.Node
}

type recorder struct {
	genID *snowflake.Node
}

// NewRecorder constructs the gorm-backed ledger recorder.
func NewRecorder(p Params) Recorder {
	return &recorder{genID: p.GenID}
}

func (r *recorder) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if err := ValidateBalanced(entry.Lines); err != nil {
		return err
	}

	entryID := r.genID.Generate()
	now := time.Now().UTC()
	rows := make([]Row, 0, len(entry.Lines))
	for _, line := range entry.Lines {
		rows = append(rows, Row{
			ID:        r.genID.Generate(),
			EntryID:   entryID,
			Reference: entry.Reference,
			InvoiceID: entry.InvoiceID,
			PaymentID: entry.PaymentID,
			Account:   line.Account,
			Direction: line.Direction,
			Amount:    line.Amount,
			Currency:  entry.Currency,
			CreatedAt: now,
		})
	}
	return tx.WithContext(ctx).Create(&rows).Error
}

var Module = fx.Module("ledger",
	fx.Provide(NewRecorder),
)
