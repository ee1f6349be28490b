package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	Update(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, req ListPaymentRequest) ([]Payment, int64, error)
	// SumCompleted totals completed payments against one invoice.
	SumCompleted(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (int64, error)
}
