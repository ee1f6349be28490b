package domain

import (
	"context"

	"github.com/Origin-Inc/e-invoicing-backend/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, client *Client) error
	Update(ctx context.Context, db *gorm.DB, client *Client) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Client, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Client, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]Client, int64, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountInvoices(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
