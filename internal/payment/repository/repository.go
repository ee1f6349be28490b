package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Origin-Inc/e-invoicing-backend/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type gormRepository struct{}

// Provide constructs the gorm-backed payment repository.
func Provide() domain.Repository {
	return gormRepository{}
}

func (gormRepository) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (gormRepository) Update(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Save(payment).Error
}

func (gormRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

var sortColumns = map[string]string{
	"payment_date": "payment_date",
	"amount":       "amount",
	"status":       "status",
	"created_at":   "created_at",
}

func (gormRepository) List(ctx context.Context, db *gorm.DB, req domain.ListPaymentRequest) ([]domain.Payment, int64, error) {
	page := req.Pagination.Normalize()

	query := db.WithContext(ctx).Model(&domain.Payment{})
	if raw := strings.TrimSpace(req.InvoiceID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, 0, domain.ErrInvalidID
		}
		query = query.Where("invoice_id = ?", id)
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(page.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(COALESCE(reference, '')) LIKE ?", like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[strings.TrimSpace(page.SortBy)]
	if !ok {
		column = "created_at"
	}

	var payments []domain.Payment
	err := query.
		Order(column + " " + page.SortOrder).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (gormRepository) SumCompleted(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (int64, error) {
	var sum int64
	err := db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("invoice_id = ? AND status = ?", invoiceID, domain.StatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}
