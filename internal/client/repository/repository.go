package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Origin-Inc/e-invoicing-backend/internal/client/domain"
	"github.com/Origin-Inc/e-invoicing-backend/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type gormRepository struct{}

// Provide constructs the gorm-backed client repository.
func Provide() domain.Repository {
	return gormRepository{}
}

func (gormRepository) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Create(client).Error
}

func (gormRepository) Update(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Save(client).Error
}

func (gormRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (gormRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

var sortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"company":    "company",
	"created_at": "created_at",
}

func (gormRepository) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]domain.Client, int64, error) {
	page = page.Normalize()

	query := db.WithContext(ctx).Model(&domain.Client{})
	if search := strings.TrimSpace(page.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(COALESCE(company, '')) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[strings.TrimSpace(page.SortBy)]
	if !ok {
		column = "created_at"
	}

	var clients []domain.Client
	err := query.
		Order(column + " " + page.SortOrder).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (gormRepository) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Client{}).Error
}

func (gormRepository) CountInvoices(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("invoices").
		Where("client_id = ?", id).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
