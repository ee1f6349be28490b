package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/invoice/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormRepository struct{}

// Provide constructs the gorm-backed invoice repository.
func Provide() domain.Repository {
	return gormRepository{}
}

func (gormRepository) Insert(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Create(inv).Error
}

func (gormRepository) UpdateDraft(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Replace lines wholesale; items have no independent lifecycle.
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&domain.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(inv).Error
	})
}

func (gormRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (gormRepository) FindByNumber(ctx context.Context, db *gorm.DB, number string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).Where("invoice_number = ?", strings.TrimSpace(number)).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

var sortColumns = map[string]string{
	"invoice_number": "invoice_number",
	"issue_date":     "issue_date",
	"due_date":       "due_date",
	"total":          "total_amount",
	"status":         "status",
	"created_at":     "created_at",
}

func (gormRepository) List(ctx context.Context, db *gorm.DB, req domain.ListInvoiceRequest) ([]domain.Invoice, int64, error) {
	page := req.Pagination.Normalize()

	query := db.WithContext(ctx).Model(&domain.Invoice{})
	if status := strings.TrimSpace(req.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if raw := strings.TrimSpace(req.ClientID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, 0, domain.ErrInvalidID
		}
		query = query.Where("client_id = ?", id)
	}
	if search := strings.TrimSpace(page.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(invoice_number) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?",
			like, like,
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

	var invoices []domain.Invoice
	err := query.
		Preload("Items").
		Order(column + " " + page.SortOrder).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (gormRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.InvoiceStatus, at time.Time) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": at,
	}
	switch to {
	case domain.InvoiceStatusSent:
		updates["sent_at"] = at
	case domain.InvoiceStatusCancelled:
		updates["cancelled_at"] = at
	}

	result := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (gormRepository) LockForSettlement(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	query := tx.WithContext(ctx)
	// sqlite serializes the whole transaction; the row lock only
	// exists on postgres. The version check below remains the
	// portable guard either way.
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var inv domain.Invoice
	err := query.Where("id = ?", id).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (gormRepository) ApplySettlement(ctx context.Context, tx *gorm.DB, update domain.SettlementUpdate) error {
	result := tx.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ? AND version = ?", update.ID, update.Version).
		Updates(map[string]any{
			"settled_amount": update.Settled,
			"status":         update.Status,
			"paid_at":        update.PaidAt,
			"version":        update.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (gormRepository) CountCompletedPayments(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("payments").
		Where("invoice_id = ? AND status = ?", id, "completed").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (gormRepository) MarkOverdueBatch(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("status = ? AND due_date < ? AND settled_amount < total_amount", domain.InvoiceStatusSent, now).
		Order("due_date asc").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	err = db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id IN ? AND status = ?", ids, domain.InvoiceStatusSent).
		Updates(map[string]any{
			"status":     domain.InvoiceStatusOverdue,
			"updated_at": now,
		}).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (gormRepository) CountDueUnpaid(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("status IN ? AND due_date < ? AND settled_amount < total_amount",
			[]domain.InvoiceStatus{domain.InvoiceStatusSent, domain.InvoiceStatusOverdue}, now).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
