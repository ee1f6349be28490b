// Package dashboard serves the aggregate read models behind the
// landing screen: invoice totals by bucket and recent activity.
package dashboard

import (
	"context"
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/audit"
	"github.com/Origin-Inc/e-invoicing-backend/internal/clock"
	invoicedomain "github.com/Origin-Inc/e-invoicing-backend/internal/invoice/domain"
	paymentdomain "github.com/Origin-Inc/e-invoicing-backend/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const recentLimit = 5

// InvoiceStats buckets the invoice book by settlement state. Amounts
// are minor units. Pending covers sent invoices not yet due; overdue
// uses the derived definition, due date passed without full settlement.
type InvoiceStats struct {
	TotalCount    int64 `json:"total_count"`
	TotalAmount   int64 `json:"total_amount"`
	PaidAmount    int64 `json:"paid_amount"`
	PendingAmount int64 `json:"pending_amount"`
	OverdueAmount int64 `json:"overdue_amount"`
	OverdueCount  int64 `json:"overdue_count"`
}

// ActivityEntry is one audit row flattened for the activity feed.
type ActivityEntry struct {
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	At         time.Time `json:"at"`
}

// Stats is the full dashboard payload.
type Stats struct {
	Invoices       InvoiceStats             `json:"invoices"`
	RecentInvoices []invoicedomain.Response `json:"recent_invoices"`
	RecentPayments []paymentdomain.Response `json:"recent_payments"`
	RecentActivity []ActivityEntry          `json:"recent_activity"`
}

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewService(p Params) Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("dashboard.service"),
		clock: p.Clock,
	}
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	now := s.clock.Now()

	var out Stats
	if err := s.invoiceStats(ctx, now, &out.Invoices); err != nil {
		return nil, err
	}

	var invoices []invoicedomain.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items").
		Order("created_at desc").
		Limit(recentLimit).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	out.RecentInvoices = make([]invoicedomain.Response, 0, len(invoices))
	for _, inv := range invoices {
		out.RecentInvoices = append(out.RecentInvoices, invoicedomain.FromModel(inv, now))
	}

	var payments []paymentdomain.Payment
	err = s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(recentLimit).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	out.RecentPayments = make([]paymentdomain.Response, 0, len(payments))
	for _, p := range payments {
		out.RecentPayments = append(out.RecentPayments, paymentdomain.FromModel(p))
	}

	trail, err := audit.Recent(ctx, s.db, recentLimit)
	if err != nil {
		return nil, err
	}
	out.RecentActivity = make([]ActivityEntry, 0, len(trail))
	for _, row := range trail {
		out.RecentActivity = append(out.RecentActivity, ActivityEntry{
			Actor:      row.Actor,
			Action:     row.Action,
			EntityType: row.EntityType,
			EntityID:   row.EntityID.String(),
			At:         row.CreatedAt,
		})
	}

	return &out, nil
}

func (s *service) invoiceStats(ctx context.Context, now time.Time, stats *InvoiceStats) error {
	type row struct {
		Count   int64
		Total   int64
		Settled int64
	}

	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&invoicedomain.Invoice{}).
			Select("COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total, COALESCE(SUM(settled_amount), 0) AS settled")
	}

	var all row
	err := base().
		Where("status <> ?", invoicedomain.InvoiceStatusCancelled).
		Scan(&all).Error
	if err != nil {
		return err
	}
	stats.TotalCount = all.Count
	stats.TotalAmount = all.Total
	stats.PaidAmount = all.Settled

	var pending row
	err = base().
		Where("status = ? AND due_date >= ?", invoicedomain.InvoiceStatusSent, now).
		Scan(&pending).Error
	if err != nil {
		return err
	}
	stats.PendingAmount = pending.Total - pending.Settled

	var overdue row
	err = base().
		Where("status IN ? AND due_date < ? AND settled_amount < total_amount",
			[]invoicedomain.InvoiceStatus{invoicedomain.InvoiceStatusSent, invoicedomain.InvoiceStatusOverdue}, now).
		Scan(&overdue).Error
	if err != nil {
		return err
	}
	stats.OverdueAmount = overdue.Total - overdue.Settled
	stats.OverdueCount = overdue.Count

	return nil
}

var Module = fx.Module("dashboard.service",
	fx.Provide(NewService),
)
