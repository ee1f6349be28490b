package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/audit"
	"github.com/Origin-Inc/e-invoicing-backend/internal/clock"
	invoicedomain "github.com/Origin-Inc/e-invoicing-backend/internal/invoice/domain"
	"github.com/Origin-Inc/e-invoicing-backend/internal/money"
	paymentdomain "github.com/Origin-Inc/e-invoicing-backend/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestStats(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&paymentdomain.Payment{},
		&audit.Log{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	seed := func(status invoicedomain.InvoiceStatus, due time.Time, total, settled int64) {
		inv := invoicedomain.Invoice{
			ID:             node.Generate(),
			ClientID:       node.Generate(),
			InvoiceNumber:  "INV-" + node.Generate().String(),
			Status:         status,
			Currency:       "USD",
			IssueDate:      due.AddDate(0, -1, 0),
			DueDate:        due,
			SubtotalAmount: money.Amount(total),
			TotalAmount:    money.Amount(total),
			SettledAmount:  money.Amount(settled),
			CreatedAt:      testNow,
			UpdatedAt:      testNow,
		}
		require.NoError(t, db.Create(&inv).Error)
	}

	seed(invoicedomain.InvoiceStatusPaid, testNow.AddDate(0, 0, 10), 10000, 10000)
	seed(invoicedomain.InvoiceStatusSent, testNow.AddDate(0, 0, 10), 5000, 0)
	seed(invoicedomain.InvoiceStatusSent, testNow.AddDate(0, 0, -10), 3000, 1000)
	seed(invoicedomain.InvoiceStatusCancelled, testNow.AddDate(0, 0, 10), 9999, 0)

	trail := audit.Log{
		ID:         node.Generate(),
		Actor:      audit.SystemActor,
		Action:     "payment.completed",
		EntityType: "payment",
		EntityID:   node.Generate(),
		CreatedAt:  testNow,
	}
	require.NoError(t, db.Create(&trail).Error)

	svc := NewService(Params{DB: db, Log: zap.NewNop(), Clock: clock.Fixed{At: testNow}})
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Invoices.TotalCount)
	assert.Equal(t, int64(18000), stats.Invoices.TotalAmount)
	assert.Equal(t, int64(11000), stats.Invoices.PaidAmount)
	assert.Equal(t, int64(5000), stats.Invoices.PendingAmount)
	assert.Equal(t, int64(2000), stats.Invoices.OverdueAmount)
	assert.Equal(t, int64(1), stats.Invoices.OverdueCount)

	require.Len(t, stats.RecentInvoices, 4)
	// The past-due sent invoice reads as overdue.
	found := false
	for _, inv := range stats.RecentInvoices {
		if inv.Status == invoicedomain.InvoiceStatusOverdue {
			found = true
		}
	}
	assert.True(t, found)

	require.Len(t, stats.RecentActivity, 1)
	assert.Equal(t, "payment.completed", stats.RecentActivity[0].Action)
	assert.Equal(t, audit.SystemActor, stats.RecentActivity[0].Actor)
}
