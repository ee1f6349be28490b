package events

import (
	"context"
	"testing"
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/clock"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newOutboxDB(t *testing.T) (*gorm.DB, Appender) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Event{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return db, NewOutbox(Params{GenID: node})
}

func TestAppendRollsBackWithTransaction(t *testing.T) {
	db, outbox := newOutboxDB(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := outbox.Append(ctx, tx, InvoiceCreated, InvoiceCreated+":1", datatypes.JSONMap{"k": "v"}); err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&Event{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRelayDrainsPending(t *testing.T) {
	db, outbox := newOutboxDB(t)
	ctx := context.Background()

	require.NoError(t, outbox.Append(ctx, db, PaymentCompleted, PaymentCompleted+":1", datatypes.JSONMap{"payment_id": "1"}))
	require.NoError(t, outbox.Append(ctx, db, InvoicePaid, InvoicePaid+":2:v1", datatypes.JSONMap{"invoice_id": "2"}))

	relay := NewRelay(RelayParams{DB: db, Log: zap.NewNop(), Clock: clock.Fixed{At: testNow}})

	drained, err := relay.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, drained)

	// Nothing left on the second pass.
	drained, err = relay.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, drained)

	var published int64
	require.NoError(t, db.Model(&Event{}).Where("published_at IS NOT NULL").Count(&published).Error)
	assert.Equal(t, int64(2), published)
}
