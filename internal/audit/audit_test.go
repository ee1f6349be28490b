package audit

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRecordAndReadTrail(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Log{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	recorder := NewRecorder(Params{GenID: node})

	ctx := context.Background()
	paymentID := node.Generate()
	otherID := node.Generate()

	require.NoError(t, recorder.Record(ctx, db, "payment.created", "payment", paymentID, datatypes.JSONMap{"amount": int64(100)}))
	require.NoError(t, recorder.Record(ctx, db, "payment.completed", "payment", paymentID, nil))
	require.NoError(t, recorder.Record(ctx, db, "payment.created", "payment", otherID, nil))

	trail, err := ForEntity(ctx, db, "payment", paymentID, 10)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	for _, row := range trail {
		assert.Equal(t, paymentID, row.EntityID)
	}
}
