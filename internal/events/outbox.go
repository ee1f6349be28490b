package events

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Appender writes outbox rows. Callers pass the transaction handle so
// the event commits or rolls back with the change it describes. The key
// identifies the occurrence so downstream consumers can deduplicate
// redelivered events.
type Appender interface {
	Append(ctx context.Context, tx *gorm.DB, name, key string, payload datatypes.JSONMap) error
}

type Params struct {
	fx.In

	GenID *snowflake.Node
}

type outbox struct {
	genID *snowflake.Node
}

// NewOutbox constructs the gorm-backed outbox appender.
func NewOutbox(p Params) Appender {
	return &outbox{genID: p.GenID}
}

func (o *outbox) Append(ctx context.Context, tx *gorm.DB, name, key string, payload datatypes.JSONMap) error {
	event := Event{
		ID:        o.genID.Generate(),
		Name:      name,
		DedupeKey: key,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&event).Error
}

// Pending returns unpublished events in commit order, up to limit.
func Pending(ctx context.Context, db *gorm.DB, limit int) ([]Event, error) {
	var rows []Event
	err := db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_at asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkPublished stamps the given events as drained.
func MarkPublished(ctx context.Context, db *gorm.DB, ids []snowflake.ID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&Event{}).
		Where("id IN ?", ids).
		Update("published_at", at).Error
}

var Module = fx.Module("events",
	fx.Provide(NewOutbox),
	fx.Provide(NewRelay),
	fx.Invoke(registerRelay),
)
