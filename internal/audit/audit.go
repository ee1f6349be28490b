// Package audit keeps an append-only trail of state changes.
package audit

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Log is one audit row. Rows are written inside the transaction that
// produced the change and never updated.
// SystemActor is recorded until an identity layer attributes changes
// to individual users.
const SystemActor = "system"

type Log struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	Actor      string            `gorm:"type:text;not null;default:'system'"`
	Action     string            `gorm:"type:text;not null;index"`
	EntityType string            `gorm:"type:text;not null;index:idx_audit_entity"`
	EntityID   snowflake.ID      `gorm:"not null;index:idx_audit_entity"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// TableName sets the database table name.
func (Log) TableName() string { return "audit_logs" }

// Recorder appends audit rows.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, action, entityType string, entityID snowflake.ID, metadata datatypes.JSONMap) error
}

type Params struct {
	fx.In

	GenID *snowflake.Node
}

type recorder struct {
	genID *snowflake.Node
}

// NewRecorder constructs the gorm-backed audit recorder.
func NewRecorder(p Params) Recorder {
	return &recorder{genID: p.GenID}
}

func (r *recorder) Record(ctx context.Context, tx *gorm.DB, action, entityType string, entityID snowflake.ID, metadata datatypes.JSONMap) error {
	row := Log{
		ID:         r.genID.Generate(),
		Actor:      SystemActor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&row).Error
}

// ForEntity lists the trail for one entity, newest first.
func ForEntity(ctx context.Context, db *gorm.DB, entityType string, entityID snowflake.ID, limit int) ([]Log, error) {
	var rows []Log
	err := db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Recent lists the latest rows across all entities, newest first.
func Recent(ctx context.Context, db *gorm.DB, limit int) ([]Log, error) {
	var rows []Log
	err := db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

var Module = fx.Module("audit",
	fx.Provide(NewRecorder),
)
