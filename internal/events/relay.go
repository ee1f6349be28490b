package events

import (
	"context"
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/clock"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	relayInterval  = 5 * time.Second
	relayBatchSize = 100
)

// Relay drains the outbox. Delivery here is the structured log; a
// broker publisher would slot in behind the same loop.
type Relay struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

type RelayParams struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

func NewRelay(p RelayParams) *Relay {
	return &Relay{
		db:    p.DB,
		log:   p.Log.Named("events.relay"),
		clock: p.Clock,
	}
}

// DrainOnce publishes one batch of pending events and marks them
// drained. Returns how many it published.
func (r *Relay) DrainOnce(ctx context.Context) (int, error) {
	pending, err := Pending(ctx, r.db, relayBatchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	ids := make([]snowflake.ID, 0, len(pending))
	for _, event := range pending {
		r.log.Info("event published",
			zap.String("event", event.Name),
			zap.String("event_id", event.ID.String()),
			zap.String("dedupe_key", event.DedupeKey),
			zap.Any("payload", map[string]any(event.Payload)),
		)
		ids = append(ids, event.ID)
	}

	if err := MarkPublished(ctx, r.db, ids, r.clock.Now()); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (r *Relay) run(ctx context.Context) {
	ticker := time.NewTicker(relayInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.DrainOnce(ctx); err != nil {
				r.log.Error("outbox drain failed", zap.Error(err))
			}
		}
	}
}

func registerRelay(lc fx.Lifecycle, r *Relay) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				r.run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
