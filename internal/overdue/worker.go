// Package overdue runs the reconciliation pass that persists the
// overdue status for sent invoices past their due date. Reads already
// derive overdue on the fly; the worker keeps stored rows and list
// filters in agreement with what readers see.
package overdue

import (
	"context"
	"fmt"
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/clock"
	"github.com/Origin-Inc/e-invoicing-backend/internal/config"
	"github.com/Origin-Inc/e-invoicing-backend/internal/events"
	invoicedomain "github.com/Origin-Inc/e-invoicing-backend/internal/invoice/domain"
	"github.com/Origin-Inc/e-invoicing-backend/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPollInterval = time.Minute
	defaultBatchSize    = 100
)

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Repo   invoicedomain.Repository
	Outbox events.Appender
}

// Worker is the overdue reconciliation loop.
type Worker struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    invoicedomain.Repository
	outbox  events.Appender
	metrics *metrics.OverdueMetrics

	interval time.Duration
	batch    int
}

// NewWorker constructs the worker from config without starting it.
func NewWorker(p Params) *Worker {
	interval := p.Config.Overdue.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	batch := p.Config.Overdue.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return &Worker{
		db:     p.DB,
		log:    p.Log.Named("overdue.worker"),
		clock:  p.Clock,
		repo:   p.Repo,
		outbox: p.Outbox,
		metrics: metrics.OverdueWithConfig(metrics.Config{
			ServiceName: "einvoicing",
			Environment: p.Config.Environment,
		}),
		interval: interval,
		batch:    batch,
	}
}

// RunOnce performs a single reconciliation pass and returns how many
// invoices it marked overdue.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	now := w.clock.Now()

	var marked int
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := w.repo.MarkOverdueBatch(ctx, tx, now, w.batch)
		if err != nil {
			return err
		}
		for _, id := range ids {
			// An invoice refunded back to sent can lapse overdue again;
			// the date keeps each lapse distinct.
			key := fmt.Sprintf("%s:%s:%s", events.InvoiceOverdue, id.String(), now.Format(invoicedomain.DateLayout))
			err := w.outbox.Append(ctx, tx, events.InvoiceOverdue, key, datatypes.JSONMap{
				"invoice_id": id.String(),
			})
			if err != nil {
				return err
			}
		}
		marked = len(ids)
		return nil
	})
	if err != nil {
		w.metrics.IncRunError()
		return 0, err
	}

	w.metrics.AddMarked(marked)
	if backlog, err := w.repo.CountDueUnpaid(ctx, w.db, now); err == nil {
		w.metrics.SetBacklog(backlog)
	}

	if marked > 0 {
		w.log.Info("invoices marked overdue", zap.Int("count", marked))
	}
	return marked, nil
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.log.Error("overdue pass failed", zap.Error(err))
			}
		}
	}
}

func register(lc fx.Lifecycle, w *Worker, cfg config.Config) {
	if !cfg.Overdue.Enabled {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				w.run(ctx)
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

var Module = fx.Module("overdue.worker",
	fx.Provide(NewWorker),
	fx.Invoke(register),
)
