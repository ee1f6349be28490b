package observability

import (
	"github.com/Origin-Inc/e-invoicing-backend/internal/config"
	"github.com/Origin-Inc/e-invoicing-backend/internal/observability/logger"
	"github.com/Origin-Inc/e-invoicing-backend/internal/observability/metrics"
	"github.com/Origin-Inc/e-invoicing-backend/internal/observability/tracing"
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServiceName identifies this service on traces and metrics.
const ServiceName = "einvoicing"

var Module = fx.Module("observability",
	fx.Provide(logger.NewLogger),
	fx.Provide(func(cfg config.Config) tracing.Config {
		return tracing.Config{
			Enabled:          cfg.Tracing.Enabled,
			ServiceName:      ServiceName,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.Tracing.ExporterEndpoint,
			ExporterProtocol: cfg.Tracing.ExporterProtocol,
			SamplingRatio:    cfg.Tracing.SamplingRatio,
		}
	}),
	fx.Invoke(func(lc fx.Lifecycle, cfg tracing.Config, log *zap.Logger) error {
		_, err := tracing.NewProvider(lc, cfg, log)
		return err
	}),
	fx.Provide(func(cfg config.Config) metrics.Config {
		return metrics.Config{
			ServiceName: ServiceName,
			Environment: cfg.Environment,
		}
	}),
	fx.Provide(func(cfg metrics.Config) (*metrics.HTTPMetrics, error) {
		return metrics.NewHTTPMetrics(cfg, otel.GetMeterProvider())
	}),
)
