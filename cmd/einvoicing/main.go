package main

import (
	"github.com/Origin-Inc/e-invoicing-backend/internal/audit"
	"github.com/Origin-Inc/e-invoicing-backend/internal/client"
	"github.com/Origin-Inc/e-invoicing-backend/internal/clock"
	"github.com/Origin-Inc/e-invoicing-backend/internal/config"
	"github.com/Origin-Inc/e-invoicing-backend/internal/dashboard"
	"github.com/Origin-Inc/e-invoicing-backend/internal/events"
	"github.com/Origin-Inc/e-invoicing-backend/internal/invoice"
	"github.com/Origin-Inc/e-invoicing-backend/internal/ledger"
	"github.com/Origin-Inc/e-invoicing-backend/internal/migration"
	"github.com/Origin-Inc/e-invoicing-backend/internal/observability"
	"github.com/Origin-Inc/e-invoicing-backend/internal/overdue"
	"github.com/Origin-Inc/e-invoicing-backend/internal/payment"
	"github.com/Origin-Inc/e-invoicing-backend/internal/server"
	"github.com/Origin-Inc/e-invoicing-backend/pkg/db"
	"github.com/Origin-Inc/e-invoicing-backend/pkg/id"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.Module,
		observability.Module,
		id.Module,
		clock.Module,
		db.Module,
		migration.Module,
		events.Module,
		ledger.Module,
		audit.Module,
		client.Module,
		invoice.Module,
		payment.Module,
		dashboard.Module,
		overdue.Module,
		server.Module,
	).Run()
}
