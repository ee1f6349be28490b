// Package migration applies the schema on startup.
package migration

import (
	"github.com/Origin-Inc/e-invoicing-backend/internal/audit"
	clientdomain "github.com/Origin-Inc/e-invoicing-backend/internal/client/domain"
	"github.com/Origin-Inc/e-invoicing-backend/internal/events"
	invoicedomain "github.com/Origin-Inc/e-invoicing-backend/internal/invoice/domain"
	"github.com/Origin-Inc/e-invoicing-backend/internal/ledger"
	paymentdomain "github.com/Origin-Inc/e-invoicing-backend/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run migrates every persisted model. gorm's AutoMigrate only adds; it
// never drops columns or data.
func Run(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&clientdomain.Client{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&paymentdomain.Payment{},
		&ledger.Row{},
		&audit.Log{},
		&events.Event{},
	)
	if err != nil {
		return err
	}
	log.Info("schema migrated")
	return nil
}

var Module = fx.Module("migration",
	fx.Invoke(Run),
)
