package payment

import (
	"github.com/Origin-Inc/e-invoicing-backend/internal/payment/repository"
	"github.com/Origin-Inc/e-invoicing-backend/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
