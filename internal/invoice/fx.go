package invoice

import (
	"github.com/Origin-Inc/e-invoicing-backend/internal/invoice/repository"
	"github.com/Origin-Inc/e-invoicing-backend/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
