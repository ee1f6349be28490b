package client

import (
	"github.com/Origin-Inc/e-invoicing-backend/internal/client/repository"
	"github.com/Origin-Inc/e-invoicing-backend/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
