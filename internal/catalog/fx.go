package catalog

import (
	"github.com/providerpulse/providerpulse/internal/catalog/repository"
	"github.com/providerpulse/providerpulse/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
