package provider

import (
	"github.com/providerpulse/providerpulse/internal/provider/repository"
	"github.com/providerpulse/providerpulse/internal/provider/service"
	"go.uber.org/fx"
)

var Module = fx.Module("provider.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
