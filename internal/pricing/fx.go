package pricing

import (
	"github.com/providerpulse/providerpulse/internal/pricing/repository"
	"github.com/providerpulse/providerpulse/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing.service",
	fx.Provide(repository.Provide),
	fx.Provide(repository.ProvideHistory),
	fx.Provide(service.New),
)
