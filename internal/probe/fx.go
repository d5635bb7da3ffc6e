package probe

import (
	"github.com/providerpulse/providerpulse/internal/probe/repository"
	"github.com/providerpulse/providerpulse/internal/probe/service"
	"go.uber.org/fx"
)

var Module = fx.Module("probe.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
