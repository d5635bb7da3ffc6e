package settings

import (
	"github.com/providerpulse/providerpulse/internal/settings/repository"
	"github.com/providerpulse/providerpulse/internal/settings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settings.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
