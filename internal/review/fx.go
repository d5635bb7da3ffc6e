package review

import (
	"github.com/providerpulse/providerpulse/internal/review/repository"
	"github.com/providerpulse/providerpulse/internal/review/service"
	"go.uber.org/fx"
)

var Module = fx.Module("review.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
