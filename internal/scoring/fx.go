package scoring

import "go.uber.org/fx"

var Module = fx.Module("scoring.engine",
	fx.Provide(NewWeightCache),
	fx.Provide(NewEngine),
)
