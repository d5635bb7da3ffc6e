package sweep

import (
	"context"

	"github.com/providerpulse/providerpulse/internal/dispatch"
	"go.uber.org/fx"
)

var Module = fx.Module("sweep",
	fx.Provide(New),
	fx.Provide(func(e *Executor) dispatch.SweepHandler { return e }),
	fx.Invoke(StartLoop),
)

func StartLoop(lc fx.Lifecycle, e *Executor) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go e.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
