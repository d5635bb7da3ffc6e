package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts time so components with time-sensitive behavior can be
// tested with a FakeClock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func NewSystemClock() Clock {
	return systemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
