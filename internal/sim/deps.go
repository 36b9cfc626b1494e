package sim

import (
	"math/rand"

	"rescue-sim/server/internal/telemetry"
	"rescue-sim/server/logging"
)

// Deps carries shared infrastructure dependencies required by the simulation engine.
type Deps struct {
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Clock     logging.Clock
	Publisher logging.Publisher
	RNG       *rand.Rand
}

func (d Deps) publisher() logging.Publisher {
	if d.Publisher == nil {
		return logging.NopPublisher()
	}
	return d.Publisher
}
