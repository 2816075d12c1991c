package shared

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vsinha/shopdesk/pkg/infrastructure/clock"
	"github.com/vsinha/shopdesk/pkg/infrastructure/events"
	"github.com/vsinha/shopdesk/pkg/infrastructure/logging"
	"github.com/vsinha/shopdesk/pkg/infrastructure/metrics"
)

// Deps are the collaborators every engine shares. Zero values are replaced
// by WithDefaults; Events and Metrics may stay nil.
type Deps struct {
	Clock   clock.Clock
	Logger  *logrus.Logger
	Events  events.Publisher
	Metrics *metrics.Recorder
	NewID   func() string
}

// WithDefaults fills unset collaborators
func (d Deps) WithDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.System{}
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return d
}

// Publish appends events to the event store, logging failures. Events are
// a notification side channel and never fail the operation.
func (d Deps) Publish(module string, evts ...events.Event) {
	if d.Events == nil {
		return
	}
	for _, e := range evts {
		if err := d.Events.AppendEvent(e.StreamID(), e); err != nil {
			logging.LogError(d.Logger, module, "Publish", e.Type(), e.StreamID(), err)
		}
	}
}
