// internal/events/async.go
package events

import (
	"github.com/sirupsen/logrus"
)

// AsyncPublisher delivers events on a separate goroutine so a slow or
// failing transport can never block the ledger mutation that produced
// the event. Errors are logged and dropped.
type AsyncPublisher struct {
	next   Publisher
	logger *logrus.Entry
}

func NewAsyncPublisher(next Publisher) *AsyncPublisher {
	return &AsyncPublisher{
		next:   next,
		logger: logrus.WithField("component", "events"),
	}
}

func (p *AsyncPublisher) Publish(event Event) error {
	go func() {
		if err := p.next.Publish(event); err != nil {
			p.logger.WithError(err).WithField("event", event.EventName()).
				Warn("Failed to deliver event")
		}
	}()
	return nil
}

// MultiPublisher fans a single event out to several publishers. The
// first error is returned but remaining publishers still run.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(event Event) error {
	var first error
	for _, p := range m {
		if err := p.Publish(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
