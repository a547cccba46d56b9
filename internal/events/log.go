// internal/events/log.go
package events

import (
	"github.com/sirupsen/logrus"
)

// LogPublisher writes events to the application log. It is the default
// publisher in development, where no Pusher credentials are configured.
type LogPublisher struct {
	logger *logrus.Entry
}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{
		logger: logrus.WithField("component", "events"),
	}
}

func (p *LogPublisher) Publish(event Event) error {
	p.logger.WithFields(logrus.Fields{
		"channel": Channel,
		"event":   event.EventName(),
		"payload": event,
	}).Info("Event published")
	return nil
}
