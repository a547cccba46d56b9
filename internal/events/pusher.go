// internal/events/pusher.go
package events

import (
	"fmt"

	"github.com/pusher/pusher-http-go/v5"

	"github.com/storelab/inventory-backend/internal/config"
)

// PusherPublisher delivers events over Pusher Channels.
type PusherPublisher struct {
	client *pusher.Client
}

func NewPusherPublisher(cfg config.PusherConfig) *PusherPublisher {
	return &PusherPublisher{
		client: &pusher.Client{
			AppID:   cfg.AppID,
			Key:     cfg.Key,
			Secret:  cfg.Secret,
			Cluster: cfg.Cluster,
			Secure:  true,
		},
	}
}

func (p *PusherPublisher) Publish(event Event) error {
	if err := p.client.Trigger(Channel, event.EventName(), event); err != nil {
		return fmt.Errorf("pusher trigger %s: %w", event.EventName(), err)
	}
	return nil
}
