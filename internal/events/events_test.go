// internal/events/events_test.go
package events

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWireEventNames(t *testing.T) {
	// The frontend binds to these exact names; they are wire contract.
	assert.Equal(t, "updated", Sold{}.EventName())
	assert.Equal(t, "low-stock", LowStock{}.EventName())
	assert.Equal(t, "restocked", Restocked{}.EventName())
}

func TestMultiPublisherDeliversToAll(t *testing.T) {
	var delivered []string
	failing := PublisherFunc(func(e Event) error {
		delivered = append(delivered, "failing")
		return errors.New("transport down")
	})
	working := PublisherFunc(func(e Event) error {
		delivered = append(delivered, "working")
		return nil
	})

	multi := MultiPublisher{failing, working}
	err := multi.Publish(Sold{ID: uuid.New(), Name: "Classic Tee", StockQuantity: 3})

	assert.Error(t, err)
	assert.Equal(t, []string{"failing", "working"}, delivered)
}

func TestLogPublisherNeverFails(t *testing.T) {
	p := NewLogPublisher()
	assert.NoError(t, p.Publish(LowStock{ID: uuid.New(), Name: "Field Cap"}))
}
