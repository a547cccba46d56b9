// internal/events/events.go
package events

import (
	"github.com/google/uuid"
)

// Channel is the single channel all inventory events go out on.
const Channel = "products"

// Wire-level event names, kept compatible with the frontend bindings.
const (
	EventSold     = "updated"
	EventLowStock = "low-stock"
	EventRestock  = "restocked"
)

// Event is a domain event produced by the stock lifecycle engine.
type Event interface {
	EventName() string
}

// Sold is emitted after any successful sale, manual or automatic.
type Sold struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	StockQuantity int       `json:"stock_quantity"`
}

func (Sold) EventName() string { return EventSold }

// LowStock is emitted at most once per depletion episode, when a
// product's stock first drops below the low-stock threshold.
type LowStock struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func (LowStock) EventName() string { return EventLowStock }

// Restocked is emitted when an approved restock has been applied.
type Restocked struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	StockQuantity int       `json:"stock_quantity"`
}

func (Restocked) EventName() string { return EventRestock }

// Publisher fans out events to external observers. Publish is
// best-effort: a delivery failure never affects the ledger state that
// produced the event.
type Publisher interface {
	Publish(event Event) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(event Event) error

func (f PublisherFunc) Publish(event Event) error { return f(event) }
