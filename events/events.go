package events

import (
	"context"
	"sync"

	"banker/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeTransferCompleted   EventType = "transfer_completed"
	EventTypeAccountFlagsChanged EventType = "account_flags_changed"
	EventTypeAccountLoaded       EventType = "account_loaded"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// TransferCompletedEvent fires once the transfer protocol finishes, on
// success and on failure alike. It is the single seam between the ledger
// core and all user-facing messaging.
type TransferCompletedEvent struct {
	Result *models.TransferResult
}

func (e TransferCompletedEvent) Type() EventType {
	return EventTypeTransferCompleted
}

// AccountFlagsChangedEvent fires after an account's flag set was persisted
// and the in-memory copy updated.
type AccountFlagsChangedEvent struct {
	AccountID int64
	ActorID   int64
	NewFlags  models.AccountFlags
}

func (e AccountFlagsChangedEvent) Type() EventType {
	return EventTypeAccountFlagsChanged
}

// AccountLoadedEvent fires once a session's durable account has been
// loaded (or created) and attached.
type AccountLoadedEvent struct {
	SessionID uuid.UUID
	OwnerName string
	AccountID int64
}

func (e AccountLoadedEvent) Type() EventType {
	return EventTypeAccountLoaded
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching. Subscribers register
// explicitly; there is no ambient global dispatch.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}
