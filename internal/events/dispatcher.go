package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// Bus delivers events synchronously to in-process subscribers, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	subs   map[EventType][]EventHandler
	logger *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{subs: make(map[EventType][]EventHandler), logger: logger}
}

// Publish runs every subscriber of event.Type. All subscribers run even when one fails;
// their errors are joined. A panicking subscriber is reported as an error.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.subs[event.Type]
	b.mu.RUnlock()

	var errs []error
	for i, handler := range handlers {
		if err := b.deliver(ctx, handler, event); err != nil {
			b.logger.Debug("subscriber failed",
				zap.String("event_type", string(event.Type)),
				zap.Int("subscriber", i),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers handler for eventType.
func (b *Bus) Subscribe(eventType EventType, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	// copy on write so Publish can iterate without holding the lock
	next := make([]EventHandler, len(b.subs[eventType]), len(b.subs[eventType])+1)
	copy(next, b.subs[eventType])
	b.subs[eventType] = append(next, handler)
}

// Subscribers returns the number of handlers registered for eventType.
func (b *Bus) Subscribers(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[eventType])
}

func (b *Bus) deliver(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()
	return handler(ctx, event)
}
