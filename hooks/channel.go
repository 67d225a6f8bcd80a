/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package hooks

import (
	"context"
	"sync"
)

// Handler observes or mutates a record at a lifecycle point. A non-nil error
// aborts the dispatch and is returned to the caller unchanged.
type Handler[T any] func(ctx context.Context, record *T) error

// Action is a dispatch's default action. Its result becomes the value handed
// to every handler.
type Action[T any] func(ctx context.Context, record *T) (*T, error)

// Channel is an ordered multicast dispatcher for one event. Handlers are
// append-only and run in registration order.
type Channel[T any] struct {
	mu       sync.RWMutex
	event    Event
	handlers []Handler[T]
}

// NewChannel creates an empty channel for event.
func NewChannel[T any](event Event) *Channel[T] {
	return &Channel[T]{event: event}
}

// Event returns the event this channel dispatches.
func (c *Channel[T]) Event() Event { return c.event }

// Register appends a handler. Nil handlers are ignored.
func (c *Channel[T]) Register(h Handler[T]) *Channel[T] {
	if h == nil {
		return c
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
	return c
}

// Len returns the number of registered handlers.
func (c *Channel[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handlers)
}

// Dispatch runs action (when non-nil) and then every handler with the working
// record. The working record is subject itself when action is nil, otherwise
// action's result. Handlers registered while a dispatch is running take
// effect from the next dispatch.
func (c *Channel[T]) Dispatch(ctx context.Context, subject *T, action Action[T]) (*T, error) {
	working := subject
	if action != nil {
		var err error
		working, err = action(ctx, subject)
		if err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	handlers := make([]Handler[T], len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, working); err != nil {
			return working, err
		}
	}
	return working, nil
}
