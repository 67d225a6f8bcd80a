/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package hooks

import "context"

// Set is a hook namespace: one channel per event of the vocabulary. The
// locator and materializer of a resolver share one Set so handlers registered
// through the resolver reach both.
type Set[T any] struct {
	channels map[Event]*Channel[T]
}

// NewSet creates a namespace with an empty channel for every event.
func NewSet[T any]() *Set[T] {
	s := &Set[T]{channels: make(map[Event]*Channel[T], len(Events))}
	for _, e := range Events {
		s.channels[e] = NewChannel[T](e)
	}
	return s
}

// Channel returns the channel for an event name, failing with an unknown
// event error outside the vocabulary.
func (s *Set[T]) Channel(event Event) (*Channel[T], error) {
	e, err := ParseEvent(string(event))
	if err != nil {
		return nil, err
	}
	return s.channels[e], nil
}

// On registers a handler on an event.
func (s *Set[T]) On(event Event, h Handler[T]) error {
	ch, err := s.Channel(event)
	if err != nil {
		return err
	}
	ch.Register(h)
	return nil
}

// Dispatch runs the channel for a vocabulary event. It panics on events
// outside the vocabulary; callers inside this module only pass constants.
func (s *Set[T]) Dispatch(ctx context.Context, event Event, subject *T, action Action[T]) (*T, error) {
	return s.channels[event].Dispatch(ctx, subject, action)
}
