/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of the DataStore interface for testing
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/suparena/entityseed/errors"
	"github.com/suparena/entityseed/model"
)

// DataStore is an in-memory implementation of datastore.DataStore[T]. Stored
// records are kept by pointer, so a record returned by FindBy is the stored
// one and in-place mutations stick.
type DataStore[T any] struct {
	mu      sync.RWMutex
	schema  *model.Schema[T]
	data    map[string]*T
	order   []string
	nextSeq int

	identityFunc   func() any
	constructError error
	findError      error
	persistError   error

	findCalls    int
	persistCalls int
}

// New creates a new mock DataStore reading records through schema
func New[T any](schema *model.Schema[T]) *DataStore[T] {
	return &DataStore[T]{
		schema:       schema,
		data:         make(map[string]*T),
		identityFunc: func() any { return uuid.NewString() },
	}
}

// WithIdentityFunc sets the generator used for records persisted without an identity
func (m *DataStore[T]) WithIdentityFunc(f func() any) *DataStore[T] {
	m.identityFunc = f
	return m
}

// WithConstructError makes Construct operations return an error
func (m *DataStore[T]) WithConstructError(err error) *DataStore[T] {
	m.constructError = err
	return m
}

// WithFindError makes FindBy operations return an error
func (m *DataStore[T]) WithFindError(err error) *DataStore[T] {
	m.findError = err
	return m
}

// WithPersistError makes Persist operations return an error
func (m *DataStore[T]) WithPersistError(err error) *DataStore[T] {
	m.persistError = err
	return m
}

// Schema returns the schema records are read through
func (m *DataStore[T]) Schema() *model.Schema[T] {
	return m.schema
}

// Construct builds an unsaved record
func (m *DataStore[T]) Construct(ctx context.Context, attrs model.Attributes) (*T, error) {
	if m.constructError != nil {
		return nil, m.constructError
	}
	return m.schema.New(attrs)
}

// FindBy returns the earliest persisted record matching filter
func (m *DataStore[T]) FindBy(ctx context.Context, filter model.Attributes) (*T, error) {
	m.mu.Lock()
	m.findCalls++
	m.mu.Unlock()

	if m.findError != nil {
		return nil, m.findError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, key := range m.order {
		if rec := m.data[key]; m.schema.Matches(rec, filter) {
			return rec, nil
		}
	}
	return nil, nil
}

// Persist stores a record, assigning an identity when the schema declares one
// and the record has none
func (m *DataStore[T]) Persist(ctx context.Context, record *T) (*T, error) {
	m.mu.Lock()
	m.persistCalls++
	m.mu.Unlock()

	if m.persistError != nil {
		return nil, m.persistError
	}
	return m.store(record)
}

func (m *DataStore[T]) store(record *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, err := m.keyFor(record)
	if err != nil {
		return nil, err
	}
	if existing, exists := m.data[key]; exists {
		if existing == record {
			return record, nil
		}
		return nil, errors.NewAlreadyExistsError(m.schema.Name(), key)
	}

	m.data[key] = record
	m.order = append(m.order, key)
	return record, nil
}

// keyFor derives the storage key, assigning a fresh identity if needed
func (m *DataStore[T]) keyFor(record *T) (string, error) {
	identity := m.schema.Identity()
	if identity == "" {
		m.nextSeq++
		return fmt.Sprintf("seq_%d", m.nextSeq), nil
	}

	if id, ok := m.schema.IdentityValue(record); ok {
		return fmt.Sprint(id), nil
	}

	id := m.identityFunc()
	if err := m.schema.Set(record, identity, id); err != nil {
		return "", fmt.Errorf("failed to assign identity: %w", err)
	}
	return fmt.Sprint(id), nil
}

// Helper methods for testing

// Get returns the stored record under an identity
func (m *DataStore[T]) Get(id string) (*T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.data[id]
	return rec, ok
}

// Seed stores records directly, bypassing error injection and call counters
func (m *DataStore[T]) Seed(records ...*T) error {
	for _, r := range records {
		if _, err := m.store(r); err != nil {
			return err
		}
	}
	return nil
}

// Records returns copies of the stored records in insertion order
func (m *DataStore[T]) Records() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]T, 0, len(m.order))
	for _, key := range m.order {
		result = append(result, *m.data[key])
	}
	return result
}

// Count returns the number of stored entities
func (m *DataStore[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// FindCalls returns how many times FindBy ran
func (m *DataStore[T]) FindCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findCalls
}

// PersistCalls returns how many times Persist ran
func (m *DataStore[T]) PersistCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.persistCalls
}

// Clear removes all data and resets the call counters
func (m *DataStore[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]*T)
	m.order = nil
	m.findCalls = 0
	m.persistCalls = 0
}
