/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotRegistered is returned when no resolver is registered under a key
	ErrNotRegistered = errors.New("key not registered")

	// ErrUnknownEvent is returned when a hook targets an event outside the vocabulary
	ErrUnknownEvent = errors.New("unknown event")

	// ErrTypeMismatch is returned when a key is registered for another record type
	ErrTypeMismatch = errors.New("record type mismatch")

	// ErrAlreadyExists is returned when attempting to create an entity that already exists
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoIndexMap is returned when no index map is found for a type
	ErrNoIndexMap = errors.New("no index map found for type")
)

// NotRegisteredError represents a lookup against a key nobody registered
type NotRegisteredError struct {
	Key string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("no resolver registered under key %q", e.Key)
}

func (e *NotRegisteredError) Is(target error) bool {
	return target == ErrNotRegistered
}

// UnknownEventError represents a hook registration against an unknown event name
type UnknownEventError struct {
	Event string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event %q (expected build, create, found or returned)", e.Event)
}

func (e *UnknownEventError) Is(target error) bool {
	return target == ErrUnknownEvent
}

// TypeMismatchError represents a typed lookup of a key registered for another type
type TypeMismatchError struct {
	Key  string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("key %q is registered for %s, not %s", e.Key, e.Got, e.Want)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Helper functions for creating errors

// NewNotRegisteredError creates a new NotRegisteredError
func NewNotRegisteredError(key string) error {
	return &NotRegisteredError{Key: key}
}

// NewUnknownEventError creates a new UnknownEventError
func NewUnknownEventError(event string) error {
	return &UnknownEventError{Event: event}
}

// NewTypeMismatchError creates a new TypeMismatchError
func NewTypeMismatchError(key, want, got string) error {
	return &TypeMismatchError{Key: key, Want: want, Got: got}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(entityType, key string) error {
	return &AlreadyExistsError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsNotRegistered checks if an error is a not registered error
func IsNotRegistered(err error) bool {
	return errors.Is(err, ErrNotRegistered)
}

// IsUnknownEvent checks if an error is an unknown event error
func IsUnknownEvent(err error) bool {
	return errors.Is(err, ErrUnknownEvent)
}

// IsTypeMismatch checks if an error is a type mismatch error
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
