/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotRegisteredError(t *testing.T) {
	err := NewNotRegisteredError("user")

	expected := `no resolver registered under key "user"`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrNotRegistered) {
		t.Error("NotRegisteredError should match ErrNotRegistered")
	}

	if !IsNotRegistered(err) {
		t.Error("IsNotRegistered should return true for NotRegisteredError")
	}
}

func TestUnknownEventError(t *testing.T) {
	err := NewUnknownEventError("destroy")

	expected := `unknown event "destroy" (expected build, create, found or returned)`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsUnknownEvent(err) {
		t.Error("IsUnknownEvent should return true for UnknownEventError")
	}
}

func TestTypeMismatchError(t *testing.T) {
	err := NewTypeMismatchError("user", "Product", "User")

	expected := `key "user" is registered for User, not Product`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsTypeMismatch(err) {
		t.Error("IsTypeMismatch should return true for TypeMismatchError")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("Product", "ABC")

	expected := `Product with key "ABC" already exists`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsAlreadyExists(err) {
		t.Error("IsAlreadyExists should return true for AlreadyExistsError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "lookup_keys",
			message:  "at least one lookup key is required",
			expected: `validation failed for field "lookup_keys": at least one lookup key is required`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "missing required fields",
			expected: "validation failed: missing required fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}

			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	original := NewNotRegisteredError("user")
	wrapped := fmt.Errorf("seeding failed: %w", original)

	if !IsNotRegistered(wrapped) {
		t.Error("IsNotRegistered should work with wrapped errors")
	}

	var target *NotRegisteredError
	if !errors.As(wrapped, &target) || target.Key != "user" {
		t.Errorf("errors.As should unwrap NotRegisteredError, got %v", target)
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotRegistered,
		ErrUnknownEvent,
		ErrTypeMismatch,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrNoIndexMap,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}
