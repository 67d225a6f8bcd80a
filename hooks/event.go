/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package hooks

import (
	"strings"

	"github.com/suparena/entityseed/errors"
)

// Event names a lifecycle point of find-or-create.
type Event string

const (
	// Build fires after a record is constructed in memory.
	Build Event = "build"
	// Create fires after a built record is persisted.
	Create Event = "create"
	// Found fires after a lookup matched an existing record.
	Found Event = "found"
	// Returned fires once per find-or-create, on both paths.
	Returned Event = "returned"
)

// Events lists the vocabulary in lifecycle order.
var Events = []Event{Build, Create, Found, Returned}

// ParseEvent resolves an event name case-insensitively. "return" is accepted
// as a synonym of "returned".
func ParseEvent(name string) (Event, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "build":
		return Build, nil
	case "create":
		return Create, nil
	case "found":
		return Found, nil
	case "returned", "return":
		return Returned, nil
	default:
		return "", errors.NewUnknownEventError(name)
	}
}

// Valid reports whether e belongs to the vocabulary.
func (e Event) Valid() bool {
	_, err := ParseEvent(string(e))
	return err == nil
}

func (e Event) String() string { return string(e) }
