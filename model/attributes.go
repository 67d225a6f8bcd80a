/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/suparena/entityseed/errors"
)

// Attributes is an unordered bag of input attributes. Keys may arrive in any
// casing ("Email", "firstName", "first-name"); Normalize maps them to the
// canonical lower snake case form used everywhere else.
type Attributes map[string]any

// NormalizeKey converts an attribute name to its canonical form: lower snake
// case with Unicode case folding. "FirstName", "first-name", "first name" and
// "FIRST_NAME" all become "first_name". A leading separator is kept as a single
// underscore, so "_id" stays distinct from "id".
func NormalizeKey(key string) string {
	runes := []rune(strings.TrimSpace(key))
	var b strings.Builder
	b.Grow(len(runes) + 4)

	lastUnderscore := false
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
			continue
		case unicode.IsUpper(r):
			if i > 0 && !lastUnderscore {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteRune('_')
				}
			}
		}
		b.WriteRune(r)
		lastUnderscore = false
	}

	out := strings.TrimSuffix(b.String(), "_")
	return cases.Fold().String(out)
}

// Normalize returns a copy of the bag with canonical keys. Two input keys that
// collapse onto the same canonical key are rejected, since map iteration order
// would otherwise decide which value wins.
func (a Attributes) Normalize() (Attributes, error) {
	out := make(Attributes, len(a))
	origin := make(map[string]string, len(a))
	for _, raw := range a.sortedKeys() {
		key := NormalizeKey(raw)
		if key == "" {
			return nil, errors.NewValidationError(raw, "attribute name is empty after normalization")
		}
		if prev, dup := origin[key]; dup {
			return nil, errors.NewValidationError(key, fmt.Sprintf("attributes %q and %q normalize to the same name", prev, raw))
		}
		origin[key] = raw
		out[key] = a[raw]
	}
	return out, nil
}

// Keys returns the bag's keys in lexical order.
func (a Attributes) Keys() []string {
	return a.sortedKeys()
}

// Merge returns a new bag holding a's entries overlaid with other's.
func (a Attributes) Merge(other Attributes) Attributes {
	out := make(Attributes, len(a)+len(other))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

func (a Attributes) sortedKeys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KeySet is an ordered, deduplicated set of canonical attribute names.
type KeySet []string

// NewKeySet normalizes and deduplicates keys, keeping first-seen order and
// dropping names that are blank after normalization.
func NewKeySet(keys ...string) KeySet {
	seen := make(map[string]struct{}, len(keys))
	out := make(KeySet, 0, len(keys))
	for _, k := range keys {
		nk := NormalizeKey(k)
		if nk == "" {
			continue
		}
		if _, dup := seen[nk]; dup {
			continue
		}
		seen[nk] = struct{}{}
		out = append(out, nk)
	}
	return out
}

// Contains reports whether key (in any casing) belongs to the set.
func (ks KeySet) Contains(key string) bool {
	nk := NormalizeKey(key)
	for _, k := range ks {
		if k == nk {
			return true
		}
	}
	return false
}

// Equal reports whether both sets hold the same names in the same order.
func (ks KeySet) Equal(other KeySet) bool {
	if len(ks) != len(other) {
		return false
	}
	for i := range ks {
		if ks[i] != other[i] {
			return false
		}
	}
	return true
}

// Project keeps only the entries of a normalized bag whose key is in the set.
// Keys of the set that are absent from the bag are simply not part of the
// result.
func (ks KeySet) Project(normalized Attributes) Attributes {
	out := make(Attributes, len(ks))
	for _, k := range ks {
		if v, ok := normalized[k]; ok {
			out[k] = v
		}
	}
	return out
}
