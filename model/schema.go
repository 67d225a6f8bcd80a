/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/suparena/entityseed/errors"
)

// FieldDef binds one canonical attribute name to a typed getter and setter on
// records of type T.
type FieldDef[T any] struct {
	name string
	get  func(*T) any
	set  func(*T, any) error
}

// Name returns the canonical field name.
func (f FieldDef[T]) Name() string { return f.name }

// Field declares a typed field. Values handed to the setter are coerced to V:
// an exact V is used as is, anything else goes through weak decoding, so YAML
// numbers, SQL byte slices and RFC 3339 strings land in int, string and
// date-time fields respectively. A nil value resets the field to V's zero value.
func Field[T, V any](name string, get func(*T) V, set func(*T, V)) FieldDef[T] {
	return FieldDef[T]{
		name: NormalizeKey(name),
		get:  func(r *T) any { return get(r) },
		set: func(r *T, v any) error {
			typed, err := Coerce[V](v)
			if err != nil {
				return err
			}
			set(r, typed)
			return nil
		},
	}
}

// Coerce converts v to V using the same rules as Field setters.
func Coerce[V any](v any) (V, error) {
	var out V
	if v == nil {
		return out, nil
	}
	if typed, ok := v.(V); ok {
		return typed, nil
	}

	target := reflect.TypeOf(&out).Elem()
	if raw, ok := v.([]byte); ok && target.Kind() != reflect.Slice {
		// SQL drivers hand back TEXT columns as bytes
		v = string(raw)
		if typed, ok := v.(V); ok {
			return typed, nil
		}
	}
	src := reflect.ValueOf(v)
	if src.Kind() == reflect.Struct {
		// time.Time into strfmt.DateTime and similar named struct types
		if target.Kind() == reflect.Struct && src.Type().ConvertibleTo(target) {
			return src.Convert(target).Interface().(V), nil
		}
		if target.Kind() == reflect.Pointer && src.Type().ConvertibleTo(target.Elem()) {
			p := reflect.New(target.Elem())
			p.Elem().Set(src.Convert(target.Elem()))
			return p.Interface().(V), nil
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(v); err != nil {
		return out, fmt.Errorf("cannot use %T as %s: %w", v, target, err)
	}
	return out, nil
}

// Schema is the capability a store needs from a record type: construction
// from an attribute bag and named access to fields. It replaces reflective
// attribute forwarding with an explicit field table.
type Schema[T any] struct {
	name     string
	identity string
	fields   map[string]FieldDef[T]
	order    []string

	newRecord func() *T

	// open schemas accept any field name (see DocumentSchema)
	openGet func(*T, string) (any, bool)
	openSet func(*T, string, any) error
}

// NewSchema builds a schema named name (usually the Go type name) from field
// declarations. A later declaration of the same canonical name replaces an
// earlier one but keeps its position.
func NewSchema[T any](name string, fields ...FieldDef[T]) *Schema[T] {
	s := &Schema[T]{
		name:      name,
		fields:    make(map[string]FieldDef[T], len(fields)),
		newRecord: func() *T { return new(T) },
	}
	for _, f := range fields {
		if _, exists := s.fields[f.name]; !exists {
			s.order = append(s.order, f.name)
		}
		s.fields[f.name] = f
	}
	return s
}

// IdentifiedBy designates the field stores use as the record's identity. The
// field should already be declared; open schemas accept any name.
func (s *Schema[T]) IdentifiedBy(field string) *Schema[T] {
	s.identity = NormalizeKey(field)
	return s
}

// Name returns the schema name.
func (s *Schema[T]) Name() string { return s.name }

// Identity returns the canonical identity field name, or "" when none is set.
func (s *Schema[T]) Identity() string { return s.identity }

// Fields returns declared field names in declaration order.
func (s *Schema[T]) Fields() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Has reports whether field can be read and written through the schema.
func (s *Schema[T]) Has(field string) bool {
	if s.openGet != nil {
		return true
	}
	_, ok := s.fields[NormalizeKey(field)]
	return ok
}

// New constructs a record and applies every attribute of the bag to it.
// Attributes are applied in lexical key order; unknown names are rejected.
func (s *Schema[T]) New(attrs Attributes) (*T, error) {
	normalized, err := attrs.Normalize()
	if err != nil {
		return nil, err
	}
	rec := s.newRecord()
	for _, k := range normalized.sortedKeys() {
		if err := s.Set(rec, k, normalized[k]); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Get reads one field.
func (s *Schema[T]) Get(rec *T, field string) (any, bool) {
	name := NormalizeKey(field)
	if f, ok := s.fields[name]; ok {
		return f.get(rec), true
	}
	if s.openGet != nil {
		return s.openGet(rec, name)
	}
	return nil, false
}

// Set writes one field, coercing the value to the field's type.
func (s *Schema[T]) Set(rec *T, field string, value any) error {
	name := NormalizeKey(field)
	if f, ok := s.fields[name]; ok {
		if err := f.set(rec, value); err != nil {
			return errors.NewValidationError(name, err.Error())
		}
		return nil
	}
	if s.openSet != nil {
		return s.openSet(rec, name, value)
	}
	return errors.NewValidationError(name, fmt.Sprintf("unknown field for %s", s.name))
}

// Values returns the declared fields of rec as a bag.
func (s *Schema[T]) Values(rec *T) Attributes {
	out := make(Attributes, len(s.order))
	for _, name := range s.order {
		out[name] = s.fields[name].get(rec)
	}
	return out
}

// IdentityValue returns the record's identity and whether it is set to a
// non-zero value.
func (s *Schema[T]) IdentityValue(rec *T) (any, bool) {
	if s.identity == "" {
		return nil, false
	}
	v, ok := s.Get(rec, s.identity)
	if !ok || isZero(v) {
		return v, false
	}
	return v, true
}

// Matches reports whether every entry of filter equals the record's field.
// Filter values are coerced through the field's setter before comparison, so
// an int filter matches an int64 field.
func (s *Schema[T]) Matches(rec *T, filter Attributes) bool {
	for k, want := range filter {
		got, ok := s.Get(rec, k)
		if !ok {
			return false
		}
		if !s.equalField(k, got, want) {
			return false
		}
	}
	return true
}

func (s *Schema[T]) equalField(field string, got, want any) bool {
	if reflect.DeepEqual(got, want) {
		return true
	}
	probe := s.newRecord()
	if err := s.Set(probe, field, want); err == nil {
		if coerced, ok := s.Get(probe, field); ok && reflect.DeepEqual(got, coerced) {
			return true
		}
	}
	return looseEqual(got, want)
}

// Setter returns a named-attribute writer bound to rec.
func (s *Schema[T]) Setter(rec *T) *Setter[T] {
	return &Setter[T]{schema: s, record: rec}
}

// Setter applies named attributes to a single record through its schema.
// Hook handlers use it to mutate records without knowing the concrete type.
type Setter[T any] struct {
	schema *Schema[T]
	record *T
}

// Set writes one attribute.
func (w *Setter[T]) Set(field string, value any) error {
	return w.schema.Set(w.record, field, value)
}

// Apply writes every attribute of the bag, stopping at the first failure.
func (w *Setter[T]) Apply(attrs Attributes) error {
	normalized, err := attrs.Normalize()
	if err != nil {
		return err
	}
	for _, k := range normalized.sortedKeys() {
		if err := w.schema.Set(w.record, k, normalized[k]); err != nil {
			return err
		}
	}
	return nil
}

// Record returns the wrapped record.
func (w *Setter[T]) Record() *T { return w.record }

func isZero(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return rv.IsNil() || rv.Elem().IsZero()
	}
	return rv.IsZero()
}

// looseEqual compares scalars across numeric widths and pointer indirection.
func looseEqual(a, b any) bool {
	a, b = deref(a), deref(b)
	if reflect.DeepEqual(a, b) {
		return true
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	as, aok := a.(string)
	bb, bok := b.([]byte)
	if aok && bok {
		return as == string(bb)
	}
	ab, aok := a.([]byte)
	bs, bok := b.(string)
	if aok && bok {
		return string(ab) == bs
	}
	return false
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
