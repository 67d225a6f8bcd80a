/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

// Document is a schemaless record keyed by canonical attribute name. It backs
// data-driven seeding where no Go type exists for the target table.
type Document map[string]any

// DocumentSchema returns an open schema over Document: any field name can be
// read and written. fields fixes the declared order returned by Fields and
// Values (stores use it as the column list); identity names the identity
// field and may be empty.
func DocumentSchema(name, identity string, fields ...string) *Schema[Document] {
	defs := make([]FieldDef[Document], 0, len(fields))
	for _, f := range NewKeySet(fields...) {
		key := f
		defs = append(defs, FieldDef[Document]{
			name: key,
			get:  func(d *Document) any { return (*d)[key] },
			set: func(d *Document, v any) error {
				d.ensure()
				(*d)[key] = v
				return nil
			},
		})
	}

	s := NewSchema[Document](name, defs...)
	s.newRecord = func() *Document {
		d := Document{}
		return &d
	}
	s.openGet = func(d *Document, field string) (any, bool) {
		v, ok := (*d)[field]
		return v, ok
	}
	s.openSet = func(d *Document, field string, v any) error {
		d.ensure()
		(*d)[field] = v
		return nil
	}
	if identity != "" {
		s.IdentifiedBy(identity)
	}
	return s
}

func (d *Document) ensure() {
	if *d == nil {
		*d = Document{}
	}
}
