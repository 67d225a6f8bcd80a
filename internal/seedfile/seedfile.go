/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package seedfile parses seed files: lists of resources, each naming a
// table, its lookup keys and the records to find or create. Files are YAML,
// or TOML when the name ends in .toml.
package seedfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/suparena/entityseed/model"
)

// File is a parsed seed file.
type File struct {
	Path      string     `yaml:"-" toml:"-"`
	Resources []Resource `yaml:"resources" toml:"resources"`
}

// Resource describes one kind of record and the records to seed.
type Resource struct {
	// Key registers the resolver; it also names the entity type.
	Key string `yaml:"key" toml:"key"`
	// Table defaults to Key.
	Table string `yaml:"table" toml:"table"`
	// Identity is the field stores assign on insert. Defaults to "id".
	Identity string `yaml:"identity" toml:"identity"`
	// Lookup lists the fields existing records are matched on.
	Lookup []string `yaml:"lookup" toml:"lookup"`
	// Fields fixes the column list. Defaults to Identity, Lookup and every
	// attribute used by Records.
	Fields []string `yaml:"fields" toml:"fields"`
	// CreateTable creates a missing SQLite table before seeding.
	CreateTable bool `yaml:"create_table" toml:"create_table"`
	// IndexMap holds the DynamoDB key templates. Defaults to
	// PK = SK = "<KEY>#{<identity>}".
	IndexMap map[string]string `yaml:"index_map" toml:"index_map"`
	// Records are attribute bags passed to find-or-create in order.
	Records []model.Attributes `yaml:"records" toml:"records"`
}

// Load reads and validates the seed file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()

	parse := Parse
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		parse = ParseTOML
	}
	file, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	file.Path = path
	return file, nil
}

// Parse decodes and validates a seed file. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return file.finish()
}

// ParseTOML decodes and validates a TOML seed file. Unknown keys are
// rejected.
func ParseTOML(r io.Reader) (*File, error) {
	var file File
	md, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parsing seed file: unknown key %s", undecoded[0])
	}
	return file.finish()
}

func (f *File) finish() (*File, error) {
	for i := range f.Resources {
		f.Resources[i].applyDefaults()
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks that every resource is addressable and has lookup keys.
func (f *File) Validate() error {
	seen := make(map[string]struct{}, len(f.Resources))
	for i, res := range f.Resources {
		if res.Key == "" {
			return fmt.Errorf("resource %d: key is required", i)
		}
		if _, dup := seen[res.Key]; dup {
			return fmt.Errorf("resource %q: declared twice", res.Key)
		}
		seen[res.Key] = struct{}{}
		if len(model.NewKeySet(res.Lookup...)) == 0 {
			return fmt.Errorf("resource %q: at least one lookup key is required", res.Key)
		}
	}
	return nil
}

func (r *Resource) applyDefaults() {
	if r.Table == "" {
		r.Table = r.Key
	}
	if r.Identity == "" {
		r.Identity = "id"
	}
}

// Columns returns the declared fields, or Identity followed by Lookup and the
// remaining record attributes in lexical order.
func (r Resource) Columns() []string {
	if len(r.Fields) > 0 {
		return model.NewKeySet(append([]string{r.Identity}, r.Fields...)...)
	}
	var extra []string
	for _, rec := range r.Records {
		for k := range rec {
			extra = append(extra, model.NormalizeKey(k))
		}
	}
	sort.Strings(extra)

	cols := append([]string{r.Identity}, r.Lookup...)
	return model.NewKeySet(append(cols, extra...)...)
}

// Schema returns the document schema records of this resource are read
// through.
func (r Resource) Schema() *model.Schema[model.Document] {
	return model.DocumentSchema(r.Key, r.Identity, r.Columns()...)
}

// KeyTemplates returns the DynamoDB index map of the resource.
func (r Resource) KeyTemplates() map[string]string {
	if len(r.IndexMap) > 0 {
		return r.IndexMap
	}
	tmpl := fmt.Sprintf("%s#{%s}", toUpperSnake(r.Key), model.NormalizeKey(r.Identity))
	return map[string]string{"PK": tmpl, "SK": tmpl}
}

func toUpperSnake(key string) string {
	b := []byte(model.NormalizeKey(key))
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
