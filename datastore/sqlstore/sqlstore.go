/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"

	"github.com/mattn/go-sqlite3"

	seederrors "github.com/suparena/entityseed/errors"
	"github.com/suparena/entityseed/model"
)

// DB is the subset of database/sql the store needs. Both *sql.DB and *sql.Tx
// satisfy it, so a caller can run find-or-create inside a transaction.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Placeholder renders the bind parameter for the n-th argument (1-based).
type Placeholder func(n int) string

var (
	// Question renders "?" placeholders (SQLite, MySQL).
	Question Placeholder = func(int) string { return "?" }
	// Dollar renders "$1", "$2", ... placeholders (PostgreSQL).
	Dollar Placeholder = func(n int) string { return fmt.Sprintf("$%d", n) }
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Option configures a Store.
type Option func(*options)

type options struct {
	placeholder Placeholder
	logger      *slog.Logger
}

// WithPlaceholder sets the bind parameter style. The default is Question.
func WithPlaceholder(p Placeholder) Option {
	return func(o *options) {
		if p != nil {
			o.placeholder = p
		}
	}
}

// WithLogger sets the logger queries are traced to at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Store implements datastore.DataStore[T] over one SQL table whose columns
// are named after the schema fields.
type Store[T any] struct {
	db          DB
	table       string
	schema      *model.Schema[T]
	placeholder Placeholder
	logger      *slog.Logger
}

// New creates a store over table. The table name and every schema field must
// be plain SQL identifiers.
func New[T any](db DB, table string, schema *model.Schema[T], opts ...Option) (*Store[T], error) {
	if db == nil {
		return nil, seederrors.NewValidationError("db", "a database handle is required")
	}
	if schema == nil {
		return nil, seederrors.NewValidationError("schema", "a schema is required")
	}
	if err := validateIdentifier(table); err != nil {
		return nil, err
	}
	for _, f := range schema.Fields() {
		if err := validateIdentifier(f); err != nil {
			return nil, err
		}
	}

	o := options{placeholder: Question, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		db:          db,
		table:       table,
		schema:      schema,
		placeholder: o.placeholder,
		logger:      o.logger,
	}, nil
}

// Schema returns the schema rows are read through.
func (s *Store[T]) Schema() *model.Schema[T] {
	return s.schema
}

// Table returns the table name.
func (s *Store[T]) Table() string {
	return s.table
}

// Construct builds an unsaved record.
func (s *Store[T]) Construct(_ context.Context, attrs model.Attributes) (*T, error) {
	return s.schema.New(attrs)
}

// FindBy returns the first row whose columns equal every filter value, or
// (nil, nil) when no row matches.
func (s *Store[T]) FindBy(ctx context.Context, filter model.Attributes) (*T, error) {
	normalized, err := filter.Normalize()
	if err != nil {
		return nil, err
	}
	cols := s.schema.Fields()
	if len(cols) == 0 {
		return nil, seederrors.NewValidationError("schema", "no columns to select")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", quoteAll(cols), quote(s.table))
	keys := normalized.Keys()
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		if err := validateIdentifier(k); err != nil {
			return nil, err
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s = %s", quote(k), s.placeholder(i+1))
		args = append(args, normalized[k])
	}
	b.WriteString(" LIMIT 1")
	query := b.String()

	s.logger.DebugContext(ctx, "Executing query.", "table", s.table, "query", query)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query %s: %w", s.table, err)
		}
		return nil, nil
	}

	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.table, err)
	}

	attrs := make(model.Attributes, len(cols))
	for i, c := range cols {
		attrs[c] = values[i]
	}
	return s.schema.New(attrs)
}

// Persist inserts record. Nil columns are left to their database default
// and an unset identity column to the database's key generation; the
// generated id is written back to the record.
func (s *Store[T]) Persist(ctx context.Context, record *T) (*T, error) {
	values := s.schema.Values(record)
	identity := s.schema.Identity()
	_, hasIdentity := s.schema.IdentityValue(record)

	cols := make([]string, 0, len(values))
	for _, c := range s.schema.Fields() {
		v, ok := values[c]
		if !ok || isNil(v) {
			continue
		}
		if c == identity && !hasIdentity {
			continue
		}
		cols = append(cols, c)
	}

	var query string
	args := make([]any, len(cols))
	if len(cols) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", quote(s.table))
	} else {
		marks := make([]string, len(cols))
		for i, c := range cols {
			marks[i] = s.placeholder(i + 1)
			args[i] = values[c]
		}
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(s.table), quoteAll(cols), strings.Join(marks, ", "))
	}

	s.logger.DebugContext(ctx, "Executing query.", "table", s.table, "query", query)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			id, _ := s.schema.IdentityValue(record)
			return nil, fmt.Errorf("insert %s: %w: %w", s.table, seederrors.NewAlreadyExistsError(s.schema.Name(), fmt.Sprint(id)), err)
		}
		return nil, fmt.Errorf("insert %s: %w", s.table, err)
	}

	if identity != "" && !hasIdentity {
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("insert %s: read generated id: %w", s.table, err)
		}
		if err := s.schema.Set(record, identity, id); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// EnsureTable creates the table when it does not exist. The identity column
// becomes an INTEGER PRIMARY KEY; other columns are left untyped, which SQLite
// accepts. Other databases should manage their schema themselves.
func (s *Store[T]) EnsureTable(ctx context.Context) error {
	defs := make([]string, 0, len(s.schema.Fields()))
	for _, c := range s.schema.Fields() {
		if c == s.schema.Identity() {
			defs = append(defs, quote(c)+" INTEGER PRIMARY KEY")
			continue
		}
		defs = append(defs, quote(c))
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(s.table), strings.Join(defs, ", "))
	s.logger.DebugContext(ctx, "Executing query.", "table", s.table, "query", query)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func validateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return seederrors.NewValidationError(name, "not a valid SQL identifier")
	}
	return nil
}

func quote(name string) string {
	return `"` + name + `"`
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, ", ")
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
