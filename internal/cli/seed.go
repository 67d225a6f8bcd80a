/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/suparena/entityseed"
	"github.com/suparena/entityseed/datastore"
	"github.com/suparena/entityseed/datastore/ddb"
	"github.com/suparena/entityseed/datastore/sqlstore"
	"github.com/suparena/entityseed/internal/config"
	"github.com/suparena/entityseed/internal/seedfile"
	"github.com/suparena/entityseed/model"
)

// Seed actions reported per record.
const (
	ActionCreated = "created"
	ActionFound   = "found"
)

// SeedResult describes the outcome for one seeded record.
type SeedResult struct {
	File     string `json:"file"`
	Key      string `json:"key"`
	Action   string `json:"action"`
	Identity any    `json:"identity"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "seed <file>...",
		Short: "Find or create the records listed in seed files",
		Long: `Find or create every record listed in the given YAML seed files.

Each resource registers a resolver keyed by its name. Records are looked up by
the resource's lookup keys and created only when no match exists, so seeding
the same file twice is harmless.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), rootOpts, trace, args, cmd)
		},
	}

	cmd.Flags().String("backend", "", "storage backend (sqlite|dynamodb)")
	cmd.Flags().String("database", "", "SQLite database path")
	cmd.Flags().String("table", "", "DynamoDB table name")
	cmd.Flags().String("endpoint", "", "DynamoDB endpoint override")
	cmd.Flags().BoolVar(&trace, "trace", false, "write find-or-create spans to stderr")
	_ = rootOpts.v.BindPFlag("backend", cmd.Flags().Lookup("backend"))
	_ = rootOpts.v.BindPFlag("database", cmd.Flags().Lookup("database"))
	_ = rootOpts.v.BindPFlag("aws.table", cmd.Flags().Lookup("table"))
	_ = rootOpts.v.BindPFlag("aws.endpoint", cmd.Flags().Lookup("endpoint"))

	return cmd
}

func runSeed(ctx context.Context, opts *RootOptions, trace bool, paths []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.v, opts.EnvFile)
	if err != nil {
		return err
	}
	logger := cfg.Log.NewLogger(cmd.ErrOrStderr())

	// Parse everything before touching the backend.
	files := make([]*seedfile.File, 0, len(paths))
	for _, path := range paths {
		file, err := seedfile.Load(path)
		if err != nil {
			return err
		}
		files = append(files, file)
	}

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	regOpts := []entityseed.Option{entityseed.WithLogger(logger)}
	if trace {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(cmd.ErrOrStderr()), stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("create stdout exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		defer tp.Shutdown(context.WithoutCancel(ctx))
		regOpts = append(regOpts, entityseed.WithTracerProvider(tp))
	}

	reg := entityseed.New(regOpts...)
	var results []SeedResult
	for _, file := range files {
		logger.Info("Seeding file.", "path", file.Path, "resources", len(file.Resources))
		for _, res := range file.Resources {
			fileResults, err := seedResource(ctx, reg, b, file.Path, res)
			results = append(results, fileResults...)
			if err != nil {
				_ = writeResults(cmd.OutOrStdout(), opts.Format, results)
				return fmt.Errorf("%s: resource %q: %w", file.Path, res.Key, err)
			}
		}
	}
	return writeResults(cmd.OutOrStdout(), opts.Format, results)
}

func seedResource(ctx context.Context, reg *entityseed.Registry, b backend, path string, res seedfile.Resource) ([]SeedResult, error) {
	store, err := b.store(ctx, res)
	if err != nil {
		return nil, err
	}
	if _, err := entityseed.Register[model.Document](reg, store, res.Lookup, entityseed.WithKey(res.Key)); err != nil {
		return nil, err
	}

	results := make([]SeedResult, 0, len(res.Records))
	for i, attrs := range res.Records {
		rec, created, err := reg.Resolve(ctx, res.Key, attrs)
		if err != nil {
			return results, fmt.Errorf("record %d: %w", i, err)
		}
		result := SeedResult{File: path, Key: res.Key, Action: ActionFound}
		if created {
			result.Action = ActionCreated
		}
		if doc, ok := rec.(*model.Document); ok {
			result.Identity, _ = store.Schema().Get(doc, res.Identity)
		}
		results = append(results, result)
	}
	return results, nil
}

func writeResults(w io.Writer, format string, results []SeedResult) error {
	if format == "json" {
		if results == nil {
			results = []SeedResult{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s %s %v\n", r.Key, r.Action, r.Identity)
	}
	return nil
}

// backend opens one store per seed resource.
type backend interface {
	store(ctx context.Context, res seedfile.Resource) (datastore.DataStore[model.Document], error)
	Close() error
}

func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (backend, error) {
	switch cfg.Backend {
	case config.BackendDynamoDB:
		client, err := ddb.NewDynamoDBClient(ctx, cfg.AWS.Region, cfg.AWS.AccessKey, cfg.AWS.SecretKey, cfg.AWS.Endpoint)
		if err != nil {
			return nil, err
		}
		return &dynamoBackend{client: client, table: cfg.AWS.Table, logger: logger}, nil
	default:
		db, err := sql.Open("sqlite3", cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", cfg.Database, err)
		}
		db.SetMaxOpenConns(1)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("opening %s: %w", cfg.Database, err)
		}
		logger.Debug("Opened database.", "backend", cfg.Backend, "path", cfg.Database)
		return &sqliteBackend{db: db, logger: logger}, nil
	}
}

type sqliteBackend struct {
	db     *sql.DB
	logger *slog.Logger
}

func (b *sqliteBackend) store(ctx context.Context, res seedfile.Resource) (datastore.DataStore[model.Document], error) {
	s, err := sqlstore.New(b.db, res.Table, res.Schema(), sqlstore.WithLogger(b.logger))
	if err != nil {
		return nil, err
	}
	if res.CreateTable {
		if err := s.EnsureTable(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}

type dynamoBackend struct {
	client ddb.Client
	table  string
	logger *slog.Logger
}

func (b *dynamoBackend) store(_ context.Context, res seedfile.Resource) (datastore.DataStore[model.Document], error) {
	s, err := ddb.NewDynamodbDataStore(b.client, b.table, res.Schema(),
		ddb.WithIndexMap(res.KeyTemplates()),
		ddb.WithCreateOnly(),
		ddb.WithLogger(b.logger),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (b *dynamoBackend) Close() error {
	return nil
}
