package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cortexa-labs/cortexa/internal/config"
	"github.com/cortexa-labs/cortexa/internal/database"
	"github.com/cortexa-labs/cortexa/internal/domain"
	"github.com/cortexa-labs/cortexa/internal/openai"
	"github.com/cortexa-labs/cortexa/internal/repository"
	"github.com/cortexa-labs/cortexa/internal/service"
	"github.com/cortexa-labs/cortexa/internal/telemetry"
)

// initTelemetry starts Sentry tracing when a DSN is configured.
func initTelemetry(cfg *config.Config) func() {
	if cfg.SentryDSN == "" {
		return func() {}
	}

	sampleRate := 0.1
	if cfg.Environment == "development" {
		sampleRate = 1.0
	}

	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: sampleRate,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
		return func() {}
	}
	return shutdown
}

// newEmbeddingClient builds the embedding provider from configuration.
func newEmbeddingClient(cfg *config.Config) (*openai.Client, error) {
	if !cfg.HasOpenAI() {
		return nil, fmt.Errorf("CORTEXA_OPENAI_API_KEY is required")
	}
	return openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		EmbeddingModel: cfg.EmbeddingModel,
	}), nil
}

// openIndex returns the configured vector index: pgvector when a database
// is configured, otherwise the file-backed index at cfg.IndexPath. The
// cleanup function releases the database pool when one was opened.
func openIndex(ctx context.Context, cfg *config.Config, forBuild bool) (service.VectorIndex, func(), error) {
	if cfg.HasDatabase() {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPgVectorIndex(pool), pool.Close, nil
	}

	if forBuild {
		return repository.NewMemoryIndex(), func() {}, nil
	}

	idx, err := repository.LoadMemoryIndex(cfg.IndexPath)
	if err != nil {
		var derr *domain.DomainError
		if errors.As(err, &derr) && derr.Code == domain.ErrCodePersistence {
			return nil, nil, fmt.Errorf("no usable index at %s (run 'cortexa index' first): %w", cfg.IndexPath, err)
		}
		return nil, nil, err
	}
	return idx, func() {}, nil
}

// runMigrations applies pending database migrations.
func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
