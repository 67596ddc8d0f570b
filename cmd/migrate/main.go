package main

import (
	"context"
	"log"
	"os"
	"time"

	"happydash/adapters/excel"
	"happydash/adapters/postgres"
	"happydash/adapters/source"
	"happydash/internal/errors"
	"happydash/internal/logging"
	"happydash/internal/migration"
	"happydash/internal/schema"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <database_url> <csv_or_xlsx_location> [schema_profile]")
	}
	_ = godotenv.Load()

	databaseURL := os.Args[1]
	location := os.Args[2]
	profileName := ""
	if len(os.Args) > 3 {
		profileName = os.Args[3]
	}

	logger, err := logging.New(os.Getenv("LOG_LEVEL"), "console")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	table := os.Getenv("DB_TABLE")
	if table == "" {
		table = "happiness_observations"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	imported, err := run(ctx, databaseURL, location, profileName, table, logger)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
	logger.Info("import complete", zap.String("table", table), zap.Int("rows", imported))
}

// run creates the table and replaces its content with the rows of location
func run(ctx context.Context, databaseURL, location, profileName, table string, logger *zap.Logger) (int, error) {
	registry, err := schema.LoadRegistry(os.Getenv("SCHEMA_FILE"))
	if err != nil {
		return 0, err
	}
	if profileName == "" {
		profileName = schema.ProfileCSV
	}
	profile, err := registry.Get(profileName)
	if err != nil {
		return 0, err
	}

	fetcher := source.NewFetcher(fetchTimeout(), logger.Named("source"))
	var src *source.TabularSource
	if excel.DetectFileType(location) == excel.FileTypeXLSX {
		src = source.NewXLSXSource(location, os.Getenv("SHEET_NAME"), profile, fetcher, logger.Named("source"))
	} else {
		src = source.NewCSVSource(location, profile, fetcher, logger.Named("source"))
	}

	data, err := src.Load(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info("source decoded", zap.String("location", location), zap.Int("rows", data.Len()))

	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return 0, errors.DatabaseError("failed to connect to database", err)
	}
	defer db.Close()

	migrator, err := migration.NewRunner(table)
	if err != nil {
		return 0, err
	}
	if err := migrator.Run(ctx, db); err != nil {
		return 0, err
	}

	repo, err := postgres.NewObservationRepository(db, table, logger)
	if err != nil {
		return 0, err
	}
	return repo.ReplaceAll(ctx, data.Rows())
}

func fetchTimeout() time.Duration {
	if d, err := time.ParseDuration(os.Getenv("FETCH_TIMEOUT")); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}
