package container

import (
	"context"
	"fmt"

	"happydash/adapters/postgres"
	"happydash/adapters/source"
	"happydash/app"
	"happydash/internal/config"
	"happydash/internal/errors"
	"happydash/internal/loader"
	"happydash/internal/migration"
	"happydash/internal/schema"
	"happydash/internal/testkit"
	"happydash/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB      *sqlx.DB
	Schemas *schema.Registry
	Fetcher *source.Fetcher

	// Pipeline
	Source    ports.TableSource
	Loader    *loader.Loader
	Dashboard *app.DashboardService
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	schemas, err := schema.LoadRegistry(cfg.Source.SchemaFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load schema profiles")
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Schemas: schemas,
		Fetcher: source.NewFetcher(cfg.Source.FetchTimeout, logger.Named("source")),
		Loader:  loader.New(logger.Named("loader")),
	}
	return c, nil
}

// Init connects the configured source and builds the dashboard service
func (c *Container) Init(ctx context.Context) error {
	src, err := c.NewSource(ctx)
	if err != nil {
		return err
	}
	c.Source = src
	c.Dashboard = app.NewDashboardService(c.Loader, src, c.Config.Dashboard.DefaultCountries, c.Logger.Named("dashboard"))
	c.Logger.Info("data source configured",
		zap.String("kind", c.Config.Source.Kind),
		zap.String("location", src.Location()))
	return nil
}

// NewSource builds the table source selected by DATA_SOURCE
func (c *Container) NewSource(ctx context.Context) (ports.TableSource, error) {
	cfg := c.Config.Source
	logger := c.Logger.Named("source")

	switch cfg.Kind {
	case config.SourceCSV:
		profile, err := c.profile(schema.ProfileCSV)
		if err != nil {
			return nil, err
		}
		return source.NewCSVSource(cfg.URL, profile, c.Fetcher, logger), nil

	case config.SourceSheet:
		profile, err := c.profile(schema.ProfileSheet)
		if err != nil {
			return nil, err
		}
		sheet := cfg.SheetName
		if sheet == "" {
			sheet = "Sheet1"
		}
		return source.NewSheetSource(cfg.SheetID, sheet, profile, c.Fetcher, logger), nil

	case config.SourceXLSX:
		location := cfg.URL
		defaultProfile := schema.ProfileCSV
		if location == "" {
			location = source.SheetXLSXURL(cfg.SheetID)
			defaultProfile = schema.ProfileSheet
		}
		profile, err := c.profile(defaultProfile)
		if err != nil {
			return nil, err
		}
		return source.NewXLSXSource(location, cfg.SheetName, profile, c.Fetcher, logger), nil

	case config.SourcePostgres:
		db, err := c.ConnectDatabase(ctx)
		if err != nil {
			return nil, err
		}
		return postgres.NewObservationRepository(db, c.Config.Database.Table, c.Logger)

	case config.SourceSample:
		return testkit.NewSampleSource(testkit.DefaultGeneratorConfig()), nil

	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unknown DATA_SOURCE %q", cfg.Kind))
	}
}

// profile returns SCHEMA_PROFILE when set, otherwise fallback
func (c *Container) profile(fallback string) (schema.Profile, error) {
	name := c.Config.Source.Profile
	if name == "" {
		name = fallback
	}
	p, err := c.Schemas.Get(name)
	if err != nil {
		return schema.Profile{}, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return p, nil
}

// ConnectDatabase opens the PostgreSQL connection and runs the migrations once
func (c *Container) ConnectDatabase(ctx context.Context) (*sqlx.DB, error) {
	if c.DB != nil {
		return c.DB, nil
	}
	if c.Config.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}

	migrator, err := migration.NewRunner(c.Config.Database.Table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrator.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}

	c.DB = db
	return db, nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return errors.DatabaseError("failed to close database", err)
		}
		c.DB = nil
	}
	_ = c.Logger.Sync()
	return nil
}
