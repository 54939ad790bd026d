package container

import (
	"context"
	"fmt"
	"log"

	"gundash/adapters/excel"
	"gundash/adapters/memory"
	"gundash/adapters/postgres"
	"gundash/internal/api"
	"gundash/internal/config"
	"gundash/internal/dashboard"
	"gundash/internal/dataset"
	"gundash/internal/intent"
	"gundash/internal/migration"
	"gundash/internal/profiling"
	"gundash/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB       *sqlx.DB
	Migrator migration.Migrator

	// Repositories (data access layer)
	ModelRepo ports.ModelRepository

	// Dashboard components
	Source   ports.DatasetSource
	Dataset  *dataset.Cache
	Catalog  *dashboard.Catalog
	Profiler *profiling.DataProfiler
	SSEHub   *api.SSEHub

	// Model components
	Models *intent.Service
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config:   cfg,
		Migrator: migration.NewRunner(),
	}

	return c, nil
}

// Init opens the model store and wires the dashboard and model services
func (c *Container) Init(ctx context.Context) error {
	if err := c.initRepositories(ctx); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if err := c.initDashboard(); err != nil {
		return fmt.Errorf("failed to initialize dashboard: %w", err)
	}

	c.Models = intent.NewService(c.Dataset, c.ModelRepo, c.Config.Model, c.SSEHub)

	log.Printf("Container initialized (dataset %s, model store %s)", c.Config.Data.Path, c.storeName())
	return nil
}

// initRepositories selects the model store from DATABASE_URL
func (c *Container) initRepositories(ctx context.Context) error {
	if c.Config.Database.Driver() == "" {
		c.ModelRepo = memory.NewModelRepository()
		return nil
	}

	db, err := postgres.Open(ctx, c.Config.Database)
	if err != nil {
		return err
	}
	if err := c.Migrator.Run(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("database migration %s failed: %w", c.Migrator.Version(), err)
	}
	c.DB = db
	c.ModelRepo = postgres.NewModelRepository(db)
	return nil
}

// initDashboard wires the dataset cache, chart catalog and event hub
func (c *Container) initDashboard() error {
	catalog, err := dashboard.DefaultCatalog()
	if err != nil {
		return err
	}
	c.Catalog = catalog
	c.SSEHub = api.NewSSEHub()
	c.Source = excel.NewDataReader(c.Config.Data.Path)
	c.Dataset = dataset.NewCache(c.Source, c.SSEHub)
	c.Profiler = profiling.NewDataProfiler()
	return nil
}

func (c *Container) storeName() string {
	if d := c.Config.Database.Driver(); d != "" {
		return d
	}
	return "memory"
}

// Shutdown releases resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
