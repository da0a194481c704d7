package container

import (
	"context"
	"fmt"
	"os"

	"kickpredict/adapters/excel"
	"kickpredict/adapters/filestore"
	"kickpredict/adapters/model"
	"kickpredict/adapters/postgres"
	"kickpredict/app"
	"kickpredict/internal"
	"kickpredict/internal/config"
	"kickpredict/internal/errors"
	"kickpredict/internal/migration"
	"kickpredict/internal/metrics"
	"kickpredict/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB    *sqlx.DB
	Store ports.ArtifactStore
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLoggerTo(os.Stderr, internal.ParseLogLevel(cfg.Log.Level), cfg.Log.Format)
	internal.DefaultLogger = logger

	return &Container{
		Config: cfg,
		Logger: logger,
	}, nil
}

// InitStore opens the configured artifact store. Postgres stores are migrated
// before use.
func (c *Container) InitStore(ctx context.Context) error {
	switch c.Config.Store.Kind {
	case config.StorePostgres:
		db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Store.DatabaseURL)
		if err != nil {
			return errors.DatabaseError("failed to connect to database", err)
		}
		if err := migration.NewRunner().Run(ctx, db); err != nil {
			db.Close()
			return errors.Wrap(err, "database migration failed")
		}
		c.DB = db
		c.Store = postgres.NewArtifactRepository(db)
		c.Logger.Info("Using postgres artifact store")
	default:
		store := filestore.NewStore(c.Config.Store.ArtifactDir)
		if err := store.EnsureBaseDir(); err != nil {
			return errors.ArtifactError("failed to create artifact directory", err)
		}
		c.Store = store
		c.Logger.Info("Using file artifact store at %s", c.Config.Store.ArtifactDir)
	}
	return nil
}

// Predictor loads the latest artifacts and builds the inference service
func (c *Container) Predictor(ctx context.Context) (*app.PredictorService, error) {
	artifacts, err := app.LoadArtifacts(ctx, c.Store)
	if err != nil {
		return nil, err
	}
	metrics.ModelHoldoutAUC.Set(artifacts.Manifest.Metrics.AUC)
	c.Logger.Info("Loaded model %s (AUC %.4f, %d categories, %d countries)",
		artifacts.Manifest.RunID, artifacts.Manifest.Metrics.AUC,
		artifacts.Tables.ByCategory.Len(), artifacts.Tables.ByCountry.Len())
	return artifacts.NewPredictor(app.WithLogger(c.Logger))
}

// Trainer builds a training service reading datasetPath, or the configured
// dataset when datasetPath is empty
func (c *Container) Trainer(datasetPath string) (*app.TrainingService, error) {
	if datasetPath == "" {
		datasetPath = c.Config.Data.DatasetFile
	}
	if datasetPath == "" {
		return nil, errors.ConfigInvalid("no dataset given: pass --data or set DATASET_FILE")
	}

	readerCfg := excel.DefaultReaderConfig(datasetPath)
	readerCfg.Sheet = c.Config.Data.Sheet
	t := c.Config.Training
	return app.NewTrainingService(excel.NewDataReader(readerCfg), c.Store, model.TrainConfig{
		LearningRate: t.LearningRate,
		Epochs:       t.Epochs,
		L2:           t.L2,
		Holdout:      t.Holdout,
		Seed:         t.Seed,
	}), nil
}

// Close releases infrastructure
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
