package app

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/hockey-predictor/internal/config"
	"github.com/riskibarqy/hockey-predictor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/hockey-predictor/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
)

func (d *Dependencies) openStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) error {
	if cfg.StorageDriver != config.StorageDriverPostgres {
		store := memory.NewStore(memory.SeedGroups(), memory.SeedMembers())
		d.Groups = memory.NewGroupRepository(store)
		d.Predictions = memory.NewPredictionRepository(store)
		logger.Info("storage ready", "driver", config.StorageDriverMemory)
		return nil
	}

	db, err := postgres.Open(ctx, postgres.Options{
		URL:                   cfg.DBURL,
		DisablePreparedBinary: cfg.DBDisablePreparedBinary,
		MaxOpenConns:          20,
		MaxIdleConns:          5,
		ConnMaxLifetime:       30 * time.Minute,
		PingTimeout:           5 * time.Second,
	})
	if err != nil {
		return err
	}
	d.closers = append(d.closers, db.Close)

	if cfg.AppEnv == config.EnvDev {
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			return fmt.Errorf("bootstrap seed: %w", err)
		}
	}

	d.Groups = postgres.NewGroupRepository(db)
	d.Predictions = postgres.NewPredictionRepository(db)
	logger.Info("storage ready", "driver", config.StorageDriverPostgres, "db_name", postgres.DatabaseName(cfg.DBURL))
	return nil
}
