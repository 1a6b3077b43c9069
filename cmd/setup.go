package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/watchlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the config file when it does not exist yet and migrates the storage database.
//
// With --rollback the most recent storage migration is undone instead.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
		}
		r.writePlain("✓ Created %s\n", path)
	} else {
		r.writePlain("✓ Using %s\n", path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return err
	}
	r.config = config

	db := r.db
	if db == nil {
		if db, err = shared.OpenStorageDatabase(config.Storage); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		defer db.Close()
	}

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back last storage migration", "path", config.Storage.Path)
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		return r.writePlain("✓ Rolled back the last migration of %s\n", config.Storage.Path)
	}

	r.logger.Info("running storage migrations", "path", config.Storage.Path)
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	backend, err := shared.ResolveBackend(config, nil)
	if err != nil {
		return err
	}

	r.writePlain("✓ Storage ready at %s\n", config.Storage.Path)
	return r.writePlain("✓ Backend (%s): %s\n", backend.Mode, backend.BaseURL)
}
