package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"factoryplan/internal/adapters/api"
	"factoryplan/internal/adapters/http/perf"
	"factoryplan/internal/adapters/storage"
	matrixStore "factoryplan/internal/adapters/storage/matrix"
	phaseStore "factoryplan/internal/adapters/storage/phase"
	potentialStore "factoryplan/internal/adapters/storage/potential"
	profileStore "factoryplan/internal/adapters/storage/profile"
	userStore "factoryplan/internal/adapters/storage/user"
	"factoryplan/internal/application/orchestrators"
	"factoryplan/internal/config"
)

func devBackendCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "devbackend",
		Short: "Run the SQLite content backend for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := storage.Open(cfg.DevBackend.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()
			slog.Info("database_ready", "path", cfg.DevBackend.DBPath, "schema", storage.LatestSchemaVersion())

			// Performance instrumentation: wrap DB with timing, create collector
			collector := perf.NewCollector(perf.DefaultRingSize)
			timedDB := storage.NewTimedDB(db, collector, 0)

			stores := api.Stores{
				Phases:     phaseStore.NewSQLiteStore(timedDB),
				Potentials: potentialStore.NewSQLiteStore(timedDB),
				Profiles:   profileStore.NewSQLiteStore(timedDB),
				Matrix:     matrixStore.NewSQLiteStore(timedDB),
				Users:      userStore.NewSQLiteStore(timedDB),
			}

			seeded, err := orchestrators.ExecuteSeedContent(context.Background(), orchestrators.SeedContentInput{
				AdminUsername: cfg.DevBackend.AdminUsername,
				AdminPassword: cfg.DevBackend.AdminPassword,
			}, orchestrators.SeedContentDeps{
				PhaseStore:   stores.Phases,
				ProfileStore: stores.Profiles,
				UserStore:    stores.Users,
			})
			if err != nil {
				return fmt.Errorf("seeding content: %w", err)
			}
			slog.Info("content_seeded", "phases", seeded.Phases, "product_sections", seeded.ProductSections, "admin_created", seeded.AdminCreated)

			ctx, stop := signalContext()
			defer stop()
			return listen(ctx, "devbackend", cfg.DevBackend.Addr, api.New(stores, collector).Handler())
		},
	}
}
