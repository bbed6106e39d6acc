package cli

import (
	"kidlingo-service/internal/config"
	"kidlingo-service/internal/logger"

	"github.com/spf13/cobra"
)

// NewSeedCmd writes the default vocabulary into the configured dictionary.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the default vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Env)
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			if cfg.Postgres.URL != "" {
				if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
					return err
				}
			} else {
				log.Warn("no postgres configured, seeding an in-memory dictionary has no lasting effect")
			}
			d, err := buildDeps(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer d.Close()
			return d.backend.SeedVocabulary(ctx)
		},
	}
}
