package cli

import (
	"context"
	"errors"
	"log/slog"

	"exam-room-service/internal/config"
	"exam-room-service/internal/domain"
	"exam-room-service/internal/infra/memory"
	mongoloader "exam-room-service/internal/infra/mongo"
	pgloader "exam-room-service/internal/infra/postgres"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewSeedCmd writes the built-in question banks to every configured database.
func NewSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the built-in question banks into Postgres and/or MongoDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg, logger)
		},
	}
}

func runSeed(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.Postgres.URL == "" && cfg.Mongo.URI == "" {
		return errors.New("seed needs postgres.url or mongo.uri")
	}

	banks := make([]domain.QuestionBank, 0, len(memory.DefaultBanks()))
	for _, bank := range memory.DefaultBanks() {
		banks = append(banks, bank)
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
		db, err := openBunDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := pgloader.SeedBanks(ctx, db, banks); err != nil {
			return err
		}
		logger.Info("seeded postgres", "banks", len(banks))
	}

	if cfg.Mongo.URI != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect failed", "err", err)
			}
		}()
		loader := mongoloader.NewBankLoader(client, cfg.Mongo.Database, cfg.Mongo.Collection)
		for _, bank := range banks {
			if err := loader.SaveBank(ctx, bank); err != nil {
				return err
			}
		}
		logger.Info("seeded mongo", "banks", len(banks))
	}
	return nil
}
