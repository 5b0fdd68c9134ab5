package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam-room-service/internal/app"
	"exam-room-service/internal/config"
	"exam-room-service/internal/infra/memory"
	mongoloader "exam-room-service/internal/infra/mongo"
	pgloader "exam-room-service/internal/infra/postgres"
	redisstore "exam-room-service/internal/infra/redis"
	transport "exam-room-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the exam server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
}

func loadConfig(opts *rootOptions) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config %s: %w", opts.configPath, err)
	}
	if opts.port != "" {
		cfg.Server.Port = opts.port
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, newLogger(cfg.Log.Level, cfg.Log.Color), nil
}

func runServer(ctx context.Context, opts *rootOptions) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader, closeLoader, err := newBankLoader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLoader()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("redis connected", "addr", cfg.Redis.Addr)
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, time.Hour)
	cacheTTL := config.TTLDuration(cfg.Exam.CacheTTL, 10*time.Minute)

	var (
		banks    app.BankRepository
		rooms    app.RoomRepository
		recorder app.ResultRecorder
	)
	if redisClient != nil {
		banks = redisstore.NewBankRepository(redisClient, loader, cacheTTL)
		rooms = redisstore.NewRoomStore(redisClient, redisTTL, logger)
		recorder = redisstore.NewResultRecorder(redisClient, redisTTL)
	} else {
		banks = memory.NewBankRepository(loader, cacheTTL)
		rooms = memory.NewRoomStore()
	}

	// Fail fast on a missing or broken bank rather than on the first join.
	if _, err := banks.GetBank(ctx, cfg.Exam.Bank); err != nil {
		return fmt.Errorf("load bank %q: %w", cfg.Exam.Bank, err)
	}

	hub := transport.NewHub(logger)
	service := app.NewExamService(rooms, banks, hub, app.Options{
		BankID:       cfg.Exam.Bank,
		ExamDuration: config.TTLDuration(cfg.Exam.Duration, 10*time.Minute),
		Recorder:     recorder,
		Logger:       logger,
	})
	router := transport.NewRouter(
		transport.NewRoomHandler(service, cfg.Server.PublicURL, logger),
		transport.NewWSHandler(service, hub, logger),
	)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting exam service", "port", cfg.Server.Port, "bank", cfg.Exam.Bank)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newBankLoader picks the bank source: Postgres, then MongoDB, then the built-in bank.
func newBankLoader(ctx context.Context, cfg config.Config, logger *slog.Logger) (memory.BankLoader, func(), error) {
	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("loading banks from postgres")
		return pgloader.NewBankLoader(pool), pool.Close, nil
	case cfg.Mongo.URI != "":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		logger.Info("loading banks from mongo", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect failed", "err", err)
			}
		}
		return mongoloader.NewBankLoader(client, cfg.Mongo.Database, cfg.Mongo.Collection), closeFn, nil
	default:
		return memory.NewStaticBankLoader(memory.DefaultBanks()), func() {}, nil
	}
}
