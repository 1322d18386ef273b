package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openfrc/stats-api/internal/config"
	"github.com/openfrc/stats-api/internal/handlers"
	"github.com/openfrc/stats-api/internal/logic"
	"github.com/openfrc/stats-api/internal/metrics"
	"github.com/openfrc/stats-api/internal/provider"
	"github.com/openfrc/stats-api/internal/scoring"
	"github.com/openfrc/stats-api/internal/store"
	"github.com/openfrc/stats-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.Env == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		log.Fatalw("Invalid tuning", "file", cfg.TuningFile, "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := make(map[string]handlers.HealthCheck)
	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	// --- Ranking store ---
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalw("Invalid REDIS_URL", "error", err)
		}
		rdb = redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var st store.Store
	switch {
	case cfg.PostgresURL != "":
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalw("Postgres connection failed", "error", err)
		}
		cleanup = append(cleanup, pool.Close)
		checks["postgres"] = pool.Ping

		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatalw("Postgres migration failed", "error", err)
		}
		st = pg
		if rdb != nil {
			st = store.NewCachedStore(pg, rdb, cfg.ShardTTL)
			log.Info("Ranking store: PostgreSQL with Redis cache")
		} else {
			log.Info("Ranking store: PostgreSQL")
		}
	case rdb != nil:
		st = store.NewRedisStore(rdb)
		log.Info("Ranking store: Redis")
	default:
		log.Warn("POSTGRES_URL and REDIS_URL not set, using in-memory ranking store (data will not persist)")
		st = store.NewMemoryStore()
	}

	// --- Rating history ---
	var (
		sink    logic.SnapshotSink
		queue   handlers.SnapshotQueue
		history logic.HistoryService
	)
	if cfg.ClickHouseURL != "" {
		ch, err := openClickHouse(ctx, cfg.ClickHouseURL)
		if err != nil {
			log.Fatalw("ClickHouse connection failed", "error", err)
		}
		cleanup = append(cleanup, func() { ch.Close() })
		checks["clickhouse"] = ch.Ping

		pool := worker.NewPool(worker.PoolConfig{
			WorkerCount:   cfg.WorkerCount,
			QueueSize:     cfg.QueueSize,
			BatchSize:     cfg.BatchSize,
			FlushInterval: cfg.FlushInterval,
			ClickHouse:    ch,
			Logger:        logger,
		})
		pool.Start(ctx)
		// Runs before ch.Close so pending snapshots are flushed
		cleanup = append(cleanup, pool.Stop)

		sink, queue = pool, pool
		history = logic.NewHistoryService(ch)
	} else {
		log.Warn("CLICKHOUSE_URL not set, rating history disabled")
	}

	// --- External collaborators ---
	matchProvider := provider.NewClient(
		provider.WithBaseURL(cfg.ProviderBaseURL),
		provider.WithAuthKey(cfg.ProviderAuthKey),
		provider.WithRateLimit(cfg.ProviderRateLimit, cfg.ProviderBurst),
	)

	model, err := scoringModel(cfg, tuning)
	if err != nil {
		log.Fatalw("Invalid scoring model", "error", err)
	}

	// --- Services ---
	ratings := logic.NewRatingService(logic.RatingConfig{
		Provider:   matchProvider,
		Store:      st,
		Sink:       sink,
		Tuning:     tuning,
		SummaryTTL: cfg.EventSummaryTTL,
		Logger:     logger,
	})
	global, err := logic.NewGlobalService(logic.GlobalConfig{
		Provider:              matchProvider,
		Store:                 st,
		Ratings:               ratings,
		Tuning:                tuning,
		ShardsPerSeason:       cfg.ShardsPerSeason,
		ShardTTL:              cfg.ShardTTL,
		PriorityRefreshBudget: cfg.PriorityRefreshBudget,
		RefreshConcurrency:    cfg.RefreshConcurrency,
		Logger:                logger,
	})
	if err != nil {
		log.Fatalw("Invalid global ranking config", "error", err)
	}
	draft := logic.NewDraftService(logic.DraftConfig{
		Ratings: ratings,
		Model:   model,
		Tuning:  tuning,
		Timeout: cfg.DraftTimeout,
		Logger:  logger,
	})
	luck := logic.NewLuckService(logic.LuckConfig{
		Provider:    matchProvider,
		Ratings:     ratings,
		Concurrency: cfg.RefreshConcurrency,
		Logger:      logger,
	})

	h := handlers.New(handlers.Config{
		Queue:   queue,
		Checks:  checks,
		Logger:  logger,
		Ratings: ratings,
		Global:  global,
		Draft:   draft,
		Luck:    luck,
		History: history,
		Teams:   logic.NewTeamDirectory(matchProvider, cfg.RefreshConcurrency*2, logger),
	})

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware)
	r.Handle("/metrics", metrics.Handler())
	h.Routes(r)

	// Draft simulations may run up to DraftTimeout
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.DraftTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("Stats API listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Shutdown error", "error", err)
	}
}

func openClickHouse(ctx context.Context, dsn string) (driver.Conn, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, err
	}
	if err := worker.EnsureSchema(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// scoringModel prefers the remote model, then tuned linear coefficients, then the FSM sum
func scoringModel(cfg *config.Config, tuning logic.Tuning) (logic.ScoringModel, error) {
	if cfg.ScoringModelURL != "" {
		return scoring.NewHTTPModel(cfg.ScoringModelURL), nil
	}
	if len(tuning.ModelWeights) > 0 {
		return scoring.NewLinearModel(tuning.ModelIntercept, tuning.ModelWeights)
	}
	return scoring.DefaultLinearModel(), nil
}
