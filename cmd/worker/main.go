package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"reelcast/internal/config"
	"reelcast/internal/pipeline"
	"reelcast/internal/pkg/logger"
	"reelcast/internal/pkg/shutdown"
	"reelcast/internal/render"
	"reelcast/internal/repositories"
	"reelcast/internal/storage"
	"reelcast/internal/worker"
	"reelcast/internal/worker/processor"
	"reelcast/internal/worker/queue"
)

func main() {
	configPath := flag.String("config", "", "path to reelcast.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewDefault().LogFatal("failed to load configuration", err)
	}

	log := logger.New(cfg.LoggerConfig("reelcast-worker"))
	if err := cfg.ValidateService(); err != nil {
		log.LogFatal("invalid configuration", err)
	}

	renderTimeout := time.Duration(cfg.Render.TimeoutSeconds) * time.Second
	shutdownMgr := shutdown.NewManager(log, worker.ShutdownTimeout(renderTimeout, 30*time.Second))
	ctx := shutdownMgr.Context()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}

	repo := repositories.NewRenderJobRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.LogFatal("failed to apply schema", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}

	sp, err := storage.NewProvider(ctx, cfg.Storage)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}

	proc := processor.New(processor.Deps{
		Store:   repo,
		SP:      sp,
		Log:     log,
		Timeout: renderTimeout,
	})
	pl := pipeline.New(cfg, log, func(s render.Status) { proc.Observe(s) })
	proc.SetRenderer(pl.Machine)

	if err := pl.Engine.Load(ctx); err != nil {
		log.LogFatal("encode engine unavailable", err)
	}

	log.Info("reelcast worker started",
		"queue", cfg.Redis.Queue,
		"storage", sp.Provider(),
	)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		err := worker.Run(ctx, worker.Deps{
			Queue:     queue.NewRedisQueue(rdb, cfg.Redis.Queue),
			Processor: proc,
			Log:       log,
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("worker stopped", "error", err.Error())
		}
	}()

	// Handlers run concurrently, so the connections close only after the
	// in-flight job has been recorded. A job still running when the budget
	// runs out is marked failed rather than left RUNNING.
	shutdownMgr.Register("worker", func(ctx context.Context) error {
		defer pool.Close()
		defer rdb.Close()
		return worker.Drain(ctx, stopped, func(actx context.Context) {
			if id := proc.FailInFlight(actx); id != "" {
				log.WithJobID(id).Warn("abandoned in-flight job on shutdown")
			}
		})
	})

	shutdownMgr.Wait()
}
