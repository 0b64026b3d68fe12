package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"reelcast/internal/config"
	"reelcast/internal/httpapi"
	"reelcast/internal/httpapi/handlers"
	"reelcast/internal/pipeline"
	"reelcast/internal/pkg/logger"
	"reelcast/internal/pkg/shutdown"
	"reelcast/internal/repositories"
	"reelcast/internal/storage"
	"reelcast/internal/worker/queue"
)

func main() {
	configPath := flag.String("config", "", "path to reelcast.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewDefault().LogFatal("failed to load configuration", err)
	}

	// Initialize logger
	log := logger.New(cfg.LoggerConfig("reelcast-api"))
	if err := cfg.ValidateService(); err != nil {
		log.LogFatal("invalid configuration", err)
	}

	log.Info("starting reelcast API",
		"version", "0.1.0",
	)

	ctx := context.Background()

	// Initialize shutdown manager
	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	// Connect to PostgreSQL
	log.Info("connecting to PostgreSQL")
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	shutdownMgr.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	if err := pool.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}
	repo := repositories.NewRenderJobRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.LogFatal("failed to apply schema", err)
	}
	log.Info("PostgreSQL connected")

	// Connect to Redis
	log.Info("connecting to Redis")
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}
	log.Info("Redis connected", "queue", cfg.Redis.Queue)

	// Initialize storage provider
	sp, err := storage.NewProvider(ctx, cfg.Storage)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	// Render pipeline for synchronous renders; each request gets its own job
	// so concurrent clients never supersede one another.
	pl := pipeline.New(cfg, log, nil)
	if err := pl.Engine.Load(ctx); err != nil {
		log.Warn("encode engine unavailable, /renders will fail", "error", err.Error())
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Handlers: handlers.Deps{
			Repo:         repo,
			Queue:        queue.NewRedisQueue(rdb, cfg.Redis.Queue),
			SP:           sp,
			Renderer:     pl.Isolated,
			Narrator:     pl.Narrator,
			Engine:       pl.Engine,
			MaxTextBytes: cfg.HTTP.MaxTextBytes,
		},
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Log:            log,
	})

	writeTimeout := 120 * time.Second
	if rt := time.Duration(cfg.Render.TimeoutSeconds) * time.Second; rt+30*time.Second > writeTimeout {
		writeTimeout = rt + 30*time.Second
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening",
			"addr", server.Addr,
			"port", cfg.HTTP.Port,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	// Wait for shutdown signal
	shutdownMgr.Wait()
}
