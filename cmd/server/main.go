package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/randomdance/api/internal/cache"
	"github.com/randomdance/api/internal/client"
	"github.com/randomdance/api/internal/config"
	"github.com/randomdance/api/internal/handler"
	"github.com/randomdance/api/internal/middleware"
	"github.com/randomdance/api/internal/service"
	"github.com/randomdance/api/internal/store"
	"github.com/randomdance/api/internal/worker"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Working directories
	for _, dir := range []string{cfg.Paths.TempDir, cfg.Paths.AssetsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create directory")
		}
	}

	// External tool clients
	ytdlpClient := client.NewYtdlpClient(&cfg.Tools, log)
	ffmpegClient := client.NewFFmpegClient(&cfg.Tools, log)

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ytdlpClient.Check(startupCtx); err != nil {
		log.Fatal().Err(err).Msg("dependency check failed")
	}
	if err := ffmpegClient.Check(startupCtx); err != nil {
		log.Fatal().Err(err).Msg("dependency check failed")
	}

	// Countdown cue is a static asset; generate it once if missing
	countdownPath := filepath.Join(cfg.Paths.AssetsDir, "countdown.mp3")
	if err := ffmpegClient.EnsureCountdown(startupCtx, countdownPath); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare countdown audio")
	}

	// Redis: job store, search cache and task queue live here. Without it
	// the service falls back to in-process equivalents.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisAvailable := true
	if err := redisClient.Ping(startupCtx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis not available, using in-memory store and local task execution")
		redisAvailable = false
	}

	var jobStore store.JobStore
	var searchCache cache.Cache
	var rateLimitClient *redis.Client
	if redisAvailable {
		jobStore = store.NewRedisStore(redisClient)
		searchCache = cache.NewRedisCache(redisClient, log)
		rateLimitClient = redisClient
	} else {
		jobStore = store.NewMemoryStore()
		searchCache = cache.NewMemoryCache()
	}

	// Analytics (optional; the service runs without it)
	analytics, err := service.NewAnalyticsService(cfg.Analytics.DBPath, log)
	if err != nil {
		log.Warn().Err(err).Msg("analytics unavailable")
		analytics = nil
	} else {
		defer analytics.Close()
	}

	// Background worker
	generateWorker := worker.NewGenerateWorker(jobStore, ytdlpClient, ffmpegClient, cfg.Paths.TempDir, countdownPath, log)

	var enqueuer service.TaskEnqueuer
	if redisAvailable {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer asynqClient.Close()
		enqueuer = asynqClient

		go startWorkerServer(cfg, generateWorker, log)
	} else {
		enqueuer = worker.NewLocalRunner(generateWorker, log)
	}

	// Services
	searchTTL := time.Duration(cfg.Cache.SearchTTLHours) * time.Hour
	generateService := service.NewGenerateService(jobStore, enqueuer, analytics, &cfg.Paths, log)
	mediaService := service.NewMediaService(ytdlpClient, searchCache, searchTTL, log)

	// Handlers
	validate := validator.New()
	generateHandler := handler.NewGenerateHandler(generateService, validate)
	mediaHandler := handler.NewMediaHandler(mediaService, cfg.Paths.AssetsDir)
	statsHandler := handler.NewStatsHandler(analytics)

	rateLimiter := middleware.NewRateLimiter(rateLimitClient)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    5 * 1024 * 1024, // 5MB
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(middleware.NewVisitLogger(analytics))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API routes
	api := app.Group("/api")
	api.Get("/youtube/info", mediaHandler.Info)
	api.Get("/youtube/search", mediaHandler.Search)
	api.Get("/bands", mediaHandler.Bands)
	api.Post("/generate", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerHour), generateHandler.Start)
	api.Get("/status/:jobId", generateHandler.Status)
	api.Get("/download/:jobId", generateHandler.Download)
	api.Get("/download-report/:jobId", generateHandler.DownloadReport)
	api.Get("/stats", statsHandler.Stats)

	// Static UI
	app.Static("/", cfg.Paths.PublicDir)
	app.Get("/admin", func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(cfg.Paths.PublicDir, "admin.html"))
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Info().Str("addr", addr).Msg("server starting")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func startWorkerServer(cfg *config.Config, generateWorker *worker.GenerateWorker, log zerolog.Logger) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			// Jobs run concurrently with each other; each job's segments
			// are downloaded sequentially inside its own task.
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				"generate": 10,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeGenerate, generateWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Error().Err(err).Msg("asynq worker error")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
