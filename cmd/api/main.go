// Package main is the entrypoint for the Bookshelf API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/bookshelf/bookshelf/internal/auth"
	"github.com/bookshelf/bookshelf/internal/cache"
	"github.com/bookshelf/bookshelf/internal/config"
	"github.com/bookshelf/bookshelf/internal/handler"
	"github.com/bookshelf/bookshelf/internal/metrics"
	"github.com/bookshelf/bookshelf/internal/middleware"
	"github.com/bookshelf/bookshelf/internal/repository"
	"github.com/bookshelf/bookshelf/internal/server"
	"github.com/bookshelf/bookshelf/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration. Missing signing settings stop the process here.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if cfg.MigrateOnStart {
		if err := repo.Migrate(ctx); err != nil {
			logger.Error("failed to apply migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			repo.Close()
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// Initialize cache. Interfaces stay nil when Redis is not configured.
	var (
		bookCache   service.BookCache
		cacheHealth handler.HealthChecker
		cacheClient *cache.Cache
	)
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		bookCache = cacheClient
		cacheHealth = cacheClient
		logger.Info("connected to Redis")
	} else {
		logger.Info("book cache disabled")
	}

	// Initialize auth
	codec, err := auth.NewTokenCodec(cfg.TokenSettings())
	if err != nil {
		logger.Error("failed to configure token codec", "error", err)
		os.Exit(1)
	}
	hasher := auth.NewPasswordHasher(auth.DefaultArgon2Params())
	authenticator := auth.NewAuthenticator(repo, hasher)
	guard := auth.NewGuard(codec, repo)

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	sellerService := service.NewSellerService(repo, hasher, bookCache, metricsRecorder, logger)
	bookService := service.NewBookService(repo, bookCache, metricsRecorder, logger)

	// Setup router
	security := middleware.DefaultSecurityConfig()
	security.IsDevelopment = cfg.IsDevelopment()
	if cfg.MaxRequestBodySize > 0 {
		security.MaxRequestBodySize = cfg.MaxRequestBodySize
	}

	r := handler.NewRouter(handler.RouterConfig{
		Logger:   logger,
		Guard:    guard,
		Metrics:  metricsRecorder,
		Security: security,
		CORS:     middleware.DefaultCORSConfig(cfg.CORSAllowedOrigins...),

		Root:        handler.New(),
		Health:      handler.NewHealthHandler(repo, cacheHealth),
		MetricsView: handler.NewMetricsHandler(metricsRecorder),
		Token:       handler.NewTokenHandler(authenticator, codec, cfg.AccessTokenTTL(), metricsRecorder, logger),
		Sellers:     handler.NewSellerHandler(sellerService, logger),
		Books:       handler.NewBookHandler(bookService, logger),
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"token_algorithm", codec.Algorithm(),
		"token_ttl", cfg.AccessTokenTTL(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
