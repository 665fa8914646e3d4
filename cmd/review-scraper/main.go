package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prodsight/amazon-review-scraper/internal/api"
	"github.com/prodsight/amazon-review-scraper/internal/browser"
	"github.com/prodsight/amazon-review-scraper/internal/cache"
	"github.com/prodsight/amazon-review-scraper/internal/config"
	"github.com/prodsight/amazon-review-scraper/internal/parser"
	"github.com/prodsight/amazon-review-scraper/internal/review"
	"github.com/prodsight/amazon-review-scraper/internal/scraper"
)

// sessionFactory adapts the browser engine to the scraper's session interface.
type sessionFactory struct {
	engine *browser.Engine
}

func (f *sessionFactory) NewSession() (scraper.Session, error) {
	return f.engine.NewSession()
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Setup logging
	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.Logging.Level)})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.Logging.Level)})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Browser setup
	engine, err := browser.NewEngine(&browser.Options{
		Headless:       cfg.Browser.Headless,
		NavTimeout:     cfg.Browser.NavTimeout,
		UserAgents:     cfg.Browser.UserAgents,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: browser.DefaultOptions().AcceptLanguage,
		Locale:         browser.DefaultOptions().Locale,
		ProxyServer:    cfg.Browser.ProxyServer,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	// Scraping pipeline
	p := parser.NewAmazonParser()
	navigator := scraper.NewNavigator(p, scraper.NavigatorOptions{
		BaseURL:    cfg.Scraper.BaseURL,
		Category:   cfg.Scraper.Category,
		NavTimeout: cfg.Browser.NavTimeout,
		PauseMin:   cfg.Scraper.PauseMin,
		PauseMax:   cfg.Scraper.PauseMax,
	}, logger)
	extractor := scraper.NewExtractor(p, scraper.ExtractorOptions{
		TitleTimeout:  cfg.Scraper.TitleTimeout,
		ReviewTimeout: cfg.Scraper.ReviewTimeout,
	}, logger)
	service := scraper.NewService(&sessionFactory{engine: engine}, navigator, extractor, scraper.ServiceOptions{
		MaxAttempts:     cfg.Scraper.MaxAttempts,
		RetryDelayMin:   cfg.Scraper.RetryDelayMin,
		RetryDelayMax:   cfg.Scraper.RetryDelayMax,
		ConcurrentLimit: cfg.Scraper.ConcurrentLimit,
	}, logger)

	// Optional result cache
	var resultCache *cache.Cache
	if cfg.Cache.Addr != "" {
		resultCache, err = cache.New(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.TTL, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer resultCache.Close()
	} else {
		logger.Info("result cache disabled, REDIS_ADDR not set")
	}

	// Optional review generator
	var generator api.ReviewGenerator
	if cfg.Review.GeminiAPIKey != "" {
		g, err := review.NewGenerator(ctx, cfg.Review.GeminiAPIKey, cfg.Review.Model, cfg.Review.Timeout, logger)
		if err != nil {
			logger.Error("failed to initialize review generator", "error", err)
			os.Exit(1)
		}
		generator = g
	} else {
		logger.Info("review generation disabled, GOOGLE_GEMINI_API_KEY not set")
	}

	// Initialize API handlers
	handlers := api.NewHandlers(service, generator, resultCache, logger)

	// Setup Chi router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API Routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/reviews", handlers.GetReviews)
		r.Get("/generate-review", handlers.GenerateReview)
		r.Get("/health", handlers.Health)
	})

	// Start server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
