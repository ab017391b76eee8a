package main

// @title           Local Library API
// @version         1.0
// @description     Catalog and circulation API for a local lending library.

// @contact.name   Sina Niyavarzi
// @contact.email  sinaniya@gmail.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/catalog"
	"github.com/snnyvrz/locallibrary/internal/circulation"
	"github.com/snnyvrz/locallibrary/internal/config"
	"github.com/snnyvrz/locallibrary/internal/db"
	docs "github.com/snnyvrz/locallibrary/internal/docs"
	"github.com/snnyvrz/locallibrary/internal/handler"
	"github.com/snnyvrz/locallibrary/internal/observability"
	"github.com/snnyvrz/locallibrary/internal/repository"
	"github.com/snnyvrz/locallibrary/internal/stats"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const appVersion = "0.1.0"

func main() {
	startTime := time.Now()

	cfg := config.Load()
	logger := observability.InitLogger("locallibrary", cfg.LogLevel)

	gin.SetMode(cfg.GinMode)

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid time zone")
	}
	policy, err := cfg.Policy()
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.PolicyFile).Msg("invalid library policy")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.ConnectWithRetry(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not connect to database")
	}
	if err := db.Migrate(database); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	var (
		cache  stats.Cache
		pinger handler.Pinger
	)
	if cfg.RedisAddr != "" {
		rc, err := stats.NewRedisCache(nil, &stats.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("stats cache disabled")
		} else {
			defer rc.Close()
			cache, pinger = rc, rc
		}
	}

	users := repository.NewUserRepository(database)
	repos := catalog.Repositories{
		Books:     repository.NewGormBookRepository(database),
		Authors:   repository.NewAuthorRepository(database),
		Genres:    repository.NewGenreRepository(database),
		Languages: repository.NewLanguageRepository(database),
		Instances: repository.NewInstanceRepository(database),
		Users:     users,
	}

	circulationService := circulation.NewService(repos.Instances, repos.Books, users, policy,
		circulation.WithLocation(loc),
		circulation.WithLogger(logger),
	)
	catalogService := catalog.NewService(repos, circulationService, logger)
	statsService := stats.NewService(repository.NewCountRepository(database), cache, stats.DefaultTTL, logger)

	trusted, err := auth.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}

	observability.RegisterMetrics()

	e := gin.New()
	e.Use(gin.Recovery(), observability.RequestLogger(logger), observability.RequestMetrics(), auth.Identity(users, trusted))

	if err := e.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}

	docs.SwaggerInfo.BasePath = "/api"

	healthHandler := handler.NewHealthHandler(database, pinger, startTime, appVersion)
	healthHandler.RegisterRoutes(e)

	api := e.Group("/api")
	{
		handler.NewBookHandler(catalogService, circulationService.Today).RegisterRoutes(api)
		handler.NewAuthorHandler(catalogService).RegisterRoutes(api)
		handler.NewTaxonomyHandler(catalogService).RegisterRoutes(api)
		handler.NewCopyHandler(circulationService, catalogService).RegisterRoutes(api)
		handler.NewLoanHandler(catalogService, circulationService).RegisterRoutes(api)
		handler.NewUserHandler(catalogService).RegisterRoutes(api)
		handler.NewStatsHandler(statsService).RegisterRoutes(api)
	}

	e.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("tz", loc.String()).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
