package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/ecommerce_api/internal/cache"
	"github.com/Skotchmaster/ecommerce_api/internal/httpserver"
	"github.com/Skotchmaster/ecommerce_api/internal/repo"
	"github.com/Skotchmaster/ecommerce_api/internal/search"
	"github.com/Skotchmaster/ecommerce_api/internal/service"
	"github.com/Skotchmaster/ecommerce_api/internal/storage"
	"github.com/Skotchmaster/ecommerce_api/pkg/config"
	pkgdb "github.com/Skotchmaster/ecommerce_api/pkg/db"
	"github.com/Skotchmaster/ecommerce_api/pkg/events"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
	loggingmw "github.com/Skotchmaster/ecommerce_api/pkg/middleware/logging"
	"github.com/Skotchmaster/ecommerce_api/pkg/middleware/metrics"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}
	r := &repo.GormRepo{DB: db}
	if err := r.Migrate(ctx); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewProducer(cfg.KafkaBrokers)
	}

	var store storage.Store
	mediaDir := ""
	if cfg.MinioEndpoint != "" {
		m, err := storage.NewMinio(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			cancel()
			log.Fatalf("minio: %v", err)
		}
		if err := m.EnsureBucket(ctx); err != nil {
			cancel()
			log.Fatalf("minio bucket: %v", err)
		}
		store = m
	} else {
		mediaDir = cfg.MediaDir
		store = &storage.Local{Root: cfg.MediaDir}
	}

	catalog := &service.CatalogService{Repo: r, Store: store, Events: publisher}
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis_unavailable", "error", err)
		} else {
			defer rdb.Close()
			catalog.Cache = cache.NewProductCache(rdb, cfg.CacheTTL)
		}
	}
	if cfg.ESURL != "" {
		es, err := search.NewClient(search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex})
		if err != nil {
			logger.Warn("elasticsearch_unavailable", "error", err)
		} else {
			catalog.Index = es
		}
	}
	cancel()

	m := metrics.New()
	users := &service.UserService{
		Repo:       r,
		Events:     publisher,
		JWTSecret:  cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		ConfirmTTL: cfg.ConfirmTTL,
	}
	orders := &service.OrderService{Repo: r, Events: publisher, Metrics: m}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpserver.NewValidator()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(m.Middleware())
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler:     &httpserver.CatalogHTTP{Svc: catalog, PublicBaseURL: cfg.PublicBaseURL},
		OrderHandler:       &httpserver.OrderHTTP{Svc: orders, PublicBaseURL: cfg.PublicBaseURL},
		UserHandler:        &httpserver.UserHTTP{Svc: users, PublicBaseURL: cfg.PublicBaseURL},
		Auth:               httpserver.RequireUser(cfg.JWTSecret, users),
		Metrics:            m,
		MediaDir:           mediaDir,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		Ready:              r.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = publisher.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("stopped")
}
