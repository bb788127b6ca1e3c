package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/akravets/contacts-api/config"
	"github.com/akravets/contacts-api/internal/cache"
	"github.com/akravets/contacts-api/internal/email"
	"github.com/akravets/contacts-api/internal/health"
	"github.com/akravets/contacts-api/internal/infrastructure/postgres"
	"github.com/akravets/contacts-api/internal/infrastructure/redisdb"
	ctxlog "github.com/akravets/contacts-api/internal/log"
	"github.com/akravets/contacts-api/internal/metrics"
	"github.com/akravets/contacts-api/internal/reminder"
	"github.com/akravets/contacts-api/internal/token"
	httptransport "github.com/akravets/contacts-api/internal/transport/http"
	"github.com/akravets/contacts-api/internal/transport/http/handler"
	"github.com/akravets/contacts-api/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := postgres.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		stop()
		log.Fatalf("migrations: %v", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisdb.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		stop()
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	userCache := cache.NewUsers(redisClient, logger)
	counter := cache.NewCounter(redisClient)

	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	codec := token.NewCodec([]byte(cfg.JWTSecret))

	// Auth
	userRepo := postgres.NewUserRepository(pool)
	authUsecase := usecase.NewAuthUsecase(userRepo, userCache, codec, emailSender, cfg.BaseURL, logger)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Contacts
	contactRepo := postgres.NewContactRepository(pool)
	contactUsecase := usecase.NewContactUsecase(contactRepo)
	contactHandler := handler.NewContactHandler(contactUsecase, logger)

	// Users
	userUsecase := usecase.NewUserUsecase(userRepo, userCache, usecase.AvatarStorage{
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}, logger)
	userHandler := handler.NewUserHandler(userUsecase, logger)

	// Birthday digest
	digest, err := reminder.NewDigest(contactRepo, emailSender, logger, cfg.ReminderCron, cfg.ReminderWindowDays)
	if err != nil {
		stop()
		log.Fatalf("reminder: %v", err)
	}
	go digest.Start(ctx)

	metrics.Register()
	checker := health.NewChecker(pool, userCache, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(httptransport.RouterDeps{
			Logger:          logger,
			Auth:            authHandler,
			Contact:         contactHandler,
			User:            userHandler,
			Authenticator:   authUsecase,
			Counter:         counter,
			CORSOrigin:      cfg.CORSOrigin,
			ReadLimit:       cfg.RateLimitReadPerWindow,
			WriteLimit:      cfg.RateLimitWritePerWindow,
			RateLimitWindow: cfg.RateLimitWindow(),
		}),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
