package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"todo-tracker/internal/api"
	"todo-tracker/internal/auth"
	"todo-tracker/internal/config"
	"todo-tracker/internal/repository"
	"todo-tracker/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Error("db", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tagRepo := repository.NewTagRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	hasher := auth.NewPasswordHasher(0)

	categorySvc := service.NewCategoryService(categoryRepo)
	tagSvc := service.NewTagService(tagRepo)
	todoSvc := service.NewTodoService(todoRepo, categorySvc, tagSvc, service.NewQueryBuilder(cfg.Location))
	userSvc := service.NewUserService(userRepo, hasher, tokens, cfg.DefaultCategory)
	resetSvc := service.NewPasswordResetService(userRepo, resetRepo, hasher, service.NewLogMailer(logger), cfg.FrontendURL)

	var limiter *api.RateLimiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("redis url", "error", err)
			os.Exit(1)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, requests will not be limited until it is back", "error", err)
		}
		limiter = api.NewRateLimiter(client, cfg.RateLimitUser, cfg.RateLimitAnon)
	}

	scheduler := service.NewSchedulerService(cfg.Location, logger)
	if cfg.PruningEnabled() {
		if _, err := scheduler.ScheduleTagPruning(cfg.TagPruneAt, tagSvc); err != nil {
			logger.Error("schedule tag pruning", "error", err)
			os.Exit(1)
		}
		if _, err := scheduler.ScheduleResetTokenPurge(cfg.TagPruneAt, resetSvc); err != nil {
			logger.Error("schedule reset token purge", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	gin.SetMode(gin.ReleaseMode)
	server := api.New(api.Services{
		Users:      userSvc,
		Todos:      todoSvc,
		Categories: categorySvc,
		Tags:       tagSvc,
		Resets:     resetSvc,
	}, tokens, limiter, &cfg, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("todo tracker listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
	}
	logger.Info("shutdown complete")
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
