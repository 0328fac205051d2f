package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/princinho/coursemarket/cache"
	"github.com/princinho/coursemarket/config"
	"github.com/princinho/coursemarket/controllers"
	"github.com/princinho/coursemarket/database"
	"github.com/princinho/coursemarket/jobs"
	"github.com/princinho/coursemarket/middleware"
	"github.com/princinho/coursemarket/services"
	"github.com/princinho/coursemarket/utils"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := database.Connect(ctx, cfg.Mongo, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error("disconnect mongo", zap.Error(err))
		}
	}()

	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	users := database.NewUserRepository(store)
	courses := database.NewCourseRepository(store)
	purchases := database.NewPurchaseRepository(store)

	var courseCache services.CourseCache
	if cfg.Redis.Addr != "" {
		c, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, course cache disabled", zap.Error(err))
		} else {
			defer func() { _ = c.Close() }()
			courseCache = c
			log.Info("course cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tokens := services.NewTokenService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authSvc := services.NewAuthService(users, tokens, log)

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := authSvc.SeedAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return err
		}
	}

	courseSvc := services.NewCourseService(courses, courseCache, log)
	if cfg.SeedSampleCourses {
		if _, err := courseSvc.SeedSamples(ctx); err != nil {
			return err
		}
	}

	scheduler := cron.New()
	cleanup := jobs.NewTokenCleanup(users, log)
	if _, err := cleanup.Schedule(scheduler, cfg.TokenCleanupSchedule); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := controllers.NewRouter(controllers.RouterDeps{
		Auth:    authSvc,
		Users:   services.NewUserService(users, log),
		Courses: courseSvc,
		Purchases: services.NewPurchaseService(services.PurchaseServiceDeps{
			Tx:        store,
			Purchases: purchases,
			Courses:   courses,
			Users:     users,
			Cache:     courseCache,
			Registry:  registry,
			Log:       log,
		}),
		DB:             store,
		Metrics:        middleware.NewHTTPMetrics(registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AuthLimiter:    middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		AllowedOrigins: cfg.Origins(),
		Log:            log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr), zap.String("env", cfg.AppEnv))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown http server", zap.Error(err))
		}
		log.Info("server stopped")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
