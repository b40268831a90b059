package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "medvoice/internal/handler"
	"medvoice/internal/repository"
	"medvoice/internal/voice"
	"medvoice/pkg/cache"
	"medvoice/pkg/config"
	"medvoice/pkg/elevenlabs"
	"medvoice/pkg/logger"
	"medvoice/pkg/metrics"
	"medvoice/pkg/scheduler"
	"medvoice/pkg/storage"
	"medvoice/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GlobalConfig

	logger.Init(cfg.Log)
	defer logger.Sync()

	db, err := util.InitDatabase(cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.Error("failed to open database", zap.Error(err))
		os.Exit(1)
	}
	if err := repository.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", zap.Error(err))
		os.Exit(1)
	}

	c, err := cache.NewCache(cache.Config{
		Type:  cfg.CacheType,
		Redis: cache.RedisConfig{Addr: cfg.RedisAddr},
	})
	if err != nil {
		logger.Error("failed to init cache", zap.Error(err))
		os.Exit(1)
	}
	defer c.Close()

	if cfg.MetricsEnabled {
		metrics.SetGlobal(metrics.NewMetrics())
	}

	var store storage.Store
	if util.GetEnv("MINIO_ENDPOINT") != "" {
		store = storage.NewMinioStore()
	}

	provider := elevenlabs.NewClient(elevenlabs.Config{
		APIKey:  cfg.ElevenLabsAPIKey,
		BaseURL: cfg.ElevenLabsBaseURL,
		Timeout: time.Duration(cfg.ProviderTimeout) * time.Second,
	})

	repo := repository.New(db, c)
	resolver := voice.NewResolver(store, cfg.ProjectRoot, cfg.TempDir)
	service := voice.NewService(repo, provider, store, resolver, voice.Options{
		OutputDir:       cfg.OutputDir,
		UploadGenerated: cfg.UploadGenerated,
	})

	// scheduled voice slot reclamation
	cr := scheduler.NewCron(nil)
	if cfg.CleanupSchedule != "" {
		maxAge := time.Duration(cfg.CleanupMaxAgeHours) * time.Hour
		if maxAge <= 0 {
			maxAge = 24 * time.Hour
		}
		_, err := cr.Add(cfg.CleanupSchedule, scheduler.FuncJob(func(ctx context.Context) {
			report, err := service.Cleanup(ctx, maxAge, nil, false)
			if err != nil {
				logger.Error("scheduled cleanup failed", zap.Error(err))
				return
			}
			logger.Info("scheduled cleanup finished",
				zap.Int("candidates", len(report.Candidates)),
				zap.Int("deleted", len(report.Deleted)),
				zap.Int("failures", len(report.Failures)))
		}))
		if err != nil {
			logger.Error("invalid cleanup schedule", zap.Error(err))
			os.Exit(1)
		}
		cr.Start()
		defer cr.Stop()
	}

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()
	handlers.NewHandlers(db, service).Register(engine)

	srv := &http.Server{Addr: cfg.Addr, Handler: engine}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
