package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"market-snapshot/internal/api"
	"market-snapshot/internal/monitor"
	"market-snapshot/internal/quote"
	"market-snapshot/internal/snapshot"
	"market-snapshot/pkg/config"
	"market-snapshot/pkg/market/yahoo"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("config load failed", zap.Error(err))
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("starting market-snapshot",
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	metrics := monitor.NewServiceMetrics()

	// Quote provider selection (mock first, live when configured).
	var provider quote.Provider
	if cfg.Provider.UseMock {
		mock, err := quote.LoadMockProvider(cfg.Provider.Fixtures)
		if err != nil {
			logger.Fatal("load mock fixtures",
				zap.String("path", cfg.Provider.Fixtures),
				zap.Error(err),
			)
		}
		provider = mock
		logger.Info("mock quote provider enabled", zap.String("fixtures", cfg.Provider.Fixtures))
	} else {
		provider = yahoo.NewClient(cfg.Provider.BaseURL, cfg.Provider.Timeout())
		logger.Info("yahoo quote provider enabled",
			zap.String("base_url", cfg.Provider.BaseURL),
			zap.Duration("timeout", cfg.Provider.Timeout()),
		)
	}

	snapshots := snapshot.NewImpl(snapshot.Config{
		Provider:     provider,
		FetchTimeout: cfg.Provider.Timeout(),
		Metrics:      metrics,
		Logger:       logger,
	})

	server := api.NewServer(snapshots, metrics, logger, api.SystemMeta{
		Provider: provider.Name(),
		UseMock:  cfg.Provider.UseMock,
		Version:  cfg.App.Version,
	})

	go func() {
		logger.Info("server started", zap.String("port", cfg.App.Port))
		if err := server.Start(":" + cfg.App.Port); err != nil {
			logger.Fatal("api server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("shutting down")
}

// newLogger builds the zap logger from the app environment and configured
// level. "prod" selects the JSON production encoder.
func newLogger(cfg *config.Config) *zap.Logger {
	var zcfg zap.Config
	if cfg.App.Env == "prod" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := zcfg.Build()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("logger build failed", zap.Error(err))
	}
	return logger
}
