package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nftpulse/notifier/internal/adapter"
	"github.com/nftpulse/notifier/internal/api/server"
	"github.com/nftpulse/notifier/internal/api/webhook"
	"github.com/nftpulse/notifier/internal/config"
	"github.com/nftpulse/notifier/internal/dedup"
	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/entitlement"
	"github.com/nftpulse/notifier/internal/imaging"
	"github.com/nftpulse/notifier/internal/logger"
	"github.com/nftpulse/notifier/internal/notify"
	"github.com/nftpulse/notifier/internal/pipeline"
	"github.com/nftpulse/notifier/internal/pricing"
	"github.com/nftpulse/notifier/internal/registry"
	"github.com/nftpulse/notifier/internal/source/evm"
	"github.com/nftpulse/notifier/internal/source/market"
	"github.com/nftpulse/notifier/internal/source/solana"
	"github.com/nftpulse/notifier/internal/store"
	"github.com/nftpulse/notifier/internal/telegram"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadNotifierConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "notifier",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting NFT activity notifier")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clock := adapter.NewClock()
	fs := adapter.NewFileSystem()
	httpClient := adapter.NewHTTPClient(cfg.Pricing.Timeout)
	telegramClient := adapter.NewHTTPClient(cfg.Telegram.Timeout)

	// Load marketplace contract registry
	marketplaces, err := registry.LoadMarketplaces(cfg.MarketplacePath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load marketplace registry",
			zap.Error(err),
			zap.String("path", cfg.MarketplacePath))
	}
	logger.InfoCtx(ctx, "Loaded marketplace registry", zap.String("path", cfg.MarketplacePath))

	// Price quoter behind a circuit breaker
	quoter := pricing.NewHTTPQuoter(pricing.Config{
		QuoteURL: cfg.Pricing.QuoteURL,
		APIKey:   cfg.Pricing.APIKey,
	}, httpClient)

	// Telegram messenger
	messenger, err := telegram.NewMessenger(telegram.Config{
		BotToken:   cfg.Telegram.BotToken,
		APIBaseURL: cfg.Telegram.APIBaseURL,
	}, telegramClient, fs)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize messenger", zap.Error(err))
	}

	// Entitlement gate: paid trending first, legacy grants second
	gate := entitlement.NewGate(dataStore, clock,
		entitlement.NewPaymentProvider(dataStore, clock),
		entitlement.NewLegacyProvider(dataStore, clock),
	)

	// Image resolution pipeline
	images := imaging.NewPipeline(imaging.Config{
		DefaultImagePath: cfg.Imaging.DefaultImagePath,
		WorkDir:          cfg.Imaging.WorkDir,
		TargetSize:       cfg.Imaging.TargetSize,
		MaxAttempts:      cfg.Imaging.MaxAttempts,
		RetryStep:        cfg.Imaging.RetryStep,
		CleanupDelay:     cfg.Imaging.CleanupDelay,
	}, httpClient, fs, clock)

	// Fan-out worker pool shared by all notification sends
	pool := pond.NewPool(
		cfg.Worker.PoolSize,
		pond.WithQueueSize(cfg.Worker.QueueSize),
		pond.WithContext(ctx),
	)
	defer pool.StopAndWait()

	dispatcher := notify.NewDispatcher(dataStore, messenger, gate, images, pool)

	// One dedup cache per source; keys never cross sources
	dedupConfig := dedup.Config{
		Window:        cfg.Dedup.Window,
		SweepInterval: cfg.Dedup.SweepInterval,
	}
	caches := map[domain.Source]*dedup.Cache{
		domain.SourceChain:       dedup.NewCache(string(domain.SourceChain), dedupConfig, clock),
		domain.SourceMarketplace: dedup.NewCache(string(domain.SourceMarketplace), dedupConfig, clock),
		domain.SourceSolana:      dedup.NewCache(string(domain.SourceSolana), dedupConfig, clock),
	}
	for _, cache := range caches {
		go cache.Run(ctx)
	}

	processor := pipeline.NewProcessor(caches, dataStore, dispatcher, pool)

	// Webhook API server
	handler := webhook.NewHandler(
		processor,
		evm.NewAdapter(marketplaces, clock),
		solana.NewAdapter(quoter, clock),
		dataStore,
		messenger,
		clock,
	)
	srv := server.New(server.Config{
		Debug:              cfg.Debug,
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		ReadTimeout:        time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:       time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:        time.Duration(cfg.Server.IdleTimeout) * time.Second,
		SolanaSharedSecret: cfg.Solana.SharedSecret,
	}, handler)

	errCh := make(chan error, 2)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Marketplace stream subscription
	if cfg.Marketplace.WebSocketURL != "" {
		subscriber := market.NewSubscriber(market.Config{
			WebSocketURL:    cfg.Marketplace.WebSocketURL,
			APIKey:          cfg.Marketplace.APIKey,
			Collections:     cfg.Marketplace.Collections,
			ReconnectWait:   cfg.Marketplace.ReconnectWait,
			WorkerPoolSize:  cfg.Marketplace.WorkerPoolSize,
			WorkerQueueSize: cfg.Marketplace.WorkerQueueSize,
		}, adapter.NewRealWebSocketDialer(), market.NewAdapter(quoter, clock), clock)

		go func() {
			err := subscriber.Run(ctx, func(activity *domain.Activity) error {
				_, err := processor.Process(ctx, activity)
				return err
			})
			if err != nil && ctx.Err() == nil {
				errCh <- err
			}
		}()
	} else {
		logger.WarnCtx(ctx, "Marketplace websocket URL not configured, stream subscription disabled")
	}

	// Wait for interrupt signal to gracefully shut down
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "notifier"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Notifier stopped")
}
