package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/pulsechat/config"
	"github.com/d60-Lab/pulsechat/internal/api"
	"github.com/d60-Lab/pulsechat/internal/api/handler"
	"github.com/d60-Lab/pulsechat/internal/chain"
	"github.com/d60-Lab/pulsechat/internal/kv"
	"github.com/d60-Lab/pulsechat/internal/ledger"
	"github.com/d60-Lab/pulsechat/internal/repository"
	"github.com/d60-Lab/pulsechat/internal/service"
	"github.com/d60-Lab/pulsechat/pkg/database"
	"github.com/d60-Lab/pulsechat/pkg/logger"
	"github.com/d60-Lab/pulsechat/pkg/telemetry"
)

// @title PulseChat API
// @version 1.0
// @description 链上社交网络的读写网关
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Endpoint != "" {
		shutdown, err := telemetry.Init(ctx, "pulsechat", cfg.Telemetry.Endpoint)
		if err != nil {
			logger.Warn("telemetry init failed", zap.Error(err))
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// 互动台账：指定路径走 leveldb 持久化，否则纯内存
	var store kv.Store
	if cfg.Ledger.Path != "" {
		store, err = kv.OpenLevelStore(cfg.Ledger.Path)
		if err != nil {
			logger.Fatal("open ledger store", zap.Error(err))
		}
	} else {
		store = kv.NewMemoryStore()
	}
	defer store.Close()
	led := ledger.New(store)

	var backend chain.Backend
	switch cfg.Chain.Driver {
	case "evm":
		backend, err = chain.NewEVM(cfg.Chain.RPCURL, cfg.Chain.Contract, cfg.Chain.Token)
		if err != nil {
			logger.Fatal("connect chain", zap.Error(err))
		}
	default:
		backend = chain.NewMemory()
	}

	postRepo := repository.NewPostRepository(db)
	inboxRepo := repository.NewInboxRepository(db)

	indexer := service.NewIndexer(backend, db, postRepo,
		cfg.Indexer.BatchSize, time.Duration(cfg.Indexer.PollIntervalMS)*time.Millisecond)
	fanout := service.NewFanoutWorker(db, led, inboxRepo, 2, 128, 200*time.Millisecond)
	refresher := service.NewRefresher(backend, indexer,
		time.Duration(cfg.Refresher.DelayMS)*time.Millisecond, cfg.Refresher.QueueSize)

	authSvc := service.NewAuthService(rdb, cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTL)*time.Second, time.Duration(cfg.Auth.NonceTTL)*time.Second)
	engagementSvc := service.NewEngagementService(led, postRepo)
	postSvc := service.NewPostService(backend, led, postRepo, refresher)
	profileSvc := service.NewProfileService(backend, rdb, led, 5*time.Minute)
	timelineSvc := service.NewTimelineService(postRepo, inboxRepo, backend, led, profileSvc)

	stopIndexer := indexer.Start()
	stopFanout := fanout.Start()
	stopRefresher := refresher.Start(2)

	h := handler.New(authSvc, engagementSvc, postSvc, timelineSvc, profileSvc)
	router := api.NewRouter(cfg.Server.Mode, h, authSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	_ = stopRefresher(shutdownCtx)
	_ = stopFanout(shutdownCtx)
	_ = stopIndexer(shutdownCtx)
}
