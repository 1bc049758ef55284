// Command storefront serves the NoLimits catalog, cart and favorites to the
// UI on top of the NoLimits backend.
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/MikeMC777/nolimits-storefront/internal/catalog"
	"github.com/MikeMC777/nolimits-storefront/internal/config"
	"github.com/MikeMC777/nolimits-storefront/internal/health"
	"github.com/MikeMC777/nolimits-storefront/internal/logging"
	"github.com/MikeMC777/nolimits-storefront/internal/product"
	"github.com/MikeMC777/nolimits-storefront/internal/storage"
)

// @title       NoLimits Storefront API
// @version     1.0
// @description Catálogo por saga, carrito y favoritos sobre el backend NoLimits.
// @BasePath    /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	cfg.Log(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.Open(ctx, cfg.StorageDriver, cfg.StorageDir, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}
	defer closeStore()

	client := product.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger.Named("backend"))
	products := product.NewService(client, product.NewCache(cfg.ProductCacheTTL, time.Now), logger)
	images := catalog.NewImageResolver(cfg.AssetBaseURL)

	// gRPC health
	reporter := health.NewReporter(logger.Named("health"))
	gs := grpc.NewServer()
	reporter.Register(gs)
	lis, err := net.Listen("tcp", cfg.HealthGRPCAddr)
	if err != nil {
		logger.Fatal("health listen", zap.Error(err))
	}
	go func() {
		logger.Info("health gRPC listening", zap.String("addr", cfg.HealthGRPCAddr))
		if err := gs.Serve(lis); err != nil {
			logger.Error("health gRPC stopped", zap.Error(err))
		}
	}()
	go reporter.Watch(ctx, cfg.HealthProbeInterval, client.Ping)

	gin.SetMode(cfg.GinMode)
	srv := &http.Server{
		Addr: cfg.StorefrontAddr,
		Handler: newRouter(&server{
			products: products,
			builder:  catalog.NewBuilder(images, logger.Named("catalog")),
			images:   images,
			store:    store,
			locks:    &sessionLocks{},
			log:      logger,
			assetDir: cfg.AssetDir,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("storefront listening", zap.String("addr", cfg.StorefrontAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	reporter.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	gs.GracefulStop()
}
