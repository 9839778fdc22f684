package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/config"
	"storefront/jwt"
	"storefront/logger"
	"storefront/routers"
)

const tokenPurgeInterval = time.Hour

// purgeTokens 定期清除過期的LoginToken
func purgeTokens(ctx context.Context, signer *jwt.Signer, log *zap.Logger) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := signer.PurgeExpired(ctx)
			if err != nil {
				log.Warn("purge expired tokens", zap.Error(err))
				continue
			}
			if removed > 0 {
				log.Info("expired tokens purged", zap.Int64("removed", removed))
			}
		}
	}
}

func closeDatabase(db *gorm.DB) {
	dbInstance, err := db.DB()
	if err == nil {
		_ = dbInstance.Close()
	}
}

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "無法讀取設定: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "無法建立logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := config.SetupDatabase(cfg.Database)
	if err != nil {
		log.Fatal("無法連接到資料庫", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer closeDatabase(db)

	rdb := config.SetupRedisConnection(cfg.Redis)
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn("無法連接到Redis，catalog快取將失效", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	signer, err := jwt.NewSigner(cfg.JWT, cfg.TokenLifetime(), db)
	if err != nil {
		log.Fatal("無法載入JWT金鑰", zap.Error(err))
	}

	gin.SetMode(cfg.Server.Mode)
	router, err := routers.SetupRouters(&cfg, db, rdb, signer, log)
	if err != nil {
		log.Fatal("無法建立路由", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go purgeTokens(ctx, signer, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("server started", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
