package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventify-backend/config"
	"eventify-backend/internal/blob"
	"eventify-backend/internal/cache"
	"eventify-backend/internal/database"
	"eventify-backend/internal/handler"
	"eventify-backend/internal/queue"
	"eventify-backend/internal/repository"
	"eventify-backend/internal/router"
	"eventify-backend/internal/service"
	"eventify-backend/internal/session"
	"eventify-backend/internal/worker"
	"eventify-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const expiryLeaseKey = "events:expiry:lease"

func main() {
	cfg := config.LoadConfig()
	gin.SetMode(cfg.Server.GinMode)
	defer logger.Sync()
	log := logger.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal("Failed to apply schema", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	defer rdb.Close()

	loc, err := time.LoadLocation(cfg.Event.TimeZone)
	if err != nil {
		log.Warn("Unknown EVENT_TIMEZONE, using UTC", zap.String("zone", cfg.Event.TimeZone), zap.Error(err))
		loc = time.UTC
	}

	blobs, err := blob.NewDiskStore(cfg.Upload.Dir, cfg.Upload.MaxFileSize)
	if err != nil {
		log.Fatal("Failed to initialize upload dir", zap.Error(err))
	}

	blobQueue, err := newBlobQueue(cfg.Queue, rdb)
	if err != nil {
		log.Fatal("Failed to initialize blob queue", zap.Error(err))
	}

	eventRepo := repository.NewEventRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	registrationCache := cache.NewRedisRegistrationCache(rdb, cfg.Cache.RegistrationTTL)
	intents := cache.NewRedisIntentStore(rdb, cfg.Intent.TTL)
	sessions := session.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	eventService := service.NewEventService(pool, eventRepo, registrationRepo, blobs, registrationCache, blobQueue,
		service.EventServiceConfig{GracePeriod: cfg.Expiry.GracePeriod, Location: loc})
	registrationService := service.NewRegistrationService(registrationRepo, registrationCache, intents)
	authService := service.NewAuthService(userRepo, 0)

	if err := worker.NewBlobCleanupWorker(blobs, blobQueue).Start(ctx); err != nil {
		log.Fatal("Failed to start blob cleanup worker", zap.Error(err))
	}
	lease := cache.NewRedisLease(rdb, expiryLeaseKey, cfg.Expiry.LockTTL)
	if err := worker.NewExpiryWorker(eventRepo, lease, blobQueue, cfg.Expiry).Start(ctx); err != nil {
		log.Fatal("Failed to start expiry worker", zap.Error(err))
	}

	engine := router.New(router.Dependencies{
		Events:        eventService,
		Registrations: registrationService,
		Auth:          authService,
		Sessions:      sessions,
		Cookies: handler.Cookies{
			SessionName: cfg.Auth.CookieName,
			Secure:      cfg.Auth.SecureCookie,
			PendingTTL:  cfg.Intent.TTL,
		},
		UploadDir:     cfg.Upload.Dir,
		MaxUploadSize: cfg.Upload.MaxFileSize,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func newBlobQueue(cfg config.QueueConfig, rdb *redis.Client) (queue.BlobQueue, error) {
	if cfg.Backend == config.QueueBackendMemory {
		return queue.NewBlobQueue(cfg.BufferSize), nil
	}
	hostname, _ := os.Hostname()
	return queue.NewRedisStreamBlobQueue(rdb, hostname, nil)
}
