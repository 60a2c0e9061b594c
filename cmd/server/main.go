package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mahamedadballa/circlechat-server/config"
	"github.com/mahamedadballa/circlechat-server/internal/events"
	"github.com/mahamedadballa/circlechat-server/internal/handlers"
	"github.com/mahamedadballa/circlechat-server/internal/identity"
	"github.com/mahamedadballa/circlechat-server/internal/logger"
	"github.com/mahamedadballa/circlechat-server/internal/metrics"
	"github.com/mahamedadballa/circlechat-server/internal/middleware"
	"github.com/mahamedadballa/circlechat-server/internal/presence"
	"github.com/mahamedadballa/circlechat-server/internal/repository"
	"github.com/mahamedadballa/circlechat-server/internal/routes"
	"github.com/mahamedadballa/circlechat-server/internal/service"
	"github.com/mahamedadballa/circlechat-server/internal/storage"
	"github.com/mahamedadballa/circlechat-server/internal/suggest"
	"github.com/mahamedadballa/circlechat-server/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zl, err := logger.New(logger.Config{Development: cfg.App.Env == "development"})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zl.Sync()

	metrics.Init()

	ctx := context.Background()
	mongo, err := repository.NewMongo(ctx, cfg)
	if err != nil {
		zl.Fatal("mongo init", zap.Error(err))
	}
	defer mongo.Disconnect(context.Background())

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	presenceStore := presence.NewStore(redisClient, "chat", cfg.PresenceTTL)

	hub := ws.NewHub()

	var kafkaProducer *events.KafkaProducer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer = events.NewKafkaProducer(cfg)
		defer kafkaProducer.Close()
	}
	var natsBroadcaster *events.NATSBroadcaster
	if cfg.NATS.URL != "" {
		natsBroadcaster, err = events.NewNATSBroadcaster(cfg.NATS.URL)
		if err != nil {
			zl.Warn("nats connect failed, presence fan-out disabled", zap.Error(err))
		} else {
			defer natsBroadcaster.Close()
		}
	}
	publisher := events.NewPublisher(hub, kafkaProducer, natsBroadcaster, zl)

	userRepo := repository.NewUserRepo(mongo)
	convRepo := repository.NewConversationRepo(mongo)
	msgRepo := repository.NewMessageRepo(mongo)
	mediaRepo := repository.NewMediaRepo(mongo)

	gen := identity.NewGenerator(userRepo.ShortIDExists)
	identitySvc := service.NewIdentityService(userRepo, gen, publisher, zl)
	directorySvc := service.NewDirectoryService(convRepo, userRepo, presenceStore, publisher, zl)
	messageSvc := service.NewMessageLogService(convRepo, msgRepo, presenceStore, publisher, zl)
	profileSvc := service.NewProfileService(userRepo, presenceStore, publisher, zl)

	s3Store, err := storage.NewS3Store(ctx, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.PublicRead)
	if err != nil {
		zl.Fatal("s3 init", zap.Error(err))
	}
	mediaSvc := service.NewMediaService(mediaRepo, s3Store, cfg.PresignTTL, zl)

	suggestClient := suggest.NewClient(cfg.Suggest.URL, zl)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	})
	routes.Register(app, routes.Deps{
		Users:     handlers.NewUserHandler(identitySvc, profileSvc),
		Chats:     handlers.NewChatHandler(directorySvc, messageSvc, publisher),
		Media:     handlers.NewMediaHandler(mediaSvc),
		Suggest:   handlers.NewSuggestHandler(suggestClient),
		WS:        handlers.NewWSHandler(hub, cfg.App.JWTSecret, zl),
		Auth:      middleware.JWTAuth(cfg.App.JWTSecret),
		RateLimit: middleware.NewIPRateLimiter(cfg.RateLimitPerMinute, zl).Handler(),
		Logging:   middleware.RequestLogger(zl),
		Recovery:  middleware.Recovery(zl),
	})

	errs := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		zl.Info("starting circlechat server", zap.String("addr", addr))
		errs <- app.Listen(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case e := <-errs:
		zl.Fatal("server error", zap.Error(e))
	case s := <-sig:
		zl.Info("signal received", zap.String("signal", s.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Warn("shutdown", zap.Error(err))
	}
	zl.Info("shutting down")
}
