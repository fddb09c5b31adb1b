package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"social-service/internal/config"
	"social-service/internal/db"
	grpcsvc "social-service/internal/grpc"
	"social-service/internal/handlers"
	"social-service/internal/logging"
	"social-service/internal/metrics"
	"social-service/internal/middleware"
	"social-service/internal/notify"
	"social-service/internal/observability"
	"social-service/internal/rabbitmq"
	"social-service/internal/realtime"
	"social-service/internal/repositories"
	"social-service/internal/services"
	"social-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	publisher := rabbitmq.Connect(cfg.AMQPURL, cfg.EventsExchange, logger)
	defer publisher.Close()
	auditPublisher := rabbitmq.Connect(cfg.AMQPURL, cfg.LogsExchange, logger)
	defer auditPublisher.Close()

	redisClient, err := realtime.NewRedis(cfg.RedisURL, logger)
	if err != nil {
		logger.Warn("failed to connect to redis; realtime push disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	if err := observability.InitMetrics(prometheus.DefaultRegisterer); err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}
	metrics.RegisterSocialMetrics()

	friendRepo := repositories.NewFriendRepository(database, publisher, logger)
	blockRepo := repositories.NewBlockRepository(database, publisher, logger)
	messageRepo := repositories.NewMessageRepository(database, publisher, logger)
	notificationRepo := repositories.NewNotificationRepository(database)
	userRepo := repositories.NewUserRepository(database)
	postRepo := repositories.NewPostRepository(database, publisher, logger)
	storyRepo := repositories.NewStoryRepository(database, publisher, logger)

	emitter := notify.NewDispatcher(notificationRepo, realtime.NewPusher(redisClient), logger)
	relationships := services.NewRelationshipService(friendRepo, blockRepo, userRepo, emitter, logger)
	messaging := services.NewMessagingService(messageRepo, relationships, userRepo, emitter)
	notifications := services.NewNotificationService(notificationRepo)
	posts := services.NewPostService(postRepo, storyRepo, relationships, userRepo, emitter)

	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, cfg.ServiceName, cfg.Environment, logger)

	if _, err := grpcsvc.StartGRPCServer(ctx, cfg.GRPCAddr, grpcsvc.NewRelationshipGRPCServer(relationships, messaging), logger); err != nil {
		logger.Fatal("failed to start gRPC server", zap.Error(err))
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logger), middleware.Recovery(logger), middleware.Metrics("/metrics", "/healthz"))

	r.GET("/healthz", func(c *gin.Context) {
		if err := database.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", middleware.JWTAuth(cfg.JWTSecret))
	handlers.Handlers{
		Friends:       handlers.NewFriendHandler(relationships, auditEmitter, logger),
		Blocks:        handlers.NewBlockHandler(relationships, auditEmitter, logger),
		Messages:      handlers.NewMessageHandler(messaging, auditEmitter, logger),
		Notifications: handlers.NewNotificationHandler(notifications, logger),
		Posts:         handlers.NewPostHandler(posts, auditEmitter, logger),
	}.Register(api, middleware.RateLimit(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
}
