package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realty_messaging/internal/config"
	"realty_messaging/internal/handler"
	"realty_messaging/internal/metrics"
	"realty_messaging/internal/middleware"
	"realty_messaging/internal/realtime"
	"realty_messaging/internal/repository"
	"realty_messaging/internal/service"
	"realty_messaging/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithWriter(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Invalid database DSN", "error", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConnections)
	poolCfg.MaxConnIdleTime = cfg.Database.MaxIdleTime
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	if cfg.Database.ApplySchema {
		if err := repository.ApplySchema(ctx, dbPool); err != nil {
			appLogger.Fatal("Failed to apply schema", "error", err)
		}
		appLogger.Info("Database schema applied")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	metrics.Init()

	hub := realtime.NewHub(appLogger)
	go func() {
		_ = hub.Run(ctx)
	}()

	var publisher realtime.Publisher = hub
	if cfg.Realtime.RedisFanout {
		broker := realtime.NewRedisBroker(rdb, cfg.Realtime.Channel, hub, appLogger)
		go func() {
			if err := broker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				appLogger.Error("Realtime broker stopped", "error", err)
			}
		}()
		publisher = broker
		appLogger.Info("Realtime fan-out via Redis enabled", "channel", cfg.Realtime.Channel)
	}

	repos := repository.NewRepositories(dbPool, rdb, appLogger)
	services := service.NewServices(repos, publisher, cfg, appLogger)

	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, cfg.RateLimit.PerMinute, appLogger)

	handlers := handler.NewHandlers(services, hub, map[string]handler.HealthCheck{
		"postgres": dbPool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}, cfg, appLogger)

	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg, appLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      middleware.CORS(cfg.Server.CORSAllowedOrigins)(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}
	// Hijacked websocket connections are not closed by Shutdown; the hub does it.
	stop()
	hub.Shutdown()

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))

	router.GET("/health", handlers.Health.Check)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("/auth")
		public.Use(rateLimitMiddleware.Limit())
		{
			public.POST("/register", handlers.Auth.Register)
			public.POST("/login", handlers.Auth.Login)
		}

		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			protected.GET("/users/me", handlers.User.GetMe)

			protected.POST("/properties", handlers.Property.Create)
			protected.GET("/properties/:id", handlers.Property.Get)

			protected.POST("/chat/:propertyId", handlers.Chat.SendMessage)
			protected.GET("/chat/:propertyId", handlers.Chat.GetMessages)

			protected.GET("/myleads/:userId", handlers.Lead.GetLeads)
			protected.DELETE("/myleads/:propertyId/:userId", handlers.Lead.DeleteLead)

			protected.GET("/notifications", handlers.Notification.List)
			protected.POST("/notifications/inquiry/:propertyId", handlers.Notification.CreateInquiry)
			protected.PATCH("/notifications/:id/read", handlers.Notification.MarkRead)
		}
	}

	router.GET("/ws", authMiddleware.RequireQueryToken(), handlers.WebSocket.Connect)

	return router
}
