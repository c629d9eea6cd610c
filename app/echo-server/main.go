package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rateMyStore/app/echo-server/router"
	"rateMyStore/business/admin"
	"rateMyStore/business/rating"
	"rateMyStore/business/store"
	userService "rateMyStore/business/user"
	"rateMyStore/internal/middleware"
	"rateMyStore/internal/repository/notification"
	psqlRepo "rateMyStore/internal/repository/postgres"
	redisRepo "rateMyStore/internal/repository/redis"
	"rateMyStore/internal/rest"
	"rateMyStore/pkg/config"
	"rateMyStore/pkg/database"
	redisClient "rateMyStore/pkg/database/redis"
	"rateMyStore/pkg/logger"
	"rateMyStore/pkg/metrics"
	"rateMyStore/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting RateMyStore", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	rdb, err := redisClient.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	storeRepo := psqlRepo.NewStoreRepository(db)
	ratingRepo := psqlRepo.NewRatingRepository(db)
	sessionRepo := redisRepo.NewSessionRepository(rdb)

	// Init service
	authService := userService.NewUserService(userRepo, validate, mailjetEmail, sessionRepo, cfg.App.AppEmailVerificationKey, cfg.App.AppDeploymentUrl)
	storeService := store.NewStoreService(storeRepo, ratingRepo)
	ratingService := rating.NewRatingService(ratingRepo, storeRepo)
	adminService := admin.NewAdminService(userRepo, storeRepo, ratingRepo, validate)

	// Init handler
	authHandler := rest.NewAuthHandler(authService)
	storeHandler := rest.NewStoreHandler(storeService, ratingService)
	ownerHandler := rest.NewStoreOwnerHandler(storeService)
	adminHandler := rest.NewAdminHandler(adminService, ratingService)

	// Init metrics
	metrics.Init()

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.App.ClientURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Auth middleware
	authRequired := middleware.AuthMiddlewareWithRedis(sessionRepo)
	adminOnly := middleware.AdminOnly()
	ownerOnly := middleware.StoreOwnerOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupAuthRoutes(api, authHandler, authRequired)
	router.SetupStoreRoutes(api, storeHandler, authRequired)
	router.SetupStoreOwnerRoutes(api, ownerHandler, authRequired, ownerOnly)
	router.SetupAdminRoutes(api, adminHandler, authRequired, adminOnly)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := rdb.Close(); err != nil {
		logger.Error("Redis close error", "error", err)
	}

	logger.Info("Server stopped")
}
