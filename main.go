package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"playvisit/config"
	"playvisit/database"
	clientRepo "playvisit/database/repository/client"
	visitRepo "playvisit/database/repository/visit"
	"playvisit/handlers"
	"playvisit/middleware"
	"playvisit/routes"
	"playvisit/services/ledger"
	"playvisit/services/registry"
	"playvisit/services/session"
	"playvisit/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.InitCache()
	middleware.InitMetrics()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(middleware.PrometheusMiddleware())

	// repositories.
	db := database.DB()
	clients := clientRepo.NewMongoClientRepo(db)
	visits := visitRepo.NewMongoVisitRepo(db)

	sessionTTL := time.Duration(config.AppConfig.SessionTTLHours) * time.Hour
	sessions := session.NewRedisStore(utils.GetSessionClient(), sessionTTL)

	// services.
	registryService := &registry.DefaultRegistryService{
		Repo:         clients,
		Visits:       visits,
		Sessions:     sessions,
		ValidityDays: config.AppConfig.PackageValidityDays,
	}
	ledgerEngine := &ledger.DefaultLedgerEngine{
		Clients:  clients,
		Visits:   visits,
		Sessions: sessions,
	}

	clientHandler := handlers.NewClientHandler(registryService, sessions, logger)
	bookingHandler := handlers.NewBookingHandler(ledgerEngine, sessions, logger)
	availabilityCache := &handlers.RedisAvailabilityCache{Client: utils.GetCacheClient()}
	adminHandler := handlers.NewAdminHandler(registryService, ledgerEngine, availabilityCache, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		LoginHandler:  clientHandler.LoginHandler,
		LogoutHandler: clientHandler.LogoutHandler,

		AvailabilityHandler: bookingHandler.AvailabilityHandler,
		BookHandler:         bookingHandler.BookHandler,

		AdminLoginHandler:        adminHandler.LoginHandler,
		CreateClientHandler:      adminHandler.CreateClientHandler,
		ListClientsHandler:       adminHandler.ListClientsHandler,
		DeactivateClientHandler:  adminHandler.DeactivateClientHandler,
		PurgeVisitsHandler:       adminHandler.PurgeVisitsHandler,
		AdminAvailabilityHandler: adminHandler.AvailabilityHandler,
		ManualBookHandler:        adminHandler.ManualBookHandler,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
