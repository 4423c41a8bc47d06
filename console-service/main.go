package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"clientconsole-backend/console-service/handlers"
	"clientconsole-backend/console-service/middleware"
	"clientconsole-backend/console-service/services"
	"clientconsole-backend/shared/config"
	"clientconsole-backend/shared/database"
	"clientconsole-backend/shared/utils/cache"

	_ "clientconsole-backend/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Redis list cache is optional; the service runs without it
	cacheManager, err := cache.NewCacheManager()
	if err != nil {
		log.Printf("⚠️ Redis unavailable, list caching disabled: %v", err)
		cacheManager = nil
	} else {
		defer cacheManager.Close()
	}

	// MinIO logo storage
	storage, err := services.NewMinIOService()
	if err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	// In-process change-notification hub
	hub := services.NewHub()

	clientService := services.NewClientService(database.GetDB(), storage, hub, cacheManager)

	clientHandler := handlers.NewClientHandler(clientService)
	authHandler := handlers.NewAuthHandler(database.GetDB())
	formHandler := handlers.NewFormSessionHandler(clientService, hub)
	wsHandler := handlers.NewWebSocketHandler(clientService, hub)

	// Global rate limiter
	rateLimiter := middleware.NewRateLimiter(5 * time.Minute)
	rateConfig := middleware.RateLimitConfig{
		MaxRequests:   cfg.GetRateLimitMaxRequests(),
		TimeWindow:    time.Duration(cfg.GetRateLimitTimeWindowSeconds()) * time.Second,
		BlockDuration: time.Duration(cfg.GetRateLimitBlockDurationMinutes()) * time.Minute,
	}

	router := gin.Default()

	// CORS for the console frontend
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.Use(rateLimiter.RateLimitMiddleware(rateConfig))

	// Auth routes
	router.POST("/api/auth/login", authHandler.Login)
	router.GET("/api/auth/me", middleware.AuthMiddleware(), authHandler.Me)

	// Protected API routes
	api := router.Group("/api", middleware.AuthMiddleware())

	// Form session routes (before :id so "form" is not parsed as a client id)
	api.POST("/clients/form", formHandler.OpenForm)
	api.GET("/clients/form/:session", formHandler.GetForm)
	api.PATCH("/clients/form/:session", formHandler.PatchForm)
	api.POST("/clients/form/:session/logo", formHandler.StageFormLogo)
	api.POST("/clients/form/:session/submit", formHandler.SubmitForm)
	api.DELETE("/clients/form/:session", formHandler.CloseForm)

	// Client routes
	api.GET("/clients", clientHandler.GetClients)
	api.GET("/clients/:id", clientHandler.GetClient)
	api.POST("/clients", clientHandler.CreateClient)
	api.PUT("/clients/:id", clientHandler.UpdateClient)
	api.PATCH("/clients/:id/status", clientHandler.UpdateClientStatus)
	api.POST("/clients/:id/logo", clientHandler.UploadClientLogo)
	api.DELETE("/clients/:id/logo", clientHandler.DeleteClientLogo)

	// Websocket routes
	ws := router.Group("/ws/console", middleware.AuthMiddleware())
	ws.GET("/clients", wsHandler.HandleClientList)
	ws.GET("/changes", wsHandler.HandleChangeFeed)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"service":     "console",
			"subscribers": hub.SubscriberCount(),
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Parse port from config URL
	port := strings.Split(cfg.ConsoleServiceURL, ":")[2]
	log.Printf("Console Service starting on port %s...", port)
	router.Run(":" + port)
}
