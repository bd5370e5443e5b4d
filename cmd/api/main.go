package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mlee/socialnet-backend/config"
	"github.com/mlee/socialnet-backend/internal/connection"
	"github.com/mlee/socialnet-backend/internal/embedding"
	"github.com/mlee/socialnet-backend/internal/post"
	"github.com/mlee/socialnet-backend/internal/recommendation"
	"github.com/mlee/socialnet-backend/internal/repository"
	"github.com/mlee/socialnet-backend/internal/user"
	"github.com/mlee/socialnet-backend/internal/worker"
	"github.com/mlee/socialnet-backend/pkg/database"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present, then configuration from environment variables
	_ = godotenv.Load()
	cfg := config.Load()

	// Initialize logger with validation and defaults
	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	appLogger.Info("Starting socialnet backend service")

	// Connect to database with validation and defaults
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database: " + err.Error())
	}

	appLogger.Info("Database connection established")

	// Run database migrations for all feature models
	if err := db.AutoMigrate(&user.User{}, &post.Post{}, &connection.Connection{}, &embedding.Record{}, &recommendation.Record{}); err != nil {
		appLogger.Fatal("Failed to migrate database: " + err.Error())
	}

	appLogger.Info("Database migration completed")

	// Initialize GORM-based repositories
	userRepo := repository.NewGORMUserRepository(db, appLogger)
	postRepo := repository.NewGORMPostRepository(db, appLogger)
	connectionRepo := repository.NewGORMConnectionRepository(db, appLogger)
	embeddingStore := repository.NewGORMEmbeddingStore(db, appLogger)
	recommendationRepo := repository.NewGORMRecommendationRepository(db, appLogger)
	embeddingReader := repository.NewGORMEmbeddingReader(db, appLogger)
	socialReader := repository.NewGORMSocialReader(db, appLogger)

	// Initialize embedding client and generator
	embeddingClient, err := embedding.NewClient(&cfg.Embedding)
	if err != nil {
		appLogger.Fatal("Failed to initialize embedding client: " + err.Error())
	}
	generator := embedding.NewGenerator(&cfg.Embedding, embeddingClient, embeddingStore, appLogger)
	appLogger.Info("Embedding generator initialized with model " + generator.Model())

	// Initialize business services with dependency injection
	userService, err := user.NewService(&cfg.JWT, userRepo, generator, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize user service: " + err.Error())
	}
	postService := post.NewService(postRepo, userService, generator, embeddingStore, appLogger)
	connectionService := connection.NewService(connectionRepo, appLogger)

	ranker, err := recommendation.NewRanker(&cfg.Recommendation, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize ranker: " + err.Error())
	}
	materializer, err := recommendation.NewMaterializer(&cfg.Recommendation, embeddingReader, recommendationRepo, ranker, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize materializer: " + err.Error())
	}
	recommendationService, err := recommendation.NewService(&cfg.Recommendation, embeddingReader, recommendationRepo, socialReader, ranker, materializer, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize recommendation service: " + err.Error())
	}

	// Initialize HTTP handlers
	userHandler := user.NewHandler(userService)
	postHandler := post.NewHandler(postService)
	connectionHandler := connection.NewHandler(connectionService)
	recommendationHandler := recommendation.NewHandler(recommendationService)

	// Initialize background workers
	refreshWorker, err := worker.NewCronWorker(
		&cfg.Worker,
		"recommendation-refresh",
		recommendationService.RefreshAll,
		appLogger,
	)
	if err != nil {
		appLogger.Fatal("Failed to initialize refresh worker: " + err.Error())
	}

	embeddingRetryWorker, err := worker.NewCronWorker(
		&cfg.Worker,
		"embedding-retry",
		postService.RetryFailedEmbeddings,
		appLogger,
	)
	if err != nil {
		appLogger.Fatal("Failed to initialize embedding retry worker: " + err.Error())
	}

	// Start background processing
	if err := refreshWorker.Start(); err != nil {
		appLogger.Error("Failed to start refresh worker: " + err.Error())
	}
	if err := embeddingRetryWorker.Start(); err != nil {
		appLogger.Error("Failed to start embedding retry worker: " + err.Error())
	}

	// Setup HTTP router with middleware
	router := gin.New()

	// Configure standard middleware stack
	router.Use(requestid.New())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
	}))

	// Health check endpoints
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "socialnet-backend",
		})
	})

	router.GET("/health/detailed", func(c *gin.Context) {
		embeddingHealthy := false
		if health, err := embeddingClient.HealthCheck(); err == nil {
			embeddingHealthy = health.Status == "healthy"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":            "healthy",
			"timestamp":         time.Now(),
			"service":           "socialnet-backend",
			"refresh_worker":    refreshWorker.IsRunning(),
			"retry_worker":      embeddingRetryWorker.IsRunning(),
			"database":          "connected",
			"embedding_service": embeddingHealthy,
		})
	})

	authMiddleware := userHandler.AuthMiddleware()

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Register feature routes - each feature manages its own routes
		userHandler.RegisterRoutes(v1, authMiddleware)
		postHandler.RegisterRoutes(v1, authMiddleware)
		connectionHandler.RegisterRoutes(v1, authMiddleware)
		recommendationHandler.RegisterRoutes(v1, authMiddleware)
	}

	// Parse server configuration with defaults
	serverPort := cfg.Server.Port
	if serverPort == "" {
		serverPort = "8080" // default
	}

	serverReadTimeout := 30 * time.Second // default
	if cfg.Server.ReadTimeout != "" {
		if duration, err := time.ParseDuration(cfg.Server.ReadTimeout); err == nil {
			serverReadTimeout = duration
		}
	}

	serverWriteTimeout := 30 * time.Second // default
	if cfg.Server.WriteTimeout != "" {
		if duration, err := time.ParseDuration(cfg.Server.WriteTimeout); err == nil {
			serverWriteTimeout = duration
		}
	}

	serverEnvironment := cfg.Server.Environment
	if serverEnvironment == "" {
		serverEnvironment = "development" // default
	}

	// Start HTTP server
	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
	}

	// Start server in goroutine for graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server: " + err.Error())
		}
	}()

	appLogger.Info("Server started successfully on port " + serverPort + " (" + serverEnvironment + " environment)")

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Stop background workers first
	if err := refreshWorker.Stop(); err != nil {
		appLogger.Error("Error stopping refresh worker: " + err.Error())
	}
	if err := embeddingRetryWorker.Stop(); err != nil {
		appLogger.Error("Error stopping embedding retry worker: " + err.Error())
	}

	// Shutdown server with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown: " + err.Error())
	}

	appLogger.Info("Server shutdown complete")
}
