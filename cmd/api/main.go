package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/recaatinga-api/internal/config"
	"github.com/yourusername/recaatinga-api/internal/handler"
	"github.com/yourusername/recaatinga-api/internal/middleware"
	pgRepo "github.com/yourusername/recaatinga-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/recaatinga-api/internal/repository/redis"
	"github.com/yourusername/recaatinga-api/internal/service"
	"github.com/yourusername/recaatinga-api/pkg/auth"
	"github.com/yourusername/recaatinga-api/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Loading configuration from %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Repositories
	userRepo := pgRepo.NewUserRepo(db)
	gameRepo := pgRepo.NewGameRepo(db)
	progressRepo := pgRepo.NewProgressRepo(db)
	sessionStore, err := redisRepo.NewSessionStore(redisClient)
	if err != nil {
		log.Printf("Failed to initialize SessionStore: %v", err)
		os.Exit(1)
	}

	// Services
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	authService, err := service.NewAuthService(userRepo, jwtService, cfg.Admin.Token)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	progressService := service.NewProgressService(progressRepo, gameRepo, userRepo)
	gameService := service.NewGameService(gameRepo)
	userService := service.NewUserService(userRepo, gameRepo, progressRepo)

	isProduction := gin.Mode() == gin.ReleaseMode
	sessionTTL := time.Duration(cfg.Session.LifetimeHrs) * time.Hour

	// Middleware
	authMW := middleware.NewAuthMiddleware(jwtService, sessionStore, userRepo, sessionTTL, isProduction)
	rateLimiter := middleware.NewRateLimiter(redisClient)
	strictLimit := rateLimiter.Limit(middleware.StrictAuthRateLimitConfig())
	defaultLimit := rateLimiter.Limit(middleware.DefaultAuthRateLimitConfig())

	// Handlers
	authHandler := handler.NewAuthHandler(authService, userService, authMW, isProduction)
	gameHandler := handler.NewGameHandler(gameService, progressService)
	adminHandler := handler.NewAdminHandler(gameService, userService)

	router := gin.Default()

	allowOrigins := cfg.CORS.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler.RegisterRoutes(router, authMW, authHandler, gameHandler, adminHandler, strictLimit, defaultLimit)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
