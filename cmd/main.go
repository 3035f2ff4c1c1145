package main

import (
	"fmt"
	"os"
	"time"

	redisclient "github.com/kestrelmedia/clipflow-backend/internal/clients/redis"
	"github.com/kestrelmedia/clipflow-backend/internal/db"
	"github.com/kestrelmedia/clipflow-backend/internal/handlers"
	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/middleware"
	"github.com/kestrelmedia/clipflow-backend/internal/repos"
	"github.com/kestrelmedia/clipflow-backend/internal/server"
	"github.com/kestrelmedia/clipflow-backend/internal/services"
	"github.com/kestrelmedia/clipflow-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	flowRepo := repos.NewFlowRepo(thePG, log)
	flowNodeRepo := repos.NewFlowNodeRepo(thePG, log)
	flowEdgeRepo := repos.NewFlowEdgeRepo(thePG, log)
	clipDeeplinkRepo := repos.NewClipDeeplinkRepo(thePG, log)
	flowSessionRepo := repos.NewFlowSessionRepo(thePG, log)
	flowProgressRepo := repos.NewFlowProgressRepo(thePG, log)
	flowNodeProgressRepo := repos.NewFlowNodeProgressRepo(thePG, log)
	flowEventRepo := repos.NewFlowEventRepo(thePG, log)

	// Redis (optional; engine semantics are unchanged without it)
	var progressCache redisclient.ProgressCache
	if cache, err := redisclient.NewProgressCache(log); err != nil {
		log.Warn("Redis progress cache disabled", "error", err)
	} else {
		progressCache = cache
		defer progressCache.Close()
	}

	// Services
	log.Info("Setting up services from main...")
	authService := services.NewAuthService(
		thePG,
		log,
		userRepo,
		userTokenRepo,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	resumeService := services.NewFlowResumeService(thePG, log, flowRepo, flowNodeRepo, flowSessionRepo, flowProgressRepo, clipDeeplinkRepo)
	nextService := services.NewFlowNextService(thePG, log, flowNodeRepo, flowEdgeRepo, flowNodeProgressRepo, clipDeeplinkRepo, progressCache)
	eventsService := services.NewFlowEventsService(thePG, log, flowSessionRepo, flowNodeRepo, flowEventRepo, flowNodeProgressRepo, flowProgressRepo, progressCache)
	infoService := services.NewFlowInfoService(thePG, log, flowRepo, flowNodeRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userRepo)
	flowHandler := handlers.NewFlowHandler(log, resumeService, nextService, eventsService, infoService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		UserHandler:    userHandler,
		FlowHandler:    flowHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
