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

	"cleoaura/careteam-app/internal/access"
	"cleoaura/careteam-app/internal/api"
	"cleoaura/careteam-app/internal/config"
	"cleoaura/careteam-app/internal/repository/mongo"
	"cleoaura/careteam-app/internal/service"
	"cleoaura/careteam-app/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title Care Team API
// @version 1.0
// @description API for trainee care teams: invites, module grants, shared data access and session offers.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Care Team Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureInviteIndexes(ctx, appDB.Collection("invites"))
		mongo.EnsureTeamMemberIndexes(ctx, appDB.Collection("teamMembers"))
		mongo.EnsureGrantIndexes(ctx, appDB.Collection("grants"))
		mongo.EnsureRecordIndexes(ctx, appDB.Collection("moduleRecords"))
		mongo.EnsureEnrollmentIndexes(ctx, appDB.Collection("sessionEnrollments"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Grant Cache (optional) ---
	var grantCache *access.GrantCache
	if cfg.Redis.Address != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("FATAL: Could not connect to Redis: %v", err)
		}
		defer redisClient.Close()
		grantCache = access.NewGrantCache(redisClient, cfg.Redis.CacheTTL)
		log.Println("Grant cache enabled.")
	} else {
		log.Println("Grant cache disabled (no redis address configured).")
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	traineeRepo := mongo.NewMongoTraineeRepository(appDB)
	inviteRepo := mongo.NewMongoInviteRepository(appDB)
	memberRepo := mongo.NewMongoTeamMemberRepository(appDB)
	grantRepo := mongo.NewMongoGrantRepository(appDB)
	recordRepo := mongo.NewMongoRecordRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	enrollmentRepo := mongo.NewMongoEnrollmentRepository(appDB)

	// --- Access Enforcement ---
	authorizer := access.NewAuthorizer(memberRepo, grantRepo, grantCache)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, traineeRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	inviteService := service.NewInviteService(inviteRepo, memberRepo, grantRepo, authorizer, cfg.Invite.BaseURL)
	grantService := service.NewGrantService(memberRepo, grantRepo, authorizer)
	rosterService := service.NewRosterService(grantRepo)
	recordService := service.NewRecordService(recordRepo, authorizer, fileStorage)
	sessionService := service.NewSessionService(sessionRepo, enrollmentRepo)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authorizer, authService, inviteService, grantService, rosterService, recordService, sessionService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
