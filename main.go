package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"project-ascend/config"
	"project-ascend/handlers"
	"project-ascend/middleware"
	"project-ascend/models"
	"project-ascend/services"

	"github.com/glebarez/sqlite"
	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}
	if cfg.JWTSecret == config.DevJWTSecret {
		log.Println("⚠️  JWT_SECRET not set, using the development secret")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	tokens := services.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	userService := services.NewUserService(db, tokens)
	progressionService := services.NewProgressionService(db)
	workoutService := services.NewWorkoutService(db)
	nutritionService := services.NewNutritionService(db)
	waterService := services.NewWaterService(db, cfg.WaterTargetMl)
	catalogService := services.NewCatalogService(db)
	questService := services.NewQuestService(db,
		services.NewGeminiClient(cfg.GoogleAPIKey, cfg.GeminiModel),
		services.QuestInterpreter{StrictAttributes: cfg.QuestXPStrict},
	)
	if cfg.GoogleAPIKey == "" {
		log.Println("⚠️  GOOGLE_API_KEY not set, /generate-quest will fail")
	}

	app := fiber.New(fiber.Config{AppName: "Project Ascend API"})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	requireUser := middleware.UserContextMiddleware(tokens)
	requireAdmin := middleware.AdminTokenMiddleware(cfg.AdminToken)

	handlers.SetupHealthRoutes(app, db)
	handlers.SetupAuthRoutes(app, userService, requireUser)
	handlers.SetupProgressionRoutes(app, progressionService, requireUser)
	handlers.SetupWorkoutRoutes(app, workoutService, requireUser)
	handlers.SetupQuestRoutes(app, questService, requireUser)
	handlers.SetupNutritionRoutes(app, nutritionService, waterService, requireUser)
	handlers.SetupCatalogRoutes(app, catalogService, requireUser, requireAdmin)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sweeper gocron.Scheduler
	if cfg.QuestSweepInterval > 0 {
		sweeper, err = questService.StartExpirySweep(cfg.QuestSweepInterval, cfg.QuestSweepGrace)
		if err != nil {
			log.Fatal("failed to start quest sweep: ", err)
		}
		log.Printf("✅ Quest expiry sweep running (every %v, grace %v)", cfg.QuestSweepInterval, cfg.QuestSweepGrace)
	}

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	log.Printf("✅ Server running on %s", cfg.Addr())
	log.Printf("✅ CORS configured for origins: %s", strings.Join(cfg.AllowedOrigins, ","))

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if sweeper != nil {
		if err := sweeper.Shutdown(); err != nil {
			log.Printf("quest sweep shutdown: %v", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// openDatabase uses PostgreSQL when DATABASE_URL is set and a local SQLite file otherwise.
func openDatabase(cfg config.Config) (*gorm.DB, error) {
	if cfg.UsesPostgres() {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	}
	log.Printf("⚠️  DATABASE_URL not set, using SQLite at %s", cfg.SQLitePath)
	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection keeps writes from failing with SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
