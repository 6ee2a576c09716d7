package main

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"github.com/myportfolios/task-app/configs"
	v1 "github.com/myportfolios/task-app/internal/api/v1"
	"github.com/myportfolios/task-app/internal/api/v1/handlers"
	"github.com/myportfolios/task-app/internal/email"
	"github.com/myportfolios/task-app/internal/middleware"
	"github.com/myportfolios/task-app/internal/repository"
	"github.com/myportfolios/task-app/pkg/database"
	"github.com/myportfolios/task-app/pkg/logger"
)

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()

	db := database.ConnectDB(cfg)
	defer db.Close()
	logger.SystemLogger.Info("Database connected")

	store := repository.NewStore(db)
	repository.CreateTableIfNotExists(db)

	redisClient := database.ConnectRedis(cfg)
	defer redisClient.Close()

	outbox := email.NewOutbox(email.NewSendGridMailer(cfg.SendGridAPIKey, cfg.EmailFrom))
	go outbox.Run()
	defer outbox.Stop()

	h := handlers.New(store, redisClient, outbox, []byte(cfg.JWTSecret))

	app := fiber.New()

	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	v1.RegisterRoutes(app, h)

	logger.SystemLogger.Info("Application ready", zap.Int("port", cfg.Port))
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
