package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"copyprocloud/internal/database"
	"copyprocloud/internal/infra/email"
	"copyprocloud/internal/infra/telegram"
	"copyprocloud/internal/modules/notification"
	"copyprocloud/internal/repository"
	"copyprocloud/internal/workers"
	"copyprocloud/internal/workers/reminders"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Error("DATABASE_URL is empty")
		os.Exit(1)
	}
	db, err := database.Connect(dsn)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	templateRepo := repository.NewNotificationTemplateRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	var emailSender notification.EmailSender
	if key := os.Getenv("EMAIL_API_KEY"); key != "" {
		emailSender = email.NewClient(os.Getenv("EMAIL_API_URL"), key, os.Getenv("EMAIL_FROM"), logger)
	}
	var telegramSender notification.TelegramSender
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		tgClient, err := telegram.NewClient(token, logger)
		if err != nil {
			logger.Error("telegram client init failed", "error", err)
		} else {
			telegramSender = tgClient
		}
	}

	dispatcher := notification.NewDispatcher(templateRepo, userRepo, emailSender, telegramSender, nil)
	service := notification.NewService(reminderRepo, dispatcher, nil)

	manager := workers.NewManager(logger,
		reminders.NewWorker(service, os.Getenv("REMINDERS_SCHEDULE"), logger),
	)
	if err := manager.Start(); err != nil {
		logger.Error("worker start failed", "error", err)
		os.Exit(1)
	}
	logger.Info("reminder workers running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	manager.Stop()
}
