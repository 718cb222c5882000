package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sjperalta/workpermit-api/internal/config"
	"github.com/sjperalta/workpermit-api/internal/database"
	"github.com/sjperalta/workpermit-api/internal/mailer"
	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/sjperalta/workpermit-api/internal/repository"
	"github.com/sjperalta/workpermit-api/internal/services"
	"github.com/sjperalta/workpermit-api/pkg/logger"
)

// Sends the channel test notification through the configured mailer and records it in the email log
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	to := flag.String("to", os.Getenv("TEST_EMAIL_TO"), "recipient address")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup("development", cfg.LogLevel)

	if *to == "" {
		log.Fatal("recipient required: pass -to or set TEST_EMAIL_TO")
	}

	db, err := database.Connect(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	m := mailer.New(cfg)
	notifier := services.NewNotificationService(m, repository.NewEmailLogRepository(db), 0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Printf("Sending test email to %s via %s...", *to, notifier.Channel())
	n := services.ComposeNotification(models.EmailTypeTest, *to, nil, cfg.BaseURL, "")
	if err := notifier.Deliver(ctx, n); err != nil {
		log.Fatalf("Failed to send test email: %v", err)
	}
	log.Println("Test email sent successfully!")
}
