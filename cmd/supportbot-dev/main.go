package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"supportbot/internal/app"
)

// Local-dev runner: in-memory storage, polling mode, no external services.
func main() {
	os.Setenv("STORAGE_BACKEND", "memory")
	os.Setenv("WEBHOOK_MODE", "false")
	os.Setenv("DEBUG", "true")

	if os.Getenv("PORT") == "" {
		os.Setenv("PORT", "8080")
	}

	if os.Getenv("TELEGRAM_BOT_TOKEN") == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set. Please set it in your .env file or environment.")
		log.Println("The bot will fail to start without a valid token.")
	}

	if os.Getenv("ADMIN_CHAT_ID") == "" {
		log.Println("ADMIN_CHAT_ID not set. Please set it in your .env file or environment.")
		log.Println("New questions have nowhere to go without an admin chat.")
	}

	log.Println("Starting application with in-memory storage...")

	application, err := app.New()
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- application.Run()
	}()

	select {
	case <-sigChan:
		log.Println("Received shutdown signal")
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Application error: %v", err)
		}
	}
}
