package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-confirm-api/internal/config"
	"github.com/go-confirm-api/internal/infrastructure/dynamo"
	"github.com/go-confirm-api/internal/infrastructure/memory"
	"github.com/go-confirm-api/internal/infrastructure/smtp"
	transporthttp "github.com/go-confirm-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DebugEchoCode {
		log.Println("WARN: DEBUG_ECHO_CODE is on, confirmation codes are returned to callers")
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("dynamodb: %v", err)
	}
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	deps := &transporthttp.Deps{
		UserRepo:   dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		ReviewRepo: dynamo.NewReviewRepo(dynamoClient, cfg.DynamoTables.Reviews),
		Mailer:     smtp.NewMailer(cfg),
		Pending:    memory.NewPendingRegistry(),
		Sessions:   memory.NewSessionRegistry(),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
