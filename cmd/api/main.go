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

	"github.com/joho/godotenv"

	"github.com/brnno-tech/brnno-api/internal/config"
	"github.com/brnno-tech/brnno-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/brnno-tech/brnno-api/internal/infrastructure/jwt"
	"github.com/brnno-tech/brnno-api/internal/infrastructure/sns"
	stripegw "github.com/brnno-tech/brnno-api/internal/infrastructure/stripe"
	"github.com/brnno-tech/brnno-api/internal/infrastructure/taxjar"
	transporthttp "github.com/brnno-tech/brnno-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// Push gateway (optional — in-app records work without it).
	var pushSender sns.PushSender
	if sender, err := sns.NewSender(cfg); err == nil {
		pushSender = sender
	} else {
		log.Printf("WARN: push sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		PushSender:       pushSender,
		JWTProvider:      jwtProvider,
	}

	// Tax jurisdiction service (optional — estimator degrades to flat rate).
	if cfg.TaxServiceURL != "" {
		deps.TaxClient = taxjar.NewClient(cfg)
	} else {
		log.Println("WARN: tax service not configured, estimates use the flat rate")
	}

	// Payment gateway (optional — intent endpoint answers 503 without it).
	if gw, err := stripegw.NewGateway(cfg); err == nil {
		deps.PaymentGateway = gw
	} else {
		log.Printf("WARN: payment gateway not available: %v", err)
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
