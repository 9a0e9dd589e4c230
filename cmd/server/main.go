package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"learningtime/internal/config"
	"learningtime/internal/handlers"
	"learningtime/internal/security"
	"learningtime/internal/service"
	"learningtime/internal/store"
	"learningtime/internal/templates"
)

func main() {
	// Load .env when present; real environment variables win
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET must be set")
	}

	ctx := context.Background()

	// Open the question store (sql, firestore or memory)
	questionStore, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open question store: %v", err)
	}
	defer closeStore()

	log.Printf("Question store ready (backend: %s)", cfg.StoreBackend)

	tmpl, err := templates.Load(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	log.Println("Templates loaded successfully")

	// Initialize services
	authService, err := service.NewAuthService(cfg.SessionSecret, cfg.AllowedEmails, cfg.SessionDuration)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}
	if authService.AllowList().Empty() {
		log.Println("Warning: ALLOWED_EMAILS is empty, every Google account may sign in")
	} else {
		log.Printf("Allow-list loaded (%d accounts)", authService.AllowList().Len())
	}

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AccessNotifyEmail, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Printf("Warning: access notifications disabled: %v", err)
		emailService = nil
	}

	questionService := service.NewQuestionService(questionStore)
	practiceService := service.NewPracticeService(questionStore)

	csrfKey, err := security.DeriveKey(cfg.SessionSecret, security.PurposeCSRF)
	if err != nil {
		log.Fatalf("Failed to derive CSRF key: %v", err)
	}
	limiter := security.NewRateLimiter(20, time.Minute)
	defer limiter.Stop()

	provider := handlers.OAuthProvider{
		Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		UserInfoURL: handlers.GoogleUserInfoURL,
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, security.NewCSRFGenerator(csrfKey), limiter, tmpl)
	routes := &handlers.Routes{
		Middleware:  middleware,
		Auth:        handlers.NewAuthHandler(authService, emailService, practiceService, middleware, tmpl, provider, cfg.OAuthRedirectBaseURL),
		Questions:   handlers.NewQuestionHandler(questionService),
		Practice:    handlers.NewPracticeHandler(practiceService, middleware, tmpl),
		Summary:     handlers.NewSummaryHandler(questionService, middleware, tmpl),
		CORSOrigins: cfg.CORSOrigins,
	}

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      routes.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Let pending answer writes finish before the store closes
	practiceService.Wait()
	log.Println("Server stopped")
}
