package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"conferencecentral/config"
	_ "conferencecentral/docs"
	"conferencecentral/internal/adapters/auth"
	"conferencecentral/internal/adapters/email"
	"conferencecentral/internal/cache"
	delivery "conferencecentral/internal/delivery/http"
	"conferencecentral/internal/delivery/http/controllers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/repository/postgres"
	"conferencecentral/internal/services"
	"conferencecentral/internal/tasks"
)

// @title Conference Central API
// @version 1.0
// @description Conference management API: profiles, conferences, sessions, registration, wishlists, and announcements.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	profileRepo := postgres.NewProfileRepository(db)
	confRepo := postgres.NewConferenceRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	speakerRepo := postgres.NewSpeakerRepository(db)
	transactor := postgres.NewTransactor(db)

	// Email + background tasks
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	dispatcher := tasks.NewDispatcher(emailService, logger, cfg.TaskQueueSize)
	dispatcher.Start(cfg.TaskWorkers)
	defer dispatcher.Stop()

	// Services
	profileService := services.NewProfileService(profileRepo)
	conferenceService := services.NewConferenceService(confRepo, profileRepo, dispatcher, logger)
	sessionService := services.NewSessionService(confRepo, sessionRepo, speakerRepo, dispatcher, logger)
	registrationService := services.NewRegistrationService(transactor, profileRepo, confRepo, sessionRepo, logger)
	announcementService := services.NewAnnouncementService(confRepo, cache.NewAnnouncementCache(), logger)

	// Controllers
	profileController := controllers.NewProfileController(logger, profileService)
	conferenceController := controllers.NewConferenceController(logger, conferenceService)
	registrationController := controllers.NewRegistrationController(logger, registrationService)
	sessionController := controllers.NewSessionController(logger, sessionService)
	announcementController := controllers.NewAnnouncementController(logger, announcementService)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	mux := delivery.NewRouter(
		logger,
		verifier,
		profileController,
		conferenceController,
		registrationController,
		sessionController,
		announcementController,
	)

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Announcement ticker: recompute the nearly-sold-out announcement on a
	// fixed interval, plus once at startup so the cache is warm.
	go func() {
		if _, err := announcementService.Recompute(rootCtx); err != nil {
			logger.Error("announcement recompute failed", "err", err)
		}
		ticker := time.NewTicker(cfg.AnnouncementInterval)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				if _, err := announcementService.Recompute(rootCtx); err != nil {
					logger.Error("announcement recompute failed", "err", err)
				}
			}
		}
	}()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
