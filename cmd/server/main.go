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

	"householdledger/config"
	"householdledger/internal/adapters/auth"
	"householdledger/internal/adapters/cache"
	"householdledger/internal/adapters/email"
	httpdelivery "householdledger/internal/delivery/http"
	"householdledger/internal/delivery/http/controllers"
	"householdledger/internal/delivery/http/middleware"
	"householdledger/internal/repository/postgres"
	"householdledger/internal/services"
)

// @title Household Ledger API
// @version 1.0
// @description Shared household bookkeeping: families, invitations, transactions, and monthly summaries.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := postgres.Open(cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	familyRepo := postgres.NewFamilyRepository(db)
	memberRepo := postgres.NewFamilyMemberRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	settingsRepo := postgres.NewUserSettingsRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(0) // 0 selects the bcrypt default cost
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mailer.Provider,
		FromAddress: cfg.Mailer.FromAddress,
		FromName:    cfg.Mailer.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mailer.SESRegion,
			AccessKeyID:        cfg.Mailer.SESAccessKeyID,
			SecretAccessKey:    cfg.Mailer.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Mailer.InsecureSkipVerify,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}

	invalidatorHub := cache.NewHub()
	invalidatorHub.Subscribe(func(familyID string) {
		logger.Debug("family members changed", "family_id", familyID)
	})

	// Services
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	authService := services.NewAuthService(userRepo, hasher, issuer, cfg.JWTExpiry, emailService)
	userService := services.NewUserService(userRepo, settingsRepo)
	familyService := services.NewFamilyService(familyRepo, memberRepo, cfg.RequestTimeout)
	membershipService := services.NewMembershipService(
		familyRepo,
		memberRepo,
		invitationRepo,
		userRepo,
		emailService,
		invalidatorHub,
		cfg.AppBaseURL,
		cfg.InviteExpiry,
		cfg.InviteMaxUses,
		cfg.RequestTimeout,
	)
	transactionService := services.NewTransactionService(transactionRepo, categoryRepo, familyRepo, memberRepo, cfg.RequestTimeout)
	categoryService := services.NewCategoryService(categoryRepo, familyRepo, memberRepo, cfg.RequestTimeout)

	// HTTP delivery
	mux := httpdelivery.NewRouter(httpdelivery.RouterDeps{
		Auth:         controllers.NewAuthController(logger, authService),
		Users:        controllers.NewUserController(logger, userService),
		Families:     controllers.NewFamilyController(logger, familyService),
		Members:      controllers.NewMemberController(logger, membershipService),
		Transactions: controllers.NewTransactionController(logger, transactionService),
		Categories:   controllers.NewCategoryController(logger, categoryService),
		Verifier:     verifier,
	}, logger)

	handler := middleware.RequestID(
		middleware.CORS(cfg.AllowedOrigins,
			middleware.LoggingMiddleware(logger, mux),
		),
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
