package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/cinepass/cinepass-api/internal/config"
	"github.com/cinepass/cinepass-api/internal/domain/auth"
	"github.com/cinepass/cinepass-api/internal/domain/payment"
	"github.com/cinepass/cinepass-api/internal/domain/user"
	"github.com/cinepass/cinepass-api/internal/domain/wallet"
	"github.com/cinepass/cinepass-api/internal/middleware"
	"github.com/cinepass/cinepass-api/internal/pkg/database"
	"github.com/cinepass/cinepass-api/internal/pkg/jwt"
	"github.com/cinepass/cinepass-api/internal/pkg/paystack"
	"github.com/cinepass/cinepass-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer db.Close()

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	dailyPrice, err := decimal.NewFromString(cfg.DailyAccessPrice)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.DailyAccessPrice).Msg("invalid daily access price")
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	userRepo := user.NewRepository(db)
	directory := user.NewDirectory(userRepo)

	walletRepo := wallet.NewRepository(db, cfg.DefaultCurrency, cfg.WalletLockTimeout)
	walletService := wallet.NewService(walletRepo, directory, cfg.PaidWindow)
	walletHandler := wallet.NewHandler(walletService, dailyPrice)

	paystackClient := paystack.NewClient(paystack.Config{
		BaseURL:   cfg.PaystackBaseURL,
		SecretKey: cfg.PaystackSecret,
	})
	paymentService := payment.NewService(paystackClient, userRepo, walletRepo,
		cfg.WebhookSecret(), cfg.PaystackCallbackURL, cfg.PaystackCancelURL)
	paymentHandler := payment.NewHandler(paymentService)

	authService := auth.NewService(userRepo, walletService, jwtService, rdb)
	authHandler := auth.NewHandler(authService)

	authMiddleware := middleware.Auth(jwtService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware))
		r.Mount("/payments", paymentHandler.Routes(authMiddleware))
	})

	r.Mount("/webhooks", paymentHandler.WebhookRoutes())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
