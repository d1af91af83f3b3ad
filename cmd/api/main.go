package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"peoplework/internal/config"
	"peoplework/internal/db"
	"peoplework/internal/email"
	apihttp "peoplework/internal/http"
	"peoplework/internal/repository"
	"peoplework/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	apptRepo := repository.NewPgAppointmentRepository(pool)
	reviewRepo := repository.NewPgReviewRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		otpStore   service.OTPStore
		otpLimiter service.RateLimiter
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, falling back to in-memory stores", zap.Error(err))
		} else {
			otpStore = service.NewRedisOTPStore(redisClient)
			otpLimiter = service.NewRedisRateLimiter(redisClient, 10*time.Minute, 3)
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)

	authSvc := service.NewAuthService(logger, userRepo, emailSender, otpStore, otpLimiter)
	userSvc := service.NewUserService(logger, userRepo)
	apptSvc := service.NewAppointmentService(apptRepo, userRepo)
	reviewSvc := service.NewReviewService(reviewRepo, apptRepo)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, jwtSvc)
	userHandler := apihttp.NewUserHandler(logger, userSvc)
	apptHandler := apihttp.NewAppointmentHandler(logger, apptSvc)
	reviewHandler := apihttp.NewReviewHandler(logger, reviewSvc)

	router := apihttp.NewRouter(logger, jwtSvc, authHandler, userHandler, apptHandler, reviewHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
