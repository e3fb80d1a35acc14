package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/arvoinvest/backend/internal/config"
	"github.com/arvoinvest/backend/internal/database"
	"github.com/arvoinvest/backend/internal/jobs"
	"github.com/arvoinvest/backend/internal/queue"
	"github.com/arvoinvest/backend/internal/routes"
	"github.com/arvoinvest/backend/internal/services/crypto"
	"github.com/arvoinvest/backend/internal/services/investment"
	"github.com/arvoinvest/backend/internal/services/payment"
	"github.com/arvoinvest/backend/internal/services/payment/providers/pix"
	"github.com/arvoinvest/backend/internal/services/referral"
	"github.com/arvoinvest/backend/internal/services/team"
	"github.com/arvoinvest/backend/internal/services/wallet"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	redisQueue := queue.NewRedisQueue(redisClient, db)

	walletService := wallet.NewWalletService(db)
	referralService := referral.NewReferralService(db, walletService)
	teamService := team.NewTeamService(db)
	investmentService := investment.NewInvestmentService(db, walletService, redisQueue)

	pixProvider := pix.NewPixProvider(pix.PixConfig{
		APIKey:  cfg.Pix.APIKey,
		BaseURL: cfg.Pix.BaseURL,
	})
	paymentService := payment.NewPaymentService(db, walletService, pixProvider)

	cryptoService, err := crypto.NewCryptoService(cfg.Crypto)
	if err != nil {
		log.Fatalf("Failed to initialize crypto service: %v", err)
	}

	jobs.RegisterAllJobHandlers(redisQueue, referralService, paymentService, cryptoService)

	worker := queue.NewWorker(redisQueue, 10)
	if err := jobs.ScheduleRecurringJobs(worker, investmentService); err != nil {
		log.Fatalf("Failed to schedule recurring jobs: %v", err)
	}
	worker.Start()

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	routes.SetupRoutes(router, db, cfg, redisQueue, routes.Services{
		Wallets:     walletService,
		Referrals:   referralService,
		Teams:       teamService,
		Investments: investmentService,
		Payments:    paymentService,
		Crypto:      cryptoService,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server started on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	worker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
