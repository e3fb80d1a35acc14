package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/arvoinvest/backend/internal/config"
	"github.com/arvoinvest/backend/internal/handlers"
	"github.com/arvoinvest/backend/internal/middleware"
	"github.com/arvoinvest/backend/internal/queue"
	"github.com/arvoinvest/backend/internal/services/crypto"
	"github.com/arvoinvest/backend/internal/services/investment"
	"github.com/arvoinvest/backend/internal/services/payment"
	"github.com/arvoinvest/backend/internal/services/referral"
	"github.com/arvoinvest/backend/internal/services/team"
	"github.com/arvoinvest/backend/internal/services/wallet"
)

// Services groups the service layer the routes depend on
type Services struct {
	Wallets     *wallet.WalletService
	Referrals   *referral.ReferralService
	Teams       *team.TeamService
	Investments *investment.InvestmentService
	Payments    *payment.PaymentService
	Crypto      *crypto.CryptoService
}

// SetupRoutes wires every endpoint onto the router
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, q queue.QueueInterface, svcs Services) {
	router.Use(middleware.SecureHeaders())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	rateLimiter := middleware.NewRateLimiter(10, 20)
	router.Use(rateLimiter.Middleware())

	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db, svcs.Wallets)
	investmentHandler := handlers.NewInvestmentHandler(svcs.Investments)
	teamHandler := handlers.NewTeamHandler(svcs.Teams, svcs.Referrals)
	paymentHandler := handlers.NewPaymentHandler(svcs.Payments, svcs.Crypto, q)
	webhookHandler := handlers.NewWebhookHandler(cfg, svcs.Payments, q)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/google", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
	}

	authed := router.Group("/api")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("/auth/2fa/setup", authHandler.SetupTwoFactor)
		authed.POST("/auth/2fa/verify", authHandler.VerifyTwoFactor)

		authed.GET("/me", userHandler.GetProfile)
		authed.GET("/me/ledger", userHandler.GetLedger)

		authed.GET("/products", investmentHandler.ListProducts)
		authed.GET("/products/:slug", investmentHandler.GetProduct)
		authed.POST("/investments", investmentHandler.Purchase)
		authed.GET("/investments", investmentHandler.ListInvestments)

		authed.GET("/team", teamHandler.GetTeam)
		authed.GET("/team/stats", teamHandler.GetTeamStats)
		authed.GET("/team/commissions", teamHandler.GetCommissionStats)

		authed.POST("/deposits/pix", paymentHandler.CreatePixDeposit)
		authed.POST("/deposits/crypto", paymentHandler.CreateCryptoDeposit)
		authed.GET("/deposits", paymentHandler.ListDeposits)
		authed.POST("/withdrawals", paymentHandler.Withdraw)
		authed.GET("/withdrawals", paymentHandler.ListWithdrawals)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/products", investmentHandler.CreateProduct)
		admin.POST("/withdrawals/:id/approve", paymentHandler.ApproveWithdrawal)
		admin.POST("/withdrawals/:id/reject", paymentHandler.RejectWithdrawal)
	}

	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/pix", webhookHandler.HandlePixWebhook)
	}
}
