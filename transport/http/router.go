package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/polywallet/service"
	"github.com/rs/zerolog"
)

// RouterConfig holds the router dependencies
type RouterConfig struct {
	AuthService   *service.AuthService
	WalletService *service.WalletService
	Log           zerolog.Logger
	FrontendURL   string
	StoreKind     string
}

// SetupRouter sets up the Gin router
func SetupRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(cfg.Log))

	if cfg.FrontendURL != "" {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     []string{cfg.FrontendURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Route "+c.Request.URL.Path+" not found")
	})

	router.GET("/health", HealthHandler(cfg.StoreKind))

	// Auth routes
	authHandlers := NewAuthHandlers(cfg.AuthService, cfg.Log)
	auth := router.Group("/api/auth")
	{
		auth.GET("/nonce", authHandlers.Nonce)
		auth.GET("/message", authHandlers.Message)
		auth.POST("/verify", authHandlers.Verify)
		auth.GET("/me", AuthMiddleware(cfg.AuthService), authHandlers.Me)
		auth.POST("/logout", AuthMiddleware(cfg.AuthService), authHandlers.Logout)
	}

	if cfg.WalletService != nil {
		walletHandlers := NewWalletHandlers(cfg.WalletService, cfg.Log)

		wallet := router.Group("/api/wallet")
		{
			wallet.POST("/create", walletHandlers.Create)
			wallet.POST("/validate", walletHandlers.Validate)
			wallet.GET("/network", walletHandlers.Network)
			wallet.GET("/:address/balance", walletHandlers.Balance)
		}

		token := router.Group("/api/token")
		token.Use(OptionalAuthMiddleware(cfg.AuthService))
		{
			token.GET("/balance", walletHandlers.TokenBalance)
			token.GET("/:address/info", walletHandlers.TokenInfo)
		}
	}

	return router
}
