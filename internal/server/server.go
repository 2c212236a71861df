// Package server assembles the HTTP router so the main binary and the
// integration tests share the same wiring.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/session"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Sessions *session.Manager
	Auth     *handlers.AuthHandler
	Drive    *handlers.DriveHandler
	Insights *handlers.InsightsHandler
	Currency *handlers.CurrencyHandler
}

// New builds the Gin engine with the full middleware chain and route table.
func New(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Session-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.Use(middleware.SessionResolver(deps.Sessions))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// OAuth popup flow
	router.GET("/api/auth/url", deps.Auth.GetAuthURL)
	router.GET("/auth/callback", deps.Auth.Callback)
	router.GET("/api/auth/user", deps.Auth.CurrentUser)
	router.POST("/api/auth/logout", deps.Auth.Logout)

	// Drive document proxy
	driveGroup := router.Group("/api/drive")
	driveGroup.Use(middleware.RequireSession())
	driveGroup.GET("/file", deps.Drive.GetFile)
	driveGroup.POST("/save", deps.Drive.SaveFile)

	// Supplementary proxies
	router.POST("/api/insights", deps.Insights.Generate)
	router.GET("/api/currency/rates", deps.Currency.GetRates)
	router.GET("/api/currency/currencies", deps.Currency.ListCurrencies)

	return router
}
