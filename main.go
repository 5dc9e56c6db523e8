package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/joki-chat/config"
	"github.com/Windi-Fikriyansyah/joki-chat/controllers"
	"github.com/Windi-Fikriyansyah/joki-chat/middleware"
	"github.com/Windi-Fikriyansyah/joki-chat/models"
)

func main() {
	logrus.Info("Starting joki chat API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Message{},
		&models.JobOffer{},
		&models.Review{},
	); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}
	logrus.Info("Database migration completed successfully")

	router := setupRouter()

	// Start server
	addr := ":" + cfg.Port
	logrus.Infof("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the Gin router with all API routes
func setupRouter() *gin.Engine {
	router := gin.Default()

	// The browser frontend is served from a different origin
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// All chat and account routes require a session cookie
		authed := v1.Group("")
		authed.Use(middleware.RequireSession())
		{
			authed.GET("/chat/conversations", controllers.ListConversations)
			authed.POST("/chat/conversations", controllers.CreateConversation)
			authed.GET("/chat/conversations/:id/messages", controllers.ListMessages)
			authed.POST("/chat/conversations/:id/messages", controllers.SendMessage)
			authed.GET("/chat/unread-count", controllers.UnreadCount)

			authed.POST("/job-offers/:id/review", controllers.SubmitReview)

			authed.GET("/me", controllers.Me)
			authed.PUT("/me", controllers.UpdateMe)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Joki chat API is running",
	})
}
