package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"macro-backtest/internal/api/handlers"
	"macro-backtest/internal/api/middleware"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	if wd, err := os.Getwd(); err == nil {
		log.Printf("Working directory: %s", wd)
		if info, err := os.Stat(dataDir); err == nil && info.IsDir() {
			log.Printf("Data directory found: %s", dataDir)
		} else {
			log.Printf("Data directory not found at: %s (csv-backed endpoints will 404 until it exists)", dataDir)
		}
	}

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	// Initialize handlers
	backtestHandler := handlers.NewBacktestHandler()
	signalHandler := handlers.NewSignalHandler(dataDir)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/backtest", backtestHandler.RunBacktest)
		api.GET("/signal", signalHandler.GetSignal)
		api.GET("/strategies", handlers.ListStrategies)
		api.GET("/series", handlers.ListSeries)
	}

	// Start server
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
