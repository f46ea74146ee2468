package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"coinpulse/internal/api"
	"coinpulse/internal/config"
	"coinpulse/internal/database"
	"coinpulse/internal/services/market"
	"coinpulse/internal/services/sentiment"
	"coinpulse/internal/services/twitter"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	if cfg.RapidAPIKey == "" {
		log.Println("⚠️  RAPIDAPI_KEY not set, project refresh will fail")
	}
	if cfg.SentimentAPIURL == "" {
		log.Println("Sentiment: no endpoint configured, using local heuristic")
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize provider clients
	twitterClient := twitter.NewClient(cfg.RapidAPIKey, cfg.RapidAPIHost)
	analyzer := sentiment.NewAnalyzer(cfg.SentimentAPIURL, cfg.SentimentAPIKey)

	// WebSocket hub for the live ticker
	hub := api.NewWSHub()
	go hub.Run()

	// Optional in-process refresher feeding the live ticker; run cmd/daemon
	// instead when sampling should live outside the server process.
	if os.Getenv("ENABLE_REFRESHER") == "true" {
		var watchlist []string
		for _, address := range strings.Split(os.Getenv("DEX_WATCHLIST"), ",") {
			if address = strings.TrimSpace(address); address != "" {
				watchlist = append(watchlist, address)
			}
		}
		refresher := market.NewRefresher(db, market.NewIndexClient(""), market.NewDexClient(), watchlist, cfg.RefreshInterval)
		refresher.OnBatch(hub.BroadcastBatch)
		go refresher.Run(context.Background())
	}

	// Initialize Gin router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Serve static files from the build directory
	r.Static("/static", "./web/build/static")
	r.StaticFile("/favicon.ico", "./web/build/favicon.ico")
	r.GET("/", func(c *gin.Context) {
		c.File("./web/build/index.html")
	})
	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	// SPA fallback for client-side routing
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.HasPrefix(c.Request.URL.Path, "/static/") {
			c.Status(http.StatusNotFound)
			return
		}
		c.File("./web/build/index.html")
	})

	// API routes
	apiGroup := r.Group("/api/v1")
	api.SetupRoutes(apiGroup, db, twitterClient, analyzer, hub, cfg.AdminToken)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
