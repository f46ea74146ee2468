package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"coinpulse/internal/config"
	"coinpulse/internal/database"
	"coinpulse/internal/services/market"

	"github.com/joho/godotenv"
)

// Standalone snapshot refresher: samples the price index and the DEX
// watchlist into the store on a fixed interval. Run it next to the server
// when the server itself should not own the sampling loop.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	var watchlist []string
	if raw := os.Getenv("DEX_WATCHLIST"); raw != "" {
		for _, address := range strings.Split(raw, ",") {
			if address = strings.TrimSpace(address); address != "" {
				watchlist = append(watchlist, address)
			}
		}
	}

	refresher := market.NewRefresher(db, market.NewIndexClient(""), market.NewDexClient(), watchlist, cfg.RefreshInterval)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	refresher.Run(ctx)
}
