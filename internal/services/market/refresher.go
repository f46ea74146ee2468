package market

import (
	"context"
	"log"
	"time"

	"coinpulse/internal/models"

	"gorm.io/gorm"
)

// Refresher periodically samples the price index and the DEX watchlist into
// snapshot tables. One sequential pass per cycle; a failed provider is
// logged and skipped, never retried within the cycle.
type Refresher struct {
	db        *gorm.DB
	index     *IndexClient
	dex       *DexClient
	watchlist []string // token addresses to sample on DEX venues
	interval  time.Duration
	onBatch   func([]models.MarketSnapshot)
}

func NewRefresher(db *gorm.DB, index *IndexClient, dex *DexClient, watchlist []string, interval time.Duration) *Refresher {
	return &Refresher{
		db:        db,
		index:     index,
		dex:       dex,
		watchlist: watchlist,
		interval:  interval,
	}
}

// OnBatch registers a callback invoked with each fresh index batch
// (used by the server to feed the websocket ticker).
func (r *Refresher) OnBatch(fn func([]models.MarketSnapshot)) {
	r.onBatch = fn
}

// Run samples immediately, then on every tick until the context ends.
func (r *Refresher) Run(ctx context.Context) {
	log.Printf("[refresher] starting with %v interval, %d watchlist tokens", r.interval, len(r.watchlist))
	r.runOnce()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("[refresher] context cancelled, stopping")
			return
		case <-ticker.C:
			r.runOnce()
		}
	}
}

func (r *Refresher) runOnce() {
	snapshots, err := r.index.GetMarkets(100)
	if err != nil {
		log.Printf("[refresher] index fetch failed: %v", err)
	} else if len(snapshots) > 0 {
		if err := r.db.CreateInBatches(snapshots, 100).Error; err != nil {
			log.Printf("[refresher] index batch insert failed: %v", err)
		} else {
			log.Printf("[refresher] stored %d index snapshots", len(snapshots))
			if r.onBatch != nil {
				r.onBatch(snapshots)
			}
		}
	}

	for _, address := range r.watchlist {
		pairs, err := r.dex.GetTokenPairs(address)
		if err != nil {
			log.Printf("[refresher] dex fetch failed for %s: %v", address, err)
			continue
		}
		if len(pairs) == 0 {
			continue
		}
		if err := r.db.CreateInBatches(pairs, 100).Error; err != nil {
			log.Printf("[refresher] dex batch insert failed for %s: %v", address, err)
		}
	}
}
