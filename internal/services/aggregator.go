package services

import (
	"log"
	"sort"
	"time"

	"coinpulse/internal/models"

	"gorm.io/gorm"
)

const (
	// rows this close to the newest row count as one ingestion batch
	latestBatchWindow = 5 * time.Minute

	whaleRecentWindow   = 24 * time.Hour
	whaleFallbackWindow = 7 * 24 * time.Hour
)

// WhaleActivity is the recent-with-fallback result: Recent holds the short
// window, LastAny the single most recent row from the wider window when the
// short one is empty.
type WhaleActivity struct {
	Recent  []models.WhaleEntry `json:"recent"`
	LastAny *models.WhaleEntry  `json:"last_any"`
}

// ChainFlow aggregates signed whale amounts per chain.
type ChainFlow struct {
	Chain      string  `json:"chain"`
	InflowUsd  float64 `json:"inflow_usd"`
	OutflowUsd float64 `json:"outflow_usd"`
	NetUsd     float64 `json:"net_usd"`
	EntryCount int     `json:"entry_count"`
}

// LatestMarketBatch returns all index snapshots written within 5 minutes of
// the newest one, treating near-simultaneous writes from one refresh run as
// a single logical batch. Empty data yields an empty slice, never an error.
func LatestMarketBatch(db *gorm.DB) []models.MarketSnapshot {
	var newest models.MarketSnapshot
	err := db.Order("created_at desc").First(&newest).Error
	if err == gorm.ErrRecordNotFound {
		return []models.MarketSnapshot{}
	}
	if err != nil {
		log.Printf("[aggregator] latest market batch: %v", err)
		return []models.MarketSnapshot{}
	}

	cutoff := newest.CreatedAt.Add(-latestBatchWindow)
	var rows []models.MarketSnapshot
	if err := db.Where("created_at >= ?", cutoff).Order("market_cap_usd desc").Find(&rows).Error; err != nil {
		log.Printf("[aggregator] latest market batch: %v", err)
		return []models.MarketSnapshot{}
	}
	return rows
}

// LatestDexBatch returns the latest logical batch of DEX snapshots,
// same 5-minute trailing window rule as LatestMarketBatch.
func LatestDexBatch(db *gorm.DB) []models.DexMarketSnapshot {
	var newest models.DexMarketSnapshot
	err := db.Order("created_at desc").First(&newest).Error
	if err == gorm.ErrRecordNotFound {
		return []models.DexMarketSnapshot{}
	}
	if err != nil {
		log.Printf("[aggregator] latest dex batch: %v", err)
		return []models.DexMarketSnapshot{}
	}

	cutoff := newest.CreatedAt.Add(-latestBatchWindow)
	var rows []models.DexMarketSnapshot
	if err := db.Where("created_at >= ?", cutoff).Find(&rows).Error; err != nil {
		log.Printf("[aggregator] latest dex batch: %v", err)
		return []models.DexMarketSnapshot{}
	}
	return rows
}

// LatestCexBatch returns the latest logical batch of CEX snapshots.
func LatestCexBatch(db *gorm.DB) []models.CexMarketSnapshot {
	var newest models.CexMarketSnapshot
	err := db.Order("created_at desc").First(&newest).Error
	if err == gorm.ErrRecordNotFound {
		return []models.CexMarketSnapshot{}
	}
	if err != nil {
		log.Printf("[aggregator] latest cex batch: %v", err)
		return []models.CexMarketSnapshot{}
	}

	cutoff := newest.CreatedAt.Add(-latestBatchWindow)
	var rows []models.CexMarketSnapshot
	if err := db.Where("created_at >= ?", cutoff).Find(&rows).Error; err != nil {
		log.Printf("[aggregator] latest cex batch: %v", err)
		return []models.CexMarketSnapshot{}
	}
	return rows
}

// GetWhaleEntriesWithFallback reads whale entries from the last 24 hours.
// When that window is empty it widens to 7 days and reports only the single
// most recent entry as LastAny. Empty result sets are valid, not errors.
func GetWhaleEntriesWithFallback(db *gorm.DB, now time.Time) WhaleActivity {
	var recent []models.WhaleEntry
	err := db.Where("occurred_at >= ?", now.Add(-whaleRecentWindow)).
		Order("occurred_at desc").Find(&recent).Error
	if err != nil {
		log.Printf("[aggregator] whale entries: %v", err)
		return WhaleActivity{Recent: []models.WhaleEntry{}}
	}
	if len(recent) > 0 {
		return WhaleActivity{Recent: recent}
	}

	var last models.WhaleEntry
	err = db.Where("occurred_at >= ?", now.Add(-whaleFallbackWindow)).
		Order("occurred_at desc").First(&last).Error
	if err == gorm.ErrRecordNotFound {
		return WhaleActivity{Recent: []models.WhaleEntry{}}
	}
	if err != nil {
		log.Printf("[aggregator] whale fallback: %v", err)
		return WhaleActivity{Recent: []models.WhaleEntry{}}
	}
	return WhaleActivity{Recent: []models.WhaleEntry{}, LastAny: &last}
}

// BestDexPairs deduplicates venue snapshots down to one display row per
// logical token. Grouping key is (token address, chain), falling back to
// (symbol, chain) when the address is absent. Within a group the row with
// the highest liquidity wins, ties broken by highest volume. Deterministic:
// running it twice on the same rows selects the same winners.
func BestDexPairs(rows []models.DexMarketSnapshot) []models.DexMarketSnapshot {
	best := make(map[string]models.DexMarketSnapshot, len(rows))
	order := make([]string, 0, len(rows))

	for _, row := range rows {
		key := row.TokenAddress + "|" + row.Chain
		if row.TokenAddress == "" {
			key = row.Symbol + "|" + row.Chain
		}
		cur, exists := best[key]
		if !exists {
			best[key] = row
			order = append(order, key)
			continue
		}
		if dexRowBeats(row, cur) {
			best[key] = row
		}
	}

	out := make([]models.DexMarketSnapshot, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// dexRowBeats reports whether a should replace b: liquidity desc, then volume desc.
func dexRowBeats(a, b models.DexMarketSnapshot) bool {
	la, lb := floatOrZero(a.LiquidityUsd), floatOrZero(b.LiquidityUsd)
	if la != lb {
		return la > lb
	}
	return floatOrZero(a.Volume24hUsd) > floatOrZero(b.Volume24hUsd)
}

// BestCexRows keeps one row per symbol, the one with the highest volume.
func BestCexRows(rows []models.CexMarketSnapshot) []models.CexMarketSnapshot {
	best := make(map[string]models.CexMarketSnapshot, len(rows))
	order := make([]string, 0, len(rows))

	for _, row := range rows {
		cur, exists := best[row.Symbol]
		if !exists {
			best[row.Symbol] = row
			order = append(order, row.Symbol)
			continue
		}
		if floatOrZero(row.Volume24hUsd) > floatOrZero(cur.Volume24hUsd) {
			best[row.Symbol] = row
		}
	}

	out := make([]models.CexMarketSnapshot, 0, len(order))
	for _, symbol := range order {
		out = append(out, best[symbol])
	}
	return out
}

// ChainFlows sums accumulating and distributing whale amounts per chain.
// Output is sorted by chain name so repeated runs render identically.
func ChainFlows(entries []models.WhaleEntry) []ChainFlow {
	byChain := make(map[string]*ChainFlow)
	for _, entry := range entries {
		flow, ok := byChain[entry.Chain]
		if !ok {
			flow = &ChainFlow{Chain: entry.Chain}
			byChain[entry.Chain] = flow
		}
		if entry.AmountUsd >= 0 {
			flow.InflowUsd += entry.AmountUsd
		} else {
			flow.OutflowUsd += -entry.AmountUsd
		}
		flow.NetUsd += entry.AmountUsd
		flow.EntryCount++
	}

	out := make([]ChainFlow, 0, len(byChain))
	for _, flow := range byChain {
		out = append(out, *flow)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Chain < out[j].Chain })
	return out
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
