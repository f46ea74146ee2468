package models

import "time"

// MarketSnapshot stores a point-in-time price reading for a symbol from one source.
// Rows are immutable; newer snapshots supersede, nothing is updated in place.
type MarketSnapshot struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Symbol       string    `json:"symbol" gorm:"index;not null"`
	Name         string    `json:"name"`
	Source       string    `json:"source" gorm:"index"` // price index provider tag
	PriceUsd     *float64  `json:"price_usd"`
	Volume24hUsd *float64  `json:"volume_24h_usd"`
	Change24hPct *float64  `json:"change_24h_pct"`
	MarketCapUsd *float64  `json:"market_cap_usd"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// DexMarketSnapshot stores a venue-specific reading for a token on one DEX.
// Multiple rows may describe the same logical token on different venues.
type DexMarketSnapshot struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TokenAddress string    `json:"token_address" gorm:"index"`
	Symbol       string    `json:"symbol" gorm:"index;not null"`
	Name         string    `json:"name"`
	Chain        string    `json:"chain" gorm:"index;not null"`
	Dex          string    `json:"dex"`
	PairAddress  string    `json:"pair_address"`
	PriceUsd     *float64  `json:"price_usd"`
	LiquidityUsd *float64  `json:"liquidity_usd"`
	Volume24hUsd *float64  `json:"volume_24h_usd"`
	Change24hPct *float64  `json:"change_24h_pct"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// CexMarketSnapshot stores an exchange-specific reading for a symbol.
type CexMarketSnapshot struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Symbol       string    `json:"symbol" gorm:"index;not null"`
	Name         string    `json:"name"`
	Exchange     string    `json:"exchange" gorm:"index;not null"`
	PriceUsd     *float64  `json:"price_usd"`
	Volume24hUsd *float64  `json:"volume_24h_usd"`
	Change24hPct *float64  `json:"change_24h_pct"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// WhaleEntry represents a detected large on-chain transfer.
// AmountUsd is signed: >= 0 accumulating, < 0 distributing.
type WhaleEntry struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Chain       string    `json:"chain" gorm:"index;not null"`
	TokenSymbol string    `json:"token_symbol" gorm:"index"`
	AmountUsd   float64   `json:"amount_usd"`
	TxHash      string    `json:"tx_hash" gorm:"uniqueIndex"`
	OccurredAt  time.Time `json:"occurred_at" gorm:"index;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// Accumulating reports whether the transfer adds to holdings.
func (w *WhaleEntry) Accumulating() bool {
	return w.AmountUsd >= 0
}
