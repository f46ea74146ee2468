package market

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"coinpulse/internal/models"

	"github.com/go-resty/resty/v2"
)

// IndexClient fetches broad market readings from a CoinGecko-style
// price index. Used by the refresh daemon, not by request handlers.
type IndexClient struct {
	baseURL string
	client  *resty.Client
}

type indexCoin struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	CurrentPrice *float64 `json:"current_price"`
	TotalVolume  *float64 `json:"total_volume"`
	Change24h    *float64 `json:"price_change_percentage_24h"`
	MarketCap    *float64 `json:"market_cap"`
}

func NewIndexClient(baseURL string) *IndexClient {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	client := resty.New()
	client.SetTimeout(60 * time.Second)

	return &IndexClient{
		baseURL: baseURL,
		client:  client,
	}
}

// GetMarkets fetches the top market readings and reshapes them into
// snapshot rows tagged with the index source.
func (ic *IndexClient) GetMarkets(limit int) ([]models.MarketSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	path := "/coins/markets"
	resp, err := ic.client.R().
		SetQueryParams(map[string]string{
			"vs_currency": "usd",
			"order":       "market_cap_desc",
			"per_page":    fmt.Sprintf("%d", limit),
		}).
		Get(ic.baseURL + path)
	if err != nil {
		log.Printf("[priceindex] %s: %v", path, err)
		return nil, fmt.Errorf("request failed for %s", path)
	}
	if resp.StatusCode() != http.StatusOK {
		log.Printf("[priceindex] %s returned %d: %s", path, resp.StatusCode(), resp.String())
		return nil, fmt.Errorf("request failed for %s", path)
	}

	var coins []indexCoin
	if err := json.Unmarshal(resp.Body(), &coins); err != nil {
		log.Printf("[priceindex] malformed payload: %v", err)
		return nil, fmt.Errorf("request failed for %s", path)
	}

	now := time.Now()
	snapshots := make([]models.MarketSnapshot, 0, len(coins))
	for _, coin := range coins {
		snapshots = append(snapshots, models.MarketSnapshot{
			Symbol:       strings.ToUpper(coin.Symbol),
			Name:         coin.Name,
			Source:       "coingecko",
			PriceUsd:     coin.CurrentPrice,
			Volume24hUsd: coin.TotalVolume,
			Change24hPct: coin.Change24h,
			MarketCapUsd: coin.MarketCap,
			CreatedAt:    now,
		})
	}
	return snapshots, nil
}
