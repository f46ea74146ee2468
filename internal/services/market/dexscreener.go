package market

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"coinpulse/internal/models"

	"github.com/go-resty/resty/v2"
)

// DexClient fetches pair-level liquidity and volume data from a
// DexScreener-compatible endpoint.
type DexClient struct {
	baseURL string
	client  *resty.Client
}

type dexPair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUsd  string `json:"priceUsd"`
	Liquidity struct {
		Usd float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
}

func NewDexClient() *DexClient {
	client := resty.New()
	client.SetTimeout(60 * time.Second)

	return &DexClient{
		baseURL: "https://api.dexscreener.com/latest/dex",
		client:  client,
	}
}

// GetTokenPairs fetches all venue pairs for a token address and reshapes
// them into snapshot rows. A 404 means no pairs and returns (nil, nil).
func (d *DexClient) GetTokenPairs(address string) ([]models.DexMarketSnapshot, error) {
	path := fmt.Sprintf("/tokens/%s", address)
	resp, err := d.client.R().Get(d.baseURL + path)
	if err != nil {
		log.Printf("[dexscreener] %s: %v", path, err)
		return nil, fmt.Errorf("request failed for %s", path)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		log.Printf("[dexscreener] %s returned %d: %s", path, resp.StatusCode(), resp.String())
		return nil, fmt.Errorf("request failed for %s", path)
	}

	var result struct {
		Pairs []dexPair `json:"pairs"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		log.Printf("[dexscreener] malformed payload for %s: %v", address, err)
		return nil, fmt.Errorf("request failed for %s", path)
	}

	now := time.Now()
	snapshots := make([]models.DexMarketSnapshot, 0, len(result.Pairs))
	for _, pair := range result.Pairs {
		snap := models.DexMarketSnapshot{
			TokenAddress: pair.BaseToken.Address,
			Symbol:       pair.BaseToken.Symbol,
			Name:         pair.BaseToken.Name,
			Chain:        pair.ChainID,
			Dex:          pair.DexID,
			PairAddress:  pair.PairAddress,
			CreatedAt:    now,
		}
		if pair.PriceUsd != "" {
			if price, err := strconv.ParseFloat(pair.PriceUsd, 64); err == nil {
				snap.PriceUsd = &price
			}
		}
		liq := pair.Liquidity.Usd
		vol := pair.Volume.H24
		chg := pair.PriceChange.H24
		snap.LiquidityUsd = &liq
		snap.Volume24hUsd = &vol
		snap.Change24hPct = &chg
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}
