package market

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubDexClient(srv *httptest.Server) *DexClient {
	rc := resty.New()
	rc.SetTimeout(5 * time.Second)
	return &DexClient{baseURL: srv.URL, client: rc}
}

func TestGetTokenPairs_ParsesPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tokens/0xa", r.URL.Path)
		w.Write([]byte(`{"pairs": [
			{"chainId": "eth", "dexId": "uniswap", "pairAddress": "0xp1",
			 "baseToken": {"address": "0xa", "name": "Pepe", "symbol": "PEPE"},
			 "priceUsd": "0.0000215",
			 "liquidity": {"usd": 1000}, "volume": {"h24": 500}, "priceChange": {"h24": -3.2}},
			{"chainId": "eth", "dexId": "sushiswap", "pairAddress": "0xp2",
			 "baseToken": {"address": "0xa", "name": "Pepe", "symbol": "PEPE"},
			 "priceUsd": "1.5abc",
			 "liquidity": {"usd": 200}, "volume": {"h24": 50}, "priceChange": {"h24": 0}}
		]}`))
	}))
	defer srv.Close()

	pairs, err := newStubDexClient(srv).GetTokenPairs("0xa")
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	require.NotNil(t, pairs[0].PriceUsd)
	assert.InDelta(t, 0.0000215, *pairs[0].PriceUsd, 1e-12)
	assert.Equal(t, "uniswap", pairs[0].Dex)
	require.NotNil(t, pairs[0].LiquidityUsd)
	assert.Equal(t, float64(1000), *pairs[0].LiquidityUsd)

	// a garbage-suffixed price string is rejected whole, not prefix-parsed
	assert.Nil(t, pairs[1].PriceUsd)
}

func TestGetTokenPairs_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	pairs, err := newStubDexClient(srv).GetTokenPairs("0xunknown")
	require.NoError(t, err)
	assert.Nil(t, pairs)
}
