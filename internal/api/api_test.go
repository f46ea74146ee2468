package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coinpulse/internal/models"
	"coinpulse/internal/services/sentiment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Project{},
		&models.MetricsDaily{},
		&models.ProjectTweet{},
		&models.Campaign{},
		&models.Withdrawal{},
		&models.MarketSnapshot{},
		&models.DexMarketSnapshot{},
		&models.CexMarketSnapshot{},
		&models.WhaleEntry{},
	))

	r := gin.New()
	hub := NewWSHub()
	go hub.Run()
	SetupRoutes(r.Group("/api/v1"), db, nil, sentiment.NewAnalyzer("", ""), hub, "test-token")
	return r, db
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/admin/campaigns", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/admin/campaigns", "wrong-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/admin/campaigns", "test-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCampaignLifecycle(t *testing.T) {
	r, db := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/admin/campaigns", "test-token", gin.H{
		"name":       "Launch Week",
		"budget_usd": 5000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var campaign models.Campaign
	require.NoError(t, db.First(&campaign).Error)
	assert.Equal(t, "draft", campaign.Status)
	assert.NotEmpty(t, campaign.Code)

	// draft → active is allowed
	path := fmt.Sprintf("/api/v1/admin/campaigns/%d/status", campaign.ID)
	w = doJSON(r, http.MethodPut, path, "test-token", gin.H{"status": "active"})
	assert.Equal(t, http.StatusOK, w.Code)

	// active → draft is not
	w = doJSON(r, http.MethodPut, path, "test-token", gin.H{"status": "draft"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWithdrawalStatusTransitions(t *testing.T) {
	r, db := newTestRouter(t)

	project := models.Project{Handle: "degenlabs", IsActive: true}
	require.NoError(t, db.Create(&project).Error)

	w := doJSON(r, http.MethodPost, "/api/v1/admin/withdrawals", "test-token", gin.H{
		"project_id":  project.ID,
		"amount_usd":  1500.0,
		"wallet_addr": "0xabc",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var withdrawal models.Withdrawal
	require.NoError(t, db.First(&withdrawal).Error)
	assert.Equal(t, "pending", withdrawal.Status)

	path := fmt.Sprintf("/api/v1/admin/withdrawals/%d/status", withdrawal.ID)

	// pending → paid skips approval and is rejected
	w = doJSON(r, http.MethodPut, path, "test-token", gin.H{"status": "paid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPut, path, "test-token", gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPut, path, "test-token", gin.H{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.First(&withdrawal).Error)
	assert.Equal(t, "paid", withdrawal.Status)
	assert.NotNil(t, withdrawal.ProcessedAt)
}

func TestGetMemeMarkets_FiltersMajors(t *testing.T) {
	r, db := newTestRouter(t)
	now := time.Now()

	rows := []models.DexMarketSnapshot{
		{TokenAddress: "0xbtc", Symbol: "WBTC", Name: "Wrapped Bitcoin", Chain: "eth", CreatedAt: now},
		{TokenAddress: "0xpepe", Symbol: "PEPE", Name: "Pepe Coin", Chain: "eth", CreatedAt: now},
	}
	require.NoError(t, db.Create(&rows).Error)

	w := doJSON(r, http.MethodGet, "/api/v1/market/memes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.DexMarketSnapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "PEPE", resp.Data[0].Symbol)
}

func TestSearchTweets_RequiresQuery(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/tweets/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/tweets/search?q=%20%20", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeSentiment_Validation(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/sentiment/analyze", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/sentiment/analyze", "", gin.H{"text": "huge bullish rally"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data sentiment.SentimentResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "positive", resp.Data.Label)
}

func TestGetWhaleActivity_EmptyIsOK(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/whales", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Recent  []models.WhaleEntry `json:"recent"`
			LastAny *models.WhaleEntry  `json:"last_any"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Recent)
	assert.Nil(t, resp.Data.LastAny)
}
