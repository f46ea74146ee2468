package api

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"coinpulse/internal/models"
	"coinpulse/internal/services"
	"coinpulse/internal/services/sentiment"
	"coinpulse/internal/services/twitter"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type APIHandler struct {
	db         *gorm.DB
	twitter    *twitter.Client
	analyzer   *sentiment.Analyzer
	hub        *WSHub
	adminToken string
}

func SetupRoutes(r *gin.RouterGroup, db *gorm.DB, tw *twitter.Client, analyzer *sentiment.Analyzer, hub *WSHub, adminToken string) *APIHandler {
	handler := &APIHandler{
		db:         db,
		twitter:    tw,
		analyzer:   analyzer,
		hub:        hub,
		adminToken: adminToken,
	}

	// Market data routes
	market := r.Group("/market")
	{
		market.GET("/latest", handler.GetLatestMarket)
		market.GET("/dex", handler.GetDexMarkets)
		market.GET("/cex", handler.GetCexMarkets)
		market.GET("/memes", handler.GetMemeMarkets)
	}

	// Whale activity routes
	whales := r.Group("/whales")
	{
		whales.GET("", handler.GetWhaleActivity)
		whales.GET("/flows", handler.GetChainFlows)
	}

	// Project routes
	projects := r.Group("/projects")
	{
		projects.GET("", handler.ListProjects)
		projects.GET("/:id/overview", handler.GetProjectOverview)
		projects.POST("/:id/refresh", handler.RefreshProject)
	}

	// Tweet routes
	tweets := r.Group("/tweets")
	{
		tweets.GET("/search", handler.SearchTweets)
	}

	// Sentiment routes
	sentimentGroup := r.Group("/sentiment")
	{
		sentimentGroup.POST("/analyze", handler.AnalyzeSentiment)
		sentimentGroup.POST("/batch", handler.AnalyzeSentimentBatch)
	}

	// Admin routes - campaign/withdrawal tooling, bearer gated
	admin := r.Group("/admin", handler.requireAdmin)
	{
		admin.POST("/projects", handler.CreateProject)
		admin.POST("/whales", handler.RecordWhaleEntry)

		admin.POST("/campaigns", handler.CreateCampaign)
		admin.GET("/campaigns", handler.ListCampaigns)
		admin.PUT("/campaigns/:id/status", handler.UpdateCampaignStatus)

		admin.POST("/withdrawals", handler.CreateWithdrawal)
		admin.GET("/withdrawals", handler.ListWithdrawals)
		admin.PUT("/withdrawals/:id/status", handler.UpdateWithdrawalStatus)
		admin.GET("/withdrawals/export", handler.ExportWithdrawals)
	}

	// WebSocket live ticker
	r.GET("/ws", handler.ServeWS)

	return handler
}

// requireAdmin gates privileged routes with the configured bearer token.
func (h *APIHandler) requireAdmin(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if h.adminToken == "" || token != h.adminToken {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": "ok", "data": data})
}

// --- Market handlers ---

func (h *APIHandler) GetLatestMarket(c *gin.Context) {
	ok(c, services.LatestMarketBatch(h.db))
}

func (h *APIHandler) GetDexMarkets(c *gin.Context) {
	batch := services.LatestDexBatch(h.db)
	ok(c, services.BestDexPairs(batch))
}

func (h *APIHandler) GetCexMarkets(c *gin.Context) {
	batch := services.LatestCexBatch(h.db)
	ok(c, services.BestCexRows(batch))
}

// GetMemeMarkets returns the deduped DEX view filtered to meme tokens.
func (h *APIHandler) GetMemeMarkets(c *gin.Context) {
	batch := services.BestDexPairs(services.LatestDexBatch(h.db))
	memes := make([]models.DexMarketSnapshot, 0, len(batch))
	for _, row := range batch {
		if services.IsMemeToken(row.Symbol, row.Name) {
			memes = append(memes, row)
		}
	}
	ok(c, memes)
}

// --- Whale handlers ---

func (h *APIHandler) GetWhaleActivity(c *gin.Context) {
	ok(c, services.GetWhaleEntriesWithFallback(h.db, time.Now()))
}

func (h *APIHandler) GetChainFlows(c *gin.Context) {
	activity := services.GetWhaleEntriesWithFallback(h.db, time.Now())
	ok(c, services.ChainFlows(activity.Recent))
}

func (h *APIHandler) RecordWhaleEntry(c *gin.Context) {
	var req struct {
		Chain       string    `json:"chain" binding:"required"`
		TokenSymbol string    `json:"token_symbol"`
		AmountUsd   float64   `json:"amount_usd" binding:"required"`
		TxHash      string    `json:"tx_hash" binding:"required"`
		OccurredAt  time.Time `json:"occurred_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := models.WhaleEntry{
		Chain:       req.Chain,
		TokenSymbol: req.TokenSymbol,
		AmountUsd:   req.AmountUsd,
		TxHash:      req.TxHash,
		OccurredAt:  req.OccurredAt,
	}
	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tx_hash"}},
		DoNothing: true,
	}).Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	ok(c, entry)
}

// --- Project handlers ---

func (h *APIHandler) ListProjects(c *gin.Context) {
	var projects []models.Project
	if err := h.db.Where("is_active = ?", true).Order("id asc").Find(&projects).Error; err != nil {
		log.Printf("[api] list projects: %v", err)
		ok(c, []models.Project{})
		return
	}
	ok(c, projects)
}

func (h *APIHandler) CreateProject(c *gin.Context) {
	var req struct {
		Handle       string   `json:"handle" binding:"required"`
		Name         string   `json:"name"`
		TokenSymbol  string   `json:"token_symbol"`
		SalePriceUsd *float64 `json:"sale_price_usd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := models.Project{
		Handle:       strings.TrimPrefix(req.Handle, "@"),
		Name:         req.Name,
		TokenSymbol:  strings.ToUpper(req.TokenSymbol),
		SalePriceUsd: req.SalePriceUsd,
		IsActive:     true,
	}
	if err := h.db.Create(&project).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "project already exists"})
		return
	}
	ok(c, project)
}

// GetProjectOverview assembles the dashboard view for one project. The
// independent reads (momentum, inner circle, tweets) run concurrently;
// each degrades to empty data on its own failure.
func (h *APIHandler) GetProjectOverview(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var project models.Project
	if err := h.db.First(&project, uint(projectID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	var (
		momentum    services.ProjectMomentum
		innerCircle []services.InnerCircleEntry
		tweets      []models.ProjectTweet
		wg          sync.WaitGroup
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		momentum = services.GetProjectMomentum(h.db, project.ID)
	}()
	go func() {
		defer wg.Done()
		innerCircle = services.GetInnerCircle(h.db, 10)
	}()
	go func() {
		defer wg.Done()
		if err := h.db.Where("project_id = ?", project.ID).
			Order("posted_at desc").Limit(20).Find(&tweets).Error; err != nil {
			log.Printf("[api] project tweets: %v", err)
			tweets = []models.ProjectTweet{}
		}
	}()
	wg.Wait()

	// ROI needs the latest index snapshot for the project token
	var roi *float64
	if project.TokenSymbol != "" {
		var snap models.MarketSnapshot
		err := h.db.Where("symbol = ?", project.TokenSymbol).
			Order("created_at desc").First(&snap).Error
		if err == nil {
			roi = services.ROI(project.SalePriceUsd, snap.PriceUsd)
		} else if err != gorm.ErrRecordNotFound {
			log.Printf("[api] project roi snapshot: %v", err)
		}
	}

	ok(c, gin.H{
		"project":      project,
		"momentum":     momentum,
		"inner_circle": innerCircle,
		"tweets":       tweets,
		"roi_pct":      roi,
	})
}

// RefreshProject scrapes the profile and timeline, sentiment-scores the new
// tweets and upserts everything. Provider failures degrade to whatever data
// was fetched before the failure.
func (h *APIHandler) RefreshProject(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var project models.Project
	if err := h.db.First(&project, uint(projectID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	profile, err := h.twitter.GetUserByScreenName(project.Handle)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "profile fetch failed"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	tweets, err := h.twitter.GetUserTweets(project.Handle)
	if err != nil {
		log.Printf("[api] timeline fetch failed for %s: %v", project.Handle, err)
		tweets = nil
	}

	// Score all tweet texts in one deduplicated batch
	texts := make([]string, len(tweets))
	for i, t := range tweets {
		texts[i] = t.Text
	}
	scores := h.analyzer.AnalyzeSentimentsCached(texts)

	var likes, retweets, replies int
	for i, t := range tweets {
		likes += t.LikeCount
		retweets += t.RetweetCount
		replies += t.ReplyCount

		row := models.ProjectTweet{
			ProjectID:      project.ID,
			TweetID:        t.ID,
			Text:           t.Text,
			AuthorHandle:   t.AuthorHandle,
			LikeCount:      t.LikeCount,
			RetweetCount:   t.RetweetCount,
			ReplyCount:     t.ReplyCount,
			ViewCount:      t.ViewCount,
			SentimentScore: &scores[i],
			PostedAt:       t.PostedAt,
		}
		if err := h.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "tweet_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"like_count", "retweet_count", "reply_count", "view_count", "sentiment_score", "updated_at"}),
		}).Create(&row).Error; err != nil {
			log.Printf("[api] tweet upsert failed (tweet_id=%s): %v", t.ID, err)
		}
	}

	// Write today's metric row
	heat := services.EngagementHeat(likes, retweets, replies)
	var avgSentiment float64 = 50
	if len(scores) > 0 {
		var sum float64
		for _, s := range scores {
			sum += s
		}
		avgSentiment = sum / float64(len(scores))
	}
	quality := services.FollowerQualityScore([]twitter.TwitterUserProfile{*profile})
	composite := 0.4*avgSentiment + 0.3*heat + 0.3*quality

	today := time.Now().Truncate(24 * time.Hour)
	metric := models.MetricsDaily{
		ProjectID:      project.ID,
		Date:           today,
		SentimentScore: &avgSentiment,
		EngagementHeat: &heat,
		FollowerCount:  profile.Followers,
		CompositeScore: &composite,
	}
	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"sentiment_score", "engagement_heat", "follower_count", "composite_score"}),
	}).Create(&metric).Error; err != nil {
		log.Printf("[api] metrics upsert failed (project_id=%d): %v", project.ID, err)
	}

	// Mindshare: this project's follower share of today's tracked total
	if profile.Followers != nil {
		var total float64
		err := h.db.Model(&models.MetricsDaily{}).Where("date = ?", today).
			Select("COALESCE(SUM(follower_count), 0)").Scan(&total).Error
		if err != nil {
			log.Printf("[api] mindshare total: %v", err)
		} else if total > 0 {
			bps := services.MindshareBps(float64(*profile.Followers), total)
			if err := h.db.Model(&models.MetricsDaily{}).
				Where("project_id = ? AND date = ?", project.ID, today).
				Update("mindshare_bps", bps).Error; err != nil {
				log.Printf("[api] mindshare update failed (project_id=%d): %v", project.ID, err)
			}
		}
	}

	ok(c, gin.H{
		"profile":       profile,
		"tweets_stored": len(tweets),
		"avg_sentiment": avgSentiment,
	})
}

// --- Tweet handlers ---

// SearchTweets runs a keyword search through the scraping provider and
// returns the normalized tweets.
func (h *APIHandler) SearchTweets(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	tweets, err := h.twitter.SearchTweets(query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}
	if tweets == nil {
		tweets = []twitter.TwitterTweet{}
	}
	ok(c, tweets)
}

// --- Sentiment handlers ---

func (h *APIHandler) AnalyzeSentiment(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ok(c, h.analyzer.Analyze(req.Text))
}

func (h *APIHandler) AnalyzeSentimentBatch(c *gin.Context) {
	var req struct {
		Texts []string `json:"texts" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Texts) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at most 100 texts per batch"})
		return
	}
	ok(c, h.analyzer.AnalyzeSentimentsCached(req.Texts))
}

// --- Campaign handlers ---

func (h *APIHandler) CreateCampaign(c *gin.Context) {
	var req struct {
		Name      string  `json:"name" binding:"required"`
		BudgetUsd float64 `json:"budget_usd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign := models.Campaign{
		Code:      uuid.New().String(),
		Name:      req.Name,
		BudgetUsd: req.BudgetUsd,
		Status:    "draft",
	}
	if err := h.db.Create(&campaign).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	ok(c, campaign)
}

func (h *APIHandler) ListCampaigns(c *gin.Context) {
	var campaigns []models.Campaign
	query := h.db.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&campaigns).Error; err != nil {
		log.Printf("[api] list campaigns: %v", err)
		ok(c, []models.Campaign{})
		return
	}
	ok(c, campaigns)
}

// campaignTransitions defines the allowed status moves.
var campaignTransitions = map[string][]string{
	"draft":  {"active"},
	"active": {"paused", "completed"},
	"paused": {"active", "completed"},
}

func (h *APIHandler) UpdateCampaignStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var campaign models.Campaign
	if err := h.db.First(&campaign, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	if !transitionAllowed(campaignTransitions, campaign.Status, req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status transition"})
		return
	}

	campaign.Status = req.Status
	if err := h.db.Save(&campaign).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	ok(c, campaign)
}

// --- Withdrawal handlers ---

func (h *APIHandler) CreateWithdrawal(c *gin.Context) {
	var req struct {
		ProjectID  uint    `json:"project_id" binding:"required"`
		AmountUsd  float64 `json:"amount_usd" binding:"required,gt=0"`
		WalletAddr string  `json:"wallet_addr" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	if err := h.db.First(&project, req.ProjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	withdrawal := models.Withdrawal{
		Reference:  uuid.New().String(),
		ProjectID:  req.ProjectID,
		AmountUsd:  req.AmountUsd,
		WalletAddr: req.WalletAddr,
		Status:     "pending",
	}
	if err := h.db.Create(&withdrawal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	ok(c, withdrawal)
}

func (h *APIHandler) ListWithdrawals(c *gin.Context) {
	var withdrawals []models.Withdrawal
	query := h.db.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&withdrawals).Error; err != nil {
		log.Printf("[api] list withdrawals: %v", err)
		ok(c, []models.Withdrawal{})
		return
	}
	ok(c, withdrawals)
}

var withdrawalTransitions = map[string][]string{
	"pending":  {"approved", "rejected"},
	"approved": {"paid"},
}

func (h *APIHandler) UpdateWithdrawalStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var withdrawal models.Withdrawal
	if err := h.db.First(&withdrawal, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
		return
	}
	if !transitionAllowed(withdrawalTransitions, withdrawal.Status, req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status transition"})
		return
	}

	withdrawal.Status = req.Status
	if req.Status == "paid" || req.Status == "rejected" {
		now := time.Now()
		withdrawal.ProcessedAt = &now
	}
	if err := h.db.Save(&withdrawal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	ok(c, withdrawal)
}

func transitionAllowed(transitions map[string][]string, from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
