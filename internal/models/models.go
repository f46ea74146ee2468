package models

import (
	"time"

	"gorm.io/gorm"
)

// Project represents a tracked social profile (an X/Twitter account tied to a token)
type Project struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Handle       string         `json:"handle" gorm:"uniqueIndex;not null"`
	Name         string         `json:"name"`
	AvatarURL    string         `json:"avatar_url"`
	TokenSymbol  string         `json:"token_symbol" gorm:"index"`
	SalePriceUsd *float64       `json:"sale_price_usd"` // token sale price, basis for ROI
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Associations
	Tweets  []ProjectTweet `json:"tweets,omitempty" gorm:"foreignKey:ProjectID"`
	Metrics []MetricsDaily `json:"metrics,omitempty" gorm:"foreignKey:ProjectID"`
}

// MetricsDaily stores one metric row per project per day.
// Rows are append-only; latest/previous are the two most recent by date.
type MetricsDaily struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ProjectID      uint      `json:"project_id" gorm:"index:idx_metrics_project_date,unique;not null"`
	Date           time.Time `json:"date" gorm:"index:idx_metrics_project_date,unique;not null"`
	SentimentScore *float64  `json:"sentiment_score"`
	EngagementHeat *float64  `json:"engagement_heat"`
	FollowerCount  *int64    `json:"follower_count"`
	MindshareBps   *int64    `json:"mindshare_bps"` // basis-point share of tracked visibility
	CompositeScore *float64  `json:"composite_score"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProjectTweet represents a captured tweet for a project,
// upserted by (project_id, tweet_id) to avoid duplicates.
type ProjectTweet struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ProjectID      uint      `json:"project_id" gorm:"index:idx_tweet_project_tweet,unique;not null"`
	TweetID        string    `json:"tweet_id" gorm:"index:idx_tweet_project_tweet,unique;not null"`
	Text           string    `json:"text" gorm:"type:text"`
	AuthorHandle   string    `json:"author_handle"`
	LikeCount      int       `json:"like_count"`
	RetweetCount   int       `json:"retweet_count"`
	ReplyCount     int       `json:"reply_count"`
	ViewCount      *int64    `json:"view_count"`
	SentimentScore *float64  `json:"sentiment_score"`
	PostedAt       time.Time `json:"posted_at" gorm:"index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Campaign represents an admin-managed promotion campaign
type Campaign struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Code      string         `json:"code" gorm:"uniqueIndex;not null"` // uuid assigned on create
	Name      string         `json:"name" gorm:"not null"`
	BudgetUsd float64        `json:"budget_usd"`
	Status    string         `json:"status" gorm:"default:'draft'"` // draft, active, paused, completed
	StartsAt  *time.Time     `json:"starts_at"`
	EndsAt    *time.Time     `json:"ends_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Withdrawal represents a payout request processed by admins
type Withdrawal struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Reference   string     `json:"reference" gorm:"uniqueIndex;not null"` // uuid assigned on create
	ProjectID   uint       `json:"project_id" gorm:"index;not null"`
	Project     Project    `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	AmountUsd   float64    `json:"amount_usd"`
	WalletAddr  string     `json:"wallet_addr"`
	Status      string     `json:"status" gorm:"index;default:'pending'"` // pending, approved, rejected, paid
	ProcessedAt *time.Time `json:"processed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
