package services

import (
	"log"
	"math"
	"sort"

	"coinpulse/internal/models"
	"coinpulse/internal/services/twitter"

	"gorm.io/gorm"
)

// ROI returns (latest/sale - 1) * 100, or nil unless both operands are
// present and positive.
func ROI(salePriceUsd, latestPriceUsd *float64) *float64 {
	if salePriceUsd == nil || latestPriceUsd == nil {
		return nil
	}
	if *salePriceUsd <= 0 || *latestPriceUsd <= 0 {
		return nil
	}
	roi := (*latestPriceUsd / *salePriceUsd - 1) * 100
	return &roi
}

// FollowerQualityScore buckets raw profile counts into additive point bands
// on a 0-100 scale and averages across the sample. Profiles without follower
// data are skipped; when none carries follower data the score defaults to 50.
func FollowerQualityScore(profiles []twitter.TwitterUserProfile) float64 {
	var total float64
	var scored int

	for _, p := range profiles {
		if p.Followers == nil {
			continue
		}
		points := 0.0

		followers := *p.Followers
		switch {
		case followers >= 1_000_000:
			points += 40
		case followers >= 100_000:
			points += 30
		case followers >= 10_000:
			points += 20
		case followers >= 1_000:
			points += 10
		}

		// follower/following ratio rewards organic reach
		if p.Following != nil && *p.Following > 0 {
			ratio := float64(followers) / float64(*p.Following)
			switch {
			case ratio >= 10:
				points += 20
			case ratio >= 2:
				points += 10
			}
		}

		if p.TweetCount != nil {
			switch {
			case *p.TweetCount >= 10_000:
				points += 20
			case *p.TweetCount >= 1_000:
				points += 10
			}
		}

		if p.Verified {
			points += 20
		}

		total += math.Min(100, points)
		scored++
	}

	if scored == 0 {
		return 50
	}
	return total / float64(scored)
}

// MindshareBps converts a project's share of total tracked engagement into
// basis points. Zero when the total is not positive.
func MindshareBps(part, total float64) int64 {
	if total <= 0 || part < 0 {
		return 0
	}
	return int64(math.Round(part / total * 10000))
}

// EngagementHeat is a log-scaled 0-100 score over summed tweet engagement,
// so a viral outlier does not pin every other project to zero.
func EngagementHeat(likes, retweets, replies int) float64 {
	raw := float64(likes) + 2*float64(retweets) + 1.5*float64(replies)
	if raw <= 0 {
		return 0
	}
	return math.Min(100, math.Log10(raw+1)*20)
}

// ProjectMomentum pairs the two most recent metric rows for a project.
type ProjectMomentum struct {
	Latest           *models.MetricsDaily `json:"latest"`
	Previous         *models.MetricsDaily `json:"previous"`
	FollowerDeltaPct *float64             `json:"follower_delta_pct"`
}

// GetProjectMomentum reads the two most recent daily rows and derives the
// follower delta when both carry counts. Missing rows degrade to nils.
func GetProjectMomentum(db *gorm.DB, projectID uint) ProjectMomentum {
	var rows []models.MetricsDaily
	err := db.Where("project_id = ?", projectID).
		Order("date desc").Limit(2).Find(&rows).Error
	if err != nil {
		log.Printf("[metrics] project momentum: %v", err)
		return ProjectMomentum{}
	}

	momentum := ProjectMomentum{}
	if len(rows) > 0 {
		momentum.Latest = &rows[0]
	}
	if len(rows) > 1 {
		momentum.Previous = &rows[1]
	}
	if momentum.Latest != nil && momentum.Previous != nil &&
		momentum.Latest.FollowerCount != nil && momentum.Previous.FollowerCount != nil &&
		*momentum.Previous.FollowerCount > 0 {
		delta := (float64(*momentum.Latest.FollowerCount)/float64(*momentum.Previous.FollowerCount) - 1) * 100
		momentum.FollowerDeltaPct = &delta
	}
	return momentum
}

// InnerCircleEntry is one ranked influencer row for a project dashboard.
type InnerCircleEntry struct {
	Project        models.Project `json:"project"`
	CompositeScore float64        `json:"composite_score"`
	MindshareBps   int64          `json:"mindshare_bps"`
}

// GetInnerCircle ranks active projects by their latest composite score.
// Projects without any metric row are omitted. Ties break by project ID so
// the ranking is reproducible over identical data.
func GetInnerCircle(db *gorm.DB, limit int) []InnerCircleEntry {
	if limit <= 0 {
		limit = 10
	}

	var projects []models.Project
	if err := db.Where("is_active = ?", true).Order("id asc").Find(&projects).Error; err != nil {
		log.Printf("[metrics] inner circle: %v", err)
		return []InnerCircleEntry{}
	}

	entries := make([]InnerCircleEntry, 0, len(projects))
	for _, project := range projects {
		var latest models.MetricsDaily
		err := db.Where("project_id = ?", project.ID).
			Order("date desc").First(&latest).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			log.Printf("[metrics] inner circle latest row: %v", err)
			continue
		}
		entry := InnerCircleEntry{Project: project}
		if latest.CompositeScore != nil {
			entry.CompositeScore = *latest.CompositeScore
		}
		if latest.MindshareBps != nil {
			entry.MindshareBps = *latest.MindshareBps
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CompositeScore > entries[j].CompositeScore
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
