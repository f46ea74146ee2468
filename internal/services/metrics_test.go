package services

import (
	"testing"
	"time"

	"coinpulse/internal/models"
	"coinpulse/internal/services/twitter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestROI(t *testing.T) {
	roi := ROI(f64(1), f64(1.5))
	require.NotNil(t, roi)
	assert.Equal(t, float64(50), *roi)

	roi = ROI(f64(2), f64(1))
	require.NotNil(t, roi)
	assert.Equal(t, float64(-50), *roi)

	// nil unless both operands are present and positive
	assert.Nil(t, ROI(nil, f64(1.5)))
	assert.Nil(t, ROI(f64(1), nil))
	assert.Nil(t, ROI(f64(0), f64(1.5)))
	assert.Nil(t, ROI(f64(-1), f64(1.5)))
	assert.Nil(t, ROI(f64(1), f64(0)))
}

func TestFollowerQualityScore_DefaultsWithoutData(t *testing.T) {
	assert.Equal(t, float64(50), FollowerQualityScore(nil))
	assert.Equal(t, float64(50), FollowerQualityScore([]twitter.TwitterUserProfile{}))

	// profiles without follower counts are skipped entirely
	noData := []twitter.TwitterUserProfile{{Handle: "a"}, {Handle: "b"}}
	assert.Equal(t, float64(50), FollowerQualityScore(noData))
}

func TestFollowerQualityScore_Bands(t *testing.T) {
	// 1.5M followers (40) + ratio 15000 (20) + 20k tweets (20) + verified (20) = 100
	whale := twitter.TwitterUserProfile{
		Followers:  i64(1_500_000),
		Following:  i64(100),
		TweetCount: i64(20_000),
		Verified:   true,
	}
	assert.Equal(t, float64(100), FollowerQualityScore([]twitter.TwitterUserProfile{whale}))

	// 5k followers (10) + ratio 0.5 (0), no tweet data, unverified = 10
	small := twitter.TwitterUserProfile{
		Followers: i64(5_000),
		Following: i64(10_000),
	}
	assert.Equal(t, float64(10), FollowerQualityScore([]twitter.TwitterUserProfile{small}))

	// average of the two
	assert.Equal(t, float64(55), FollowerQualityScore([]twitter.TwitterUserProfile{whale, small}))
}

func TestMindshareBps(t *testing.T) {
	assert.Equal(t, int64(500), MindshareBps(50, 1000))
	assert.Equal(t, int64(10000), MindshareBps(1000, 1000))
	assert.Equal(t, int64(0), MindshareBps(50, 0))
	assert.Equal(t, int64(0), MindshareBps(-1, 1000))
	assert.Equal(t, int64(3333), MindshareBps(1, 3))
}

func TestEngagementHeat(t *testing.T) {
	assert.Equal(t, float64(0), EngagementHeat(0, 0, 0))
	assert.Greater(t, EngagementHeat(100, 10, 5), float64(0))
	// monotonic in engagement
	assert.Greater(t, EngagementHeat(10_000, 1_000, 500), EngagementHeat(100, 10, 5))
	// log scale caps at 100
	assert.Equal(t, float64(100), EngagementHeat(100_000_000, 10_000_000, 0))
}

func TestGetProjectMomentum(t *testing.T) {
	db := newTestDB(t)

	project := models.Project{Handle: "degenlabs", IsActive: true}
	require.NoError(t, db.Create(&project).Error)

	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	rows := []models.MetricsDaily{
		{ProjectID: project.ID, Date: today.AddDate(0, 0, -2), FollowerCount: i64(1000), CompositeScore: f64(40)},
		{ProjectID: project.ID, Date: today.AddDate(0, 0, -1), FollowerCount: i64(1100), CompositeScore: f64(55)},
		{ProjectID: project.ID, Date: today, FollowerCount: i64(1210), CompositeScore: f64(60)},
	}
	require.NoError(t, db.Create(&rows).Error)

	momentum := GetProjectMomentum(db, project.ID)
	require.NotNil(t, momentum.Latest)
	require.NotNil(t, momentum.Previous)
	assert.Equal(t, int64(1210), *momentum.Latest.FollowerCount)
	assert.Equal(t, int64(1100), *momentum.Previous.FollowerCount)
	require.NotNil(t, momentum.FollowerDeltaPct)
	assert.InDelta(t, 10.0, *momentum.FollowerDeltaPct, 0.001)
}

func TestGetProjectMomentum_SingleRow(t *testing.T) {
	db := newTestDB(t)

	project := models.Project{Handle: "solo", IsActive: true}
	require.NoError(t, db.Create(&project).Error)
	row := models.MetricsDaily{ProjectID: project.ID, Date: time.Now(), FollowerCount: i64(500)}
	require.NoError(t, db.Create(&row).Error)

	momentum := GetProjectMomentum(db, project.ID)
	require.NotNil(t, momentum.Latest)
	assert.Nil(t, momentum.Previous)
	assert.Nil(t, momentum.FollowerDeltaPct)
}

func TestGetProjectMomentum_NoRows(t *testing.T) {
	db := newTestDB(t)
	momentum := GetProjectMomentum(db, 42)
	assert.Nil(t, momentum.Latest)
	assert.Nil(t, momentum.Previous)
	assert.Nil(t, momentum.FollowerDeltaPct)
}

func TestGetInnerCircle_RanksByCompositeScore(t *testing.T) {
	db := newTestDB(t)
	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	projects := []models.Project{
		{Handle: "alpha", IsActive: true},
		{Handle: "beta", IsActive: true},
		{Handle: "gamma", IsActive: true},
		{Handle: "nometrics", IsActive: true},
		{Handle: "inactive", IsActive: false},
	}
	require.NoError(t, db.Create(&projects).Error)

	rows := []models.MetricsDaily{
		{ProjectID: projects[0].ID, Date: today, CompositeScore: f64(70), MindshareBps: i64(1200)},
		{ProjectID: projects[1].ID, Date: today, CompositeScore: f64(90)},
		{ProjectID: projects[2].ID, Date: today, CompositeScore: f64(80)},
		// stale row should not matter: latest per project is used
		{ProjectID: projects[1].ID, Date: today.AddDate(0, 0, -1), CompositeScore: f64(10)},
	}
	require.NoError(t, db.Create(&rows).Error)

	circle := GetInnerCircle(db, 10)
	require.Len(t, circle, 3)
	assert.Equal(t, "beta", circle[0].Project.Handle)
	assert.Equal(t, "gamma", circle[1].Project.Handle)
	assert.Equal(t, "alpha", circle[2].Project.Handle)
	assert.Equal(t, int64(1200), circle[2].MindshareBps)

	// limit applies after ranking
	top := GetInnerCircle(db, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "beta", top[0].Project.Handle)
}
