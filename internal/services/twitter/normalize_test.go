package twitter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUserProfile_AliasPriority(t *testing.T) {
	// screen_name wins over username even when both are present
	raw := map[string]interface{}{
		"screen_name": "primary",
		"username":    "secondary",
	}
	profile := NormalizeUserProfile(raw)
	require.NotNil(t, profile)
	assert.Equal(t, "primary", profile.Handle)

	// username is the fallback when screen_name is absent
	profile = NormalizeUserProfile(map[string]interface{}{"username": "secondary"})
	require.NotNil(t, profile)
	assert.Equal(t, "secondary", profile.Handle)

	// legacy.screen_name is the last resort
	profile = NormalizeUserProfile(map[string]interface{}{
		"legacy": map[string]interface{}{"screen_name": "nested"},
	})
	require.NotNil(t, profile)
	assert.Equal(t, "nested", profile.Handle)
}

func TestNormalizeUserProfile_NilWhenHandleMissing(t *testing.T) {
	assert.Nil(t, NormalizeUserProfile(nil))
	assert.Nil(t, NormalizeUserProfile(map[string]interface{}{}))
	assert.Nil(t, NormalizeUserProfile(map[string]interface{}{"name": "No Handle"}))
	// empty string under every alias still counts as absent
	assert.Nil(t, NormalizeUserProfile(map[string]interface{}{"screen_name": "", "username": ""}))
}

func TestNormalizeUserProfile_OptionalNumericsStayNil(t *testing.T) {
	profile := NormalizeUserProfile(map[string]interface{}{"screen_name": "someone"})
	require.NotNil(t, profile)
	// missing optional counts are nil, never defaulted to 0
	assert.Nil(t, profile.Followers)
	assert.Nil(t, profile.Following)
	assert.Nil(t, profile.TweetCount)
	assert.False(t, profile.Verified)
}

func TestNormalizeUserProfile_FullPayload(t *testing.T) {
	// shape of the legacy-wrapped provider variant
	payload := `{
		"rest_id": "12345",
		"is_blue_verified": true,
		"legacy": {
			"screen_name": "cryptodev",
			"name": "Crypto Dev",
			"followers_count": 150000,
			"friends_count": 300,
			"statuses_count": 9001
		}
	}`
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	profile := NormalizeUserProfile(raw)
	require.NotNil(t, profile)
	assert.Equal(t, "cryptodev", profile.Handle)
	assert.Equal(t, "Crypto Dev", profile.Name)
	require.NotNil(t, profile.Followers)
	assert.Equal(t, int64(150000), *profile.Followers)
	require.NotNil(t, profile.Following)
	assert.Equal(t, int64(300), *profile.Following)
	require.NotNil(t, profile.TweetCount)
	assert.Equal(t, int64(9001), *profile.TweetCount)
	assert.True(t, profile.Verified)
}

func TestNormalizeTweet_RequiredFields(t *testing.T) {
	// both id and text present → non-nil
	tweet := NormalizeTweet(map[string]interface{}{
		"id_str": "111",
		"text":   "gm",
	})
	require.NotNil(t, tweet)
	assert.Equal(t, "111", tweet.ID)
	assert.Equal(t, "gm", tweet.Text)

	// missing text → nil
	assert.Nil(t, NormalizeTweet(map[string]interface{}{"id_str": "111"}))
	// missing id → nil
	assert.Nil(t, NormalizeTweet(map[string]interface{}{"text": "gm"}))
	assert.Nil(t, NormalizeTweet(nil))
}

func TestNormalizeTweet_IDAliasOrder(t *testing.T) {
	tweet := NormalizeTweet(map[string]interface{}{
		"id_str":  "first",
		"rest_id": "second",
		"id":      "third",
		"text":    "hello",
	})
	require.NotNil(t, tweet)
	assert.Equal(t, "first", tweet.ID)

	// numeric id delivered as a JSON number is stringified
	tweet = NormalizeTweet(map[string]interface{}{
		"id":   float64(987654321),
		"text": "hello",
	})
	require.NotNil(t, tweet)
	assert.Equal(t, "987654321", tweet.ID)
}

func TestNormalizeTweet_CountsAndViews(t *testing.T) {
	tweet := NormalizeTweet(map[string]interface{}{
		"id_str":         "1",
		"full_text":      "to the moon",
		"favorite_count": float64(42),
		"retweet_count":  float64(7),
		"views": map[string]interface{}{
			"count": "12000", // views arrive as a string on this variant
		},
	})
	require.NotNil(t, tweet)
	assert.Equal(t, 42, tweet.LikeCount)
	assert.Equal(t, 7, tweet.RetweetCount)
	// counts the schema guarantees default to 0 when absent
	assert.Equal(t, 0, tweet.ReplyCount)
	require.NotNil(t, tweet.ViewCount)
	assert.Equal(t, int64(12000), *tweet.ViewCount)
}

func TestNormalizeTweet_PostedAt(t *testing.T) {
	tweet := NormalizeTweet(map[string]interface{}{
		"id_str":     "1",
		"text":       "dated",
		"created_at": "Mon Jan 02 15:04:05 +0000 2006",
	})
	require.NotNil(t, tweet)
	assert.Equal(t, 2006, tweet.PostedAt.Year())

	// unparseable date leaves the zero value rather than failing the tweet
	tweet = NormalizeTweet(map[string]interface{}{
		"id_str":     "1",
		"text":       "undated",
		"created_at": "not a date",
	})
	require.NotNil(t, tweet)
	assert.True(t, tweet.PostedAt.IsZero())
}
