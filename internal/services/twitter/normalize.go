package twitter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TwitterUserProfile is the fixed internal shape for a scraped profile.
// Built per request from raw provider payloads, never persisted as-is.
type TwitterUserProfile struct {
	Handle      string `json:"handle"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AvatarURL   string `json:"avatar_url"`
	Followers   *int64 `json:"followers"`
	Following   *int64 `json:"following"`
	TweetCount  *int64 `json:"tweet_count"`
	Verified    bool   `json:"verified"`
}

// TwitterTweet is the fixed internal shape for a scraped tweet.
type TwitterTweet struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	AuthorHandle string    `json:"author_handle"`
	LikeCount    int       `json:"like_count"`
	RetweetCount int       `json:"retweet_count"`
	ReplyCount   int       `json:"reply_count"`
	ViewCount    *int64    `json:"view_count"`
	PostedAt     time.Time `json:"posted_at"`
}

// twitterTimeLayout matches "Mon Jan 02 15:04:05 -0700 2006" used by every
// RapidAPI Twitter variant we consume.
const twitterTimeLayout = time.RubyDate

// NormalizeUserProfile reshapes one raw provider payload into a profile.
// The handle is required; lookup order is screen_name → username →
// legacy.screen_name, first non-empty wins. Returns nil when the handle
// cannot be located under any alias.
func NormalizeUserProfile(raw map[string]interface{}) *TwitterUserProfile {
	if raw == nil {
		return nil
	}

	handle := lookupString(raw, "screen_name", "username", "legacy.screen_name")
	if handle == "" {
		return nil
	}

	return &TwitterUserProfile{
		Handle:      handle,
		Name:        lookupString(raw, "name", "legacy.name"),
		Description: lookupString(raw, "description", "legacy.description"),
		AvatarURL:   lookupString(raw, "profile_image_url_https", "avatar", "legacy.profile_image_url_https"),
		Followers:   lookupInt64(raw, "followers_count", "sub_count", "legacy.followers_count"),
		Following:   lookupInt64(raw, "friends_count", "following_count", "legacy.friends_count"),
		TweetCount:  lookupInt64(raw, "statuses_count", "tweet_count", "legacy.statuses_count"),
		Verified:    lookupBool(raw, "is_blue_verified", "blue_verified", "verified", "legacy.verified"),
	}
}

// NormalizeTweet reshapes one raw tweet payload. ID (id_str → rest_id → id)
// and text (full_text → text → legacy.full_text) are both required; returns
// nil when either is missing. Engagement counts default to 0 because the
// provider schema guarantees them on any tweet object it returns.
func NormalizeTweet(raw map[string]interface{}) *TwitterTweet {
	if raw == nil {
		return nil
	}

	id := lookupString(raw, "id_str", "rest_id", "id")
	if id == "" {
		return nil
	}
	text := lookupString(raw, "full_text", "text", "legacy.full_text")
	if text == "" {
		return nil
	}

	t := &TwitterTweet{
		ID:           id,
		Text:         text,
		AuthorHandle: lookupString(raw, "author.screen_name", "user.screen_name", "screen_name"),
		LikeCount:    lookupInt(raw, "favorite_count", "favorites", "legacy.favorite_count"),
		RetweetCount: lookupInt(raw, "retweet_count", "retweets", "legacy.retweet_count"),
		ReplyCount:   lookupInt(raw, "reply_count", "replies", "legacy.reply_count"),
		ViewCount:    lookupInt64(raw, "views.count", "view_count", "views"),
	}

	if createdAt := lookupString(raw, "created_at", "legacy.created_at"); createdAt != "" {
		if parsed, err := time.Parse(twitterTimeLayout, createdAt); err == nil {
			t.PostedAt = parsed
		}
	}

	return t
}

// lookupString returns the first non-empty string under the given keys.
// A key containing dots descends nested objects ("legacy.screen_name").
func lookupString(raw map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		v, ok := lookupPath(raw, key)
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case float64:
			// numeric ids delivered as JSON numbers
			return strconv.FormatInt(int64(s), 10)
		}
	}
	return ""
}

// lookupInt64 returns the first numeric value under the given keys,
// or nil when no alias carries one. Missing optional counts stay nil,
// never defaulted to 0.
func lookupInt64(raw map[string]interface{}, keys ...string) *int64 {
	for _, key := range keys {
		v, ok := lookupPath(raw, key)
		if !ok {
			continue
		}
		if n, ok := toInt64(v); ok {
			return &n
		}
	}
	return nil
}

// lookupInt is lookupInt64 for guaranteed counts; missing aliases yield 0.
func lookupInt(raw map[string]interface{}, keys ...string) int {
	if n := lookupInt64(raw, keys...); n != nil {
		return int(*n)
	}
	return 0
}

func lookupBool(raw map[string]interface{}, keys ...string) bool {
	for _, key := range keys {
		v, ok := lookupPath(raw, key)
		if !ok {
			continue
		}
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// lookupPath walks dotted keys through nested maps.
func lookupPath(raw map[string]interface{}, key string) (interface{}, bool) {
	parts := strings.Split(key, ".")
	var cur interface{} = raw
	for _, part := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		if n == "" {
			return 0, false
		}
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	case fmt.Stringer:
		parsed, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}
