package twitter

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client wraps the RapidAPI Twitter scraping endpoints.
// One failed call is one failure; there is no retry here.
type Client struct {
	apiKey  string
	apiHost string
	client  *resty.Client
}

func NewClient(apiKey, apiHost string) *Client {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetBaseURL("https://" + apiHost)

	return &Client{
		apiKey:  apiKey,
		apiHost: apiHost,
		client:  client,
	}
}

// get performs one provider request. 404 is a designated not-found case and
// returns (nil, nil) without log noise; other failures log the provider body.
func (c *Client) get(path string, params map[string]string) ([]byte, error) {
	resp, err := c.client.R().
		SetHeader("x-rapidapi-key", c.apiKey).
		SetHeader("x-rapidapi-host", c.apiHost).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		log.Printf("[twitter] %s: %v", path, err)
		return nil, fmt.Errorf("request failed for %s", path)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		log.Printf("[twitter] %s returned %d: %s", path, resp.StatusCode(), resp.String())
		return nil, fmt.Errorf("request failed for %s", path)
	}
	return resp.Body(), nil
}

// GetUserByScreenName fetches and normalizes one profile.
// Returns (nil, nil) when the account does not exist.
func (c *Client) GetUserByScreenName(screenName string) (*TwitterUserProfile, error) {
	body, err := c.get("/screenname.php", map[string]string{"screenname": screenName})
	if err != nil || body == nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		log.Printf("[twitter] malformed profile payload for %s: %v", screenName, err)
		return nil, fmt.Errorf("request failed for /screenname.php")
	}
	return NormalizeUserProfile(raw), nil
}

// GetUserTweets fetches the latest timeline tweets for a handle.
// Entries the normalizer rejects are dropped, not surfaced as errors.
func (c *Client) GetUserTweets(screenName string) ([]TwitterTweet, error) {
	body, err := c.get("/timeline.php", map[string]string{"screenname": screenName})
	if err != nil || body == nil {
		return nil, err
	}
	return c.decodeTweets(body, "/timeline.php")
}

// SearchTweets runs a keyword search across recent tweets.
func (c *Client) SearchTweets(query string) ([]TwitterTweet, error) {
	body, err := c.get("/search.php", map[string]string{"query": query})
	if err != nil || body == nil {
		return nil, err
	}
	return c.decodeTweets(body, "/search.php")
}

func (c *Client) decodeTweets(body []byte, path string) ([]TwitterTweet, error) {
	// Provider variants wrap the list differently: {"timeline": [...]},
	// {"tweets": [...]} or a bare array. A wrapper key that is present but
	// empty is a valid empty timeline, not a malformed payload, so pointer
	// fields distinguish "key absent" from "key empty".
	var wrapped struct {
		Timeline *[]map[string]interface{} `json:"timeline"`
		Tweets   *[]map[string]interface{} `json:"tweets"`
	}
	var items []map[string]interface{}
	wrapperFound := false
	if err := json.Unmarshal(body, &wrapped); err == nil {
		switch {
		case wrapped.Timeline != nil:
			items, wrapperFound = *wrapped.Timeline, true
		case wrapped.Tweets != nil:
			items, wrapperFound = *wrapped.Tweets, true
		}
	}
	if !wrapperFound {
		if err := json.Unmarshal(body, &items); err != nil {
			log.Printf("[twitter] malformed tweet payload: %v", err)
			return nil, fmt.Errorf("request failed for %s", path)
		}
	}

	tweets := make([]TwitterTweet, 0, len(items))
	for _, item := range items {
		if t := NormalizeTweet(item); t != nil {
			tweets = append(tweets, *t)
		}
	}
	return tweets, nil
}
