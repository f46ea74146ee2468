package sentiment

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// SentimentResult is the scoring output for one text.
// Score is 0-100; Label derives from fixed thresholds.
type SentimentResult struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"` // positive, neutral, negative
	Confidence float64 `json:"confidence"`
	Score      float64 `json:"score"`
}

const (
	positiveThreshold = 60
	negativeThreshold = 40
	neutralScore      = 50

	// fixed inter-call delay so batch scoring respects the provider rate limit
	batchDelay = 100 * time.Millisecond

	// texts shorter than this (trimmed) are scored neutral without an API call
	minTextLength = 3
)

// Analyzer scores free text through an external classification endpoint,
// falling back to a local keyword heuristic when no endpoint is configured.
type Analyzer struct {
	apiURL string
	apiKey string
	client *resty.Client
}

func NewAnalyzer(apiURL, apiKey string) *Analyzer {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Analyzer{
		apiURL: apiURL,
		apiKey: apiKey,
		client: client,
	}
}

// Analyze scores one text. Provider failures never propagate: the result
// degrades to neutral with zero confidence so batch scoring cannot abort.
func (a *Analyzer) Analyze(text string) SentimentResult {
	if len(strings.TrimSpace(text)) < minTextLength {
		return resultFor(text, neutralScore)
	}

	var score float64
	if a.apiURL == "" {
		score = heuristicScore(text)
	} else {
		raw, err := a.classify(text)
		if err != nil {
			log.Printf("[sentiment] classify failed, returning neutral: %v", err)
			return SentimentResult{Text: text, Label: "neutral", Confidence: 0, Score: neutralScore}
		}
		score = numericToScore(raw)
	}

	return resultFor(text, score)
}

// AnalyzeSentiments scores texts sequentially with a fixed delay between
// provider calls. Output order matches input order. Short texts are skipped
// (scored 50) without a call and without a delay. The delay only applies
// when an external endpoint is configured; the local heuristic has no rate
// limit to respect.
func (a *Analyzer) AnalyzeSentiments(texts []string) []float64 {
	scores := make([]float64, len(texts))
	for i, text := range texts {
		if len(strings.TrimSpace(text)) < minTextLength {
			scores[i] = neutralScore
			continue
		}
		scores[i] = a.Analyze(text).Score
		if a.apiURL != "" && i != len(texts)-1 {
			time.Sleep(batchDelay)
		}
	}
	return scores
}

// AnalyzeSentimentsCached deduplicates texts before scoring and maps each
// unique score back to every occurrence.
func (a *Analyzer) AnalyzeSentimentsCached(texts []string) []float64 {
	unique := make([]string, 0, len(texts))
	seen := make(map[string]bool, len(texts))
	for _, text := range texts {
		if !seen[text] {
			seen[text] = true
			unique = append(unique, text)
		}
	}

	uniqueScores := a.AnalyzeSentiments(unique)
	byText := make(map[string]float64, len(unique))
	for i, text := range unique {
		byText[text] = uniqueScores[i]
	}

	scores := make([]float64, len(texts))
	for i, text := range texts {
		scores[i] = byText[text]
	}
	return scores
}

// classify calls the external endpoint and extracts its raw numeric score.
func (a *Analyzer) classify(text string) (float64, error) {
	resp, err := a.client.R().
		SetHeader("Authorization", "Bearer "+a.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": text}).
		Post(a.apiURL)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode() != http.StatusOK {
		log.Printf("[sentiment] provider returned %d: %s", resp.StatusCode(), resp.String())
		return 0, fmt.Errorf("provider returned HTTP %d", resp.StatusCode())
	}

	// Providers disagree on the field name for the raw score.
	var payload map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return 0, err
	}
	for _, key := range []string{"score", "sentiment", "compound", "value"} {
		if v, ok := payload[key].(float64); ok {
			return v, nil
		}
	}
	return 0, fmt.Errorf("no numeric score in provider response")
}

// numericToScore rescales a raw provider score onto 0-100.
// The range checks overlap and are evaluated in this fixed order:
// [-1,1] first, then [0,1], then [0,100]; anything else is neutral.
// An input of exactly 0.5 therefore takes the [-1,1] branch (→ 75).
func numericToScore(v float64) float64 {
	switch {
	case v >= -1 && v <= 1:
		return math.Round((v + 1) / 2 * 100)
	case v >= 0 && v <= 1:
		return math.Round(v * 100)
	case v >= 0 && v <= 100:
		return math.Round(v)
	default:
		return neutralScore
	}
}

// labelFor maps a 0-100 score to its label.
func labelFor(score float64) string {
	switch {
	case score >= positiveThreshold:
		return "positive"
	case score <= negativeThreshold:
		return "negative"
	default:
		return "neutral"
	}
}

// confidenceFor is the distance from neutral, normalized to 0-1.
func confidenceFor(score float64) float64 {
	return math.Abs(score-neutralScore) / neutralScore
}

func resultFor(text string, score float64) SentimentResult {
	return SentimentResult{
		Text:       text,
		Label:      labelFor(score),
		Confidence: confidenceFor(score),
		Score:      score,
	}
}

var positiveWords = []string{
	"bullish", "moon", "pump", "gain", "profit", "up", "win", "good",
	"great", "strong", "breakout", "rally", "ath", "growth", "surge",
}

var negativeWords = []string{
	"bearish", "dump", "crash", "loss", "down", "rug", "scam", "bad",
	"weak", "fear", "drop", "sell-off", "liquidated", "rekt", "plunge",
}

// heuristicScore is the local fallback scorer used when no external
// endpoint is configured: counts lexicon hits around the neutral midpoint.
func heuristicScore(text string) float64 {
	lower := strings.ToLower(text)
	score := float64(neutralScore)
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score += 10
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score -= 10
		}
	}
	return math.Max(0, math.Min(100, score))
}
