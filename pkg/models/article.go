// Package models defines the shared data types exchanged between the
// StratLens pipeline stages: fetched articles, sentiment labels, daily
// aggregates, alerts, forecasts, and the dashboard-facing report.
//
// All types are transient and request-scoped; nothing here is persisted.
package models

import "time"

// Sentiment labels attached to scored articles and alerts.
const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentNeutral  = "NEUTRAL"

	// SentimentUnknown is the sentinel used when an article reaches a
	// consumer before scoring, or when a field is missing entirely.
	SentimentUnknown = "N/A"
)

// Article is a single news article fetched for a tracked keyword.
//
// Title and Description are never nil-equivalent: they default to the
// empty string so downstream text matching can operate unconditionally.
// SentimentLabel is empty until the article has been scored.
type Article struct {
	Keyword        string    `json:"keyword"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Source         string    `json:"source"`
	URL            string    `json:"url"`
	PublishedAt    time.Time `json:"publishedAt"`
	SentimentLabel string    `json:"sentiment_label,omitempty"`
	SentimentScore float64   `json:"sentiment_score"`
}

// FullText returns the combined text used for keyword matching and
// summarization: "title. description".
func (a Article) FullText() string {
	return a.Title + ". " + a.Description
}

// Alert is a single strategic alert derived from one article (keyword
// alerts) or from a per-keyword daily aggregate (sentiment spikes).
type Alert struct {
	Timestamp time.Time `json:"timestamp"`
	Keyword   string    `json:"keyword"`
	Type      string    `json:"alert_type"`
	Headline  string    `json:"headline"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	Sentiment string    `json:"sentiment"`
}

// DailySentiment is the mean sentiment score for one keyword on one
// calendar day.
type DailySentiment struct {
	Keyword      string    `json:"keyword"`
	Day          time.Time `json:"day"`
	MeanScore    float64   `json:"mean_score"`
	ArticleCount int       `json:"article_count"`
}

// ForecastPoint is a single projected daily sentiment value.
type ForecastPoint struct {
	Date      time.Time `json:"date"`
	Predicted float64   `json:"predicted"`
}

// AnalysisReport is the full result of one dashboard analysis request,
// shaped for direct display by the rendering collaborator.
type AnalysisReport struct {
	Keywords     []string         `json:"keywords"`
	From         time.Time        `json:"from"`
	To           time.Time        `json:"to"`
	Model        string           `json:"model"`
	Articles     []Article        `json:"articles"`
	Series       []DailySentiment `json:"series"`
	Distribution map[string]int   `json:"distribution"`
	Summary      string           `json:"summary"`
	Alerts       []Alert          `json:"alerts"`
	AlertCount   int              `json:"alert_count"`
	Forecast     []ForecastPoint  `json:"forecast,omitempty"`
	GeneratedAt  time.Time        `json:"generated_at"`
}
