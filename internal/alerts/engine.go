// Package alerts converts a batch of scored, keyword-tagged news articles
// into an ordered list of strategic alerts. Two detection passes run per
// batch: trigger-word matching against article text, and day-over-day
// sentiment spike detection on per-keyword daily means.
//
// The engine is a pure function of its input: it holds no state between
// calls, performs no I/O, and never fails on data-quality problems;
// missing optional fields degrade to documented defaults instead.
package alerts

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/stratlens/stratlens/pkg/models"
	"github.com/stratlens/stratlens/pkg/utils"
)

// DefaultSpikeThreshold is the absolute day-over-day change in mean
// sentiment above which a spike alert fires.
const DefaultSpikeThreshold = 0.5

// Alert type label for spike alerts; keyword alerts carry their trigger's
// category instead.
const TypeSentimentSpike = "Sentiment Spike"

// Placeholder values substituted for missing optional fields.
const (
	missingURL   = "#"
	spikeSource  = "Trend Analysis"
	unknownField = models.SentimentUnknown
)

// Engine generates strategic alerts from article batches.
// The zero value is not useful; construct with New.
type Engine struct {
	// Triggers is evaluated in slice order. Defaults to StrategicTriggers.
	Triggers []Trigger

	// SpikeThreshold is the absolute mean-sentiment change that fires a
	// spike alert. Defaults to DefaultSpikeThreshold.
	SpikeThreshold float64
}

// New returns an Engine with the default trigger table and spike threshold.
func New() *Engine {
	return &Engine{
		Triggers:       StrategicTriggers,
		SpikeThreshold: DefaultSpikeThreshold,
	}
}

// Generate scans articles and returns alerts sorted by timestamp
// descending. Ties keep generation order: keyword alerts in trigger-table
// order, then spike alerts. An empty batch yields an empty slice.
//
// Timestamps are assumed normalized to a single timezone by the caller;
// day bucketing over mixed zones is undefined.
func (e *Engine) Generate(articles []models.Article) []models.Alert {
	if len(articles) == 0 {
		return []models.Alert{}
	}

	alerts := e.keywordAlerts(articles)
	alerts = append(alerts, e.spikeAlerts(articles)...)
	if alerts == nil {
		// A batch that matches nothing still serializes as [], not null.
		return []models.Alert{}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Timestamp.After(alerts[j].Timestamp)
	})
	return alerts
}

// keywordAlerts emits one alert per (trigger, article) match. An article
// containing N trigger words yields N alerts; two triggers of the same
// category are not deduplicated.
func (e *Engine) keywordAlerts(articles []models.Article) []models.Alert {
	lowered := make([]string, len(articles))
	for i, a := range articles {
		lowered[i] = strings.ToLower(a.FullText())
	}

	var alerts []models.Alert
	for _, trig := range e.Triggers {
		for i, a := range articles {
			if !strings.Contains(lowered[i], trig.Word) {
				continue
			}
			alerts = append(alerts, models.Alert{
				Timestamp: a.PublishedAt,
				Keyword:   orDefault(a.Keyword, unknownField),
				Type:      trig.Category,
				Headline:  a.Title,
				Source:    a.Source,
				URL:       orDefault(a.URL, missingURL),
				Sentiment: orDefault(a.SentimentLabel, unknownField),
			})
		}
	}
	return alerts
}

// spikeAlerts computes per-keyword daily mean sentiment and fires an alert
// for every change between consecutive calendar days whose magnitude
// exceeds the threshold. A keyword with a single day of data, or a gap day
// between two observations, produces no diff for that transition.
func (e *Engine) spikeAlerts(articles []models.Article) []models.Alert {
	threshold := e.SpikeThreshold
	if threshold == 0 {
		threshold = DefaultSpikeThreshold
	}

	series := DailySeries(articles)

	var alerts []models.Alert
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		if cur.Keyword != prev.Keyword {
			continue
		}
		if !utils.NextDay(prev.Day).Equal(cur.Day) {
			continue // gap in coverage, not a real transition
		}
		change := cur.MeanScore - prev.MeanScore
		if change <= threshold && change >= -threshold {
			continue
		}

		direction := "Positive Spike"
		sentiment := models.SentimentPositive
		if change < 0 {
			direction = "Negative Spike"
			sentiment = models.SentimentNegative
		}
		alerts = append(alerts, models.Alert{
			Timestamp: cur.Day,
			Keyword:   cur.Keyword,
			Type:      TypeSentimentSpike,
			Headline:  fmt.Sprintf("%s of %.2f in average sentiment.", direction, change),
			Source:    spikeSource,
			URL:       missingURL,
			Sentiment: sentiment,
		})
	}
	return alerts
}

// DailySeries returns the per-keyword daily mean sentiment for articles,
// keywords in ascending order then days ascending. It is the same
// aggregation the spike pass runs on, exposed for charting and
// forecasting consumers.
func DailySeries(articles []models.Article) []models.DailySentiment {
	type bucket struct {
		sum   float64
		count int
	}
	daily := make(map[string]map[time.Time]*bucket)
	for _, a := range articles {
		kw := orDefault(a.Keyword, unknownField)
		day := utils.DayBucket(a.PublishedAt)
		if daily[kw] == nil {
			daily[kw] = make(map[time.Time]*bucket)
		}
		b := daily[kw][day]
		if b == nil {
			b = &bucket{}
			daily[kw][day] = b
		}
		b.sum += a.SentimentScore
		b.count++
	}

	keywords := make([]string, 0, len(daily))
	for kw := range daily {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	var series []models.DailySentiment
	for _, kw := range keywords {
		days := make([]time.Time, 0, len(daily[kw]))
		for d := range daily[kw] {
			days = append(days, d)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
		for _, d := range days {
			b := daily[kw][d]
			series = append(series, models.DailySentiment{
				Keyword:      kw,
				Day:          d,
				MeanScore:    b.sum / float64(b.count),
				ArticleCount: b.count,
			})
		}
	}
	return series
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
