// Package analysis wires the full StratLens pipeline: fetch articles,
// score sentiment, derive alerts, summarize, and project the trend.
package analysis

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/stratlens/stratlens/internal/alerts"
	"github.com/stratlens/stratlens/internal/analysis/forecast"
	"github.com/stratlens/stratlens/internal/analysis/sentiment"
	"github.com/stratlens/stratlens/internal/analysis/synthesis"
	"github.com/stratlens/stratlens/internal/config"
	"github.com/stratlens/stratlens/internal/datasource"
	"github.com/stratlens/stratlens/pkg/models"
)

// Request describes one analysis run.
type Request struct {
	Keywords []string
	From     time.Time
	To       time.Time
	Model    string // "fast" or "deep"; empty uses the configured default
}

// Analyzer runs the end-to-end pipeline. It is safe for concurrent use;
// all per-request state lives on the stack.
type Analyzer struct {
	cfg        *config.Config
	aggregator *datasource.Aggregator
	engine     *alerts.Engine
	summarizer *synthesis.Summarizer
	notifiers  []alerts.Notifier
}

// New builds an Analyzer from configuration. Sources are chosen by what
// is configured: NewsAPI when a key is present, RSS when enabled or as
// the fallback when no key exists.
func New(cfg *config.Config) *Analyzer {
	var sources []datasource.NewsSource
	if cfg.News.APIKey != "" {
		sources = append(sources, datasource.NewNewsAPI(cfg.News.APIKey, cfg.News.Language, cfg.News.PageSize))
	}
	if cfg.News.UseRSS || cfg.News.APIKey == "" {
		sources = append(sources, datasource.NewRSS(parseFeeds(cfg.News.RSSFeeds)))
	}

	engine := alerts.New()
	if cfg.Alerts.SpikeThreshold > 0 {
		engine.SpikeThreshold = cfg.Alerts.SpikeThreshold
	}

	a := &Analyzer{
		cfg: cfg,
		aggregator: datasource.NewAggregator(sources,
			time.Duration(cfg.Analysis.CacheTTL)*time.Second,
			cfg.Analysis.ConcurrentFetches),
		engine:     engine,
		summarizer: synthesis.New(cfg.Sentiment.OpenAIKey, cfg.Sentiment.OpenAIModel),
	}

	if cfg.Alerts.SlackWebhookURL != "" {
		a.notifiers = append(a.notifiers, alerts.NewSlackNotifier(cfg.Alerts.SlackWebhookURL))
	}
	if cfg.Alerts.TelegramToken != "" && cfg.Alerts.TelegramChatID != 0 {
		tg, err := alerts.NewTelegramNotifier(cfg.Alerts.TelegramToken, cfg.Alerts.TelegramChatID)
		if err != nil {
			log.Printf("analysis: telegram notifier disabled: %v", err)
		} else {
			a.notifiers = append(a.notifiers, tg)
		}
	}

	return a
}

// Run executes the pipeline for one request and returns the assembled
// report. Articles are fetched, scored, aggregated into a daily series,
// passed through the alert engine, summarized, and projected forward.
func (a *Analyzer) Run(ctx context.Context, req Request) (*models.AnalysisReport, error) {
	keywords := cleanKeywords(req.Keywords)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("analysis: no keywords given")
	}

	from, to := req.From, req.To
	if from.IsZero() && to.IsZero() {
		days := a.cfg.Analysis.DefaultRangeDays
		if days <= 0 {
			days = 7
		}
		to = time.Now().UTC()
		from = to.AddDate(0, 0, -days)
	}

	articles, err := a.aggregator.FetchAll(ctx, keywords, from, to)
	if err != nil {
		return nil, fmt.Errorf("analysis: fetch articles: %w", err)
	}

	scorer := a.scorer(req.Model)
	sentiment.ScoreArticles(ctx, scorer, articles)

	series := alerts.DailySeries(articles)
	batch := a.engine.Generate(articles)
	summary := a.summarizer.Summarize(ctx, articles)
	projection := forecast.Project(series, a.cfg.Forecast.Days)

	report := &models.AnalysisReport{
		Keywords:     keywords,
		From:         from,
		To:           to,
		Model:        scorer.Name(),
		Articles:     articles,
		Series:       series,
		Distribution: distribution(articles),
		Summary:      summary,
		Alerts:       batch,
		AlertCount:   len(batch),
		Forecast:     projection,
		GeneratedAt:  time.Now().UTC(),
	}
	return report, nil
}

// NotifyAlerts pushes a digest of the report's alerts to every
// configured channel. Delivery failures are logged, never returned.
func (a *Analyzer) NotifyAlerts(ctx context.Context, report *models.AnalysisReport) {
	if len(a.notifiers) == 0 {
		return
	}
	limit := a.cfg.Alerts.DigestLimit
	alerts.Notify(ctx, a.notifiers, alerts.Digest(report.Alerts, limit))
}

// Notifiers exposes the configured channels, for the notification test
// endpoint.
func (a *Analyzer) Notifiers() []alerts.Notifier { return a.notifiers }

// Flush drops cached article batches so the next Run refetches.
func (a *Analyzer) Flush() { a.aggregator.Flush() }

// scorer picks the sentiment scorer for a request. Unknown names fall
// back to the fast lexicon.
func (a *Analyzer) scorer(model string) sentiment.Scorer {
	if model == "" {
		model = a.cfg.Sentiment.Model
	}
	if model == "deep" && a.cfg.Sentiment.OpenAIKey != "" {
		return sentiment.NewModel(a.cfg.Sentiment.OpenAIKey, a.cfg.Sentiment.OpenAIModel)
	}
	if model == "deep" {
		log.Println("analysis: deep model requested but no OpenAI key configured, using fast scorer")
	}
	return sentiment.NewLexicon()
}

// distribution counts articles per sentiment label.
func distribution(articles []models.Article) map[string]int {
	dist := make(map[string]int)
	for _, a := range articles {
		label := a.SentimentLabel
		if label == "" {
			label = models.SentimentUnknown
		}
		dist[label]++
	}
	return dist
}

// cleanKeywords trims whitespace and drops empties and duplicates while
// preserving order.
func cleanKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" || seen[strings.ToLower(k)] {
			continue
		}
		seen[strings.ToLower(k)] = true
		out = append(out, k)
	}
	return out
}

// parseFeeds converts "Name|URL" config entries into feeds. Entries
// without a name use the URL as the display name.
func parseFeeds(entries []string) []datasource.Feed {
	feeds := make([]datasource.Feed, 0, len(entries))
	for _, e := range entries {
		name, url, found := strings.Cut(e, "|")
		if !found {
			feeds = append(feeds, datasource.Feed{Name: e, URL: e})
			continue
		}
		feeds = append(feeds, datasource.Feed{Name: strings.TrimSpace(name), URL: strings.TrimSpace(url)})
	}
	return feeds
}
