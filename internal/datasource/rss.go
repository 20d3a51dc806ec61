package datasource

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/stratlens/stratlens/pkg/models"
	"github.com/stratlens/stratlens/pkg/utils"
)

// Feed is one configured RSS feed.
type Feed struct {
	Name string
	URL  string
}

// DefaultFeeds lists general business news feeds that cover the kind of
// strategic events the alert triggers look for.
var DefaultFeeds = []Feed{
	{Name: "Reuters Business", URL: "https://feeds.reuters.com/reuters/businessNews"},
	{Name: "BBC Business", URL: "https://feeds.bbci.co.uk/news/business/rss.xml"},
	{Name: "CNBC Top News", URL: "https://www.cnbc.com/id/100003114/device/rss/rss.html"},
}

// RSS fetches articles from configured RSS feeds and filters them by
// keyword mention. It needs no API key, making it the fallback source
// when NewsAPI is unconfigured.
type RSS struct {
	feeds   []Feed
	parser  *gofeed.Parser
	limiter *RateLimiter
}

// NewRSS creates an RSS source. Empty feeds falls back to DefaultFeeds.
func NewRSS(feeds []Feed) *RSS {
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	return &RSS{
		feeds:   feeds,
		parser:  gofeed.NewParser(),
		limiter: NewRateLimiter(2, time.Second),
	}
}

// Name returns the data source name.
func (s *RSS) Name() string { return "RSS" }

// Fetch parses every configured feed and keeps items that mention the
// keyword in their title or description. A feed that fails to parse is
// skipped; the remaining feeds still contribute.
func (s *RSS) Fetch(ctx context.Context, keyword string, from, to time.Time) ([]models.Article, error) {
	needle := strings.ToLower(keyword)

	var articles []models.Article
	for _, feed := range s.feeds {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		parsed, err := s.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			continue
		}

		for _, item := range parsed.Items {
			desc := stripHTML(item.Description)
			if !strings.Contains(strings.ToLower(item.Title+" "+desc), needle) {
				continue
			}
			if item.Title == "" || desc == "" {
				continue
			}

			a := models.Article{
				Keyword:     keyword,
				Title:       item.Title,
				Description: desc,
				Source:      feed.Name,
				URL:         item.Link,
			}
			if item.PublishedParsed != nil {
				a.PublishedAt = *item.PublishedParsed
			}
			if !utils.WithinDateRange(a.PublishedAt, from, to) {
				continue
			}
			articles = append(articles, a)
		}
	}
	return articles, nil
}

// stripHTML flattens feed descriptions that arrive as HTML fragments.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
