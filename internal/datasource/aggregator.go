package datasource

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stratlens/stratlens/pkg/models"
	"github.com/stratlens/stratlens/pkg/utils"
)

// DefaultConcurrentFetches bounds how many keyword fetches run at once.
const DefaultConcurrentFetches = 5

// Aggregator fans a keyword list out across all configured sources and
// merges the results into one batch. Batches are cached per request
// shape so repeated dashboard refreshes stay off the wire.
type Aggregator struct {
	sources     []NewsSource
	cache       *Cache
	concurrency int
}

// NewAggregator creates an aggregator over the given sources.
func NewAggregator(sources []NewsSource, cacheTTL time.Duration, concurrency int) *Aggregator {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrentFetches
	}
	return &Aggregator{
		sources:     sources,
		cache:       NewCache(cacheTTL),
		concurrency: concurrency,
	}
}

// FetchAll fetches every keyword from every source concurrently. A
// source failing on one keyword is logged and skipped; the batch is only
// an error when every fetch failed. Results are deduplicated by URL
// within a keyword, normalized to UTC, filtered to [from, to], and
// sorted newest first. Every call returns its own copy of the batch, so
// callers may mutate the result without corrupting the cache.
func (a *Aggregator) FetchAll(ctx context.Context, keywords []string, from, to time.Time) ([]models.Article, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	cacheKey := batchKey(keywords, from, to)
	if cached, ok := a.cache.Get(cacheKey); ok {
		return cloneArticles(cached.([]models.Article)), nil
	}

	var (
		mu       sync.Mutex
		articles []models.Article
		okCount  int
		attempts int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, keyword := range keywords {
		for _, src := range a.sources {
			keyword, src := keyword, src
			attempts++
			g.Go(func() error {
				batch, err := src.Fetch(gctx, keyword, from, to)
				if err != nil {
					log.Printf("datasource: %s fetch %q failed: %v", src.Name(), keyword, err)
					return nil
				}
				mu.Lock()
				articles = append(articles, batch...)
				okCount++
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if okCount == 0 && attempts > 0 {
		return nil, fmt.Errorf("datasource: all %d fetches failed", attempts)
	}

	articles = normalize(articles, from, to)
	a.cache.Set(cacheKey, articles)
	return cloneArticles(articles), nil
}

// cloneArticles copies a batch before it leaves the aggregator. Callers
// score articles in place, so the cached batch must never share a
// backing array with anything a caller holds.
func cloneArticles(articles []models.Article) []models.Article {
	out := make([]models.Article, len(articles))
	copy(out, articles)
	return out
}

// Flush drops all cached batches.
func (a *Aggregator) Flush() { a.cache.Flush() }

// normalize dedupes by (keyword, URL), converts timestamps to UTC,
// applies the date window, and sorts newest first.
func normalize(articles []models.Article, from, to time.Time) []models.Article {
	seen := make(map[string]bool, len(articles))
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		a.PublishedAt = utils.NormalizeUTC(a.PublishedAt)
		if !utils.WithinDateRange(a.PublishedAt, from, to) {
			continue
		}
		if a.URL != "" {
			key := a.Keyword + "|" + a.URL
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

func batchKey(keywords []string, from, to time.Time) string {
	sorted := make([]string, len(keywords))
	copy(sorted, keywords)
	sort.Strings(sorted)
	return fmt.Sprintf("batch:%s:%d:%d", strings.Join(sorted, ","), from.Unix(), to.Unix())
}
