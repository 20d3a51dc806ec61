package datasource

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stratlens/stratlens/pkg/models"
)

type stubSource struct {
	name     string
	articles map[string][]models.Article
	err      error
	calls    atomic.Int64
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, keyword string, _, _ time.Time) ([]models.Article, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.articles[keyword], nil
}

func ts(d, hour int) time.Time {
	return time.Date(2025, time.March, d, hour, 0, 0, 0, time.UTC)
}

func TestFetchAllMergesAndSorts(t *testing.T) {
	src := &stubSource{
		name: "stub",
		articles: map[string][]models.Article{
			"Alpha": {
				{Keyword: "Alpha", Title: "older", URL: "https://e.com/1", PublishedAt: ts(1, 9)},
				{Keyword: "Alpha", Title: "newer", URL: "https://e.com/2", PublishedAt: ts(3, 9)},
			},
			"Beta": {
				{Keyword: "Beta", Title: "middle", URL: "https://e.com/3", PublishedAt: ts(2, 9)},
			},
		},
	}

	agg := NewAggregator([]NewsSource{src}, time.Minute, 2)
	got, err := agg.FetchAll(context.Background(), []string{"Alpha", "Beta"}, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(got))
	}
	if got[0].Title != "newer" || got[1].Title != "middle" || got[2].Title != "older" {
		t.Errorf("not sorted newest first: %q, %q, %q", got[0].Title, got[1].Title, got[2].Title)
	}
}

func TestFetchAllDeduplicatesByURL(t *testing.T) {
	dup := models.Article{Keyword: "Alpha", Title: "same story", URL: "https://e.com/dup", PublishedAt: ts(1, 9)}
	a := &stubSource{name: "a", articles: map[string][]models.Article{"Alpha": {dup}}}
	b := &stubSource{name: "b", articles: map[string][]models.Article{"Alpha": {dup}}}

	agg := NewAggregator([]NewsSource{a, b}, time.Minute, 2)
	got, err := agg.FetchAll(context.Background(), []string{"Alpha"}, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected URL dedup to 1 article, got %d", len(got))
	}
}

func TestFetchAllAppliesDateWindow(t *testing.T) {
	src := &stubSource{
		name: "stub",
		articles: map[string][]models.Article{
			"K": {
				{Keyword: "K", Title: "too old", URL: "https://e.com/1", PublishedAt: ts(1, 9)},
				{Keyword: "K", Title: "in range", URL: "https://e.com/2", PublishedAt: ts(5, 9)},
				{Keyword: "K", Title: "too new", URL: "https://e.com/3", PublishedAt: ts(9, 9)},
			},
		},
	}

	agg := NewAggregator([]NewsSource{src}, time.Minute, 1)
	got, err := agg.FetchAll(context.Background(), []string{"K"}, ts(3, 0), ts(7, 0))
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(got) != 1 || got[0].Title != "in range" {
		t.Errorf("date window wrong: %+v", got)
	}
}

func TestFetchAllToleratesPartialFailure(t *testing.T) {
	good := &stubSource{name: "good", articles: map[string][]models.Article{
		"K": {{Keyword: "K", Title: "survivor", URL: "https://e.com/1", PublishedAt: ts(2, 9)}},
	}}
	bad := &stubSource{name: "bad", err: errors.New("upstream down")}

	agg := NewAggregator([]NewsSource{good, bad}, time.Minute, 2)
	got, err := agg.FetchAll(context.Background(), []string{"K"}, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("partial failure should not error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected surviving article, got %d", len(got))
	}
}

func TestFetchAllErrorsWhenEverythingFails(t *testing.T) {
	bad := &stubSource{name: "bad", err: errors.New("upstream down")}

	agg := NewAggregator([]NewsSource{bad}, time.Minute, 1)
	if _, err := agg.FetchAll(context.Background(), []string{"K"}, time.Time{}, time.Time{}); err == nil {
		t.Error("expected error when every fetch fails")
	}
}

func TestFetchAllCachesBatches(t *testing.T) {
	src := &stubSource{name: "stub", articles: map[string][]models.Article{
		"K": {{Keyword: "K", Title: "cached", URL: "https://e.com/1", PublishedAt: ts(2, 9)}},
	}}

	agg := NewAggregator([]NewsSource{src}, time.Minute, 1)
	ctx := context.Background()

	if _, err := agg.FetchAll(ctx, []string{"K"}, time.Time{}, time.Time{}); err != nil {
		t.Fatalf("first FetchAll: %v", err)
	}
	if _, err := agg.FetchAll(ctx, []string{"K"}, time.Time{}, time.Time{}); err != nil {
		t.Fatalf("second FetchAll: %v", err)
	}
	if calls := src.calls.Load(); calls != 1 {
		t.Errorf("expected cache hit on second call, source hit %d times", calls)
	}

	agg.Flush()
	if _, err := agg.FetchAll(ctx, []string{"K"}, time.Time{}, time.Time{}); err != nil {
		t.Fatalf("post-flush FetchAll: %v", err)
	}
	if calls := src.calls.Load(); calls != 2 {
		t.Errorf("expected refetch after Flush, source hit %d times", calls)
	}
}

func TestFetchAllReturnsPrivateCopies(t *testing.T) {
	src := &stubSource{name: "stub", articles: map[string][]models.Article{
		"K": {{Keyword: "K", Title: "shared story", URL: "https://e.com/1", PublishedAt: ts(2, 9)}},
	}}

	agg := NewAggregator([]NewsSource{src}, time.Minute, 1)
	ctx := context.Background()

	first, err := agg.FetchAll(ctx, []string{"K"}, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("first FetchAll: %v", err)
	}
	second, err := agg.FetchAll(ctx, []string{"K"}, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("second FetchAll: %v", err)
	}

	if &first[0] == &second[0] {
		t.Fatal("cache hit returned the same backing array as the previous call")
	}

	// Scoring a batch in place must not leak into later fetches.
	first[0].SentimentLabel = "POSITIVE"
	first[0].SentimentScore = 0.9

	third, err := agg.FetchAll(ctx, []string{"K"}, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("third FetchAll: %v", err)
	}
	if third[0].SentimentLabel != "" || third[0].SentimentScore != 0 {
		t.Errorf("caller mutation leaked into the cached batch: %+v", third[0])
	}
}

func TestFetchAllEmptyKeywords(t *testing.T) {
	agg := NewAggregator(nil, time.Minute, 1)
	got, err := agg.FetchAll(context.Background(), nil, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for empty keywords, got %d articles", len(got))
	}
}
