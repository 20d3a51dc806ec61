package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/stratlens/stratlens/pkg/models"
)

// DefaultNewsAPIBaseURL is the production NewsAPI endpoint. Tests point
// the client at an httptest server instead.
const DefaultNewsAPIBaseURL = "https://newsapi.org"

// NewsAPI fetches articles from the NewsAPI /v2/everything endpoint.
type NewsAPI struct {
	apiKey   string
	baseURL  string
	language string
	pageSize int
	limiter  *RateLimiter
}

// NewNewsAPI creates a NewsAPI source. pageSize caps articles per
// keyword; values outside (0, 100] fall back to 100, the API maximum.
func NewNewsAPI(apiKey, language string, pageSize int) *NewsAPI {
	if language == "" {
		language = "en"
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	return &NewsAPI{
		apiKey:   apiKey,
		baseURL:  DefaultNewsAPIBaseURL,
		language: language,
		pageSize: pageSize,
		limiter:  NewRateLimiter(5, time.Second),
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (s *NewsAPI) SetBaseURL(u string) { s.baseURL = u }

// Name returns the data source name.
func (s *NewsAPI) Name() string { return "NewsAPI" }

// newsAPIResponse mirrors the /v2/everything payload.
type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// Fetch queries /v2/everything for the keyword. Rows missing a title or
// description are dropped; they carry no text worth scoring.
func (s *NewsAPI) Fetch(ctx context.Context, keyword string, from, to time.Time) ([]models.Article, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", keyword)
	q.Set("language", s.language)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(s.pageSize))
	if !from.IsZero() {
		q.Set("from", from.UTC().Format("2006-01-02"))
	}
	if !to.IsZero() {
		q.Set("to", to.UTC().Format("2006-01-02"))
	}

	endpoint := s.baseURL + "/v2/everything?" + q.Encode()
	body, _, err := doGet(ctx, endpoint, map[string]string{"X-Api-Key": s.apiKey})
	if err != nil {
		return nil, fmt.Errorf("newsapi: fetch %q: %w", keyword, err)
	}
	defer body.Close()

	var payload newsAPIResponse
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("newsapi: decode response: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi: %s: %s", payload.Code, payload.Message)
	}

	articles := make([]models.Article, 0, len(payload.Articles))
	for _, raw := range payload.Articles {
		if raw.Title == "" || raw.Description == "" {
			continue
		}
		articles = append(articles, models.Article{
			Keyword:     keyword,
			Title:       raw.Title,
			Description: raw.Description,
			Source:      raw.Source.Name,
			URL:         raw.URL,
			PublishedAt: raw.PublishedAt,
		})
	}
	return articles, nil
}
