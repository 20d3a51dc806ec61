// Package synthesis turns a scored article batch into a short executive
// summary for the dashboard.
package synthesis

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/stratlens/stratlens/pkg/models"
	"github.com/stratlens/stratlens/pkg/utils"
)

const (
	// minArticles is how many articles a batch needs before a summary is
	// attempted at all.
	minArticles = 3

	// minContextLen guards against batches whose articles carry almost no
	// text. Summarizing a near-empty context produces garbage.
	minContextLen = 150

	// maxContextLen bounds the prompt fed to the summarization model.
	maxContextLen = 1024

	msgNotEnoughData    = "Not enough data available to generate a summary."
	msgNotEnoughContent = "Not enough article content was found to generate a reliable AI summary. Please try a broader topic or a different time range."
)

// DefaultModel is the chat model used for summarization.
const DefaultModel = "gpt-4o-mini"

// Summarizer produces executive summaries. With an API key configured it
// asks a chat model; without one it falls back to a deterministic
// extractive summary so the pipeline still returns something readable.
type Summarizer struct {
	apiKey string
	model  string
	client *openai.Client
}

// New creates a Summarizer. The API client is only built when a key is
// present.
func New(apiKey, model string) *Summarizer {
	if model == "" {
		model = DefaultModel
	}
	s := &Summarizer{apiKey: apiKey, model: model}
	if apiKey != "" {
		c := openai.NewClient(option.WithAPIKey(apiKey))
		s.client = &c
	}
	return s
}

// Summarize condenses the batch into a few sentences. The context is
// built from the three most positive and two most negative articles by
// score; batches that are too small or too thin get a fixed message
// instead of a model call.
func (s *Summarizer) Summarize(ctx context.Context, articles []models.Article) string {
	if len(articles) < minArticles {
		return msgNotEnoughData
	}

	prompt := buildContext(articles)
	if len(prompt) < minContextLen {
		return msgNotEnoughContent
	}
	prompt = utils.Truncate(prompt, maxContextLen)

	if s.client == nil {
		return extractive(articles)
	}

	summary, err := s.complete(ctx, prompt)
	if err != nil {
		log.Printf("synthesis: model summary failed, using extractive fallback: %v", err)
		return extractive(articles)
	}
	return summary
}

func (s *Summarizer) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an intelligence analyst. Write a concise executive summary " +
				"of the news highlights in 2-4 sentences. No preamble, no bullet points."),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(300),
	})
	if err != nil {
		return "", fmt.Errorf("synthesis: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("synthesis: model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// buildContext joins the cleaned text of the three highest-scored and
// two lowest-scored articles into a single summarization prompt.
func buildContext(articles []models.Article) string {
	sorted := make([]models.Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SentimentScore > sorted[j].SentimentScore
	})

	positive := make([]string, 0, 3)
	for _, a := range sorted[:min(3, len(sorted))] {
		positive = append(positive, utils.CleanText(a.FullText()))
	}

	negative := make([]string, 0, 2)
	start := len(sorted) - 2
	if start < 0 {
		start = 0
	}
	for _, a := range sorted[start:] {
		negative = append(negative, utils.CleanText(a.FullText()))
	}

	return fmt.Sprintf("Positive news highlights: %s. Negative news highlights: %s",
		strings.Join(positive, " "), strings.Join(negative, " "))
}

// extractive is the offline fallback: name the strongest positive and
// negative headlines directly.
func extractive(articles []models.Article) string {
	best, worst := articles[0], articles[0]
	for _, a := range articles[1:] {
		if a.SentimentScore > best.SentimentScore {
			best = a
		}
		if a.SentimentScore < worst.SentimentScore {
			worst = a
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Coverage spans %d articles.", len(articles))
	if best.Title != "" {
		fmt.Fprintf(&b, " Most positive development: %s.", utils.CleanText(best.Title))
	}
	if worst.Title != "" && worst.Title != best.Title {
		fmt.Fprintf(&b, " Most negative development: %s.", utils.CleanText(worst.Title))
	}
	return b.String()
}
