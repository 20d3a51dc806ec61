package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/stratlens/stratlens/pkg/models"
)

// The deep scorer shares one API client process-wide, initialized on
// first use. A dashboard process scores many batches per session; the
// client is built once and never torn down.
var (
	clientOnce   sync.Once
	sharedClient openai.Client
)

func sharedOpenAI(apiKey string) openai.Client {
	clientOnce.Do(func() {
		log.Println("sentiment: initializing deep analysis client")
		sharedClient = openai.NewClient(option.WithAPIKey(apiKey))
	})
	return sharedClient
}

// Model is the deep scorer. It classifies text with a chat-completion
// model and converts the label's confidence into a signed score in
// [-1, 1]: +confidence for POSITIVE, -confidence for NEGATIVE, 0 for
// NEUTRAL.
type Model struct {
	apiKey string
	model  string
}

// DefaultModel is the chat model used for deep scoring.
const DefaultModel = "gpt-4o-mini"

// NewModel creates the deep scorer. The underlying client is created
// lazily on the first Score call.
func NewModel(apiKey, model string) *Model {
	if model == "" {
		model = DefaultModel
	}
	return &Model{apiKey: apiKey, model: model}
}

func (m *Model) Name() string { return "deep" }

type modelVerdict struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Score classifies a single text. Errors are returned to the caller,
// which degrades the article to NEUTRAL/0.0 (see ScoreArticles).
func (m *Model) Score(ctx context.Context, text string) (Result, error) {
	if m.apiKey == "" {
		return Result{}, fmt.Errorf("sentiment: deep scorer has no API key configured")
	}
	if strings.TrimSpace(text) == "" {
		return Result{Label: models.SentimentNeutral, Score: 0}, nil
	}

	client := sharedOpenAI(m.apiKey)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: m.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a news sentiment classifier. " +
				`Respond with JSON only: {"label": "POSITIVE"|"NEGATIVE"|"NEUTRAL", "confidence": 0.0-1.0}`),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(60),
	})
	if err != nil {
		return Result{}, fmt.Errorf("sentiment: model request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("sentiment: model returned no choices")
	}

	var verdict modelVerdict
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return Result{}, fmt.Errorf("sentiment: parse model verdict: %w", err)
	}

	return verdictToResult(verdict), nil
}

// verdictToResult normalizes a model verdict into a labeled signed score.
func verdictToResult(v modelVerdict) Result {
	label := strings.ToUpper(strings.TrimSpace(v.Label))
	conf := v.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}

	switch label {
	case models.SentimentPositive:
		return Result{Label: label, Score: conf}
	case models.SentimentNegative:
		return Result{Label: label, Score: -conf}
	default:
		return Result{Label: models.SentimentNeutral, Score: 0}
	}
}
