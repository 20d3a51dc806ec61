package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/stratlens/stratlens/pkg/models"
)

// Notifier delivers a plain-text alert message to an external channel.
// Delivery is fire-and-forget: implementations log failures and report
// them to the caller, but alert generation never depends on the result.
type Notifier interface {
	Name() string
	Send(ctx context.Context, message string) error
}

// --- Slack incoming webhook ---

// SlackNotifier posts messages to a Slack incoming webhook as
// {"text": message}. Any non-200 response counts as failure.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a Slack webhook notifier. An empty URL yields
// a notifier whose Send is a logged no-op.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *SlackNotifier) Name() string { return "slack" }

// Send posts the message to the configured webhook.
func (n *SlackNotifier) Send(ctx context.Context, message string) error {
	if n.webhookURL == "" {
		log.Println("slack: webhook URL not configured, skipping notification")
		return nil
	}

	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("slack: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack: webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// --- Telegram ---

// TelegramNotifier sends messages to a fixed chat via the Bot API.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier creates a Telegram notifier for the given bot token
// and destination chat.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

func (n *TelegramNotifier) Name() string { return "telegram" }

// Send delivers the message to the configured chat.
func (n *TelegramNotifier) Send(_ context.Context, message string) error {
	msg := tgbotapi.NewMessage(n.chatID, message)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	return nil
}

// --- Fan-out ---

// Notify delivers message to every notifier. Failures are logged and
// swallowed; delivery never affects the caller.
func Notify(ctx context.Context, notifiers []Notifier, message string) {
	for _, n := range notifiers {
		if err := n.Send(ctx, message); err != nil {
			log.Printf("notify: %s delivery failed: %v", n.Name(), err)
			continue
		}
		log.Printf("notify: %s alert sent", n.Name())
	}
}

// Digest renders up to limit alerts as a plain-text message for
// notification channels.
func Digest(alerts []models.Alert, limit int) string {
	if len(alerts) == 0 {
		return "No significant alerts found."
	}
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "StratLens: %d new alert(s)\n", len(alerts))
	for _, a := range alerts {
		fmt.Fprintf(&b, "- [%s] %s | %s (%s)\n",
			a.Type, a.Headline, a.Keyword, a.Timestamp.Format("2006-01-02"))
	}
	return b.String()
}
