// Package report renders an AnalysisReport for humans: plain text for
// the terminal and a standalone HTML page for sharing.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stratlens/stratlens/pkg/models"
)

// Text renders the report for terminal output. alertLimit caps how many
// alerts are listed; zero or negative means all.
func Text(r *models.AnalysisReport, alertLimit int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "═══ StratLens Analysis: %s ═══\n", strings.Join(r.Keywords, ", "))
	fmt.Fprintf(&b, "Window: %s → %s   Model: %s   Articles: %d\n\n",
		r.From.Format("2006-01-02"), r.To.Format("2006-01-02"), r.Model, len(r.Articles))

	// Executive summary
	fmt.Fprintf(&b, "Summary:\n  %s\n\n", r.Summary)

	// Sentiment distribution
	if len(r.Distribution) > 0 {
		fmt.Fprint(&b, "Sentiment: ")
		labels := sortedLabels(r.Distribution)
		parts := make([]string, 0, len(labels))
		for _, label := range labels {
			parts = append(parts, fmt.Sprintf("%s %d", label, r.Distribution[label]))
		}
		fmt.Fprintf(&b, "%s\n\n", strings.Join(parts, "  |  "))
	}

	// Alerts
	fmt.Fprintf(&b, "Alerts (%d):\n", r.AlertCount)
	if r.AlertCount == 0 {
		fmt.Fprint(&b, "  none\n")
	}
	shown := r.Alerts
	if alertLimit > 0 && len(shown) > alertLimit {
		shown = shown[:alertLimit]
	}
	for _, a := range shown {
		fmt.Fprintf(&b, "  %s  [%s] %s — %s (%s)\n",
			a.Timestamp.Format("2006-01-02"), a.Type, a.Headline, a.Keyword, a.Sentiment)
	}
	if len(shown) < r.AlertCount {
		fmt.Fprintf(&b, "  ... and %d more\n", r.AlertCount-len(shown))
	}

	// Forecast
	if len(r.Forecast) > 0 {
		fmt.Fprintf(&b, "\nTrend forecast (%d days):\n", len(r.Forecast))
		for _, p := range r.Forecast {
			fmt.Fprintf(&b, "  %s  %+.3f %s\n", p.Date.Format("2006-01-02"), p.Predicted, bar(p.Predicted))
		}
	}

	return b.String()
}

// sortedLabels returns distribution labels in a stable alphabetical
// order so rendered output is deterministic.
func sortedLabels(dist map[string]int) []string {
	labels := make([]string, 0, len(dist))
	for label := range dist {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// bar renders a small ASCII gauge for a [-1, 1] score.
func bar(score float64) string {
	const width = 10
	n := int((score + 1) / 2 * width)
	if n < 0 {
		n = 0
	}
	if n > width {
		n = width
	}
	return "[" + strings.Repeat("#", n) + strings.Repeat("-", width-n) + "]"
}
