package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/stratlens/stratlens/pkg/models"
)

// reportTemplate is the HTML template for the analysis report.
// It is embedded as a Go constant, so there are no external file dependencies.
const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>StratLens — {{.KeywordList}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1, h2 { font-weight: 600; }
  h1 { font-size: 1.5rem; margin-bottom: 4px; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .summary {
    background: var(--section-bg);
    padding: 14px;
    border-radius: 8px;
    border-left: 4px solid var(--accent);
    margin: 12px 0;
  }
  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th { background: var(--section-bg); text-align: left; padding: 8px; font-weight: 600; }
  td { padding: 8px; border-bottom: 1px solid var(--border); }
  .positive { color: var(--green); font-weight: 600; }
  .negative { color: var(--red); font-weight: 600; }
  .badge {
    display: inline-block;
    background: var(--accent);
    color: white;
    padding: 1px 8px;
    border-radius: 4px;
    font-size: 0.8rem;
  }
</style>
</head>
<body>
<h1>StratLens Analysis</h1>
<p class="muted">{{.KeywordList}} · {{.From}} → {{.To}} · model: {{.Model}} · generated {{.GeneratedAt}}</p>

<h2>Executive Summary</h2>
<div class="summary">{{.Summary}}</div>

<h2>Sentiment Distribution</h2>
<table>
<tr><th>Label</th><th>Articles</th></tr>
{{range .Distribution}}<tr><td>{{.Label}}</td><td>{{.Count}}</td></tr>
{{end}}</table>

<h2>Alerts ({{.AlertCount}})</h2>
<table>
<tr><th>Date</th><th>Type</th><th>Headline</th><th>Keyword</th><th>Sentiment</th></tr>
{{range .Alerts}}<tr>
<td>{{.Date}}</td>
<td><span class="badge">{{.Type}}</span></td>
<td><a href="{{.URL}}">{{.Headline}}</a></td>
<td>{{.Keyword}}</td>
<td class="{{.Class}}">{{.Sentiment}}</td>
</tr>
{{end}}</table>

{{if .Forecast}}<h2>Trend Forecast</h2>
<table>
<tr><th>Date</th><th>Predicted Score</th></tr>
{{range .Forecast}}<tr><td>{{.Date}}</td><td class="{{.Class}}">{{.Predicted}}</td></tr>
{{end}}</table>{{end}}

<p class="muted">StratLens — news sentiment monitoring</p>
</body>
</html>`

// template models, flattened for rendering.
type htmlData struct {
	KeywordList  string
	From, To     string
	Model        string
	GeneratedAt  string
	Summary      string
	Distribution []distRow
	AlertCount   int
	Alerts       []alertRow
	Forecast     []forecastRow
}

type distRow struct {
	Label string
	Count int
}

type alertRow struct {
	Date      string
	Type      string
	Headline  string
	URL       string
	Keyword   string
	Sentiment string
	Class     string
}

type forecastRow struct {
	Date      string
	Predicted string
	Class     string
}

// HTML renders the report as a standalone page.
func HTML(r *models.AnalysisReport) ([]byte, error) {
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("report: parse template: %w", err)
	}

	data := htmlData{
		KeywordList: joinKeywords(r.Keywords),
		From:        r.From.Format("2006-01-02"),
		To:          r.To.Format("2006-01-02"),
		Model:       r.Model,
		GeneratedAt: r.GeneratedAt.Format("2006-01-02 15:04 UTC"),
		Summary:     r.Summary,
		AlertCount:  r.AlertCount,
	}

	for _, label := range sortedLabels(r.Distribution) {
		data.Distribution = append(data.Distribution, distRow{Label: label, Count: r.Distribution[label]})
	}
	for _, a := range r.Alerts {
		data.Alerts = append(data.Alerts, alertRow{
			Date:      a.Timestamp.Format("2006-01-02"),
			Type:      a.Type,
			Headline:  a.Headline,
			URL:       a.URL,
			Keyword:   a.Keyword,
			Sentiment: a.Sentiment,
			Class:     sentimentClass(a.Sentiment),
		})
	}
	for _, p := range r.Forecast {
		class := "positive"
		if p.Predicted < 0 {
			class = "negative"
		}
		data.Forecast = append(data.Forecast, forecastRow{
			Date:      p.Date.Format("2006-01-02"),
			Predicted: fmt.Sprintf("%+.3f", p.Predicted),
			Class:     class,
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("report: render: %w", err)
	}
	return buf.Bytes(), nil
}

func joinKeywords(keywords []string) string {
	out := ""
	for i, k := range keywords {
		if i > 0 {
			out += ", "
		}
		out += k
	}
	return out
}

func sentimentClass(label string) string {
	switch label {
	case models.SentimentPositive:
		return "positive"
	case models.SentimentNegative:
		return "negative"
	default:
		return ""
	}
}
