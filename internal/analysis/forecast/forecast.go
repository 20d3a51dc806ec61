// Package forecast projects a sentiment trend forward from observed
// daily means. The projection is a least-squares linear fit; it is a
// trend indicator for the dashboard, not a market prediction.
package forecast

import (
	"sort"
	"time"

	"github.com/stratlens/stratlens/pkg/models"
)

// DefaultHorizonDays is how far ahead Project looks when no horizon is
// given.
const DefaultHorizonDays = 14

// MinObservations is the smallest daily series a trend can be fit to.
const MinObservations = 2

// Project fits a straight line to the daily mean scores and extends it
// horizon days past the last observed day. Keyword boundaries in the
// series are ignored: the fit runs over the portfolio-wide daily means,
// matching how the dashboard charts the aggregate trend.
//
// Fewer than MinObservations distinct days yields nil. Predicted values
// are clamped to [-1, 1] so the projection stays on the sentiment scale.
func Project(series []models.DailySentiment, horizon int) []models.ForecastPoint {
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}

	days, means := collapseByDay(series)
	if len(days) < MinObservations {
		return nil
	}

	slope, intercept := fitLine(days, means)

	last := days[len(days)-1]
	points := make([]models.ForecastPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		date := last.AddDate(0, 0, i)
		x := float64(date.Sub(days[0]).Hours() / 24)
		points = append(points, models.ForecastPoint{
			Date:      date,
			Predicted: clamp(slope*x + intercept),
		})
	}
	return points
}

// collapseByDay merges per-keyword series points that share a day into
// one article-weighted mean per day, sorted ascending.
func collapseByDay(series []models.DailySentiment) ([]time.Time, []float64) {
	type acc struct {
		sum   float64
		count int
	}
	byDay := make(map[time.Time]*acc)
	for _, p := range series {
		a := byDay[p.Day]
		if a == nil {
			a = &acc{}
			byDay[p.Day] = a
		}
		a.sum += p.MeanScore * float64(p.ArticleCount)
		a.count += p.ArticleCount
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	means := make([]float64, len(days))
	for i, d := range days {
		a := byDay[d]
		if a.count > 0 {
			means[i] = a.sum / float64(a.count)
		}
	}
	return days, means
}

// fitLine computes the least-squares slope and intercept with x measured
// in days since the first observation.
func fitLine(days []time.Time, means []float64) (slope, intercept float64) {
	n := float64(len(days))
	origin := days[0]

	var sumX, sumY, sumXY, sumXX float64
	for i, d := range days {
		x := d.Sub(origin).Hours() / 24
		y := means[i]
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
