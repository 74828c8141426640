package charts

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spacesedan/ecsa/internal/models"
)

// MarketPerformance draws the closing prices across the lookup window.
func MarketPerformance(market models.MarketPerformance, ticker string) ([]byte, error) {
	if !market.HasHistory() {
		return nil, errors.New("at least two closes are required")
	}

	xs := make([]time.Time, len(market.History))
	ys := make([]float64, len(market.History))
	for i, p := range market.History {
		xs[i] = p.Date
		ys[i] = p.Close
	}
	if xs[0].Equal(xs[len(xs)-1]) {
		return nil, errors.New("price history spans a single day")
	}

	lo, hi := paddedRange(ys)
	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Stock Performance Post-Earnings Call", ticker),
		Width:  CHART_WIDTH,
		Height: CHART_HEIGHT,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  "Close Price (USD)",
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Close",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("4C72B0"),
					StrokeWidth: 2,
					DotColor:    drawing.ColorFromHex("4C72B0"),
					DotWidth:    4,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// paddedRange returns a y-axis range around values that is never empty.
func paddedRange(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.01, 1)
	}
	return lo - pad, hi + pad
}
