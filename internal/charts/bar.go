package charts

import (
	"bytes"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spacesedan/ecsa/internal/models"
)

// One color per method, in models.Methods order.
var methodColors = []drawing.Color{
	drawing.ColorFromHex("4C72B0"),
	drawing.ColorFromHex("55A868"),
	drawing.ColorFromHex("C44E52"),
}

// ScoreComparison draws the three method scores as bars on a fixed -1..1 axis.
func ScoreComparison(results models.SentimentResults) ([]byte, error) {
	bars := make([]chart.Value, 0, len(models.Methods))
	for i, m := range models.Methods {
		color := methodColors[i%len(methodColors)]
		bars = append(bars, chart.Value{
			Label: string(m),
			Value: results.Get(m).Score,
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
				StrokeWidth: 1,
			},
		})
	}

	graph := chart.BarChart{
		Title:  "Sentiment Score Comparison",
		Width:  CHART_WIDTH,
		Height: CHART_HEIGHT,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		BarWidth:     120,
		BarSpacing:   80,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Name:  "Sentiment Score",
			Range: &chart.ContinuousRange{Min: -1, Max: 1},
			Ticks: []chart.Tick{
				{Value: -1, Label: "-1.0"},
				{Value: -0.5, Label: "-0.5"},
				{Value: 0, Label: "0.0"},
				{Value: 0.5, Label: "0.5"},
				{Value: 1, Label: "1.0"},
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
