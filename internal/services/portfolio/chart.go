package portfolio

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

// PerformanceChart renders the portfolio's valuation series as a PNG line
// chart: gross market value (blue solid) and net value (gray dashed).
func (s *Service) PerformanceChart(ctx context.Context, portfolio string) ([]byte, error) {
	entries, err := s.PortfolioPerformance(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	if len(entries) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(entries))
	}

	xValues := make([]time.Time, len(entries))
	absY := make([]float64, len(entries))
	netY := make([]float64, len(entries))
	for i, e := range entries {
		date, err := time.Parse(models.DateFormat, e.Date)
		if err != nil {
			return nil, fmt.Errorf("bad date in series: %w", err)
		}
		xValues[i] = date
		absY[i] = e.AbsValue
		netY[i] = e.Value
	}

	valueSeries := chart.TimeSeries{
		Name: "Market Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: absY,
	}

	netSeries := chart.TimeSeries{
		Name: "Net Value",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"),
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: netY,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Performance", portfolio),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			netSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
