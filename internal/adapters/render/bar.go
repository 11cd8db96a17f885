// Package render draws the participant bar chart as a PNG image.
package render

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/okian/challengeboard/internal/domain/types"
	"github.com/okian/challengeboard/pkg/metrics"
)

const (
	defaultWidth  = 960
	defaultHeight = 540
	maxBarWidth   = 60

	defaultHeading = "Results"
)

// BarRenderer renders chart bars in submission order.
type BarRenderer struct {
	width   int
	height  int
	heading string
	unit    string
}

// New creates a renderer. Without options it draws a 960x540 chart.
func New(opts ...Option) *BarRenderer {
	r := &BarRenderer{
		width:   defaultWidth,
		height:  defaultHeight,
		heading: defaultHeading,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// title is the heading followed by the unit, e.g. "Jump Height (in)".
func (r *BarRenderer) title() string {
	if r.unit == "" {
		return r.heading
	}
	return r.heading + " (" + r.unit + ")"
}

// ContentType is the MIME type Render writes.
func (r *BarRenderer) ContentType() string { return "image/png" }

// Render writes the bars as a PNG to w. An empty bar set returns ErrNoData.
func (r *BarRenderer) Render(w io.Writer, bars []types.Bar) error {
	if len(bars) == 0 {
		metrics.RecordChartRender("empty")
		return ErrNoData
	}

	values := make([]chart.Value, len(bars))
	top := 0.0
	for i, b := range bars {
		values[i] = chart.Value{Label: b.Label, Value: b.Value}
		top = max(top, b.Value)
	}

	graph := chart.BarChart{
		Title:      r.title(),
		Width:      r.width,
		Height:     r.height,
		BarWidth:   barWidth(r.width, len(bars)),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.Style{FontSize: 9},
		YAxis: chart.YAxis{
			Name:  r.unit,
			Range: &chart.ContinuousRange{Min: 0, Max: max(top*1.1, 1)},
		},
		Bars: values,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		metrics.RecordChartRender("error")
		return fmt.Errorf("render bar chart: %w", err)
	}
	metrics.RecordChartRender("ok")
	return nil
}

// barWidth shrinks the bars as participants accumulate so they fit the canvas.
func barWidth(width, n int) int {
	w := width / (2*n + 1)
	return min(max(w, 4), maxBarWidth)
}
