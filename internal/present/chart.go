package present

import (
	"math"
	"strings"

	"descstats/internal/stats"
)

// Bar is one cell of the chart grid. Height is the value's magnitude relative
// to the largest defined magnitude in the report, in [0, 1].
type Bar struct {
	Name   stats.Name `json:"name"`
	Value  *float64   `json:"value"`
	Label  string     `json:"label"`
	Height float64    `json:"height"`
}

// Chart lays out one bar per statistic, in report order, Columns bars per row.
type Chart struct {
	Columns int     `json:"columns"`
	Rows    [][]Bar `json:"rows"`

	barWidth int
}

func (p *Presenter) Chart(r stats.Report) Chart {
	entries := r.Entries()

	peak := 0.0
	for _, e := range entries {
		if e.Defined {
			peak = math.Max(peak, math.Abs(e.Value))
		}
	}

	chart := Chart{Columns: p.opts.ChartColumns, barWidth: p.opts.BarWidth}
	var row []Bar
	for _, e := range entries {
		bar := Bar{Name: e.Name, Label: p.FormatValue(e)}
		if e.Defined {
			v := e.Value
			bar.Value = &v
			if peak > 0 {
				bar.Height = math.Abs(v) / peak
			}
		}
		row = append(row, bar)
		if len(row) == chart.Columns {
			chart.Rows = append(chart.Rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		chart.Rows = append(chart.Rows, row)
	}
	return chart
}

// String draws the grid as text: a name line, a bar line and a label line per row.
func (c Chart) String() string {
	width := c.barWidth
	for _, row := range c.Rows {
		for _, bar := range row {
			width = max(width, len(bar.Name), len(bar.Label))
		}
	}
	width += 2

	var b strings.Builder
	for i, row := range c.Rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		var names, bars, labels strings.Builder
		for _, bar := range row {
			names.WriteString(pad(string(bar.Name), width))
			bars.WriteString(pad(strings.Repeat("#", int(math.Round(bar.Height*float64(c.barWidth)))), width))
			labels.WriteString(pad(bar.Label, width))
		}
		b.WriteString(strings.TrimRight(names.String(), " ") + "\n")
		b.WriteString(strings.TrimRight(bars.String(), " ") + "\n")
		b.WriteString(strings.TrimRight(labels.String(), " ") + "\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
