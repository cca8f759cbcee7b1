package present

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"descstats/internal/stats"
)

// NotAvailable is shown in place of an undefined statistic.
const NotAvailable = "N/A"

type Options struct {
	ChartColumns int
	BarWidth     int
	// Precision is the number of significant digits for non-integral values.
	Precision int
}

func DefaultOptions() Options {
	return Options{
		ChartColumns: 4,
		BarWidth:     20,
		Precision:    6,
	}
}

// Presenter renders reports for display.
type Presenter struct {
	opts Options
}

func NewPresenter(opts Options) *Presenter {
	def := DefaultOptions()
	if opts.ChartColumns <= 0 {
		opts.ChartColumns = def.ChartColumns
	}
	if opts.BarWidth <= 0 {
		opts.BarWidth = def.BarWidth
	}
	if opts.Precision <= 0 {
		opts.Precision = def.Precision
	}
	return &Presenter{opts: opts}
}

// FormatValue renders a single entry. Integral values print without a
// fraction; undefined entries print as NotAvailable.
func (p *Presenter) FormatValue(e stats.Entry) string {
	if !e.Defined {
		return NotAvailable
	}
	if e.Value == math.Trunc(e.Value) && math.Abs(e.Value) < 1e15 {
		return strconv.FormatFloat(e.Value, 'f', 0, 64)
	}
	return strconv.FormatFloat(e.Value, 'g', p.opts.Precision, 64)
}

// Table renders the report as an aligned two-column text table.
func (p *Presenter) Table(r stats.Report) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Statistic\tValue")
	fmt.Fprintln(w, "---------\t-----")
	for _, e := range r.Entries() {
		fmt.Fprintf(w, "%s\t%s\n", e.Name, p.FormatValue(e))
	}
	w.Flush()
	return b.String()
}

// Markdown renders the report as a markdown table.
func (p *Presenter) Markdown(r stats.Report) string {
	var b strings.Builder
	b.WriteString("| Statistic | Value |\n")
	b.WriteString("| --- | --- |\n")
	for _, e := range r.Entries() {
		fmt.Fprintf(&b, "| %s | %s |\n", e.Name, p.FormatValue(e))
	}
	return b.String()
}

// HTML renders the markdown table as an HTML fragment.
func (p *Presenter) HTML(r stats.Report) []byte {
	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(p.Markdown(r)), mdParser, renderer)
}
