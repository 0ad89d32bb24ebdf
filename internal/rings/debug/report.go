package debug

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteConvergenceReport renders an HTML bar chart of live chains, merges
// and closed chains per pass.
func WriteConvergenceReport(w io.Writer, passes []PassRecord, subtitle string) error {
	x := make([]string, 0, len(passes))
	chains := make([]opts.BarData, 0, len(passes))
	merges := make([]opts.BarData, 0, len(passes))
	closed := make([]opts.BarData, 0, len(passes))
	for _, p := range passes {
		x = append(x, fmt.Sprintf("pass %d", p.Pass))
		chains = append(chains, opts.BarData{Value: p.Chains})
		merges = append(merges, opts.BarData{Value: p.Merges})
		closed = append(closed, opts.BarData{Value: p.Closed})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Ring merge convergence", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Chain merging per pass", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("chains", chains, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"})).
		AddSeries("merges", merges).
		AddSeries("closed", closed)

	page := components.NewPage()
	page.AddCharts(bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render convergence report: %w", err)
	}
	return nil
}
