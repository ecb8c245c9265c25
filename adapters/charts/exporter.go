package charts

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strconv"

	"flareshield/domain/flare"
	"flareshield/domain/mcmc"
	"flareshield/ports"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Image size of every chart
const (
	ChartWidth  = 6 * vg.Inch
	ChartHeight = 4 * vg.Inch
)

// ChartExporter renders a chain report as PNG charts: one posterior histogram per parameter
// and the light curve with the fitted model.
type ChartExporter struct {
	dir    string
	prefix string
}

// NewChartExporter writes charts named <prefix>_<chart>.png into dir
func NewChartExporter(dir, prefix string) *ChartExporter {
	if prefix == "" {
		prefix = "flare"
	}
	return &ChartExporter{dir: dir, prefix: prefix}
}

// Path returns the file a chart is written to
func (e *ChartExporter) Path(chart string) string {
	return filepath.Join(e.dir, fmt.Sprintf("%s_%s.png", e.prefix, chart))
}

// Export implements ports.ChainExporter. Posteriors without bins are skipped.
func (e *ChartExporter) Export(ctx context.Context, report ports.ChainReport) error {
	for _, post := range report.Posteriors {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(post.Bins) == 0 {
			continue
		}
		p, err := PosteriorChart(post)
		if err != nil {
			return err
		}
		if err := p.Save(ChartWidth, ChartHeight, e.Path("posterior_"+string(post.Key))); err != nil {
			return fmt.Errorf("failed to save %s histogram: %w", post.Key, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := CurveChart(report.Data, report.Current, report.TrueParams)
	if err != nil {
		return err
	}
	if err := p.Save(ChartWidth, ChartHeight, e.Path("curve")); err != nil {
		return fmt.Errorf("failed to save light curve: %w", err)
	}

	log.Printf("[ChartExporter] session %s charts written to %s", report.SessionID, e.dir)
	return nil
}

// PosteriorChart draws the histogram of one parameter, bins labelled by their start
func PosteriorChart(post mcmc.Posterior) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Posterior of %s (68%% CI %.3f to %.3f)", post.Key, post.Interval.Low, post.Interval.High)
	p.X.Label.Text = string(post.Key)
	p.Y.Label.Text = "count"

	values := make(plotter.Values, len(post.Bins))
	labels := make([]string, len(post.Bins))
	for i, b := range post.Bins {
		values[i] = float64(b.Count)
		labels[i] = strconv.FormatFloat(b.Start, 'g', 3, 64)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s histogram: %w", post.Key, err)
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(labels...)
	return p, nil
}

// CurveChart draws the observations with the model at current, and at truth when known
func CurveChart(data flare.DataSet, current flare.Params, truth *flare.Params) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Light curve"
	p.X.Label.Text = "t"
	p.Y.Label.Text = "intensity"

	observed := make(plotter.XYs, len(data))
	for i, d := range data {
		observed[i].X = d.T
		observed[i].Y = d.YData
	}
	scatter, err := plotter.NewScatter(observed)
	if err != nil {
		return nil, fmt.Errorf("failed to build observations: %w", err)
	}
	p.Add(scatter)
	p.Legend.Add("observed", scatter)

	lines := []interface{}{"estimate", modelXYs(data, current)}
	if truth != nil {
		lines = append(lines, "truth", modelXYs(data, *truth))
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return nil, fmt.Errorf("failed to add model lines: %w", err)
	}
	return p, nil
}

func modelXYs(data flare.DataSet, params flare.Params) plotter.XYs {
	pts := make(plotter.XYs, len(data))
	for i, d := range data {
		pts[i].X = d.T
		pts[i].Y = flare.Intensity(d.T, params)
	}
	return pts
}
