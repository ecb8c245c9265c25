package charts

import (
	"context"
	"os"
	"testing"

	"flareshield/domain/flare"
	"flareshield/domain/mcmc"
	"flareshield/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report() ports.ChainReport {
	truth := flare.DefaultTrueParams()
	data := make(flare.DataSet, 20)
	for i := range data {
		t := float64(i) * 0.5
		y := flare.Intensity(t, truth)
		data[i] = flare.DataPoint{T: t, YData: y, YModel: y, Sigma: flare.NoiseScale(y)}
	}
	return ports.ChainReport{
		SessionID:  "s-1",
		TrueParams: &truth,
		Current:    flare.Params{A: 0.9, Tau: 5.1, Omega: 10},
		Data:       data,
		Posteriors: []mcmc.Posterior{
			{Key: flare.ParamA, Samples: 12, Bins: []mcmc.Bin{{Start: 0.9, Count: 5}, {Start: 1.0, Count: 7}}},
			{Key: flare.ParamTau, Samples: 5, Bins: []mcmc.Bin{}},
		},
	}
}

func TestExportWritesCharts(t *testing.T) {
	dir := t.TempDir()
	e := NewChartExporter(dir, "run")
	require.NoError(t, e.Export(context.Background(), report()))

	for _, chart := range []string{"posterior_A", "curve"} {
		info, err := os.Stat(e.Path(chart))
		require.NoError(t, err, chart)
		assert.Greater(t, info.Size(), int64(0))
	}
	_, err := os.Stat(e.Path("posterior_tau"))
	assert.True(t, os.IsNotExist(err))
}

func TestExportHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewChartExporter(t.TempDir(), "").Export(ctx, report())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPosteriorChartLabelsBins(t *testing.T) {
	p, err := PosteriorChart(report().Posteriors[0])
	require.NoError(t, err)
	assert.Contains(t, p.Title.Text, "A")
}
