package posterior

import (
	"math"
	"sort"

	"flareshield/domain/flare"
	"flareshield/domain/mcmc"

	"github.com/montanaflynn/stats"
)

// Summarizer derives per-parameter histograms and 68% credible intervals from a sample window
type Summarizer struct {
	bins int
}

// NewSummarizer creates a summarizer with the standard 20-bin histogram
func NewSummarizer() *Summarizer {
	return &Summarizer{bins: mcmc.HistogramBins}
}

// Summarize is read-only over history. Windows shorter than 10 samples return no bins and a (0, 0) interval.
func (s *Summarizer) Summarize(history []flare.Params, key flare.ParamKey) (mcmc.Posterior, error) {
	values, err := column(history, key)
	if err != nil {
		return mcmc.Posterior{}, err
	}

	result := mcmc.Posterior{
		Key:     key,
		Samples: len(values),
		Bins:    []mcmc.Bin{},
	}
	if len(values) < mcmc.MinSummarySamples {
		return result, nil
	}

	sort.Float64s(values)
	result.Bins = s.histogram(values)
	result.Interval = CredibleInterval(values)

	// Inputs are non-empty here, so the stats calls cannot fail
	result.Mean, _ = stats.Mean(values)
	result.Median, _ = stats.Median(values)
	result.StdDev, _ = stats.StandardDeviationSample(values)

	return result, nil
}

// SummarizeAll summarizes every parameter in display order
func (s *Summarizer) SummarizeAll(history []flare.Params) ([]mcmc.Posterior, error) {
	out := make([]mcmc.Posterior, 0, len(flare.Keys))
	for _, key := range flare.Keys {
		p, err := s.Summarize(history, key)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// histogram expects sorted values
func (s *Summarizer) histogram(sorted []float64) []mcmc.Bin {
	min := sorted[0]
	max := sorted[len(sorted)-1]
	width := (max - min) / float64(s.bins)
	if width == 0 {
		width = mcmc.FallbackBinWidth
	}

	bins := make([]mcmc.Bin, s.bins)
	for i := range bins {
		bins[i].Start = min + float64(i)*width
	}
	for _, v := range sorted {
		idx := int(math.Floor((v - min) / width))
		if idx > s.bins-1 {
			idx = s.bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}
	return bins
}

// CredibleInterval takes ranks floor(0.16·n) and floor(0.84·n) of sorted values
func CredibleInterval(sorted []float64) mcmc.Interval {
	n := len(sorted)
	if n == 0 {
		return mcmc.Interval{}
	}
	low := int(math.Floor(mcmc.CredibleLowRank * float64(n)))
	high := int(math.Floor(mcmc.CredibleHighRank * float64(n)))
	if high > n-1 {
		high = n - 1
	}
	return mcmc.Interval{Low: sorted[low], High: sorted[high]}
}

// DropBurnIn returns the window without its first burnIn samples
func DropBurnIn(history []flare.Params, burnIn int) []flare.Params {
	if burnIn <= 0 {
		return history
	}
	if burnIn >= len(history) {
		return []flare.Params{}
	}
	return history[burnIn:]
}

func column(history []flare.Params, key flare.ParamKey) ([]float64, error) {
	if _, err := flare.DomainOf(key); err != nil {
		return nil, err
	}
	values := make([]float64, len(history))
	for i, p := range history {
		values[i], _ = p.Get(key)
	}
	return values, nil
}
