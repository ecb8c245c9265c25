package mcmc

import "flareshield/domain/flare"

// Summary constants
const (
	MinSummarySamples = 10
	HistogramBins     = 20
	FallbackBinWidth  = 0.001
	CredibleLowRank   = 0.16
	CredibleHighRank  = 0.84
)

// Bin is one histogram bar
type Bin struct {
	Start float64 `json:"start"`
	Count int     `json:"count"`
}

// Interval is a credible interval
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Posterior summarizes the sampled marginal of one parameter
type Posterior struct {
	Key      flare.ParamKey `json:"key"`
	Samples  int            `json:"samples"`
	Bins     []Bin          `json:"bins"`
	Interval Interval       `json:"interval"`
	Mean     float64        `json:"mean"`
	Median   float64        `json:"median"`
	StdDev   float64        `json:"std_dev"`
}

// StepResult is the outcome of one Metropolis step
type StepResult struct {
	Next     flare.Params `json:"next"`
	Proposal flare.Params `json:"proposal"`
	Accepted bool         `json:"accepted"`
	LogL     float64      `json:"log_likelihood"`
}
