package ports

import (
	"math/rand/v2"

	"flareshield/domain/flare"
	"flareshield/domain/mcmc"
)

// Proposer draws a candidate from the neighbourhood of current
type Proposer interface {
	Propose(rng *rand.Rand, current flare.Params, stepSize float64) flare.Params
}

// Likelihood scores a parameter set against a fixed data set
type Likelihood interface {
	LogLikelihood(p flare.Params, data flare.DataSet) float64
}

// Sampler performs a single Metropolis transition
type Sampler interface {
	Step(rng *rand.Rand, current flare.Params, data flare.DataSet, stepSize float64) (mcmc.StepResult, error)
}

// Summarizer reduces a sample window to a per-parameter posterior view
type Summarizer interface {
	Summarize(history []flare.Params, key flare.ParamKey) (mcmc.Posterior, error)
}
