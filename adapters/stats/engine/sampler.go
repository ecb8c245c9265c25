package engine

import (
	"math/rand/v2"

	"flareshield/domain/flare"
	"flareshield/domain/mcmc"
	"flareshield/ports"
)

// MetropolisSampler executes single random-walk Metropolis transitions with a flat prior
// over each parameter domain, so acceptance reduces to a likelihood ratio.
type MetropolisSampler struct {
	likelihood ports.Likelihood
	proposer   ports.Proposer
}

// NewMetropolisSampler wires a sampler from its collaborators
func NewMetropolisSampler(likelihood ports.Likelihood, proposer ports.Proposer) *MetropolisSampler {
	return &MetropolisSampler{
		likelihood: likelihood,
		proposer:   proposer,
	}
}

// NewDefaultSampler uses the Gaussian likelihood and the default random walk
func NewDefaultSampler() *MetropolisSampler {
	return NewMetropolisSampler(NewGaussianLikelihood(), NewRandomWalkProposer())
}

// NewObservedSampler uses the per-point measured sigma of imported observations
func NewObservedSampler() *MetropolisSampler {
	return NewMetropolisSampler(NewMeasuredLikelihood(), NewRandomWalkProposer())
}

// Step proposes a candidate and accepts it when u < exp(logL(p') − logL(current)) for u in [0,1).
// current is clamped into its domains first, so the result is always in bounds.
func (s *MetropolisSampler) Step(rng *rand.Rand, current flare.Params, data flare.DataSet, stepSize float64) (mcmc.StepResult, error) {
	if err := mcmc.ValidateStepSize(stepSize); err != nil {
		return mcmc.StepResult{}, err
	}
	current = current.Clamped()

	proposal := s.proposer.Propose(rng, current, stepSize)
	logCurrent := s.likelihood.LogLikelihood(current, data)
	logProposal := s.likelihood.LogLikelihood(proposal, data)

	ratio := AcceptanceRatio(logProposal, logCurrent)
	if rng.Float64() < ratio {
		return mcmc.StepResult{Next: proposal, Proposal: proposal, Accepted: true, LogL: logProposal}, nil
	}
	return mcmc.StepResult{Next: current, Proposal: proposal, Accepted: false, LogL: logCurrent}, nil
}

var defaultSampler = NewDefaultSampler()

// Step runs one default Metropolis transition and reports the next state and whether it moved
func Step(rng *rand.Rand, current flare.Params, data flare.DataSet, stepSize float64) (flare.Params, bool, error) {
	result, err := defaultSampler.Step(rng, current, data, stepSize)
	if err != nil {
		return flare.Params{}, false, err
	}
	return result.Next, result.Accepted, nil
}
