package engine

import (
	"math/rand/v2"

	"flareshield/domain/flare"

	"gonum.org/v1/gonum/stat/distuv"
)

// ProposalScales are per-parameter sensitivity multipliers applied to the step size
type ProposalScales struct {
	A     float64
	Tau   float64
	Omega float64
}

// DefaultProposalScales returns A: 0.2, tau: 1.0, omega: 2.0
func DefaultProposalScales() ProposalScales {
	return ProposalScales{A: 0.2, Tau: 1.0, Omega: 2.0}
}

// RandomWalkProposer perturbs each parameter independently with a uniform step and clamps
// the result into the parameter's domain. Edge proposals are clamped, never rejected.
type RandomWalkProposer struct {
	Scales ProposalScales
}

// NewRandomWalkProposer creates a proposer with the default scales
func NewRandomWalkProposer() *RandomWalkProposer {
	return &RandomWalkProposer{Scales: DefaultProposalScales()}
}

// Propose draws A, then tau, then omega from [v − w/2, v + w/2] with w = stepSize·scale
func (rw *RandomWalkProposer) Propose(rng *rand.Rand, current flare.Params, stepSize float64) flare.Params {
	a := perturb(rng, current.A, stepSize*rw.Scales.A, flare.DomainA)
	tau := perturb(rng, current.Tau, stepSize*rw.Scales.Tau, flare.DomainTau)
	omega := perturb(rng, current.Omega, stepSize*rw.Scales.Omega, flare.DomainOmega)
	return flare.Params{A: a, Tau: tau, Omega: omega}
}

func perturb(rng *rand.Rand, value, width float64, domain flare.Domain) float64 {
	step := distuv.Uniform{Min: -width / 2, Max: width / 2, Src: rng}
	return domain.Clamp(value + step.Rand())
}
