package engine

import (
	"math"

	"flareshield/domain/flare"
)

// GaussianLikelihood scores parameters under independent Gaussian noise whose scale is
// estimated from each observed value, sigma_i = 0.2·|ydata_i| + 0.01, regardless of the
// candidate being scored.
type GaussianLikelihood struct{}

// NewGaussianLikelihood creates the likelihood used by the sampler
func NewGaussianLikelihood() GaussianLikelihood {
	return GaussianLikelihood{}
}

// LogLikelihood returns Σ −(ydata_i − S(t_i; p))² / (2·σ_i²). An empty data set scores 0.
func (GaussianLikelihood) LogLikelihood(p flare.Params, data flare.DataSet) float64 {
	logL := 0.0
	for _, point := range data {
		sigma := flare.NoiseScale(point.YData)
		residual := point.YData - flare.Intensity(point.T, p)
		logL -= residual * residual / (2 * sigma * sigma)
	}
	return logL
}

// MeasuredLikelihood scores parameters under independent Gaussian noise with the sigma each
// observation carries. It serves imported data sets whose noise was measured, not estimated.
type MeasuredLikelihood struct{}

// NewMeasuredLikelihood creates the likelihood for observed data with known sigmas
func NewMeasuredLikelihood() MeasuredLikelihood {
	return MeasuredLikelihood{}
}

// LogLikelihood returns Σ −(ydata_i − S(t_i; p))² / (2·sigma_i²) with the caller's sigma_i
func (MeasuredLikelihood) LogLikelihood(p flare.Params, data flare.DataSet) float64 {
	logL := 0.0
	for _, point := range data {
		residual := point.YData - flare.Intensity(point.T, p)
		logL -= residual * residual / (2 * point.Sigma * point.Sigma)
	}
	return logL
}

// AcceptanceRatio is exp(logProposal − logCurrent) under a flat prior and symmetric proposal.
// Overflow saturates to +Inf. Equal scores, including two -Inf scores, give exactly 1;
// a NaN score gives 0.
func AcceptanceRatio(logProposal, logCurrent float64) float64 {
	if logProposal == logCurrent {
		return 1
	}
	r := math.Exp(logProposal - logCurrent)
	if math.IsNaN(r) {
		return 0
	}
	return r
}
