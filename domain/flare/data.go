package flare

import (
	"math"

	"flareshield/domain/core"
)

// DataPoint is one observation of the light curve
type DataPoint struct {
	T      float64 `json:"t"`
	YData  float64 `json:"ydata"`
	YModel float64 `json:"ymodel"`
	Sigma  float64 `json:"sigma"`
}

// Observed noise model: sigma = 0.2·|y| + 0.01
const (
	NoiseFraction = 0.2
	NoiseFloor    = 0.01
)

// NoiseScale returns the per-point noise estimate for an intensity value
func NoiseScale(y float64) float64 {
	return NoiseFraction*math.Abs(y) + NoiseFloor
}

// DataSet is an ordered, immutable sequence of observations
type DataSet []DataPoint

// Times returns the observation times
func (d DataSet) Times() []float64 {
	ts := make([]float64, len(d))
	for i, p := range d {
		ts[i] = p.T
	}
	return ts
}

// Validate checks times are non-negative and strictly increasing, values finite and sigmas positive
func (d DataSet) Validate() error {
	for i, p := range d {
		if p.T < 0 || math.IsNaN(p.T) || math.IsInf(p.T, 0) {
			return core.NewDataError(i, "time must be finite and non-negative")
		}
		if i > 0 && p.T <= d[i-1].T {
			return core.NewDataError(i, "times must be strictly increasing")
		}
		if math.IsNaN(p.YData) || math.IsInf(p.YData, 0) {
			return core.NewDataError(i, "ydata must be finite")
		}
		if !(p.Sigma > 0) {
			return core.NewDataError(i, "sigma must be strictly positive")
		}
	}
	return nil
}

// Clone returns an independent copy
func (d DataSet) Clone() DataSet {
	out := make(DataSet, len(d))
	copy(out, d)
	return out
}
