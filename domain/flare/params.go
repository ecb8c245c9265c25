package flare

import (
	"fmt"
	"math"

	"flareshield/domain/core"
)

// ParamKey names one of the three model parameters
type ParamKey string

const (
	ParamA     ParamKey = "A"
	ParamTau   ParamKey = "tau"
	ParamOmega ParamKey = "omega"
)

// Keys lists the parameters in display order
var Keys = []ParamKey{ParamA, ParamTau, ParamOmega}

// ParseParamKey accepts the canonical key names
func ParseParamKey(s string) (ParamKey, error) {
	switch ParamKey(s) {
	case ParamA, ParamTau, ParamOmega:
		return ParamKey(s), nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownParameter, s)
}

// Domain is a closed interval [Min, Max]
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp pulls v into the interval. NaN maps to Min.
func (d Domain) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return d.Min
	}
	return math.Max(d.Min, math.Min(d.Max, v))
}

// Contains reports whether v lies inside the closed interval
func (d Domain) Contains(v float64) bool {
	return v >= d.Min && v <= d.Max
}

// Parameter domains
var (
	DomainA     = Domain{Min: 0, Max: 2}
	DomainTau   = Domain{Min: 1, Max: 10}
	DomainOmega = Domain{Min: 1, Max: 20}
)

// DomainOf returns the domain for a key
func DomainOf(key ParamKey) (Domain, error) {
	switch key {
	case ParamA:
		return DomainA, nil
	case ParamTau:
		return DomainTau, nil
	case ParamOmega:
		return DomainOmega, nil
	}
	return Domain{}, fmt.Errorf("%w: %q", core.ErrUnknownParameter, key)
}

// FlareActiveThreshold is the true amplitude above which a flare alert is raised.
const FlareActiveThreshold = 1.2

// Params holds the amplitude, quench time constant and angular frequency of a flare signal
type Params struct {
	A     float64 `json:"A" yaml:"A"`
	Tau   float64 `json:"tau" yaml:"tau"`
	Omega float64 `json:"omega" yaml:"omega"`
}

// DefaultTrueParams are the generating parameters of the reference scenario
func DefaultTrueParams() Params {
	return Params{A: 1.0, Tau: 5.0, Omega: 10.0}
}

// DefaultInitialParams is the reference chain starting point
func DefaultInitialParams() Params {
	return Params{A: 0.5, Tau: 2, Omega: 5}
}

// Get returns the value for key
func (p Params) Get(key ParamKey) (float64, error) {
	switch key {
	case ParamA:
		return p.A, nil
	case ParamTau:
		return p.Tau, nil
	case ParamOmega:
		return p.Omega, nil
	}
	return 0, fmt.Errorf("%w: %q", core.ErrUnknownParameter, key)
}

// Clamped returns a copy with every field pulled into its domain
func (p Params) Clamped() Params {
	return Params{
		A:     DomainA.Clamp(p.A),
		Tau:   DomainTau.Clamp(p.Tau),
		Omega: DomainOmega.Clamp(p.Omega),
	}
}

// InBounds reports whether all three fields lie in their domains
func (p Params) InBounds() bool {
	return DomainA.Contains(p.A) && DomainTau.Contains(p.Tau) && DomainOmega.Contains(p.Omega)
}

// IsFinite reports whether no field is NaN or infinite
func (p Params) IsFinite() bool {
	for _, v := range []float64{p.A, p.Tau, p.Omega} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IsFlareActive reports whether the amplitude crosses the alert threshold
func (p Params) IsFlareActive() bool {
	return p.A > FlareActiveThreshold
}

func (p Params) String() string {
	return fmt.Sprintf("{A:%.4f tau:%.4f omega:%.4f}", p.A, p.Tau, p.Omega)
}
