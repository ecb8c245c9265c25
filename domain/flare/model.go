package flare

import "math"

// Intensity evaluates S(t) = A · e^t · (1 − tanh(2·(t − τ))) · sin(ω·t).
// The exponential term grows without bound for large t; callers get whatever float64 produces.
func Intensity(t float64, p Params) float64 {
	growth := p.A * math.Exp(t)
	quench := 1 - math.Tanh(2*(t-p.Tau))
	oscillation := math.Sin(p.Omega * t)
	return growth * quench * oscillation
}

// Curve evaluates Intensity at every time in ts
func Curve(ts []float64, p Params) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = Intensity(t, p)
	}
	return out
}
