package synthetic

import (
	"fmt"
	"math"
	"math/rand/v2"

	"flareshield/domain/core"
	"flareshield/domain/flare"

	"gonum.org/v1/gonum/stat/distuv"
)

// Defaults for a generated light curve
const (
	DefaultPointCount = 100
	DefaultTMax       = 10.0
)

// GeneratorConfig bounds the randomized true parameters drawn on reset
type GeneratorConfig struct {
	A     flare.Domain `json:"a"`
	Tau   flare.Domain `json:"tau"`
	Omega flare.Domain `json:"omega"`
}

// DefaultGeneratorConfig draws A in [0.5, 2), tau in [2, 9) and omega in [5, 15)
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		A:     flare.Domain{Min: 0.5, Max: 2},
		Tau:   flare.Domain{Min: 2, Max: 9},
		Omega: flare.Domain{Min: 5, Max: 15},
	}
}

// Generator produces noisy observations of a flare signal
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a generator
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// Generate samples t = i·(tMax/pointCount) for i in [0, pointCount), sets
// sigma = 0.2·|ymodel| + 0.01 and adds noise drawn uniformly from [−sigma, sigma].
// pointCount 0 yields an empty data set.
func (g *Generator) Generate(rng *rand.Rand, trueParams flare.Params, pointCount int, tMax float64) (flare.DataSet, error) {
	if pointCount < 0 {
		return nil, core.NewConfigurationError("point_count", "must not be negative")
	}
	if !(tMax > 0) || math.IsInf(tMax, 1) {
		return nil, core.NewConfigurationError("t_max", "must be a positive finite number")
	}

	data := make(flare.DataSet, pointCount)
	dt := tMax / float64(pointCount)
	for i := range data {
		t := float64(i) * dt
		ymodel := flare.Intensity(t, trueParams)
		sigma := flare.NoiseScale(ymodel)
		if math.IsNaN(ymodel) || math.IsInf(ymodel, 0) {
			return nil, core.NewConfigurationError("t_max", fmt.Sprintf("signal is not finite at t=%g", t))
		}
		noise := distuv.Uniform{Min: -sigma, Max: sigma, Src: rng}.Rand()

		data[i] = flare.DataPoint{
			T:      t,
			YData:  ymodel + noise,
			YModel: ymodel,
			Sigma:  sigma,
		}
	}
	return data, nil
}

// RandomTrueParams draws fresh generating parameters, A then tau then omega
func (g *Generator) RandomTrueParams(rng *rand.Rand) flare.Params {
	return flare.Params{
		A:     draw(rng, g.config.A),
		Tau:   draw(rng, g.config.Tau),
		Omega: draw(rng, g.config.Omega),
	}
}

func draw(rng *rand.Rand, d flare.Domain) float64 {
	return distuv.Uniform{Min: d.Min, Max: d.Max, Src: rng}.Rand()
}
