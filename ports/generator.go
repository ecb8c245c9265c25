package ports

import (
	"math/rand/v2"

	"flareshield/domain/flare"
)

// DataGenerator produces noisy observation sets from known parameters
type DataGenerator interface {
	Generate(rng *rand.Rand, trueParams flare.Params, pointCount int, tMax float64) (flare.DataSet, error)
	RandomTrueParams(rng *rand.Rand) flare.Params
}
