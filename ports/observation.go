package ports

import (
	"context"

	"flareshield/domain/flare"
	"flareshield/domain/mcmc"
)

// ObservationSource loads an observed light curve
type ObservationSource interface {
	ReadObservations(ctx context.Context) (flare.DataSet, error)
}

// ChainReport is everything an exporter needs to write one finished run
type ChainReport struct {
	SessionID      string
	Config         mcmc.Config
	Iterations     int
	Accepted       int
	AcceptanceRate float64
	TrueParams     *flare.Params
	Current        flare.Params
	Trace          []flare.Params
	Posteriors     []mcmc.Posterior
	Data           flare.DataSet
}

// ChainExporter writes a chain report to some destination
type ChainExporter interface {
	Export(ctx context.Context, report ChainReport) error
}
