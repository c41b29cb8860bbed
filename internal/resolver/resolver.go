// Package resolver turns a state code into a normalized station list and
// the export files the download orchestrator consumes.
package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geokshitij/flowData/internal/domain"
	"github.com/geokshitij/flowData/internal/observability"
	"github.com/geokshitij/flowData/internal/store"
)

// SiteLister fetches candidate gage metadata for a state.
type SiteLister interface {
	Sites(ctx context.Context, stateCd, parameterCd string) ([]domain.Station, error)
}

// Resolver fetches, normalizes, and exports station lists. A nil error with
// an empty slice is the explicit-empty outcome, distinct from an upstream
// failure.
type Resolver struct {
	sites   SiteLister
	store   *store.Store
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a Resolver.
func New(sites SiteLister, st *store.Store, metrics *observability.Metrics, logger *slog.Logger) *Resolver {
	return &Resolver{sites: sites, store: st, metrics: metrics, logger: logger}
}

// Resolve fetches the gage catalog for a state, normalizes coordinates to
// WGS84, and writes the station ID list and CSV export. An empty parameter
// code defaults to discharge. One upstream call, no retries.
func (r *Resolver) Resolve(ctx context.Context, stateCd, parameterCd string) ([]domain.Station, error) {
	if parameterCd == "" {
		parameterCd = domain.DefaultParameterCd
	}

	raw, err := r.sites.Sites(ctx, stateCd, parameterCd)
	if err != nil {
		r.metrics.ResolveRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("retrieve site list for %s: %w", stateCd, err)
	}
	if len(raw) == 0 {
		r.metrics.ResolveRequests.WithLabelValues("empty").Inc()
		r.logger.Info("no sites found", "state", stateCd, "parameter_cd", parameterCd)
		return []domain.Station{}, nil
	}

	stations, dropped := domain.NormalizeStations(raw)
	if dropped > 0 {
		r.metrics.StationsDropped.Add(float64(dropped))
		r.logger.Warn("dropped stations with unrecognized datum",
			"state", stateCd, "dropped", dropped, "total", len(raw))
	}
	if len(stations) == 0 {
		r.metrics.ResolveRequests.WithLabelValues("empty").Inc()
		return []domain.Station{}, nil
	}

	if _, err := r.store.WriteStationIDs(stations); err != nil {
		r.metrics.ResolveRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("write station ID list: %w", err)
	}
	if _, err := r.store.WriteStationCSV(stateCd, stations); err != nil {
		r.metrics.ResolveRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("write station csv: %w", err)
	}

	r.metrics.ResolveRequests.WithLabelValues("success").Inc()
	r.metrics.StationsResolved.Add(float64(len(stations)))
	r.logger.Info("resolved stations",
		"state", stateCd, "count", len(stations), "dropped", dropped)

	return stations, nil
}
