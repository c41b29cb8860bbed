// Package nldi is a client for the USGS Hydro Network-Linked Data Index
// basin-delineation endpoint.
package nldi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/geokshitij/flowData/internal/observability"
)

// Fetcher retrieves the catchment polygon draining to a station. A nil
// feature with nil error means the service has no basin for the site
// (an empty result, not a fault). The returned feature is owned by the
// caller and safe to mutate.
type Fetcher interface {
	Basin(ctx context.Context, site string) (*geojson.Feature, error)
}

// Client implements Fetcher against the NLDI REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an NLDI basin client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		metrics:    metrics,
		logger:     logger,
	}
}

// Basin fetches the watershed polygon for an NWIS site. NLDI keys NWIS
// stations under the "USGS-" prefix.
func (c *Client) Basin(ctx context.Context, site string) (*geojson.Feature, error) {
	u := fmt.Sprintf("%s/linked-data/nwissite/USGS-%s/basin", c.baseURL, site)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues("nldi").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("basin request: %w", err)
	}
	defer resp.Body.Close()

	// NLDI answers 404 for sites it cannot delineate; that is the empty
	// result case, not a retrieval failure.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("nldi API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read basin response: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode basin geojson: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, nil
	}
	return fc.Features[0], nil
}
