// Package nwis is a client for the USGS National Water Information System
// water services: the site catalog (RDB format) and the daily-values time
// series service (WaterML JSON).
package nwis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/geokshitij/flowData/internal/domain"
	"github.com/geokshitij/flowData/internal/observability"
)

// earliestRecord is the startDT sentinel used when all available data is
// requested. The dv service returns only the most recent value when no
// period is given; systematic USGS streamflow records begin in the 1880s,
// so 1851 safely predates every series.
const earliestRecord = "1851-01-01"

// Client calls the NWIS site and daily-values services. A shared rate
// limiter keeps the combined request rate within what NWIS asks of
// automated clients.
type Client struct {
	httpClient *http.Client
	siteURL    string
	dailyURL   string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an NWIS client.
func NewClient(siteURL, dailyURL string, timeout time.Duration, requestsPerSecond float64, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		siteURL:    siteURL,
		dailyURL:   dailyURL,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		metrics:    metrics,
		logger:     logger,
	}
}

// Sites fetches the gage catalog for a state, filtered to sites that carry
// the parameter and have daily values. Stations are returned with raw
// coordinates and source datum; normalization is the caller's concern.
// A state with no matching sites yields an empty slice and nil error.
func (c *Client) Sites(ctx context.Context, stateCd, parameterCd string) ([]domain.Station, error) {
	params := url.Values{
		"format":        {"rdb"},
		"stateCd":       {stateCd},
		"parameterCd":   {parameterCd},
		"hasDataTypeCd": {"dv"},
	}

	body, err := c.get(ctx, c.siteURL+"?"+params.Encode(), "nwis_site")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	stations, err := parseSiteRDB(body)
	if err != nil {
		return nil, fmt.Errorf("parse site response: %w", err)
	}
	return stations, nil
}

// DailyValues fetches the daily time series for one site. Empty startDate
// and endDate mean all available data. An existing site with no data for
// the parameter/period yields a series with no values and nil error.
func (c *Client) DailyValues(ctx context.Context, site, parameterCd, startDate, endDate string) (domain.Series, error) {
	params := url.Values{
		"format":      {"json"},
		"sites":       {site},
		"parameterCd": {parameterCd},
	}
	if startDate == "" && endDate == "" {
		params.Set("startDT", earliestRecord)
	} else {
		params.Set("startDT", startDate)
		params.Set("endDT", endDate)
	}

	body, err := c.get(ctx, c.dailyURL+"?"+params.Encode(), "nwis_dv")
	if err != nil {
		return domain.Series{}, err
	}
	defer body.Close()

	var wml waterMLResponse
	if err := json.NewDecoder(body).Decode(&wml); err != nil {
		return domain.Series{}, fmt.Errorf("decode daily values: %w", err)
	}

	return flattenWaterML(site, parameterCd, wml), nil
}

func (c *Client) get(ctx context.Context, fullURL, service string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", service, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("%s API error: status %d: %s", service, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}

// WaterML 1.1 response types, reduced to the fields the service reads.

type waterMLResponse struct {
	Value struct {
		TimeSeries []timeSeries `json:"timeSeries"`
	} `json:"value"`
}

type timeSeries struct {
	Variable struct {
		VariableName string `json:"variableName"`
		Unit         struct {
			UnitCode string `json:"unitCode"`
		} `json:"unit"`
	} `json:"variable"`
	Values []struct {
		Value []dataPoint `json:"value"`
	} `json:"values"`
}

type dataPoint struct {
	Value      string   `json:"value"`
	Qualifiers []string `json:"qualifiers"`
	DateTime   string   `json:"dateTime"`
}

// flattenWaterML collapses the nested WaterML structure into one row per
// timestamp, preserving values verbatim as returned by NWIS.
func flattenWaterML(site, parameterCd string, wml waterMLResponse) domain.Series {
	s := domain.Series{SiteNo: site, ParameterCd: parameterCd}
	for _, ts := range wml.Value.TimeSeries {
		if s.VariableName == "" {
			s.VariableName = ts.Variable.VariableName
			s.Unit = ts.Variable.Unit.UnitCode
		}
		for _, block := range ts.Values {
			for _, p := range block.Value {
				s.Values = append(s.Values, domain.DailyValue{
					DateTime:   p.DateTime,
					Value:      p.Value,
					Qualifiers: strings.Join(p.Qualifiers, " "),
				})
			}
		}
	}
	return s
}
