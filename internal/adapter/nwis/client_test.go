package nwis

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geokshitij/flowData/internal/observability"
)

const siteRDBFixture = `#
# US Geological Survey
# retrieved: 2024-03-15 12:00:00 EST
#
# The Site File stores location and general information about groundwater,
# surface water, and meteorological sites.
#
agency_cd	site_no	station_nm	site_tp_cd	dec_lat_va	dec_long_va	coord_acy_cd	dec_coord_datum_cd	alt_va	alt_acy_va	alt_datum_cd	huc_cd
5s	15s	50s	7s	16s	16s	1s	10s	8s	3s	10s	16s
USGS	09380000	COLORADO RIVER AT LEES FERRY, AZ	ST	36.8644	-111.5879	F	NAD83	3106.65	.01	NGVD29	14070006
USGS	09402500	COLORADO RIVER NEAR GRAND CANYON, AZ	ST	36.10057	-112.08938	F	NAD27	2425.00	.01	NGVD29	15010001
USGS	09403000	BAD ROW NO COORDS, AZ	ST			F	NAD83	2000.00	.01	NGVD29	15010001
`

const waterMLFixture = `{
  "value": {
    "timeSeries": [
      {
        "variable": {
          "variableName": "Streamflow, ft&#179;/s",
          "unit": {"unitCode": "ft3/s"}
        },
        "values": [
          {
            "value": [
              {"value": "11400", "qualifiers": ["A"], "dateTime": "2020-01-01T00:00:00.000"},
              {"value": "11500", "qualifiers": ["A", "e"], "dateTime": "2020-01-02T00:00:00.000"}
            ]
          }
        ]
      }
    ]
  }
}`

func newTestClient(t *testing.T, siteURL, dailyURL string) *Client {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(siteURL, dailyURL, 5*time.Second, 100, metrics, logger)
}

func TestSites(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"format":        q.Get("format"),
			"stateCd":       q.Get("stateCd"),
			"parameterCd":   q.Get("parameterCd"),
			"hasDataTypeCd": q.Get("hasDataTypeCd"),
		}
		w.Write([]byte(siteRDBFixture))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, srv.URL)

	stations, err := client.Sites(context.Background(), "AZ", "00060")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"format":        "rdb",
		"stateCd":       "AZ",
		"parameterCd":   "00060",
		"hasDataTypeCd": "dv",
	}, gotQuery)

	// The row with missing coordinates is skipped.
	require.Len(t, stations, 2)
	lees := stations[0]
	assert.Equal(t, "09380000", lees.SiteNo)
	assert.Equal(t, "COLORADO RIVER AT LEES FERRY, AZ", lees.Name)
	assert.Equal(t, "NAD83", string(lees.Datum))
	assert.Equal(t, 36.8644, lees.Lat)
	assert.Equal(t, -111.5879, lees.Lon)
	assert.Equal(t, "NAD27", string(stations[1].Datum))
}

func TestSites_EmptyCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#\n# no sites found matching all criteria\n#\nagency_cd\tsite_no\tstation_nm\tdec_lat_va\tdec_long_va\tdec_coord_datum_cd\n5s\t15s\t50s\t16s\t16s\t10s\n"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, srv.URL)

	stations, err := client.Sites(context.Background(), "AZ", "00060")
	require.NoError(t, err)
	assert.Empty(t, stations)
}

func TestSites_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, srv.URL)

	_, err := client.Sites(context.Background(), "AZ", "00060")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestDailyValues(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"format":      q.Get("format"),
			"sites":       q.Get("sites"),
			"parameterCd": q.Get("parameterCd"),
			"startDT":     q.Get("startDT"),
			"endDT":       q.Get("endDT"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(waterMLFixture))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, srv.URL)

	series, err := client.DailyValues(context.Background(), "09380000", "00060", "2020-01-01", "2020-01-02")
	require.NoError(t, err)

	assert.Equal(t, "2020-01-01", gotQuery["startDT"])
	assert.Equal(t, "2020-01-02", gotQuery["endDT"])
	assert.Equal(t, "json", gotQuery["format"])
	assert.Equal(t, "09380000", gotQuery["sites"])

	assert.Equal(t, "09380000", series.SiteNo)
	assert.Equal(t, "ft3/s", series.Unit)
	require.Len(t, series.Values, 2)
	assert.Equal(t, "11400", series.Values[0].Value)
	assert.Equal(t, "2020-01-01T00:00:00.000", series.Values[0].DateTime)
	assert.Equal(t, "A e", series.Values[1].Qualifiers)
	assert.False(t, series.Empty())
}

func TestDailyValues_AllDataUsesEarliestSentinel(t *testing.T) {
	var gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("startDT")
		gotEnd = r.URL.Query().Get("endDT")
		w.Write([]byte(`{"value":{"timeSeries":[]}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, srv.URL)

	series, err := client.DailyValues(context.Background(), "09380000", "00060", "", "")
	require.NoError(t, err)

	// Without an explicit range the dv service returns only the most
	// recent value, so the client pins startDT before any USGS record.
	assert.Equal(t, "1851-01-01", gotStart)
	assert.Empty(t, gotEnd)
	assert.True(t, series.Empty())
}

func TestDailyValues_NoDataIsEmptyNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value":{"timeSeries":[]}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, srv.URL)

	series, err := client.DailyValues(context.Background(), "09999999", "00060", "2020-01-01", "2020-01-02")
	require.NoError(t, err)
	assert.True(t, series.Empty())
	assert.Empty(t, series.Values)
}

func TestDailyValues_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, srv.URL)

	_, err := client.DailyValues(context.Background(), "09380000", "00060", "2020-01-01", "2020-01-02")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode daily values")
}
