package nwis

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/geokshitij/flowData/internal/domain"
)

// parseSiteRDB reads the tab-delimited USGS RDB format produced by the site
// service. The layout is:
//
//	# comment lines
//	agency_cd	site_no	station_nm	...	dec_lat_va	dec_long_va	...	dec_coord_datum_cd	...
//	5s	15s	50s	...                             <- column width row, skipped
//	USGS	09380000	COLORADO RIVER AT LEES FERRY, AZ	...
//
// Columns are located by header name, not position, because the service
// varies the column set with the query. Rows with unparsable coordinates
// are skipped.
func parseSiteRDB(r io.Reader) ([]domain.Station, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var header []string
	var cols rdbColumns
	var stations []domain.Station
	skippedFormatRow := false

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if header == nil {
			header = strings.Split(line, "\t")
			var err error
			cols, err = locateColumns(header)
			if err != nil {
				return nil, err
			}
			continue
		}
		if !skippedFormatRow {
			// The row after the header encodes column widths ("5s", "15s", ...).
			skippedFormatRow = true
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) <= cols.max() {
			continue
		}

		lat, errLat := strconv.ParseFloat(strings.TrimSpace(fields[cols.lat]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(fields[cols.lon]), 64)
		if errLat != nil || errLon != nil {
			continue
		}

		stations = append(stations, domain.Station{
			SiteNo: strings.TrimSpace(fields[cols.siteNo]),
			Name:   strings.TrimSpace(fields[cols.name]),
			Datum:  domain.Datum(strings.TrimSpace(fields[cols.datum])),
			Lat:    lat,
			Lon:    lon,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rdb: %w", err)
	}
	if header == nil {
		return nil, errors.New("rdb response has no header row")
	}
	return stations, nil
}

type rdbColumns struct {
	siteNo, name, datum, lat, lon int
}

func (c rdbColumns) max() int {
	m := c.siteNo
	for _, v := range []int{c.name, c.datum, c.lat, c.lon} {
		if v > m {
			m = v
		}
	}
	return m
}

func locateColumns(header []string) (rdbColumns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	find := func(names ...string) (int, error) {
		for _, n := range names {
			if i, ok := idx[n]; ok {
				return i, nil
			}
		}
		return 0, fmt.Errorf("rdb header missing column %s", names[0])
	}

	var c rdbColumns
	var err error
	if c.siteNo, err = find("site_no"); err != nil {
		return c, err
	}
	if c.name, err = find("station_nm"); err != nil {
		return c, err
	}
	// Older responses name the datum column coord_datum_cd.
	if c.datum, err = find("dec_coord_datum_cd", "coord_datum_cd"); err != nil {
		return c, err
	}
	if c.lat, err = find("dec_lat_va"); err != nil {
		return c, err
	}
	if c.lon, err = find("dec_long_va"); err != nil {
		return c, err
	}
	return c, nil
}
