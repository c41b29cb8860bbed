// Package store persists resolver exports and download artifacts to local
// storage. All writes are create-or-overwrite and go through a temp file
// plus rename, so a failed write never leaves a corrupt artifact behind.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/paulmach/orb/geojson"

	"github.com/geokshitij/flowData/internal/domain"
)

const (
	stationsDir    = "stations"
	streamflowsDir = "streamflows"
	catchmentsDir  = "catchments"

	stationIDsFile = "stations.txt"
)

// Store writes artifacts under a root data directory:
//
//	<root>/stations/     station ID list and per-state CSV exports
//	<root>/streamflows/  one CSV per site
//	<root>/catchments/   one GeoJSON file per site
type Store struct {
	root   string
	logger *slog.Logger
}

// New creates the directory layout and returns a Store.
func New(root string, logger *slog.Logger) (*Store, error) {
	for _, d := range []string{stationsDir, streamflowsDir, catchmentsDir} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", d, err)
		}
	}
	return &Store{root: root, logger: logger}, nil
}

// WriteStationIDs writes the newline-delimited site number list, one ID per
// line with no header. This file bridges resolver output to orchestrator
// input.
func (s *Store) WriteStationIDs(stations []domain.Station) (string, error) {
	path := filepath.Join(s.root, stationsDir, stationIDsFile)
	err := s.writeAtomic(path, func(w io.Writer) error {
		for _, st := range stations {
			if _, err := fmt.Fprintln(w, st.SiteNo); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// WriteStationCSV writes the per-state station export with normalized
// WGS84 coordinates.
func (s *Store) WriteStationCSV(stateCd string, stations []domain.Station) (string, error) {
	path := filepath.Join(s.root, stationsDir, stateCd+"_stations_wgs84.csv")
	err := s.writeAtomic(path, func(w io.Writer) error {
		return WriteStationCSV(w, stations)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// WriteStationCSV writes the station table to any writer; the HTTP layer
// uses it to serve the same export as an attachment.
func WriteStationCSV(w io.Writer, stations []domain.Station) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"site_no", "station_nm", "coord_datum_cd", "lat_wgs84", "lon_wgs84"}); err != nil {
		return err
	}
	for _, st := range stations {
		rec := []string{
			st.SiteNo,
			st.Name,
			string(st.Datum),
			strconv.FormatFloat(st.LatWGS84, 'f', -1, 64),
			strconv.FormatFloat(st.LonWGS84, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStreamflow writes one site's daily time series as CSV, rows verbatim
// as returned by NWIS.
func (s *Store) WriteStreamflow(series domain.Series) (string, error) {
	path := filepath.Join(s.root, streamflowsDir, series.SiteNo+".csv")
	err := s.writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"datetime", "value", "qualifiers"}); err != nil {
			return err
		}
		for _, v := range series.Values {
			if err := cw.Write([]string{v.DateTime, v.Value, v.Qualifiers}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// WriteCatchment writes one site's basin polygon as a single-feature
// GeoJSON FeatureCollection.
func (s *Store) WriteCatchment(site string, feature *geojson.Feature) (string, error) {
	path := filepath.Join(s.root, catchmentsDir, "USGS_"+site+".geojson")
	err := s.writeAtomic(path, func(w io.Writer) error {
		fc := geojson.NewFeatureCollection()
		fc.Append(feature)
		return json.NewEncoder(w).Encode(fc)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// writeAtomic writes to a temp file in the target directory and renames it
// over the destination, so readers never observe a partial artifact.
func (s *Store) writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
