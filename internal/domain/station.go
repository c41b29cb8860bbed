package domain

import (
	"github.com/geokshitij/flowData/internal/crs"
)

// Datum identifies the reference frame a station's raw coordinates were
// recorded in.
type Datum string

const (
	DatumNAD83 Datum = "NAD83"
	DatumNAD27 Datum = "NAD27"
	DatumWGS84 Datum = "WGS84"
)

// knownDatums is the fixed processing order for [NormalizeStations].
// Deterministic order keeps output stable across runs for the same input.
var knownDatums = []Datum{DatumNAD83, DatumNAD27, DatumWGS84}

// ParseDatum maps a coord_datum_cd value to a known Datum.
// Returns false for anything outside the recognized set.
func ParseDatum(code string) (Datum, bool) {
	switch Datum(code) {
	case DatumNAD83, DatumNAD27, DatumWGS84:
		return Datum(code), true
	default:
		return "", false
	}
}

// Station is one stream gage. Lat/Lon are in the source datum as reported by
// NWIS; LatWGS84/LonWGS84 are populated by [NormalizeStations].
type Station struct {
	SiteNo   string  `json:"site_no"`
	Name     string  `json:"station_nm"`
	Datum    Datum   `json:"coord_datum_cd"`
	Lat      float64 `json:"dec_lat_va"`
	Lon      float64 `json:"dec_long_va"`
	LatWGS84 float64 `json:"lat_wgs84"`
	LonWGS84 float64 `json:"lon_wgs84"`
}

// NormalizeStations partitions stations by source datum, transforms each
// partition into WGS84, and concatenates the results in datum order
// (NAD83, NAD27, WGS84). Stations whose datum is not in the recognized set
// are excluded from the output; the second return value is how many were
// dropped. The input slice is not modified.
func NormalizeStations(stations []Station) ([]Station, int) {
	buckets := make(map[Datum][]Station, len(knownDatums))
	dropped := 0
	for _, s := range stations {
		if _, ok := ParseDatum(string(s.Datum)); !ok {
			dropped++
			continue
		}
		buckets[s.Datum] = append(buckets[s.Datum], s)
	}

	out := make([]Station, 0, len(stations)-dropped)
	for _, d := range knownDatums {
		for _, s := range buckets[d] {
			s.LatWGS84, s.LonWGS84 = toWGS84(d, s.Lat, s.Lon)
			out = append(out, s)
		}
	}
	return out, dropped
}

func toWGS84(d Datum, lat, lon float64) (float64, float64) {
	switch d {
	case DatumNAD27:
		return crs.NAD27ToWGS84(lat, lon)
	case DatumNAD83:
		return crs.NAD83ToWGS84(lat, lon)
	default: // already WGS84
		return lat, lon
	}
}
