package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatum(t *testing.T) {
	for _, code := range []string{"NAD83", "NAD27", "WGS84"} {
		d, ok := ParseDatum(code)
		assert.True(t, ok)
		assert.Equal(t, Datum(code), d)
	}

	for _, code := range []string{"OLDAK", "NAD82", "", "nad83"} {
		_, ok := ParseDatum(code)
		assert.False(t, ok, "datum %q should not be recognized", code)
	}
}

func TestNormalizeStations_MixedDatums(t *testing.T) {
	in := []Station{
		{SiteNo: "11420000", Name: "A", Datum: DatumNAD83, Lat: 39.23, Lon: -121.27},
		{SiteNo: "11421000", Name: "B", Datum: DatumNAD83, Lat: 39.30, Lon: -121.35},
		{SiteNo: "11422000", Name: "C", Datum: DatumNAD27, Lat: 39.10, Lon: -121.20},
	}

	out, dropped := NormalizeStations(in)
	require.Len(t, out, 3)
	assert.Zero(t, dropped)

	for _, s := range out {
		assert.NotZero(t, s.LatWGS84, "site %s missing normalized latitude", s.SiteNo)
		assert.NotZero(t, s.LonWGS84, "site %s missing normalized longitude", s.SiteNo)
	}

	// NAD83 coordinates pass through unchanged.
	assert.Equal(t, 39.23, out[0].LatWGS84)
	assert.Equal(t, -121.27, out[0].LonWGS84)

	// The NAD27 station is shifted, slightly but measurably.
	nad27 := out[2]
	assert.Equal(t, "11422000", nad27.SiteNo)
	assert.NotEqual(t, nad27.Lon, nad27.LonWGS84)
	assert.InDelta(t, nad27.Lon, nad27.LonWGS84, 0.01)
}

func TestNormalizeStations_DropsUnknownDatums(t *testing.T) {
	in := []Station{
		{SiteNo: "1", Datum: DatumWGS84, Lat: 40, Lon: -100},
		{SiteNo: "2", Datum: Datum("OLDAK"), Lat: 61, Lon: -150},
		{SiteNo: "3", Datum: Datum("PR40"), Lat: 18, Lon: -66},
	}

	out, dropped := NormalizeStations(in)
	require.Len(t, out, 1)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, len(in)-len(out), dropped)
	assert.Equal(t, "1", out[0].SiteNo)
}

func TestNormalizeStations_DatumOrderIsStable(t *testing.T) {
	in := []Station{
		{SiteNo: "w", Datum: DatumWGS84, Lat: 40, Lon: -100},
		{SiteNo: "n83", Datum: DatumNAD83, Lat: 41, Lon: -101},
		{SiteNo: "n27", Datum: DatumNAD27, Lat: 42, Lon: -102},
	}

	out, _ := NormalizeStations(in)

	var order []string
	for _, s := range out {
		order = append(order, s.SiteNo)
	}
	if diff := cmp.Diff([]string{"n83", "n27", "w"}, order); diff != "" {
		t.Errorf("unexpected station order (-want +got):\n%s", diff)
	}
}

func TestNormalizeStations_AllUnknownYieldsEmpty(t *testing.T) {
	in := []Station{
		{SiteNo: "2", Datum: Datum("OLDAK")},
	}

	out, dropped := NormalizeStations(in)
	assert.Empty(t, out)
	assert.Equal(t, 1, dropped)
}
