package crs

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestProjectConusAlbers_Origin(t *testing.T) {
	// The projection origin (23N, 96W) maps to (0, 0) with no false offsets.
	x, y := ProjectConusAlbers(23, -96)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)
}

func TestProjectConusAlbers_QuadrantSigns(t *testing.T) {
	// West of the central meridian easting is negative; north of the
	// origin latitude northing is positive.
	x, y := ProjectConusAlbers(40, -105)
	assert.Negative(t, x)
	assert.Positive(t, y)

	x, y = ProjectConusAlbers(30, -80)
	assert.Positive(t, x)
	assert.Positive(t, y)
}

func TestNAD83ToWGS84_Identity(t *testing.T) {
	lat, lon := NAD83ToWGS84(36.8644, -111.5879)
	assert.Equal(t, 36.8644, lat)
	assert.Equal(t, -111.5879, lon)
}

func TestNAD27ToWGS84_ShiftMagnitude(t *testing.T) {
	// The CONUS datum shift moves points by meters to ~100 m, never
	// kilometers, so the coordinate deltas stay well under a thousandth
	// of a degree. The longitude shift must also be nonzero.
	lat, lon := NAD27ToWGS84(40, -100)

	dLat := lat - 40
	dLon := lon - (-100)
	assert.Less(t, math.Abs(dLat), 0.001)
	assert.Less(t, math.Abs(dLon), 0.002)
	assert.Greater(t, math.Abs(dLon), 1e-5)
}

func TestAreaSqKm_OneDegreeSquare(t *testing.T) {
	// A 1x1 degree cell at ~39.5N spans about 111.0 km x 85.9 km,
	// roughly 9,540 km^2. Equal-area projection should land close.
	ring := orb.Ring{
		{-105, 39}, {-104, 39}, {-104, 40}, {-105, 40}, {-105, 39},
	}
	area := AreaSqKm(orb.Polygon{ring})
	assert.InDelta(t, 9540, area, 250)
}

func TestGeometryAreaSqKm(t *testing.T) {
	ring := orb.Ring{
		{-105, 39}, {-104, 39}, {-104, 40}, {-105, 40}, {-105, 39},
	}
	poly := orb.Polygon{ring}

	single := GeometryAreaSqKm(poly)
	double := GeometryAreaSqKm(orb.MultiPolygon{poly, poly})
	assert.InDelta(t, 2*single, double, 1e-6)

	assert.Zero(t, GeometryAreaSqKm(orb.Point{-105, 39}))
}
