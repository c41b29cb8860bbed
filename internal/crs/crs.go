// Package crs implements the two coordinate transformations the service
// needs: datum shifts into WGS84 for station coordinates, and the EPSG:5070
// Conus Albers equal-area projection used only for basin area computation.
//
// Formulas follow Snyder, "Map Projections: A Working Manual" (USGS
// Professional Paper 1395). The abridged Molodensky shift for NAD27 uses the
// standard CONUS mean parameters (dx=-8, dy=160, dz=176 meters).
package crs

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Ellipsoid parameters.
const (
	// GRS80 (NAD83) / WGS84. The two differ only in the 8th decimal of the
	// flattening; GRS80 values are used for the Albers projection.
	grs80A = 6378137.0
	grs80F = 1.0 / 298.257222101

	wgs84A = 6378137.0
	wgs84F = 1.0 / 298.257223563

	// Clarke 1866 (NAD27).
	clarke66A = 6378206.4
	clarke66F = 1.0 / 294.9786982
)

// NAD27 -> WGS84 CONUS mean datum shift, meters.
const (
	nad27DX = -8.0
	nad27DY = 160.0
	nad27DZ = 176.0
)

// NAD83ToWGS84 converts NAD83 coordinates to WGS84. The two datums agree to
// well under a meter across CONUS, far inside the positional accuracy of the
// gage coordinates themselves, so this is the identity transform.
func NAD83ToWGS84(lat, lon float64) (float64, float64) {
	return lat, lon
}

// NAD27ToWGS84 converts NAD27 coordinates to WGS84 using the abridged
// Molodensky transformation with the CONUS mean shift parameters. Accuracy
// is on the order of a few meters, against a raw datum offset of up to
// ~100 m.
func NAD27ToWGS84(lat, lon float64) (float64, float64) {
	phi := lat * math.Pi / 180
	lam := lon * math.Pi / 180

	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	sinLam, cosLam := math.Sin(lam), math.Cos(lam)

	a := clarke66A
	f := clarke66F
	e2 := f * (2 - f)

	da := wgs84A - a
	df := wgs84F - f

	w := math.Sqrt(1 - e2*sinPhi*sinPhi)
	// Meridional and prime-vertical radii of curvature.
	m := a * (1 - e2) / (w * w * w)
	n := a / w

	dPhi := (-nad27DX*sinPhi*cosLam - nad27DY*sinPhi*sinLam + nad27DZ*cosPhi +
		(a*df+f*da)*math.Sin(2*phi)) / m
	dLam := (-nad27DX*sinLam + nad27DY*cosLam) / (n * cosPhi)

	return lat + dPhi*180/math.Pi, lon + dLam*180/math.Pi
}

// Conus Albers (EPSG:5070) projection constants.
const (
	albersLat0 = 23.0  // latitude of origin
	albersLon0 = -96.0 // central meridian
	albersLat1 = 29.5  // first standard parallel
	albersLat2 = 45.5  // second standard parallel
)

// albers holds the precomputed projection constants for EPSG:5070.
type albers struct {
	e, e2 float64
	n, c  float64
	rho0  float64
	lam0  float64
}

var conusAlbers = newConusAlbers()

func newConusAlbers() albers {
	e2 := grs80F * (2 - grs80F)
	e := math.Sqrt(e2)

	phi0 := albersLat0 * math.Pi / 180
	phi1 := albersLat1 * math.Pi / 180
	phi2 := albersLat2 * math.Pi / 180

	m1 := albersM(phi1, e2)
	m2 := albersM(phi2, e2)
	q0 := albersQ(phi0, e, e2)
	q1 := albersQ(phi1, e, e2)
	q2 := albersQ(phi2, e, e2)

	n := (m1*m1 - m2*m2) / (q2 - q1)
	c := m1*m1 + n*q1

	return albers{
		e:    e,
		e2:   e2,
		n:    n,
		c:    c,
		rho0: grs80A * math.Sqrt(c-n*q0) / n,
		lam0: albersLon0 * math.Pi / 180,
	}
}

func albersM(phi, e2 float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-e2*s*s)
}

func albersQ(phi, e, e2 float64) float64 {
	s := math.Sin(phi)
	return (1 - e2) * (s/(1-e2*s*s) - (1/(2*e))*math.Log((1-e*s)/(1+e*s)))
}

// ProjectConusAlbers maps a WGS84 point to EPSG:5070 easting/northing in
// meters. Used only for planar area computation, never for display
// coordinates.
func ProjectConusAlbers(lat, lon float64) (x, y float64) {
	p := conusAlbers

	phi := lat * math.Pi / 180
	lam := lon * math.Pi / 180

	q := albersQ(phi, p.e, p.e2)
	rho := grs80A * math.Sqrt(p.c-p.n*q) / p.n
	theta := p.n * (lam - p.lam0)

	return rho * math.Sin(theta), p.rho0 - rho*math.Cos(theta)
}

// GeometryAreaSqKm computes the Conus Albers planar area of a polygonal
// geometry in square kilometers. Non-polygonal geometries yield 0.
func GeometryAreaSqKm(g orb.Geometry) float64 {
	switch geom := g.(type) {
	case orb.Polygon:
		return AreaSqKm(geom)
	case orb.MultiPolygon:
		var total float64
		for _, p := range geom {
			total += AreaSqKm(p)
		}
		return total
	default:
		return 0
	}
}

// AreaSqKm projects a WGS84 polygon into Conus Albers and returns its planar
// area in square kilometers. Holes are subtracted. The input polygon is not
// modified.
func AreaSqKm(poly orb.Polygon) float64 {
	projected := make(orb.Polygon, len(poly))
	for i, ring := range poly {
		pr := make(orb.Ring, len(ring))
		for j, pt := range ring {
			x, y := ProjectConusAlbers(pt.Lat(), pt.Lon())
			pr[j] = orb.Point{x, y}
		}
		projected[i] = pr
	}
	return math.Abs(planar.Area(projected)) / 1e6
}
