// Package domain models USGS stream-gage data and download-job accounting.
//
// # Data Sources
//
// Station metadata and daily streamflow values come from the USGS National
// Water Information System (NWIS) water services at
// https://waterservices.usgs.gov. Watershed (catchment) boundary polygons
// come from the Hydro Network-Linked Data Index (NLDI) at
// https://api.water.usgs.gov/nldi.
//
// # NWIS Conventions
//
// Site numbers:
//
//	Opaque 8-15 digit station codes, e.g. "09380000" (Colorado River at
//	Lees Ferry, AZ). Treated as strings throughout; leading zeros are
//	significant. NLDI prefixes them with "USGS-".
//
// Parameter codes:
//
//	Five-digit codes identifying the measured variable. "00060" is discharge
//	in cubic feet per second and is the default everywhere; "00065" is gage
//	height in feet.
//
// Coordinate datums:
//
//	The site service reports raw latitude/longitude together with the datum
//	they were surveyed in, via the coord_datum_cd column. Three datums cover
//	effectively all active CONUS gages:
//
//	  NAD83  EPSG:4269  North American Datum 1983 (the vast majority)
//	  NAD27  EPSG:4267  North American Datum 1927 (older surveys, offset
//	                    from NAD83 by up to ~100 m in CONUS)
//	  WGS84  EPSG:4326  World Geodetic System 1984
//
//	All output coordinates are normalized to WGS84. Records carrying any
//	other datum code are dropped rather than defaulted; see
//	[NormalizeStations].
//
// Daily values:
//
//	The dv service returns one row per day per site, timestamped at local
//	midnight. An empty series is a normal outcome (gage exists but has no
//	data for the parameter/period), distinct from a request failure.
package domain
