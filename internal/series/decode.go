package series

import (
	"math"

	"github.com/golang/geo/s2"

	"fitlake/internal/garmin"
)

// geoStride keeps every Nth GPS sample. Path rendering doesn't need
// per-second fixes and the decimation bounds payload size.
const geoStride = 4

const earthRadiusMeters = 6371000.0

// TimeSeriesPoint is one decoded telemetry sample aligned to elapsed
// seconds. Fields are pointers because telemetry richness varies by device
// and activity type; a missing sensor is normal, not an error.
type TimeSeriesPoint struct {
	ElapsedSec   int
	HeartRate    *float64
	Speed        *float64
	Elevation    *float64
	Cadence      *float64
	Power        *float64
	Respiration  *float64
	StrideLength *float64
}

// GeoPoint is one decimated GPS fix with the cumulative path distance up
// to it.
type GeoPoint struct {
	Lat       float64
	Lng       float64
	DistanceM float64
}

// DecodeElapsed converts a details document into elapsed-time-indexed
// points. The first sample with a timestamp establishes t0; samples whose
// elapsed time is negative or undefined are dropped, never clamped to
// zero, which guards against out-of-order or corrupt leading samples.
// Returns nil when the document has no timestamp column.
func DecodeElapsed(d *garmin.Details) []TimeSeriesPoint {
	timestamps := d.Column(garmin.MetricTimestamp)
	if timestamps == nil {
		return nil
	}

	hr := d.Column(garmin.MetricHeartRate)
	speed := d.Column(garmin.MetricSpeed)
	elevation := d.Column(garmin.MetricElevation)
	cadence := d.Column(garmin.MetricCadence)
	power := d.Column(garmin.MetricPower)
	respiration := d.Column(garmin.MetricRespirationRate)
	stride := d.Column(garmin.MetricStrideLength)

	var t0 *float64
	for _, ts := range timestamps {
		if ts != nil {
			t0 = ts
			break
		}
	}
	if t0 == nil {
		return nil
	}

	var points []TimeSeriesPoint
	for i, ts := range timestamps {
		if ts == nil {
			continue
		}
		elapsed := int(math.Round((*ts - *t0) / 1000))
		if elapsed < 0 {
			continue
		}
		points = append(points, TimeSeriesPoint{
			ElapsedSec:   elapsed,
			HeartRate:    at(hr, i),
			Speed:        at(speed, i),
			Elevation:    at(elevation, i),
			Cadence:      at(cadence, i),
			Power:        at(power, i),
			Respiration:  at(respiration, i),
			StrideLength: at(stride, i),
		})
	}
	return points
}

// DecodeGeo converts a details document into a decimated GPS path with
// cumulative distances. Samples where both coordinates are exactly zero
// are dropped as no-fix sentinels. Returns nil when either coordinate
// column is missing.
func DecodeGeo(d *garmin.Details) []GeoPoint {
	lats := d.Column(garmin.MetricLatitude)
	lngs := d.Column(garmin.MetricLongitude)
	if lats == nil || lngs == nil {
		return nil
	}

	var points []GeoPoint
	var prev *s2.LatLng
	var total float64
	for i := 0; i < len(lats) && i < len(lngs); i += geoStride {
		if lats[i] == nil || lngs[i] == nil {
			continue
		}
		lat, lng := *lats[i], *lngs[i]
		if lat == 0 && lng == 0 {
			continue
		}

		cur := s2.LatLngFromDegrees(lat, lng)
		if prev != nil {
			total += prev.Distance(cur).Radians() * earthRadiusMeters
		}
		prev = &cur

		points = append(points, GeoPoint{Lat: lat, Lng: lng, DistanceM: total})
	}
	return points
}

// at returns column[i], tolerating a missing column or short rows.
func at(column []*float64, i int) *float64 {
	if column == nil || i >= len(column) {
		return nil
	}
	return column[i]
}
