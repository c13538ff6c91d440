// Package geo locates field crews relative to project sites.
package geo

import (
	"math"

	"github.com/patino82/construction-app/internal/models"
)

// EarthRadiusMeters is the mean earth radius used by DistanceMeters.
const EarthRadiusMeters = 6371e3

// DefaultToleranceMeters is added to every site radius to absorb GPS error.
const DefaultToleranceMeters = 50.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceMeters returns the great-circle (haversine) distance between a and b.
func DistanceMeters(a, b Point) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	dPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	dLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Match is the nearest site and its distance from the query point.
type Match struct {
	Site     models.Site
	Distance float64
}

// Engine answers nearest-site and geofence questions.
type Engine struct {
	Tolerance float64
}

// NewEngine returns an engine with the default tolerance.
func NewEngine() *Engine {
	return &Engine{Tolerance: DefaultToleranceMeters}
}

// Nearest scans sites in order and returns the closest one with coordinates.
// Ties keep the earlier site. ok is false when no site has coordinates.
func (e *Engine) Nearest(p Point, sites []models.Site) (m Match, ok bool) {
	for _, s := range sites {
		lat, lon, has := s.Coordinates()
		if !has {
			continue
		}
		d := DistanceMeters(p, Point{Latitude: lat, Longitude: lon})
		if !ok || d < m.Distance {
			m, ok = Match{Site: s, Distance: d}, true
		}
	}
	return m, ok
}

// WithinFence reports whether p lies inside the site's radius plus tolerance.
// Sites without coordinates are never within their fence.
func (e *Engine) WithinFence(p Point, s models.Site) bool {
	lat, lon, ok := s.Coordinates()
	if !ok {
		return false
	}
	radius := s.GeofenceRadius
	if radius <= 0 {
		radius = models.DefaultGeofenceRadius
	}
	return DistanceMeters(p, Point{Latitude: lat, Longitude: lon}) <= radius+e.Tolerance
}
