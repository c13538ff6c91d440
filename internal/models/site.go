package models

import (
	"strings"
	"time"
)

// SiteStatus is a project lifecycle stage.
type SiteStatus string

const (
	SitePlanning SiteStatus = "planning"
	SiteActive   SiteStatus = "active"
	SiteComplete SiteStatus = "complete"
)

// DefaultGeofenceRadius applies when a site has no radius of its own.
const DefaultGeofenceRadius = 100.0

// ParseSiteStatus maps an option name to a status, defaulting to active.
func ParseSiteStatus(s string) SiteStatus {
	switch SiteStatus(strings.ToLower(strings.TrimSpace(s))) {
	case SitePlanning:
		return SitePlanning
	case SiteComplete:
		return SiteComplete
	default:
		return SiteActive
	}
}

// Site is a project location.
type Site struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Address        string     `json:"address,omitempty"`
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
	GeofenceRadius float64    `json:"geofenceRadiusMeters"`
	Status         SiteStatus `json:"status"`
	PageID         string     `json:"pageId"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Coordinates returns the site position when both coordinates are set.
func (s Site) Coordinates() (lat, lon float64, ok bool) {
	if s.Latitude == nil || s.Longitude == nil {
		return 0, 0, false
	}
	return *s.Latitude, *s.Longitude, true
}
