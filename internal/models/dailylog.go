package models

import "time"

// CheckIn is one GPS presence event.
type CheckIn struct {
	Timestamp      time.Time `json:"timestamp"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters *float64  `json:"accuracyMeters,omitempty"`
}

// DailyLog is the per-site, per-day field record. CheckIns only ever grow, in order.
type DailyLog struct {
	ID        string    `json:"id"`
	SiteID    string    `json:"projectId"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes,omitempty"`
	Weather   string    `json:"weather,omitempty"`
	Manpower  int       `json:"manpowerCount"`
	Issues    []string  `json:"issues"`
	CheckIns  []CheckIn `json:"gpsCheckins"`
	PageID    string    `json:"pageId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ISODate formats a calendar day the way daily logs are keyed.
func ISODate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DailyLogKey is the idempotency key of a site's log for a day.
func DailyLogKey(siteID string, date time.Time) string {
	return siteID + ":" + ISODate(date)
}
