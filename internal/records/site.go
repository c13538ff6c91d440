package records

import (
	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
)

// DecodeSite maps a project page. Missing coordinates stay nil, and so does
// (0, 0), which is what a null number decodes to remotely. A missing or
// non-positive radius falls back to the default geofence radius.
func DecodeSite(pg notion.Page) models.Site {
	p := pg.Properties
	radius := models.DefaultGeofenceRadius
	if r, ok := p.NumberValue(PropRadius); ok && r > 0 {
		radius = r
	}
	status, _ := p.SelectName(PropStatus)
	lat, lon := numberPtr(p, PropLatitude), numberPtr(p, PropLongitude)
	if lat != nil && lon != nil && *lat == 0 && *lon == 0 {
		lat, lon = nil, nil
	}
	return models.Site{
		ID:             pg.ID,
		Name:           titleOr(p, PropName, "Unnamed Project"),
		Slug:           textOr(p, PropSlug, pg.ID),
		Address:        textOr(p, PropAddress, ""),
		Latitude:       lat,
		Longitude:      lon,
		GeofenceRadius: radius,
		Status:         models.ParseSiteStatus(status),
		PageID:         pg.ID,
		CreatedAt:      createdAt(pg),
		UpdatedAt:      pg.LastEditedTime,
	}
}

// EncodeSite builds project page properties.
func EncodeSite(s models.Site) notion.Properties {
	props := notion.Properties{
		PropName:    notion.Title(s.Name),
		PropSlug:    notion.Text(s.Slug),
		PropAddress: notion.Text(s.Address),
		PropRadius:  notion.Number(s.GeofenceRadius),
		PropStatus:  notion.Select(string(s.Status)),
	}
	if s.Latitude != nil {
		props[PropLatitude] = notion.Number(*s.Latitude)
	} else {
		props[PropLatitude] = notion.NullNumber()
	}
	if s.Longitude != nil {
		props[PropLongitude] = notion.Number(*s.Longitude)
	} else {
		props[PropLongitude] = notion.NullNumber()
	}
	return props
}
