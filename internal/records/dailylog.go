package records

import (
	"encoding/json"
	"time"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
)

// DecodeDailyLog maps a daily log page. Malformed check-in JSON yields no check-ins.
func DecodeDailyLog(pg notion.Page) models.DailyLog {
	p := pg.Properties
	date, ok := p.DateTime(PropLogDate)
	if !ok {
		date = createdAt(pg)
	}
	manpower, _ := p.NumberValue(PropManpower)
	return models.DailyLog{
		ID:        pg.ID,
		SiteID:    relationOr(p, PropProject),
		Date:      date,
		Notes:     textOr(p, PropNotes, ""),
		Weather:   textOr(p, PropWeather, ""),
		Manpower:  int(manpower),
		Issues:    multiOrEmpty(p, PropIssues),
		CheckIns:  DecodeCheckIns(joinedText(p, PropGPSCheckins)),
		PageID:    pg.ID,
		CreatedAt: createdAt(pg),
		UpdatedAt: pg.LastEditedTime,
	}
}

// DecodeCheckIns parses a serialized check-in list.
func DecodeCheckIns(raw string) []models.CheckIn {
	if raw == "" {
		return []models.CheckIn{}
	}
	var out []models.CheckIn
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []models.CheckIn{}
	}
	return out
}

// EncodeDailyLogKey builds the properties that identify a log: its title,
// site, day, and idempotency key.
func EncodeDailyLogKey(siteID string, date time.Time) notion.Properties {
	day := models.ISODate(date)
	return notion.Properties{
		PropName:           notion.Title("Daily Log :: " + day),
		PropProject:        notion.Relation(siteID),
		PropLogDate:        notion.Date(day),
		PropIdempotencyKey: notion.Text(models.DailyLogKey(siteID, date)),
	}
}

// EncodeCheckIns builds the properties written after a check-in is appended.
func EncodeCheckIns(log models.DailyLog, last time.Time) notion.Properties {
	checkins := log.CheckIns
	if checkins == nil {
		checkins = []models.CheckIn{}
	}
	props := EncodeDailyLogKey(log.SiteID, log.Date)
	delete(props, PropName)
	props[PropGPSCheckins] = notion.JSONText(checkins)
	props[PropLastCheckin] = notion.Date(last.UTC().Format(time.RFC3339))
	return props
}
