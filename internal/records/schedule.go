package records

import (
	"strings"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
)

const rowTitleSep = " :: "

// RowRecordKey is the stored identity of one row within one build. Rows of the
// same build share buildKey, so the row id is appended to keep them distinct.
func RowRecordKey(buildKey, rowID string) string {
	return buildKey + ":" + rowID
}

// EncodeScheduleRow builds look-ahead page properties.
func EncodeScheduleRow(r models.ScheduleRow) notion.Properties {
	schedule := r.Schedule
	if schedule == nil {
		schedule = map[string]any{}
	}
	props := notion.Properties{
		PropName:           notion.Title(r.SiteID + rowTitleSep + r.TaskName),
		PropWeekStart:      notion.Date(r.WeekStart),
		PropStatus:         notion.Select(string(r.Status)),
		PropPriority:       notion.Select(string(r.Priority)),
		PropProject:        notion.Relation(r.SiteID),
		PropTaskRef:        notion.Relation(r.TaskPageID),
		PropStart:          dateProp(r.Start),
		PropFinish:         dateProp(r.Finish),
		PropNeedBy:         dateProp(r.NeedBy),
		PropSchedule:       notion.JSONText(schedule),
		PropIdempotencyKey: notion.Text(RowRecordKey(r.IdempotencyKey, r.ID)),
		PropBuildKey:       notion.Text(r.IdempotencyKey),
	}
	if r.Owner != "" {
		props[PropOwner] = notion.Text(r.Owner)
	}
	if r.Trade != "" {
		props[PropTrade] = notion.Text(r.Trade)
	}
	return props
}

// DecodeScheduleRow maps a stored look-ahead page back into a row.
func DecodeScheduleRow(pg notion.Page) models.ScheduleRow {
	p := pg.Properties
	week, _ := p.DateStart(PropWeekStart)
	if len(week) > 10 {
		week = week[:10]
	}
	taskRef := relationOr(p, PropTaskRef)
	status, _ := p.SelectName(PropStatus)
	priority, _ := p.SelectName(PropPriority)

	title := titleOr(p, PropName, "")
	taskName := title
	if _, after, ok := strings.Cut(title, rowTitleSep); ok {
		taskName = after
	}

	row := models.ScheduleRow{
		WeekStart:      week,
		SiteID:         relationOr(p, PropProject),
		TaskID:         taskRef,
		TaskName:       taskName,
		Trade:          textOr(p, PropTrade, ""),
		Owner:          textOr(p, PropOwner, ""),
		Start:          datePtr(p, PropStart),
		Finish:         datePtr(p, PropFinish),
		NeedBy:         datePtr(p, PropNeedBy),
		Priority:       models.ParsePriority(priority),
		Status:         parseRowStatus(status),
		Schedule:       jsonObject(p, PropSchedule),
		IdempotencyKey: textOr(p, PropBuildKey, textOr(p, PropIdempotencyKey, "")),
		TaskPageID:     taskRef,
		PageID:         pg.ID,
		CreatedAt:      createdAt(pg),
		UpdatedAt:      pg.LastEditedTime,
	}
	row.ID = models.ScheduleRowID(taskRef, week)
	return row
}

func parseRowStatus(s string) models.RowStatus {
	switch st := models.RowStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case models.RowCommitted, models.RowAtRisk, models.RowDone:
		return st
	default:
		return models.RowPlanned
	}
}
