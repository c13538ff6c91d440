package records

import (
	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
)

// DecodeTask maps a task page. A task without its own key gets "{pageId}-idempotent".
func DecodeTask(pg notion.Page) models.Task {
	p := pg.Properties
	stage, _ := p.SelectName(PropStage)
	status, _ := p.SelectName(PropStatus)
	priority, _ := p.SelectName(PropPriority)
	seq, _ := p.NumberValue(PropSequence)
	return models.Task{
		ID:             pg.ID,
		Name:           titleOr(p, PropName, pg.ID),
		SiteID:         relationOr(p, PropProject),
		Stage:          stage,
		Sequence:       int(seq),
		Trade:          textOr(p, PropTrade, ""),
		Owner:          textOr(p, PropOwner, ""),
		Start:          datePtr(p, PropStart),
		Finish:         datePtr(p, PropFinish),
		NeedBy:         datePtr(p, PropNeedBy),
		Status:         models.ParseTaskStatus(status),
		Priority:       models.ParsePriority(priority),
		Schedule:       jsonObject(p, PropSchedule),
		IdempotencyKey: textOr(p, PropIdempotencyKey, pg.ID+"-idempotent"),
		PageID:         pg.ID,
		CreatedAt:      createdAt(pg),
		UpdatedAt:      pg.LastEditedTime,
	}
}

// EncodeTask builds task page properties.
func EncodeTask(t models.Task) notion.Properties {
	schedule := t.Schedule
	if schedule == nil {
		schedule = map[string]any{}
	}
	return notion.Properties{
		PropName:           notion.Title(t.Name),
		PropProject:        notion.Relation(t.SiteID),
		PropStage:          notion.Select(t.Stage),
		PropSequence:       notion.Number(float64(t.Sequence)),
		PropTrade:          notion.Text(t.Trade),
		PropOwner:          notion.Text(t.Owner),
		PropStart:          dateProp(t.Start),
		PropFinish:         dateProp(t.Finish),
		PropNeedBy:         dateProp(t.NeedBy),
		PropStatus:         notion.Select(string(t.Status)),
		PropPriority:       notion.Select(string(t.Priority)),
		PropSchedule:       notion.JSONText(schedule),
		PropIdempotencyKey: notion.Text(t.IdempotencyKey),
	}
}
