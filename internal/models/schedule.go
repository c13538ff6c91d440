package models

import "time"

// RowStatus is the look-ahead view of a task's status.
type RowStatus string

const (
	RowPlanned   RowStatus = "planned"
	RowCommitted RowStatus = "committed"
	RowAtRisk    RowStatus = "at_risk"
	RowDone      RowStatus = "done"
)

// RowStatusFor maps a task status onto a schedule row status.
func RowStatusFor(s TaskStatus) RowStatus {
	switch s {
	case TaskComplete:
		return RowDone
	case TaskBlocked, TaskHold:
		return RowAtRisk
	case TaskInProgress:
		return RowCommitted
	default:
		return RowPlanned
	}
}

// ScheduleRow is a derived look-ahead entry for one task in one week.
// Rows are rebuilt from tasks, never edited by hand.
type ScheduleRow struct {
	ID             string         `json:"id"`
	WeekStart      string         `json:"weekStartIso"`
	SiteID         string         `json:"project"`
	TaskID         string         `json:"taskId"`
	TaskName       string         `json:"task"`
	Trade          string         `json:"trade,omitempty"`
	Owner          string         `json:"owner,omitempty"`
	Start          *time.Time     `json:"startDate"`
	Finish         *time.Time     `json:"finishDate"`
	NeedBy         *time.Time     `json:"needBy"`
	Priority       Priority       `json:"priority"`
	Status         RowStatus      `json:"status"`
	Schedule       map[string]any `json:"scheduleJson"`
	IdempotencyKey string         `json:"idempotencyKey"`
	TaskPageID     string         `json:"taskPageId"`
	PageID         string         `json:"pageId,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// ScheduleRowID is the composite row identity.
func ScheduleRowID(taskID, weekStart string) string {
	return taskID + "-" + weekStart
}
