package models

import (
	"strings"
	"time"
)

// TaskStatus is the work state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskBlocked    TaskStatus = "blocked"
	TaskComplete   TaskStatus = "complete"
	TaskHold       TaskStatus = "hold"
)

// TaskStatuses lists every task status.
var TaskStatuses = []TaskStatus{TaskPending, TaskInProgress, TaskBlocked, TaskComplete, TaskHold}

// ParseTaskStatus maps an option name ("In Progress", "in_progress") to a status,
// defaulting to pending.
func ParseTaskStatus(s string) TaskStatus {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	for _, st := range TaskStatuses {
		if string(st) == norm {
			return st
		}
	}
	return TaskPending
}

// Priority ranks tasks and schedule rows.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ParsePriority maps an option name to a priority, defaulting to medium.
func ParsePriority(s string) Priority {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityHigh, PriorityCritical:
		return p
	default:
		return PriorityMedium
	}
}

// MinTaskKeyLength is the shortest accepted task idempotency key.
const MinTaskKeyLength = 10

// Task is a unit of scheduled work on a site.
type Task struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	SiteID         string         `json:"projectId"`
	Stage          string         `json:"stage"`
	Sequence       int            `json:"sequence"`
	Trade          string         `json:"trade,omitempty"`
	Owner          string         `json:"owner,omitempty"`
	Start          *time.Time     `json:"startDate"`
	Finish         *time.Time     `json:"finishDate"`
	NeedBy         *time.Time     `json:"needBy"`
	Status         TaskStatus     `json:"status"`
	Priority       Priority       `json:"priority"`
	Schedule       map[string]any `json:"scheduleJson"`
	IdempotencyKey string         `json:"idempotencyKey"`
	PageID         string         `json:"pageId"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Validate checks the task schema.
func (t Task) Validate() error {
	if len(t.IdempotencyKey) < MinTaskKeyLength {
		return invalid("idempotencyKey", "must be at least %d characters", MinTaskKeyLength)
	}
	return nil
}
