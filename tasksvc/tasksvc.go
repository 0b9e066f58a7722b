package tasksvc

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/ajisaka/taskdeck/validate"
)

type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusComplete   Status = "complete"
)

func (s Status) Valid() bool {
	return s == StatusIncomplete || s == StatusComplete
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Task struct {
	ID          uint64    `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	UserID      uint64    `json:"userId" gorm:"index"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StatusFilter narrows a task listing by completion state. Values other
// than "active" and "completed" select everything.
type StatusFilter string

const (
	FilterActive    StatusFilter = "active"
	FilterCompleted StatusFilter = "completed"
)

func (f StatusFilter) Status() (Status, bool) {
	switch f {
	case FilterActive:
		return StatusIncomplete, true
	case FilterCompleted:
		return StatusComplete, true
	}
	return "", false
}

// TaskPatch is the closed set of fields a task update may touch. A nil
// field means "leave unchanged". Owner, id and creation timestamp have
// no representation here and so can never be altered through a patch.
type TaskPatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *Status   `json:"status"`
	Priority    *Priority `json:"priority"`
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil
}

// ParseTaskPatch decodes a patch body, rejecting the whole document when
// it carries any key outside the allowed set. Value constraints (lengths,
// enum membership) are left to the service layer.
func ParseTaskPatch(data []byte) (TaskPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return TaskPatch{}, ErrInvalidArgument
	}

	var p TaskPatch
	var verr validate.Error

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		var dst interface{}
		switch key {
		case "title":
			dst = &p.Title
		case "description":
			dst = &p.Description
		case "status":
			dst = &p.Status
		case "priority":
			dst = &p.Priority
		default:
			verr.Add(key, "unknown field")
			continue
		}

		if err := json.Unmarshal(raw[key], dst); err != nil {
			verr.Add(key, "malformed value")
		}
	}

	if err := verr.Err(); err != nil {
		return TaskPatch{}, err
	}
	return p, nil
}

// TaskRepository is the persistence contract for tasks. Every lookup and
// mutation is scoped to the owning user.
type TaskRepository interface {
	Create(title, description string, priority Priority, userID uint64) (Task, error)
	FindAll(userID uint64, status *Status) ([]Task, error)
	Find(userID, taskID uint64) (Task, error)
	Update(userID, taskID uint64, fields map[string]interface{}) (Task, error)
	Delete(userID, taskID uint64) (Task, error)
}

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTaskNotFound    = errors.New("task not found")
)
