package taskservice

import (
	"context"
	"strings"

	"github.com/ajisaka/taskdeck/authsvc"
	"github.com/ajisaka/taskdeck/tasksvc"
	"github.com/ajisaka/taskdeck/validate"
	"github.com/go-kit/kit/log"
)

const (
	titleMinLen       = 3
	titleMaxLen       = 100
	descriptionMinLen = 5
)

// Service is the ownership-scoped task CRUD contract. The authenticated
// user is an explicit argument on every call; there is no ambient
// session state.
type Service interface {
	CreateTask(ctx context.Context, user authsvc.AuthenticatedUser, title, description string, priority tasksvc.Priority) (tasksvc.Task, error)
	Tasks(ctx context.Context, user authsvc.AuthenticatedUser, filter tasksvc.StatusFilter) ([]tasksvc.Task, error)
	Task(ctx context.Context, user authsvc.AuthenticatedUser, taskID uint64) (tasksvc.Task, error)
	UpdateTask(ctx context.Context, user authsvc.AuthenticatedUser, taskID uint64, patch tasksvc.TaskPatch) (tasksvc.Task, error)
	DeleteTask(ctx context.Context, user authsvc.AuthenticatedUser, taskID uint64) (tasksvc.Task, error)
}

func New(t tasksvc.TaskRepository, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(t)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	tasks tasksvc.TaskRepository
}

func NewBasicService(t tasksvc.TaskRepository) Service {
	return basicService{tasks: t}
}

func (s basicService) CreateTask(_ context.Context, user authsvc.AuthenticatedUser, title, description string, priority tasksvc.Priority) (tasksvc.Task, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if priority == "" {
		priority = tasksvc.PriorityMedium
	}

	var verr validate.Error
	if !validate.Length(title, titleMinLen, titleMaxLen) {
		verr.Addf("title", "must be between %d and %d characters", titleMinLen, titleMaxLen)
	}
	if !validate.Length(description, descriptionMinLen, 0) {
		verr.Addf("description", "must be at least %d characters", descriptionMinLen)
	}
	if !priority.Valid() {
		verr.Add("priority", "must be one of Low, Medium, High")
	}
	if err := verr.Err(); err != nil {
		return tasksvc.Task{}, err
	}

	return s.tasks.Create(title, description, priority, user.ID)
}

func (s basicService) Tasks(_ context.Context, user authsvc.AuthenticatedUser, filter tasksvc.StatusFilter) ([]tasksvc.Task, error) {
	var status *tasksvc.Status
	if st, ok := filter.Status(); ok {
		status = &st
	}

	return s.tasks.FindAll(user.ID, status)
}

func (s basicService) Task(_ context.Context, user authsvc.AuthenticatedUser, taskID uint64) (tasksvc.Task, error) {
	return s.tasks.Find(user.ID, taskID)
}

func (s basicService) UpdateTask(_ context.Context, user authsvc.AuthenticatedUser, taskID uint64, patch tasksvc.TaskPatch) (tasksvc.Task, error) {
	fields := map[string]interface{}{}
	var verr validate.Error

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if !validate.Length(title, titleMinLen, titleMaxLen) {
			verr.Addf("title", "must be between %d and %d characters", titleMinLen, titleMaxLen)
		}
		fields["title"] = title
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if !validate.Length(description, descriptionMinLen, 0) {
			verr.Addf("description", "must be at least %d characters", descriptionMinLen)
		}
		fields["description"] = description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			verr.Add("status", "must be one of incomplete, complete")
		}
		fields["status"] = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			verr.Add("priority", "must be one of Low, Medium, High")
		}
		fields["priority"] = *patch.Priority
	}

	if err := verr.Err(); err != nil {
		return tasksvc.Task{}, err
	}

	return s.tasks.Update(user.ID, taskID, fields)
}

func (s basicService) DeleteTask(_ context.Context, user authsvc.AuthenticatedUser, taskID uint64) (tasksvc.Task, error) {
	return s.tasks.Delete(user.ID, taskID)
}
