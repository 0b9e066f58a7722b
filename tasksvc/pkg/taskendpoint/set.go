package taskendpoint

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ajisaka/taskdeck/authsvc"
	"github.com/ajisaka/taskdeck/tasksvc"
	"github.com/ajisaka/taskdeck/tasksvc/pkg/taskservice"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
)

type Set struct {
	CreateTaskEndpoint endpoint.Endpoint
	TasksEndpoint      endpoint.Endpoint
	TaskEndpoint       endpoint.Endpoint
	UpdateTaskEndpoint endpoint.Endpoint
	DeleteTaskEndpoint endpoint.Endpoint
}

func New(svc taskservice.Service, logger log.Logger) Set {
	var createTaskEndpoint endpoint.Endpoint
	{
		createTaskEndpoint = MakeCreateTaskEndpoint(svc)
		createTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "CreateTask"))(createTaskEndpoint)
	}
	var tasksEndpoint endpoint.Endpoint
	{
		tasksEndpoint = MakeTasksEndpoint(svc)
		tasksEndpoint = LoggingMiddleware(log.With(logger, "method", "Tasks"))(tasksEndpoint)
	}
	var taskEndpoint endpoint.Endpoint
	{
		taskEndpoint = MakeTaskEndpoint(svc)
		taskEndpoint = LoggingMiddleware(log.With(logger, "method", "Task"))(taskEndpoint)
	}
	var updateTaskEndpoint endpoint.Endpoint
	{
		updateTaskEndpoint = MakeUpdateTaskEndpoint(svc)
		updateTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "UpdateTask"))(updateTaskEndpoint)
	}
	var deleteTaskEndpoint endpoint.Endpoint
	{
		deleteTaskEndpoint = MakeDeleteTaskEndpoint(svc)
		deleteTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "DeleteTask"))(deleteTaskEndpoint)
	}

	return Set{
		CreateTaskEndpoint: createTaskEndpoint,
		TasksEndpoint:      tasksEndpoint,
		TaskEndpoint:       taskEndpoint,
		UpdateTaskEndpoint: updateTaskEndpoint,
		DeleteTaskEndpoint: deleteTaskEndpoint,
	}
}

func MakeCreateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		user, err := authsvc.UserFromContext(ctx)
		if err != nil {
			return CreateTaskResponse{Err: err}, nil
		}

		req := request.(CreateTaskRequest)
		t, err := s.CreateTask(ctx, user, req.Title, req.Description, req.Priority)
		return CreateTaskResponse{Task: t, Err: err}, nil
	}
}

func MakeTasksEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		user, err := authsvc.UserFromContext(ctx)
		if err != nil {
			return TasksResponse{Err: err}, nil
		}

		req := request.(TasksRequest)
		t, err := s.Tasks(ctx, user, req.Filter)
		return TasksResponse{Tasks: t, Err: err}, nil
	}
}

func MakeTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		user, err := authsvc.UserFromContext(ctx)
		if err != nil {
			return TaskResponse{Err: err}, nil
		}

		req := request.(TaskRequest)
		t, err := s.Task(ctx, user, req.TaskID)
		return TaskResponse{Task: t, Err: err}, nil
	}
}

func MakeUpdateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		user, err := authsvc.UserFromContext(ctx)
		if err != nil {
			return UpdateTaskResponse{Err: err}, nil
		}

		req := request.(UpdateTaskRequest)
		t, err := s.UpdateTask(ctx, user, req.TaskID, req.Patch)
		return UpdateTaskResponse{Task: t, Err: err}, nil
	}
}

func MakeDeleteTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		user, err := authsvc.UserFromContext(ctx)
		if err != nil {
			return DeleteTaskResponse{Err: err}, nil
		}

		req := request.(DeleteTaskRequest)
		t, err := s.DeleteTask(ctx, user, req.TaskID)
		if err != nil {
			return DeleteTaskResponse{Err: err}, nil
		}
		return DeleteTaskResponse{Message: "Task deleted", Task: t}, nil
	}
}

var (
	_ endpoint.Failer = CreateTaskResponse{}
	_ endpoint.Failer = TasksResponse{}
	_ endpoint.Failer = TaskResponse{}
	_ endpoint.Failer = UpdateTaskResponse{}
	_ endpoint.Failer = DeleteTaskResponse{}
)

type CreateTaskRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Priority    tasksvc.Priority `json:"priority"`
}

type CreateTaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r CreateTaskResponse) Failed() error   { return r.Err }
func (r CreateTaskResponse) StatusCode() int { return http.StatusCreated }

// The task itself is the response body.
func (r CreateTaskResponse) MarshalJSON() ([]byte, error) { return json.Marshal(r.Task) }

type TasksRequest struct {
	Filter tasksvc.StatusFilter
}

type TasksResponse struct {
	Tasks []tasksvc.Task `json:"tasks"`
	Err   error          `json:"-"`
}

func (r TasksResponse) Failed() error { return r.Err }

func (r TasksResponse) MarshalJSON() ([]byte, error) { return json.Marshal(r.Tasks) }

type TaskRequest struct {
	TaskID uint64
}

type TaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r TaskResponse) Failed() error { return r.Err }

func (r TaskResponse) MarshalJSON() ([]byte, error) { return json.Marshal(r.Task) }

type UpdateTaskRequest struct {
	TaskID uint64
	Patch  tasksvc.TaskPatch
}

type UpdateTaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r UpdateTaskResponse) Failed() error { return r.Err }

func (r UpdateTaskResponse) MarshalJSON() ([]byte, error) { return json.Marshal(r.Task) }

type DeleteTaskRequest struct {
	TaskID uint64
}

type DeleteTaskResponse struct {
	Message string       `json:"message"`
	Task    tasksvc.Task `json:"task"`
	Err     error        `json:"-"`
}

func (r DeleteTaskResponse) Failed() error { return r.Err }
