package tasktransport

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/ajisaka/taskdeck/authsvc"
	"github.com/ajisaka/taskdeck/authsvc/tokenstore"
	"github.com/ajisaka/taskdeck/tasksvc"
	"github.com/ajisaka/taskdeck/tasksvc/pkg/taskendpoint"
	"github.com/ajisaka/taskdeck/usersvc"
	"github.com/ajisaka/taskdeck/validate"
	stdjwt "github.com/dgrijalva/jwt-go"
	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPHandler mounts the task routes. Every endpoint sits behind the
// JWT parser and the authenticator middleware; requests that fail either
// never reach the service.
func NewHTTPHandler(endpoints taskendpoint.Set, authenticator endpoint.Middleware, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
		httptransport.ServerBefore(kitjwt.HTTPToContext()),
	}

	kf := func(token *stdjwt.Token) (interface{}, error) {
		return []byte(authsvc.AccessSecret), nil
	}

	guard := func(e endpoint.Endpoint) endpoint.Endpoint {
		e = authenticator(e)
		e = kitjwt.NewParser(kf, stdjwt.SigningMethodHS256, kitjwt.MapClaimsFactory)(e)
		return e
	}

	createTaskHandler := httptransport.NewServer(
		guard(endpoints.CreateTaskEndpoint),
		decodeHTTPCreateTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	tasksHandler := httptransport.NewServer(
		guard(endpoints.TasksEndpoint),
		decodeHTTPTasksRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	taskHandler := httptransport.NewServer(
		guard(endpoints.TaskEndpoint),
		decodeHTTPTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	updateTaskHandler := httptransport.NewServer(
		guard(endpoints.UpdateTaskEndpoint),
		decodeHTTPUpdateTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	deleteTaskHandler := httptransport.NewServer(
		guard(endpoints.DeleteTaskEndpoint),
		decodeHTTPDeleteTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	r := mux.NewRouter()

	r.Methods("POST").Path("/tasks").Handler(createTaskHandler)
	r.Methods("GET").Path("/tasks").Handler(tasksHandler)
	r.Methods("GET").Path("/tasks/{task_id}").Handler(taskHandler)
	r.Methods("PATCH").Path("/tasks/{task_id}").Handler(updateTaskHandler)
	r.Methods("DELETE").Path("/tasks/{task_id}").Handler(deleteTaskHandler)
	r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())

	return r
}

type errorWrapper struct {
	Message string                `json:"message"`
	Errors  []validate.FieldError `json:"errors,omitempty"`
}

func errorEncoder(_ context.Context, err error, w http.ResponseWriter) {
	code := err2code(err)

	body := errorWrapper{Message: err.Error()}
	if code == http.StatusInternalServerError {
		// Internal detail goes to the logs, not the caller.
		body.Message = "server error"
	}

	var verr *validate.Error
	if errors.As(err, &verr) {
		body.Errors = verr.Fields
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func err2code(err error) int {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}

	switch err {
	case kitjwt.ErrTokenContextMissing,
		kitjwt.ErrTokenInvalid,
		kitjwt.ErrTokenExpired,
		kitjwt.ErrTokenMalformed,
		kitjwt.ErrTokenNotActive,
		kitjwt.ErrUnexpectedSigningMethod,
		authsvc.ErrClaimsMissing,
		authsvc.ErrClaimsInvalid,
		authsvc.ErrUserContextMissing,
		tokenstore.ErrKeyNotFound,
		usersvc.ErrUserNotFound:
		return http.StatusUnauthorized
	case tasksvc.ErrTaskNotFound:
		return http.StatusNotFound
	case tasksvc.ErrInvalidArgument:
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func decodeHTTPCreateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req taskendpoint.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, tasksvc.ErrInvalidArgument
	}
	return req, nil
}

func decodeHTTPTasksRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return taskendpoint.TasksRequest{
		Filter: tasksvc.StatusFilter(r.URL.Query().Get("status")),
	}, nil
}

func decodeHTTPTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	taskID, err := taskID(r)
	if err != nil {
		return nil, err
	}

	return taskendpoint.TaskRequest{TaskID: taskID}, nil
}

func decodeHTTPUpdateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := taskID(r)
	if err != nil {
		return nil, err
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return nil, tasksvc.ErrInvalidArgument
	}

	patch, err := tasksvc.ParseTaskPatch(body)
	if err != nil {
		return nil, err
	}

	return taskendpoint.UpdateTaskRequest{TaskID: id, Patch: patch}, nil
}

func decodeHTTPDeleteTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := taskID(r)
	if err != nil {
		return nil, err
	}

	return taskendpoint.DeleteTaskRequest{TaskID: id}, nil
}

// taskID parses the task_id path variable. A malformed id cannot match
// any owned task, so it reports NotFound rather than a validation error,
// keeping the response indistinguishable from an unowned id.
func taskID(r *http.Request) (uint64, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["task_id"], 10, 64)
	if err != nil {
		return 0, tasksvc.ErrTaskNotFound
	}
	return id, nil
}

func encodeHTTPGenericResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
		errorEncoder(ctx, f.Failed(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if sc, ok := response.(httptransport.StatusCoder); ok {
		w.WriteHeader(sc.StatusCode())
	}
	return json.NewEncoder(w).Encode(response)
}
