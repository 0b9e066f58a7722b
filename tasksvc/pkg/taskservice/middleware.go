package taskservice

import (
	"context"
	"time"

	"github.com/ajisaka/taskdeck/authsvc"
	"github.com/ajisaka/taskdeck/tasksvc"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
)

type Middleware func(Service) Service

func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return loggingMiddleware{logger, next}
	}
}

type loggingMiddleware struct {
	logger log.Logger
	next   Service
}

func (mw loggingMiddleware) CreateTask(ctx context.Context, user authsvc.AuthenticatedUser, title, description string, priority tasksvc.Priority) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "CreateTask",
			"user_id", user.ID,
			"title", title,
			"priority", priority,
			"task_id", t.ID,
			"err", err,
		)
	}()
	return mw.next.CreateTask(ctx, user, title, description, priority)
}

func (mw loggingMiddleware) Tasks(ctx context.Context, user authsvc.AuthenticatedUser, filter tasksvc.StatusFilter) (t []tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Tasks",
			"user_id", user.ID,
			"filter", filter,
			"count", len(t),
			"err", err,
		)
	}()
	return mw.next.Tasks(ctx, user, filter)
}

func (mw loggingMiddleware) Task(ctx context.Context, user authsvc.AuthenticatedUser, taskID uint64) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Task",
			"user_id", user.ID,
			"task_id", taskID,
			"err", err,
		)
	}()
	return mw.next.Task(ctx, user, taskID)
}

func (mw loggingMiddleware) UpdateTask(ctx context.Context, user authsvc.AuthenticatedUser, taskID uint64, patch tasksvc.TaskPatch) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "UpdateTask",
			"user_id", user.ID,
			"task_id", taskID,
			"err", err,
		)
	}()
	return mw.next.UpdateTask(ctx, user, taskID, patch)
}

func (mw loggingMiddleware) DeleteTask(ctx context.Context, user authsvc.AuthenticatedUser, taskID uint64) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "DeleteTask",
			"user_id", user.ID,
			"task_id", taskID,
			"err", err,
		)
	}()
	return mw.next.DeleteTask(ctx, user, taskID)
}

func InstrumentingMiddleware(counter metrics.Counter, latency metrics.Histogram) Middleware {
	return func(next Service) Service {
		return instrumentingMiddleware{counter, latency, next}
	}
}

type instrumentingMiddleware struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	next           Service
}

func (mw instrumentingMiddleware) CreateTask(ctx context.Context, user authsvc.AuthenticatedUser, title, description string, priority tasksvc.Priority) (t tasksvc.Task, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "create_task").Add(1)
		mw.requestLatency.With("method", "create_task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.CreateTask(ctx, user, title, description, priority)
}

func (mw instrumentingMiddleware) Tasks(ctx context.Context, user authsvc.AuthenticatedUser, filter tasksvc.StatusFilter) (t []tasksvc.Task, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "tasks").Add(1)
		mw.requestLatency.With("method", "tasks").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Tasks(ctx, user, filter)
}

func (mw instrumentingMiddleware) Task(ctx context.Context, user authsvc.AuthenticatedUser, taskID uint64) (t tasksvc.Task, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "task").Add(1)
		mw.requestLatency.With("method", "task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Task(ctx, user, taskID)
}

func (mw instrumentingMiddleware) UpdateTask(ctx context.Context, user authsvc.AuthenticatedUser, taskID uint64, patch tasksvc.TaskPatch) (t tasksvc.Task, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "update_task").Add(1)
		mw.requestLatency.With("method", "update_task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.UpdateTask(ctx, user, taskID, patch)
}

func (mw instrumentingMiddleware) DeleteTask(ctx context.Context, user authsvc.AuthenticatedUser, taskID uint64) (t tasksvc.Task, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "delete_task").Add(1)
		mw.requestLatency.With("method", "delete_task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.DeleteTask(ctx, user, taskID)
}
