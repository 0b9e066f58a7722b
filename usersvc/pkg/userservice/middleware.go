package userservice

import (
	"context"

	"github.com/ajisaka/taskdeck/usersvc"
	"github.com/go-kit/kit/log"
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

func (mw loggingMiddleware) Register(ctx context.Context, name, email, password string) (u usersvc.User, token string, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Register",
			"email", email,
			"user_id", u.ID,
			"err", err,
		)
	}()
	return mw.next.Register(ctx, name, email, password)
}

func (mw loggingMiddleware) Login(ctx context.Context, email, password string) (u usersvc.User, token string, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Login",
			"email", email,
			"user_id", u.ID,
			"err", err,
		)
	}()
	return mw.next.Login(ctx, email, password)
}

func (mw loggingMiddleware) Me(ctx context.Context) (u usersvc.User, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Me",
			"user_id", u.ID,
			"err", err,
		)
	}()
	return mw.next.Me(ctx)
}

func (mw loggingMiddleware) Logout(ctx context.Context) (result bool, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Logout",
			"result", result,
			"err", err,
		)
	}()
	return mw.next.Logout(ctx)
}
