package userendpoint

import (
	"context"
	"net/http"

	"github.com/ajisaka/taskdeck/usersvc"
	"github.com/ajisaka/taskdeck/usersvc/pkg/userservice"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
)

type Set struct {
	RegisterEndpoint endpoint.Endpoint
	LoginEndpoint    endpoint.Endpoint
	MeEndpoint       endpoint.Endpoint
	LogoutEndpoint   endpoint.Endpoint
}

func New(svc userservice.Service, logger log.Logger) Set {
	var registerEndpoint endpoint.Endpoint
	{
		registerEndpoint = MakeRegisterEndpoint(svc)
		registerEndpoint = LoggingMiddleware(log.With(logger, "method", "Register"))(registerEndpoint)
	}
	var loginEndpoint endpoint.Endpoint
	{
		loginEndpoint = MakeLoginEndpoint(svc)
		loginEndpoint = LoggingMiddleware(log.With(logger, "method", "Login"))(loginEndpoint)
	}
	var meEndpoint endpoint.Endpoint
	{
		meEndpoint = MakeMeEndpoint(svc)
		meEndpoint = LoggingMiddleware(log.With(logger, "method", "Me"))(meEndpoint)
	}
	var logoutEndpoint endpoint.Endpoint
	{
		logoutEndpoint = MakeLogoutEndpoint(svc)
		logoutEndpoint = LoggingMiddleware(log.With(logger, "method", "Logout"))(logoutEndpoint)
	}

	return Set{
		RegisterEndpoint: registerEndpoint,
		LoginEndpoint:    loginEndpoint,
		MeEndpoint:       meEndpoint,
		LogoutEndpoint:   logoutEndpoint,
	}
}

func MakeRegisterEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(RegisterRequest)
		u, token, err := s.Register(ctx, req.Name, req.Email, req.Password)
		return RegisterResponse{User: u, Token: token, Err: err}, nil
	}
}

func MakeLoginEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(LoginRequest)
		u, token, err := s.Login(ctx, req.Email, req.Password)
		return LoginResponse{User: u, Token: token, Err: err}, nil
	}
}

func MakeMeEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		_ = request.(MeRequest)
		u, err := s.Me(ctx)
		return MeResponse{User: u, Err: err}, nil
	}
}

func MakeLogoutEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		_ = request.(LogoutRequest)
		_, err = s.Logout(ctx)
		if err != nil {
			return LogoutResponse{Err: err}, nil
		}
		return LogoutResponse{Message: "Logged out"}, nil
	}
}

var (
	_ endpoint.Failer = RegisterResponse{}
	_ endpoint.Failer = LoginResponse{}
	_ endpoint.Failer = MeResponse{}
	_ endpoint.Failer = LogoutResponse{}
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	User  usersvc.User `json:"user"`
	Token string       `json:"token"`
	Err   error        `json:"-"`
}

func (r RegisterResponse) Failed() error   { return r.Err }
func (r RegisterResponse) StatusCode() int { return http.StatusCreated }

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  usersvc.User `json:"user"`
	Token string       `json:"token"`
	Err   error        `json:"-"`
}

func (r LoginResponse) Failed() error { return r.Err }

type MeRequest struct{}

type MeResponse struct {
	User usersvc.User `json:"user"`
	Err  error        `json:"-"`
}

func (r MeResponse) Failed() error { return r.Err }

type LogoutRequest struct{}

type LogoutResponse struct {
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (r LogoutResponse) Failed() error { return r.Err }
