package usertransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ajisaka/taskdeck/authsvc"
	"github.com/ajisaka/taskdeck/authsvc/tokenstore"
	"github.com/ajisaka/taskdeck/usersvc"
	"github.com/ajisaka/taskdeck/usersvc/pkg/userendpoint"
	"github.com/ajisaka/taskdeck/validate"
	stdjwt "github.com/dgrijalva/jwt-go"
	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
)

// NewHTTPHandler mounts the credential routes. Register and login are
// open; me and logout sit behind the JWT parser and the authenticator.
func NewHTTPHandler(endpoints userendpoint.Set, authenticator endpoint.Middleware, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}

	kf := func(token *stdjwt.Token) (interface{}, error) {
		return []byte(authsvc.AccessSecret), nil
	}

	guard := func(e endpoint.Endpoint) endpoint.Endpoint {
		e = authenticator(e)
		e = kitjwt.NewParser(kf, stdjwt.SigningMethodHS256, kitjwt.MapClaimsFactory)(e)
		return e
	}

	registerHandler := httptransport.NewServer(
		endpoints.RegisterEndpoint,
		decodeHTTPRegisterRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	loginHandler := httptransport.NewServer(
		endpoints.LoginEndpoint,
		decodeHTTPLoginRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	meHandler := httptransport.NewServer(
		guard(endpoints.MeEndpoint),
		decodeHTTPMeRequest,
		encodeHTTPGenericResponse,
		append(options, httptransport.ServerBefore(kitjwt.HTTPToContext()))...,
	)

	logoutHandler := httptransport.NewServer(
		guard(endpoints.LogoutEndpoint),
		decodeHTTPLogoutRequest,
		encodeHTTPGenericResponse,
		append(options, httptransport.ServerBefore(kitjwt.HTTPToContext()))...,
	)

	r := mux.NewRouter()

	r.Methods("POST").Path("/users/register").Handler(registerHandler)
	r.Methods("POST").Path("/users/login").Handler(loginHandler)
	r.Methods("GET").Path("/users/me").Handler(meHandler)
	r.Methods("POST").Path("/users/logout").Handler(logoutHandler)

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
		usersvc.ErrUserNotFound,
		usersvc.ErrInvalidCredentials:
		return http.StatusUnauthorized
	case usersvc.ErrEmailTaken, usersvc.ErrInvalidArgument:
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func decodeHTTPRegisterRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req userendpoint.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, usersvc.ErrInvalidArgument
	}
	return req, nil
}

func decodeHTTPLoginRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req userendpoint.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, usersvc.ErrInvalidArgument
	}
	return req, nil
}

func decodeHTTPMeRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return userendpoint.MeRequest{}, nil
}

func decodeHTTPLogoutRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return userendpoint.LogoutRequest{}, nil
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
