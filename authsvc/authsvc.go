package authsvc

import (
	"context"
	"errors"
	"os"
)

var (
	AppEnv       = getEnv("APP_ENV", "")
	AccessSecret = getEnv("ACCESS_SECRET", "access-secret")
)

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}
	return value
}

type contextKey string

const (
	UserContextKey    contextKey = "AuthenticatedUser"
	JWTUUIDContextKey contextKey = "JWTUUID"
)

// AuthenticatedUser is the identity the guard resolved for a request.
// It is attached to the context once per request and never mutated.
type AuthenticatedUser struct {
	ID    uint64
	Name  string
	Email string
}

func ContextWithUser(ctx context.Context, u AuthenticatedUser) context.Context {
	return context.WithValue(ctx, UserContextKey, u)
}

func UserFromContext(ctx context.Context) (AuthenticatedUser, error) {
	u, ok := ctx.Value(UserContextKey).(AuthenticatedUser)
	if !ok {
		return AuthenticatedUser{}, ErrUserContextMissing
	}
	return u, nil
}

func ContextWithTokenUUID(ctx context.Context, uuid string) context.Context {
	return context.WithValue(ctx, JWTUUIDContextKey, uuid)
}

func TokenUUIDFromContext(ctx context.Context) (string, error) {
	uuid, ok := ctx.Value(JWTUUIDContextKey).(string)
	if !ok {
		return "", ErrClaimsMissing
	}
	return uuid, nil
}

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUserContextMissing = errors.New("authenticated user was not passed through the context")
	ErrClaimsMissing      = errors.New("JWT claims was not passed through the context")
	ErrClaimsInvalid      = errors.New("JWT claims was invalid")
)
