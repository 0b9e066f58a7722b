package authtransport

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ajisaka/taskdeck/authsvc"
	"github.com/ajisaka/taskdeck/authsvc/tokenstore"
	"github.com/ajisaka/taskdeck/usersvc"
	stdjwt "github.com/dgrijalva/jwt-go"
	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/endpoint"
)

// NewAuthenticator guards an endpoint behind a verified bearer token. It
// expects the kit JWT parser to have run first, checks the token UUID
// against the allow-list, loads the user the claims point at and attaches
// it to the context. Any failure stops the request before the endpoint.
func NewAuthenticator(store tokenstore.Client, users usersvc.UserRepository) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			claims, ok := ctx.Value(kitjwt.JWTClaimsContextKey).(stdjwt.MapClaims)
			if !ok {
				return nil, authsvc.ErrClaimsMissing
			}

			tokenUUID, ok := claims["uuid"].(string)
			if !ok {
				return nil, authsvc.ErrClaimsInvalid
			}

			userID, err := strconv.ParseUint(fmt.Sprintf("%.f", claims["user_id"]), 10, 64)
			if err != nil {
				return nil, authsvc.ErrClaimsInvalid
			}

			if err := store.Get(tokenUUID); err != nil {
				return nil, err
			}

			user, err := users.Find(userID)
			if err != nil {
				return nil, err
			}

			ctx = authsvc.ContextWithUser(ctx, authsvc.AuthenticatedUser{
				ID:    user.ID,
				Name:  user.Name,
				Email: user.Email,
			})
			ctx = authsvc.ContextWithTokenUUID(ctx, tokenUUID)

			return next(ctx, request)
		}
	}
}
