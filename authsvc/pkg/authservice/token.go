package authservice

import (
	"time"

	"github.com/ajisaka/taskdeck/authsvc"
	"github.com/dgrijalva/jwt-go"
	"github.com/twinj/uuid"
)

// AccessToken pairs a signed bearer token with the UUID embedded in its
// claims. The UUID is what the token store tracks for revocation.
type AccessToken struct {
	UUID string
	Hash string
}

type Tokenizer interface {
	Generate(userID uint64) (*AccessToken, error)
}

type tokenizer struct{}

func NewTokenizer() Tokenizer {
	return &tokenizer{}
}

var uuidV4 = uuid.NewV4

func (t *tokenizer) Generate(userID uint64) (*AccessToken, error) {
	id := uuidV4().String()
	expiry := time.Now().Add(TokenExpiry()).Unix()

	claims := jwt.MapClaims{
		"uuid":    id,
		"user_id": userID,
		"exp":     expiry,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	hash, err := tok.SignedString([]byte(authsvc.AccessSecret))
	if err != nil {
		return nil, err
	}

	return &AccessToken{id, hash}, nil
}

func TokenExpiry() time.Duration {
	return time.Hour * 24 * 7
}
