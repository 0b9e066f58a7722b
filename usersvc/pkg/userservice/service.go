package userservice

import (
	"context"
	"net/mail"
	"strings"

	"github.com/ajisaka/taskdeck/authsvc"
	"github.com/ajisaka/taskdeck/authsvc/pkg/authservice"
	"github.com/ajisaka/taskdeck/authsvc/tokenstore"
	"github.com/ajisaka/taskdeck/usersvc"
	"github.com/ajisaka/taskdeck/validate"
	"github.com/go-kit/kit/log"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, name, email, password string) (usersvc.User, string, error)
	Login(ctx context.Context, email, password string) (usersvc.User, string, error)
	Me(ctx context.Context) (usersvc.User, error)
	Logout(ctx context.Context) (bool, error)
}

func New(users usersvc.UserRepository, tokenizer authservice.Tokenizer, tokens tokenstore.Client, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(users, tokenizer, tokens)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	users     usersvc.UserRepository
	tokenizer authservice.Tokenizer
	tokens    tokenstore.Client
}

func NewBasicService(users usersvc.UserRepository, tokenizer authservice.Tokenizer, tokens tokenstore.Client) Service {
	return &basicService{users: users, tokenizer: tokenizer, tokens: tokens}
}

func (s *basicService) Register(_ context.Context, name, email, password string) (usersvc.User, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	var verr validate.Error
	if name == "" {
		verr.Add("name", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		verr.Add("email", "is not a valid email address")
	}
	if !validate.Length(password, 6, 0) {
		verr.Add("password", "must be at least 6 characters")
	}
	if err := verr.Err(); err != nil {
		return usersvc.User{}, "", err
	}

	if _, err := s.users.FindByEmail(email); err == nil {
		return usersvc.User{}, "", usersvc.ErrEmailTaken
	} else if err != usersvc.ErrUserNotFound {
		return usersvc.User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return usersvc.User{}, "", err
	}

	user, err := s.users.Create(name, email, string(hash))
	if err != nil {
		return usersvc.User{}, "", err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return usersvc.User{}, "", err
	}

	return user, token, nil
}

func (s *basicService) Login(_ context.Context, email, password string) (usersvc.User, string, error) {
	user, err := s.users.FindByEmail(normalizeEmail(email))
	if err == usersvc.ErrUserNotFound {
		// Same error as a wrong password, so callers cannot probe
		// which addresses are registered.
		return usersvc.User{}, "", usersvc.ErrInvalidCredentials
	}
	if err != nil {
		return usersvc.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return usersvc.User{}, "", usersvc.ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return usersvc.User{}, "", err
	}

	return user, token, nil
}

func (s *basicService) Me(ctx context.Context) (usersvc.User, error) {
	auth, err := authsvc.UserFromContext(ctx)
	if err != nil {
		return usersvc.User{}, err
	}

	return s.users.Find(auth.ID)
}

func (s *basicService) Logout(ctx context.Context) (bool, error) {
	tokenUUID, err := authsvc.TokenUUIDFromContext(ctx)
	if err != nil {
		return false, err
	}

	if err := s.tokens.Delete(tokenUUID); err != nil {
		return false, err
	}

	return true, nil
}

func (s *basicService) issueToken(userID uint64) (string, error) {
	at, err := s.tokenizer.Generate(userID)
	if err != nil {
		return "", err
	}

	if err := s.tokens.Put(at.UUID, []byte(at.Hash)); err != nil {
		return "", err
	}

	return at.Hash, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
