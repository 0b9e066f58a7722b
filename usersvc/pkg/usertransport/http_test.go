package usertransport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ajisaka/taskdeck/authsvc/pkg/authservice"
	"github.com/ajisaka/taskdeck/authsvc/pkg/authtransport"
	"github.com/ajisaka/taskdeck/authsvc/tokenstore"
	"github.com/ajisaka/taskdeck/usersvc"
	"github.com/ajisaka/taskdeck/usersvc/pkg/userendpoint"
	"github.com/ajisaka/taskdeck/usersvc/pkg/userservice"
	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepository struct {
	nextID uint64
	users  map[uint64]usersvc.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[uint64]usersvc.User)}
}

func (r *fakeUserRepository) Create(name, email, passwordHash string) (usersvc.User, error) {
	r.nextID++
	user := usersvc.User{ID: r.nextID, Name: name, Email: email, Password: passwordHash}
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepository) FindByEmail(email string) (usersvc.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return usersvc.User{}, usersvc.ErrUserNotFound
}

func (r *fakeUserRepository) Find(id uint64) (usersvc.User, error) {
	u, ok := r.users[id]
	if !ok {
		return usersvc.User{}, usersvc.ErrUserNotFound
	}
	return u, nil
}

type fakeTokenStore struct {
	keys map[string][]byte
}

func (s *fakeTokenStore) Get(key string) error {
	if _, ok := s.keys[key]; !ok {
		return tokenstore.ErrKeyNotFound
	}
	return nil
}

func (s *fakeTokenStore) Put(key string, value []byte) error {
	s.keys[key] = value
	return nil
}

func (s *fakeTokenStore) Delete(key string) error {
	delete(s.keys, key)
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	users := newFakeUserRepository()
	store := &fakeTokenStore{keys: make(map[string][]byte)}

	logger := log.NewNopLogger()
	svc := userservice.New(users, authservice.NewTokenizer(), store, logger)
	endpoints := userendpoint.New(svc, logger)
	authenticator := authtransport.NewAuthenticator(store, users)
	handler := NewHTTPHandler(endpoints, authenticator, logger)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token, body string) (*http.Response, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	return resp, decoded
}

func register(t *testing.T, srv *httptest.Server, name, email, password string) (*http.Response, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"name": name, "email": email, "password": password})
	require.NoError(t, err)

	return do(t, srv, "POST", "/users/register", "", string(payload))
}

func TestHTTPRegister(t *testing.T) {
	srv := newTestServer(t)

	resp, body := register(t, srv, "Alice", "Alice@Example.com", "hunter22")

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotZero(t, user["id"])

	// The password hash never leaves the server.
	_, leaked := user["password"]
	assert.False(t, leaked)
}

func TestHTTPRegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	resp, body := register(t, srv, "", "not-an-email", "123")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["message"])

	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	assert.Len(t, errs, 3)
}

func TestHTTPRegisterConflict(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := register(t, srv, "Alice", "alice@example.com", "hunter22")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := register(t, srv, "Imposter", "ALICE@example.com", "secret99")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "user already exists", body["message"])
}

func TestHTTPLogin(t *testing.T) {
	srv := newTestServer(t)

	_, _ = register(t, srv, "Alice", "alice@example.com", "hunter22")

	resp, body := do(t, srv, "POST", "/users/login", "", `{"email":"alice@example.com","password":"hunter22"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", user["email"])
}

func TestHTTPLoginFailuresLookAlike(t *testing.T) {
	srv := newTestServer(t)

	_, _ = register(t, srv, "Alice", "alice@example.com", "hunter22")

	wrongPassword, wrongBody := do(t, srv, "POST", "/users/login", "", `{"email":"alice@example.com","password":"nope"}`)
	unknownEmail, unknownBody := do(t, srv, "POST", "/users/login", "", `{"email":"nobody@example.com","password":"hunter22"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)
	assert.Equal(t, wrongBody, unknownBody)
}

func TestHTTPMe(t *testing.T) {
	srv := newTestServer(t)

	_, registered := register(t, srv, "Alice", "alice@example.com", "hunter22")
	token := registered["token"].(string)

	resp, body := do(t, srv, "GET", "/users/me", token, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, "alice@example.com", user["email"])
}

func TestHTTPMeRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, "GET", "/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTPLogout(t *testing.T) {
	srv := newTestServer(t)

	_, registered := register(t, srv, "Alice", "alice@example.com", "hunter22")
	token := registered["token"].(string)

	resp, body := do(t, srv, "POST", "/users/logout", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out", body["message"])

	// The token is revoked, not just expired client-side.
	resp, _ = do(t, srv, "GET", "/users/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
