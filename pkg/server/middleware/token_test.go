package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/server/store"
)

type fakeUsers struct {
	users map[uint]*model.User
}

func (f *fakeUsers) FetchByUsername(username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUsers) FetchByID(id uint) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

func newAuthenticator() (*TokenAuthenticator, *fakeUsers) {
	users := &fakeUsers{users: map[uint]*model.User{
		3: {ID: 3, Username: "alice"},
	}}
	return NewTokenAuthenticator([]byte("test-signing-key"), users), users
}

func callProtected(t *testing.T, auth *TokenAuthenticator, header string) (*httptest.ResponseRecorder, *model.User) {
	t.Helper()

	var seen *model.User
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := r.Context().Value(UserContextKey).(*model.User); ok {
			seen = u
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/entries/1", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestTokenRoundtrip(t *testing.T) {
	auth, _ := newAuthenticator()

	token, err := auth.Issue(3, time.Minute)
	require.NoError(t, err)

	rec, user := callProtected(t, auth, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
}

func TestTokenMissingHeader(t *testing.T) {
	auth, _ := newAuthenticator()

	rec, user := callProtected(t, auth, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, user)
}

func TestTokenMalformedHeader(t *testing.T) {
	auth, _ := newAuthenticator()

	rec, _ := callProtected(t, auth, "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Malformed authorization header", rec.Body.String())
}

func TestTokenWrongKey(t *testing.T) {
	auth, _ := newAuthenticator()
	other := NewTokenAuthenticator([]byte("another-key"), nil)

	token, err := other.Issue(3, time.Minute)
	require.NoError(t, err)

	rec, _ := callProtected(t, auth, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", rec.Body.String())
}

func TestTokenExpired(t *testing.T) {
	auth, _ := newAuthenticator()

	token, err := auth.Issue(3, -time.Minute)
	require.NoError(t, err)

	rec, _ := callProtected(t, auth, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenUnknownUser(t *testing.T) {
	auth, _ := newAuthenticator()

	token, err := auth.Issue(99, time.Minute)
	require.NoError(t, err)

	rec, _ := callProtected(t, auth, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unknown user", rec.Body.String())
}
