package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (string, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var identity string
	err := mw(func(c echo.Context) error {
		identity = Identity(c)
		return nil
	})(c)
	return identity, err
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected echo.HTTPError, got %v", err)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestJWTAuthMiddleware(t *testing.T) {
	mw := JWTAuthMiddleware(secret)

	token, err := IssueToken(42, "a@b.c", secret, time.Hour)
	require.NoError(t, err)

	identity, err := runMiddleware(t, mw, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "42", identity)

	_, err = runMiddleware(t, mw, "")
	assertUnauthorized(t, err)

	_, err = runMiddleware(t, mw, token)
	assertUnauthorized(t, err)

	forged, err := IssueToken(42, "a@b.c", "other-secret", time.Hour)
	require.NoError(t, err)
	_, err = runMiddleware(t, mw, "Bearer "+forged)
	assertUnauthorized(t, err)

	expired, err := IssueToken(42, "a@b.c", secret, -time.Minute)
	require.NoError(t, err)
	_, err = runMiddleware(t, mw, "Bearer "+expired)
	assertUnauthorized(t, err)
}

func TestParseTokenRejectsZeroUser(t *testing.T) {
	token, err := IssueToken(0, "", secret, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(token, secret)
	assert.Error(t, err)
}

type fakeVerifier map[string]string

func (f fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	uid, ok := f[idToken]
	if !ok {
		return nil, errors.New("token rejected")
	}
	return &auth.Token{UID: uid}, nil
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	mw := FirebaseAuthMiddleware(fakeVerifier{"good": "firebase-uid-1"})

	identity, err := runMiddleware(t, mw, "Bearer good")
	require.NoError(t, err)
	assert.Equal(t, "firebase-uid-1", identity)

	_, err = runMiddleware(t, mw, "Bearer bad")
	assertUnauthorized(t, err)

	_, err = runMiddleware(t, mw, "Basic good")
	assertUnauthorized(t, err)
}
