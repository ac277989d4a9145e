package security

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hackr_api/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-with-enough-length-123")

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	token, err := svc.Issue("3f1b7c1e-8a5e-4a59-9b32-0d3c5b9f2a11", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "3f1b7c1e-8a5e-4a59-9b32-0d3c5b9f2a11", claims.UserID)
	assert.Equal(t, "Alice", claims.FirstName)
}

func TestTokenService_VerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService(testSecret, time.Hour)
	other := NewTokenService([]byte("a-completely-different-secret-456"), time.Hour)

	token, err := issuer.Issue("user-1", "Alice")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestTokenService_VerifyRejectsExpired(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.Issue("user-1", "Alice")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestTokenService_VerifyRejectsGarbage(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerifierAndClaimsFromContext(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	valid, err := svc.Issue("user-1", "Alice")
	require.NoError(t, err)

	tests := []struct {
		name    string
		cookie  *http.Cookie
		wantErr error
	}{
		{name: "no cookie", wantErr: common.ErrUnauthorized},
		{name: "garbage cookie", cookie: &http.Cookie{Name: AuthCookieName, Value: "garbage"}, wantErr: common.ErrInvalidToken},
		{name: "valid cookie", cookie: &http.Cookie{Name: AuthCookieName, Value: valid}},
		{name: "other cookie name", cookie: &http.Cookie{Name: "jwt", Value: valid}, wantErr: common.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				claims *TokenClaims
				gotErr error
			)
			h := svc.Verifier()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, gotErr = ClaimsFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(gotErr, tt.wantErr), "got %v, want %v", gotErr, tt.wantErr)
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, "user-1", claims.UserID)
		})
	}
}

func TestClaimsFromContext_NoVerifier(t *testing.T) {
	_, err := ClaimsFromContext(context.Background())
	assert.Error(t, err)
}

func TestSessionCookies(t *testing.T) {
	c := SessionCookie("tok", 24*time.Hour, true)
	assert.Equal(t, AuthCookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, 86400, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, "/", c.Path)

	expired := ExpiredSessionCookie(false)
	assert.Equal(t, AuthCookieName, expired.Name)
	assert.Empty(t, expired.Value)
	assert.Less(t, expired.MaxAge, 0)
	assert.False(t, expired.Secure)
}

func TestGetUserIDFromClaims(t *testing.T) {
	id, err := GetUserIDFromClaims(jwt.MapClaims{"id": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = GetUserIDFromClaims(jwt.MapClaims{"id": 42})
	assert.Error(t, err)

	_, err = GetUserIDFromClaims(jwt.MapClaims{})
	assert.Error(t, err)
}
