package security

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hackr_api/internal/common"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// AuthCookieName is the cookie that carries the session token.
const AuthCookieName = "auth-token"

const (
	claimUserID    = "id"
	claimFirstName = "firstName"
)

// TokenClaims is the identity embedded in a session token.
type TokenClaims struct {
	UserID    string
	FirstName string
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
	now  func() time.Time
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{
		auth: jwtauth.New("HS256", secret, nil),
		ttl:  ttl,
		now:  time.Now,
	}
}

// TTL is how long an issued token stays valid; the session cookie uses the same lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(userID, firstName string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		claimUserID:    userID,
		claimFirstName: firstName,
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, now.Add(s.ttl))

	_, tokenString, err := s.auth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("encoding token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature and expiry and returns the embedded identity.
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwtauth.VerifyToken(s.auth, tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claimsFromMap(claims)
}

// Verifier decodes the session cookie of every request into the context.
// It never rejects; ClaimsFromContext reports what it found.
func (s *TokenService) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verify(s.auth, TokenFromAuthCookie)
}

// ClaimsFromContext reads the result left by Verifier. A missing cookie is
// ErrUnauthorized; anything that failed to decode or validate is ErrInvalidToken.
func ClaimsFromContext(ctx context.Context) (*TokenClaims, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		if errors.Is(err, jwtauth.ErrNoTokenFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if token == nil {
		return nil, common.ErrUnauthorized
	}
	return claimsFromMap(claims)
}

// TokenFromAuthCookie is a jwtauth token finder for the session cookie.
func TokenFromAuthCookie(r *http.Request) string {
	cookie, err := r.Cookie(AuthCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SessionCookie builds the cookie that carries a freshly issued token.
func SessionCookie(token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ExpiredSessionCookie clears the session cookie on the client.
func ExpiredSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func claimsFromMap(claims jwt.MapClaims) (*TokenClaims, error) {
	userID, err := GetUserIDFromClaims(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	firstName, _ := claims[claimFirstName].(string)
	return &TokenClaims{UserID: userID, FirstName: firstName}, nil
}

// Helper functions to extract claims, can be used in middleware or services
func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims[claimUserID].(string)
	if !ok || id == "" {
		return "", errors.New("id claim is missing or not a string")
	}
	return id, nil
}
