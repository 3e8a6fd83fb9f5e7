package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	domainuser "rentbook/internal/domain/user"
)

const (
	principalContextKey = "rentbook.principal"
	usernameHeader      = "X-Username"
)

type principal struct {
	Username string
}

type tokenClaims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware resolves the acting user from an HS256 bearer token. The
// username comes from the "username" claim, falling back to "sub". A
// malformed, forged or expired token is rejected with 401 rather than
// treated as anonymous. With TrustHeader set and no secret, the X-Username
// header is taken as is; that mode is meant for local runs behind a
// trusted gateway.
type AuthMiddleware struct {
	Secret      []byte
	TrustHeader bool
	Logger      *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	if len(m.Secret) == 0 {
		if m.TrustHeader {
			if name := domainuser.NormalizeUsername(c.GetHeader(usernameHeader)); name != "" {
				setPrincipal(c, principal{Username: name})
			}
		}
		c.Next()
		return
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		c.Next()
		return
	}
	token := extractBearerToken(header)
	if token == "" {
		abortUnauthorized(c, "bearer token required")
		return
	}
	username, err := m.parse(token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		abortUnauthorized(c, "invalid token")
		return
	}
	setPrincipal(c, principal{Username: username})
	c.Next()
}

var errNoSubject = errors.New("token carries no username")

func (m AuthMiddleware) parse(raw string) (string, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	username := claims.Username
	if username == "" {
		username = claims.Subject
	}
	username = domainuser.NormalizeUsername(username)
	if username == "" {
		return "", errNoSubject
	}
	return username, nil
}

// IssueToken signs a token for username; used by tooling and tests.
func IssueToken(secret []byte, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// requirePrincipal writes 401 and returns false when nobody is signed in.
// Every write endpoint goes through it, so commands reaching the bus from
// this adapter always carry an actor.
func requirePrincipal(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		abortUnauthorized(c, "auth required")
		return principal{}, false
	}
	return p, true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "kind": "unauthorized"})
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
