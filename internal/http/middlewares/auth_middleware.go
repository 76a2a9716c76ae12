package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/actorctx"
	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt     TokenVerifier
	revoker auth.Revoker
}

// NewAuthMiddleware builds the bearer-token middleware. revoker may be nil,
// in which case signed-out tokens are not tracked.
func NewAuthMiddleware(jwt TokenVerifier, revoker auth.Revoker) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, revoker: revoker}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", true
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), true
}

// authenticate verifies the token and stashes the caller on both the gin
// context and the request context. It writes the 401 itself on failure.
func (m *AuthMiddleware) authenticate(c *gin.Context, raw string) bool {
	if raw == "" {
		abortMessage(c, http.StatusUnauthorized, "Missing or invalid access token")
		return false
	}

	claims, err := m.jwt.VerifyAccessToken(raw)
	if err != nil {
		abortMessage(c, http.StatusUnauthorized, "Invalid or expired access token")
		return false
	}

	if m.revoker != nil {
		revoked, err := m.revoker.IsRevoked(c.Request.Context(), claims.JTI)
		if err != nil {
			abortMessage(c, http.StatusInternalServerError, "Unable to verify access token")
			return false
		}
		if revoked {
			abortMessage(c, http.StatusUnauthorized, "Invalid or expired access token")
			return false
		}
	}

	role := claims.UserRole()

	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxRole, role)
	c.Set(CtxTokenJTI, claims.JTI)
	if claims.ExpiresAt != nil {
		c.Set(CtxTokenExp, claims.ExpiresAt.Time)
	}

	c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actorctx.Actor{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   role,
	}))

	return true
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, present := bearerToken(c)
		if !present {
			abortMessage(c, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		if !m.authenticate(c, raw) {
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the caller when an Authorization header is sent and
// lets anonymous requests through. A header that is present but bad is
// still rejected.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, present := bearerToken(c)
		if !present {
			c.Next()
			return
		}

		if !m.authenticate(c, raw) {
			return
		}
		c.Next()
	}
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func RoleFromContext(c *gin.Context) (user.Role, bool) {
	v, ok := c.Get(CtxRole)
	if !ok {
		return 0, false
	}
	role, ok := v.(user.Role)
	return role, ok && role.IsValid()
}

// TokenFromContext returns the jti and expiry of the verified token.
func TokenFromContext(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString(CtxTokenJTI)
	if jti == "" {
		return "", time.Time{}, false
	}

	exp, _ := c.Get(CtxTokenExp)
	expiresAt, _ := exp.(time.Time)

	return jti, expiresAt, true
}
