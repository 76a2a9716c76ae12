package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/actorctx"
	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type fakeVerifier struct {
	verifyFn func(token string) (*auth.Claims, error)
}

func (f fakeVerifier) VerifyAccessToken(token string) (*auth.Claims, error) {
	return f.verifyFn(token)
}

type fakeRevoker struct {
	revoked map[string]bool
}

func (f fakeRevoker) Revoke(context.Context, string, time.Time) error { return nil }

func (f fakeRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], nil
}

func verifierFor(tokens map[string]auth.Claims) fakeVerifier {
	return fakeVerifier{verifyFn: func(token string) (*auth.Claims, error) {
		c, ok := tokens[token]
		if !ok {
			return nil, errors.New("bad token")
		}
		return &c, nil
	}}
}

var testTokens = map[string]auth.Claims{
	"member-token": {
		UserID: "u-member", Role: "member", JTI: "j-member",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	},
	"admin-token": {
		UserID: "u-admin", Role: "admin", JTI: "j-admin",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	},
	"revoked-token": {UserID: "u-gone", Role: "member", JTI: "j-revoked"},
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	m := NewAuthMiddleware(verifierFor(testTokens), fakeRevoker{revoked: map[string]bool{"j-revoked": true}})

	whoami := func(c *gin.Context) {
		id, _ := UserIDFromContext(c)
		actorID, _ := actorctx.UserIDFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": id, "actor_id": actorID})
	}

	r := gin.New()
	r.GET("/required", m.RequireAuth(), whoami)
	r.GET("/optional", m.OptionalAuth(), whoami)
	r.GET("/admin", m.RequireAuth(), RequireRole(user.RoleAdmin), whoami)
	return r
}

func doGet(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter()

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
		wantUser   string
	}{
		{"required without header", "/required", "", http.StatusUnauthorized, ""},
		{"required with bad token", "/required", "nope", http.StatusUnauthorized, ""},
		{"required with revoked token", "/required", "revoked-token", http.StatusUnauthorized, ""},
		{"required with good token", "/required", "member-token", http.StatusOK, "u-member"},
		{"optional anonymous", "/optional", "", http.StatusOK, ""},
		{"optional with bad token", "/optional", "nope", http.StatusUnauthorized, ""},
		{"optional with good token", "/optional", "member-token", http.StatusOK, "u-member"},
		{"admin as member", "/admin", "member-token", http.StatusForbidden, ""},
		{"admin as admin", "/admin", "admin-token", http.StatusOK, "u-admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, tt.path, tt.token)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}

			if tt.wantStatus != http.StatusOK {
				if body["message"] == "" {
					t.Fatalf("error response should carry a message: %s", w.Body.String())
				}
				return
			}

			if body["user_id"] != tt.wantUser || body["actor_id"] != tt.wantUser {
				t.Fatalf("caller = %q/%q, want %q", body["user_id"], body["actor_id"], tt.wantUser)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.GET("/login", rl.RateLimiterMiddleware(KeyByIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := doGet(r, "/login", ""); w.Code != http.StatusOK {
			t.Fatalf("hit %d: status %d", i, w.Code)
		}
	}

	w := doGet(r, "/login", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q", w.Header().Get("Retry-After"))
	}

	now = now.Add(61 * time.Second)
	if w := doGet(r, "/login", ""); w.Code != http.StatusOK {
		t.Fatalf("after window: status %d", w.Code)
	}
}

func TestRequireJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequireJSON())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.PUT("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"json body", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"form body", http.MethodPost, `a=b`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"no content type", http.MethodPost, `{}`, "", http.StatusUnsupportedMediaType},
		{"empty put", http.MethodPut, ``, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestMaxBodyBytes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"name":"far too long"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID(), SecurityHeaders())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })
	r.GET("/docs", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-Id") != "req-123" || w.Body.String() != "req-123" {
		t.Fatalf("request id not propagated: header=%q body=%q", w.Header().Get("X-Request-Id"), w.Body.String())
	}
	if w.Header().Get("Content-Security-Policy") != defaultCSP {
		t.Fatalf("unexpected CSP %q", w.Header().Get("Content-Security-Policy"))
	}

	w = doGet(r, "/docs", "")
	if w.Header().Get("Content-Security-Policy") != docsCSP {
		t.Fatalf("docs should get the relaxed CSP")
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected a generated request id")
	}
}
