package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/user"
	apphttp "github.com/geocoder89/taskhub/internal/http"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type apiResponse struct {
	Message     string              `json:"message"`
	Data        json.RawMessage     `json:"data"`
	Errors      map[string][]string `json:"errors"`
	AccessToken string              `json:"access_token"`
}

type testServer struct {
	router http.Handler
	users  service.UserStore
	tasks  service.TaskStore
}

type serverOption func(*apphttp.Deps)

func requireAdminForUsers(d *apphttp.Deps) { d.RequireAdminForUsers = true }

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	usersRepo := memory.NewUsersRepo()
	tasksRepo := memory.NewTasksRepo()

	hasher := security.Hasher{Cost: bcrypt.MinCost}

	deps := apphttp.Deps{
		Log:            logger,
		Env:            "test",
		Users:          service.NewUsers(usersRepo, tasksRepo, hasher, logger),
		Tasks:          service.NewTasks(tasksRepo, usersRepo, logger),
		Tokens:         auth.NewManager("test-secret-key", time.Hour),
		Revoker:        auth.NewMemoryRevoker(),
		MaxBodyBytes:   1 << 20,
		AuthRateLimit:  1000,
		AuthRateWindow: time.Minute,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &testServer{
		router: apphttp.NewRouter(deps),
		users:  usersRepo,
		tasks:  tasksRepo,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: decode body: %v body=%s", method, path, err, w.Body.String())
	}

	return w.Code, resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode data: %v raw=%s", err, string(raw))
	}
	return out
}

type registeredUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *testServer) register(t *testing.T, first, email string) registeredUser {
	t.Helper()

	status, resp := s.do(t, http.MethodPost, "/register", "", map[string]string{
		"first_name":            first,
		"last_name":             "Tester",
		"email":                 email,
		"password":              "secret1",
		"password_confirmation": "secret1",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d (%s) %v", email, status, resp.Message, resp.Errors)
	}

	return decode[registeredUser](t, resp.Data)
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()

	status, resp := s.do(t, http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": "secret1",
	})
	if status != http.StatusOK || resp.AccessToken == "" {
		t.Fatalf("login %s: status %d (%s)", email, status, resp.Message)
	}

	return resp.AccessToken
}

// seedAdmin writes an admin straight to the store, the same way startup
// seeding does.
func (s *testServer) seedAdmin(t *testing.T, email string) user.User {
	t.Helper()

	hash, err := security.Hasher{Cost: bcrypt.MinCost}.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	u, err := s.users.Create(context.Background(), user.NewAdmin("Root", "Admin", email, hash))
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return u
}
