package user_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

func TestNewMemberDefaults(t *testing.T) {
	u := user.NewMember(" Ada ", "Lovelace", "  Ada@Example.COM ", "hash")

	if u.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if u.Role != user.RoleMember {
		t.Fatalf("got role %s, want member", u.Role)
	}
	if !u.IsActive() {
		t.Fatal("new users must be active")
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if u.FullName() != "Ada Lovelace" {
		t.Fatalf("got full name %q", u.FullName())
	}
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	u := user.NewMember("Ada", "Lovelace", "ada@example.com", "$2a$10$secret")

	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	body := string(b)
	if strings.Contains(body, "secret") || strings.Contains(body, "password") {
		t.Fatalf("password hash leaked: %s", body)
	}
	if !strings.Contains(body, `"role":"member"`) {
		t.Fatalf("role not rendered by name: %s", body)
	}
	if !strings.Contains(body, `"deleted_flag":false`) {
		t.Fatalf("deleted_flag missing: %s", body)
	}
}

func TestRoleCapabilities(t *testing.T) {
	if !user.RoleAdmin.SeesAllTasks() {
		t.Fatal("admin should see all tasks")
	}
	if user.RoleMember.SeesAllTasks() {
		t.Fatal("member should not see all tasks")
	}
	if user.Role(7).IsValid() {
		t.Fatal("unknown role reported valid")
	}

	r, err := user.ParseRole("Admin")
	if err != nil || r != user.RoleAdmin {
		t.Fatalf("ParseRole(Admin) = %v, %v", r, err)
	}
	if _, err := user.ParseRole("root"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
