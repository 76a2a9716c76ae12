package user

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is persisted as role_id: 1 for admins, 2 for members.
type Role int16

const (
	RoleAdmin  Role = 1
	RoleMember Role = 2
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleMember:
		return true
	default:
		return false
	}
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// SeesAllTasks reports whether a task query filtered by this user's id
// should stay system-wide instead of narrowing to the user's own tasks.
func (r Role) SeesAllTasks() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleMember:
		return "member"
	default:
		return fmt.Sprintf("role(%d)", int16(r))
	}
}

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "1":
		return RoleAdmin, nil
	case "member", "user", "2":
		return RoleMember, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
