package user

import (
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/lifecycle"
	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already used by an active user")
)

type User struct {
	ID           string          `json:"id"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"` // never expose hash in JSON
	Role         Role            `json:"role"`
	State        lifecycle.State `json:"deleted_flag"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Summary is the projection returned by the user listing.
type Summary struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) Summary() Summary {
	return Summary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) IsActive() bool {
	return u.State.IsActive()
}

// NormalizeEmail is applied before every email comparison and before storing.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewMember builds a freshly registered account. Registration never grants admin.
func NewMember(firstName, lastName, email, passwordHash string) User {
	return newUser(firstName, lastName, email, passwordHash, RoleMember)
}

func NewAdmin(firstName, lastName, email, passwordHash string) User {
	return newUser(firstName, lastName, email, passwordHash, RoleAdmin)
}

func newUser(firstName, lastName, email, passwordHash string, role Role) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		State:        lifecycle.Active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
