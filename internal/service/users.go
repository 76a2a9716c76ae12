package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

type RegisterInput struct {
	FirstName            string `json:"first_name" validate:"required,max=255"`
	LastName             string `json:"last_name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6,max=72,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Users is the user directory: registration, credential checks, listing
// and soft deletion of accounts.
type Users struct {
	users  UserStore
	tasks  TaskStore
	hasher PasswordHasher
	log    *slog.Logger
}

func NewUsers(users UserStore, tasks TaskStore, hasher PasswordHasher, log *slog.Logger) *Users {
	if log == nil {
		log = slog.Default()
	}

	return &Users{
		users:  users,
		tasks:  tasks,
		hasher: hasher,
		log:    log,
	}
}

func (s *Users) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)

	verr, err := check(in)
	if err != nil {
		return user.User{}, err
	}

	email := user.NormalizeEmail(in.Email)

	if !verr.Has("email") {
		taken, err := s.users.ActiveEmailExists(ctx, email)
		if err != nil {
			return user.User{}, fmt.Errorf("check email: %w", err)
		}
		if taken {
			verr.Add("email", "has already been taken")
		}
	}

	if err := verr.orNil(); err != nil {
		return user.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, user.NewMember(in.FirstName, in.LastName, email, hash))
	if err != nil {
		// lost a race with another registration for the same address
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, NewValidationError("email", "has already been taken")
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", u.ID, "role", u.Role.String())

	return u, nil
}

func (s *Users) Login(ctx context.Context, in LoginInput) (user.User, error) {
	verr, err := check(in)
	if err != nil {
		return user.User{}, err
	}
	if err := verr.orNil(); err != nil {
		return user.User{}, err
	}

	u, err := s.users.GetActiveByEmail(ctx, user.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.hasher.Check(u.PasswordHash, in.Password); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	return u, nil
}

// ListActiveNonAdmins returns active members ordered by first name.
func (s *Users) ListActiveNonAdmins(ctx context.Context) ([]user.Summary, error) {
	users, err := s.users.ListActiveNonAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]user.Summary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}

	return out, nil
}

// SoftDelete marks the account deleted. Accounts that still own active
// tasks are left alone; tasks are never cascaded.
func (s *Users) SoftDelete(ctx context.Context, id string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	busy, err := s.tasks.HasActiveForUser(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("check assigned tasks: %w", err)
	}
	if busy {
		return ErrUserHasTasks
	}

	if u.State.IsDeleted() {
		return nil
	}

	if err := s.users.SoftDelete(ctx, u.ID); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "user soft-deleted", "user_id", u.ID)

	return nil
}
