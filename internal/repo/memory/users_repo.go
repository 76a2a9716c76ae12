package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/lifecycle"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// same rule as the partial unique index in postgres
	for _, existing := range r.items {
		if existing.IsActive() && existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByIDs(_ context.Context, ids []string) (map[string]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]user.User, len(ids))
	for _, id := range ids {
		if u, ok := r.items[id]; ok {
			out[id] = u
		}
	}

	return out, nil
}

func (r *UsersRepo) GetActiveByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.IsActive() && u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) ActiveEmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetActiveByEmail(ctx, email)
	if err == user.ErrNotFound {
		return false, nil
	}

	return err == nil, err
}

func (r *UsersRepo) ListActiveNonAdmins(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		if u.IsActive() && !u.Role.IsAdmin() {
			out = append(out, u)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FirstName == out[j].FirstName {
			return out[i].ID < out[j].ID
		}
		return out[i].FirstName < out[j].FirstName
	})

	return out, nil
}

func (r *UsersRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}

	u.State = lifecycle.Deleted
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return nil
}
