package memory

import (
	"context"
	"strings"

	"rentmarket-backend/internal/domain"
)

type userRepository struct{ s *state }

func (r *userRepository) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.NewConflictError("email %s is already registered", u.Email)
		}
	}
	if u.Role == "" {
		u.Role = domain.UserRoleUser
	}
	u.ID = r.s.id("users")
	u.CreatedOn = r.s.now()
	u.UpdatedOn = u.CreatedOn
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id int32) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}
