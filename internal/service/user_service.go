package service

import (
	"context"

	"talkie/internal/domain"
)

// UserService provides user-related operations.
type UserService struct {
	deps Deps
}

func NewUserService(deps Deps) *UserService {
	return &UserService{deps: deps.withDefaults()}
}

// UserUpsertInput carries registration fields. A nil Name leaves an existing
// user's name untouched.
type UserUpsertInput struct {
	Name  *string
	Email string
}

// Upsert finds a user by email and updates its name, or registers a new user
// with a fresh id and join time. Id and join time never change afterwards.
func (s *UserService) Upsert(ctx context.Context, in UserUpsertInput) (domain.User, error) {
	var (
		out     domain.User
		changed bool
	)
	err := s.deps.Store.Update(ctx, func(st *domain.Snapshot) bool {
		if i := st.FindUserByEmail(in.Email); i >= 0 {
			if in.Name != nil && st.Users[i].Name != *in.Name {
				st.Users[i].Name = *in.Name
				changed = true
			}
			out = st.Users[i]
			return changed
		}

		u := domain.User{
			ID:       s.deps.NewID(),
			Email:    in.Email,
			JoinedAt: s.deps.Clock.Now().UTC(),
		}
		if in.Name != nil {
			u.Name = *in.Name
		}
		st.Users = append(st.Users, u)
		out = u
		changed = true
		return true
	})
	if err != nil {
		return domain.User{}, err
	}
	if changed {
		s.deps.Notifier.Publish(domain.TopicUsers)
	}
	return out, nil
}

// List returns all users in registration order.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.deps.Store.View(ctx, func(st *domain.Snapshot) {
		users = append([]domain.User{}, st.Users...)
	})
	return users, err
}

// GetByID returns the user with the given id; ok is false when absent.
func (s *UserService) GetByID(ctx context.Context, id string) (u domain.User, ok bool, err error) {
	err = s.deps.Store.View(ctx, func(st *domain.Snapshot) {
		if i := st.FindUserByID(id); i >= 0 {
			u, ok = st.Users[i], true
		}
	})
	return u, ok, err
}
