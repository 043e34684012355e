package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/op-chess/internal/engine"
	"github.com/AdamBeresnev/op-chess/internal/policy"
	"github.com/AdamBeresnev/op-chess/internal/store"
	users "github.com/AdamBeresnev/op-chess/internal/user"
	"github.com/AdamBeresnev/op-chess/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth"
)

var GuestUserID = uuid.MustParse("00000000-0000-0000-0000-000000000002")

type UserService struct {
	db    *sqlx.DB
	store *store.UserStore
	now   func() time.Time
}

func NewUserService(db *sqlx.DB, store *store.UserStore) *UserService {
	return &UserService{db: db, store: store, now: time.Now}
}

func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)

	if err == nil {
		if utils.OrZero(user.AvatarURL) != gothUser.AvatarURL || user.Username != gothUser.NickName {
			user.AvatarURL = utils.StringOrNil(gothUser.AvatarURL)
			if gothUser.NickName != "" {
				user.Username = gothUser.NickName
			}
			if err := s.store.UpdateUserNameAndAvatar(ctx, user); err != nil {
				slog.Warn("failed to refresh user profile", "user_id", user.ID, "error", err)
			}
		}
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		name := gothUser.NickName
		if name == "" {
			name = gothUser.Name
		}
		newUser := &users.User{
			ID:         uuid.New(),
			Email:      gothUser.Email,
			Username:   name,
			CreatedAt:  s.now().UTC(),
			Provider:   &gothUser.Provider,
			ProviderID: &gothUser.UserID,
			AvatarURL:  utils.StringOrNil(gothUser.AvatarURL),
			Role:       policy.RolePlayer,
			Rating:     users.DefaultRating,
		}
		if err := s.store.CreateUser(ctx, newUser); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return newUser, nil
	}

	return nil, err
}

func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	user, err := s.store.GetUser(ctx, GuestUserID)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		guestUser := &users.User{
			ID:        GuestUserID,
			Email:     "guest@op-chess.app",
			Username:  "Guest Player",
			CreatedAt: s.now().UTC(),
			Role:      policy.RolePlayer,
			Rating:    users.DefaultRating,
		}
		if err := s.store.CreateUser(ctx, guestUser); err != nil {
			return nil, fmt.Errorf("failed to create guest user: %w", err)
		}
		return guestUser, nil
	}
	return nil, err
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*users.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (s *UserService) SetRole(ctx context.Context, actor policy.Actor, id uuid.UUID, role policy.Role) error {
	if !actor.Can(policy.ManageUsers) {
		return engine.ErrForbidden
	}
	if !role.Valid() {
		return &ValidationError{Fields: map[string]string{"role": "must be player or admin"}}
	}
	if err := s.store.UpdateRole(ctx, id, role); err != nil {
		return notFound(err, "user")
	}
	slog.Info("user role changed", "user_id", id, "role", role, "actor_id", actor.ID)
	return nil
}

// SoftDelete hides an account. Matches keep pointing at it so results stay intact.
func (s *UserService) SoftDelete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	if !actor.Can(policy.ManageUsers) {
		return engine.ErrForbidden
	}
	if id == actor.ID {
		return &ValidationError{Fields: map[string]string{"id": "cannot delete your own account"}}
	}
	if err := s.store.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return notFound(err, "user")
	}
	slog.Info("user deleted", "user_id", id, "actor_id", actor.ID)
	return nil
}
