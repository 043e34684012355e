package store

import (
	"context"
	"time"

	"github.com/AdamBeresnev/op-chess/internal/policy"
	users "github.com/AdamBeresnev/op-chess/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserStore struct {
	db *sqlx.DB
}

const (
	createUserQuery = `
		INSERT INTO users (id, email, username, created_at, provider, provider_id, avatar_url, role, rating) VALUES
		(:id, :email, :username, :created_at, :provider, :provider_id, :avatar_url, :role, :rating)
	`
	updateUserNameAndAvatarQuery = `
		UPDATE users SET
		username = :username,
		avatar_url = :avatar_url
		WHERE id = :id
	`
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUserByProvider(ctx context.Context, provider string, providerID string) (*users.User, error) {
	var user users.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind("SELECT * FROM users WHERE provider = ? AND provider_id = ?"), provider, providerID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var user users.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind("SELECT * FROM users WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsers loads every listed user that exists, deleted or not.
func (s *UserStore) GetUsers(ctx context.Context, ids []uuid.UUID) ([]users.User, error) {
	list := []users.User{}
	if len(ids) == 0 {
		return list, nil
	}
	query, args, err := sqlx.In("SELECT * FROM users WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	err = s.db.SelectContext(ctx, &list, s.db.Rebind(query), args...)
	return list, err
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, createUserQuery, user)
	return err
}

func (s *UserStore) UpdateUserNameAndAvatar(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, updateUserNameAndAvatarQuery, user)
	return err
}

func (s *UserStore) UpdateRole(ctx context.Context, id uuid.UUID, role policy.Role) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE users SET role = ? WHERE id = ? AND deleted_at IS NULL"), role, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// SoftDelete marks the account deleted. Inscriptions and matches stay in place.
func (s *UserStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE users SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL"), at, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}
