package users

import (
	"time"

	"github.com/AdamBeresnev/op-chess/internal/policy"
	"github.com/google/uuid"
)

type ContextKey string

const UserKey ContextKey = "user"

const DefaultRating = 1200

type User struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	Email      string      `db:"email" json:"-"`
	Username   string      `db:"username" json:"username"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	Provider   *string     `db:"provider" json:"-"`
	ProviderID *string     `db:"provider_id" json:"-"`
	AvatarURL  *string     `db:"avatar_url" json:"avatar_url,omitempty"`
	Role       policy.Role `db:"role" json:"role"`
	Rating     int         `db:"rating" json:"rating"`
	DeletedAt  *time.Time  `db:"deleted_at" json:"deleted_at,omitempty"`
}

func (u *User) Deleted() bool {
	return u.DeletedAt != nil
}

// Actor is the user as seen by the permission table. Deleted accounts act anonymously.
func (u *User) Actor() policy.Actor {
	if u == nil || u.Deleted() {
		return policy.Actor{}
	}
	return policy.Actor{ID: u.ID, Role: u.Role}
}
