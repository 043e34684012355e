package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/AdamBeresnev/op-chess/internal/config"
	"github.com/AdamBeresnev/op-chess/internal/httputil"
	"github.com/AdamBeresnev/op-chess/internal/policy"
	users "github.com/AdamBeresnev/op-chess/internal/user"
	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/google"
)

type ContextKey string

const UserIDKey ContextKey = "userID"

// SessionUserKey is where the session keeps the signed-in user's id.
const SessionUserKey = "userID"

const (
	claimUserID = "user_id"
	claimRole   = "role"
)

var errInvalidToken = errors.New("invalid token")

type UserGetter interface {
	GetUser(ctx context.Context, id uuid.UUID) (*users.User, error)
}

func InitAuth(cfg config.OAuth) {
	var providers []goth.Provider
	if cfg.DiscordKey != "" {
		providers = append(providers, discord.New(cfg.DiscordKey, cfg.DiscordSecret, cfg.DiscordCallbackURL, discord.ScopeIdentify, discord.ScopeEmail))
	}
	if cfg.GoogleKey != "" {
		providers = append(providers, google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.GoogleCallbackURL, "email", "profile"))
	}
	goth.UseProviders(providers...)
}

// LoadAuthenticatedUser resolves the caller from a bearer token or, failing
// that, the session. Requests without either continue anonymously.
func LoadAuthenticatedUser(sessionManager *scs.SessionManager, userStore UserGetter, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok, err := bearerUserID(r, jwtSecret)
			if err != nil {
				httputil.Unauthorized(w, "Invalid or expired token")
				return
			}
			if !ok {
				userID, ok = sessionUserID(r.Context(), sessionManager)
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := userStore.GetUser(r.Context(), userID)
			if err != nil || user.Deleted() {
				if sessionManager != nil {
					sessionManager.Remove(r.Context(), SessionUserKey)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			ctx = context.WithValue(ctx, users.UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionUserID(ctx context.Context, sessionManager *scs.SessionManager) (uuid.UUID, bool) {
	if sessionManager == nil {
		return uuid.Nil, false
	}
	raw := sessionManager.GetString(ctx, SessionUserKey)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		sessionManager.Remove(ctx, SessionUserKey)
		return uuid.Nil, false
	}
	return id, true
}

// bearerUserID reports ok=false when no bearer token is present.
func bearerUserID(r *http.Request, secret string) (uuid.UUID, bool, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return uuid.Nil, false, nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || secret == "" {
		return uuid.Nil, false, errInvalidToken
	}

	claims, err := ParseToken(parts[1], secret)
	if err != nil {
		return uuid.Nil, false, err
	}
	raw, _ := claims[claimUserID].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, errInvalidToken
	}
	return id, true, nil
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// RequireAuth rejects anonymous requests. Run it after LoadAuthenticatedUser.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAuthenticatedUser(r.Context()) == nil {
			httputil.Unauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission rejects callers whose role lacks perm.
func RequirePermission(perm policy.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := GetActor(r.Context())
			if actor.Anonymous() {
				httputil.Unauthorized(w, "Authentication required")
				return
			}
			if !actor.Can(perm) {
				httputil.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(UserIDKey)
	if val == nil {
		return uuid.Nil, false
	}

	id, ok := val.(uuid.UUID)
	return id, ok
}

func GetAuthenticatedUser(ctx context.Context) *users.User {
	user, _ := ctx.Value(users.UserKey).(*users.User)
	return user
}

// GetActor is the anonymous actor when nobody is signed in.
func GetActor(ctx context.Context) policy.Actor {
	return GetAuthenticatedUser(ctx).Actor()
}
