// Package auth carries the signed-in identity through a request and decides
// role-gated access.
package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/dharmapatha/portal/internal/model"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// ErrPasswordTooShort is returned by HashPassword for passwords under MinPasswordLength.
var ErrPasswordTooShort = errors.New("auth: password too short")

// Identity is the signed-in user with the roles loaded when the session was resolved.
type Identity struct {
	User    model.User
	Profile model.Profile
	roles   map[model.Role]bool
}

// NewIdentity builds an identity with its role-membership cache.
func NewIdentity(u model.User, p model.Profile, roles []model.Role) *Identity {
	id := &Identity{User: u, Profile: p, roles: make(map[model.Role]bool, len(roles))}
	for _, r := range roles {
		id.roles[r] = true
	}
	return id
}

// HasRole reports whether the identity holds role.
func (id *Identity) HasRole(role model.Role) bool {
	return id != nil && id.roles[role]
}

// IsAdmin reports whether the identity holds the admin role.
func (id *Identity) IsAdmin() bool { return id.HasRole(model.RoleAdmin) }

// DisplayName returns the profile name, or the email when no name is set.
func (id *Identity) DisplayName() string {
	if id.Profile.FullName != "" {
		return id.Profile.FullName
	}
	return id.User.Email
}

type identityCtxKey struct{}

// WithIdentity stores the identity in the request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// FromContext retrieves the identity from context, or nil for anonymous visitors.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityCtxKey{}).(*Identity)
	return id
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allowed Decision = iota
	Unauthenticated
	Denied
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Unauthenticated:
		return "unauthenticated"
	}
	return "denied"
}

// RequireRole decides whether id may access a screen restricted to role.
func RequireRole(id *Identity, role model.Role) Decision {
	if id == nil {
		return Unauthenticated
	}
	if !id.HasRole(role) {
		return Denied
	}
	return Allowed
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
