package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/dharmapatha/portal/internal/model"
)

func TestRequireRole(t *testing.T) {
	admin := NewIdentity(model.User{ID: "a"}, model.Profile{}, []model.Role{model.RoleMember, model.RoleAdmin})
	member := NewIdentity(model.User{ID: "m"}, model.Profile{}, []model.Role{model.RoleMember})

	tests := []struct {
		name string
		id   *Identity
		want Decision
	}{
		{"anonymous", nil, Unauthenticated},
		{"member", member, Denied},
		{"admin", admin, Allowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequireRole(tt.id, model.RoleAdmin); got != tt.want {
				t.Errorf("RequireRole() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdentityContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatal("expected nil identity on empty context")
	}
	id := NewIdentity(model.User{ID: "u1", Email: "u@example.com"}, model.Profile{}, nil)
	ctx := WithIdentity(context.Background(), id)
	if got := FromContext(ctx); got != id {
		t.Fatalf("FromContext() = %v, want %v", got, id)
	}
	if id.IsAdmin() {
		t.Error("identity without roles must not be admin")
	}
}

func TestDisplayName(t *testing.T) {
	id := NewIdentity(model.User{Email: "budi@example.com"}, model.Profile{}, nil)
	if got := id.DisplayName(); got != "budi@example.com" {
		t.Errorf("DisplayName() = %q, want email fallback", got)
	}
	id.Profile.FullName = "Budi Santoso"
	if got := id.DisplayName(); got != "Budi Santoso" {
		t.Errorf("DisplayName() = %q, want full name", got)
	}
}

func TestPasswordHashing(t *testing.T) {
	if _, err := HashPassword("12345"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	hash, err := HashPassword("rahasia1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "rahasia1") {
		t.Error("CheckPassword should accept the original password")
	}
	if CheckPassword(hash, "rahasia2") {
		t.Error("CheckPassword should reject a different password")
	}
}
