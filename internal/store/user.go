package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dharmapatha/portal/internal/model"
)

// NormalizeEmail lower-cases and trims an email address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a new user with its profile and the member role.
func (s *Store) CreateUser(ctx context.Context, u model.User, fullName string) (model.User, error) {
	u.Email = NormalizeEmail(u.Email)
	existing, err := s.GetUserByEmail(ctx, u.Email)
	if err != nil {
		return model.User{}, err
	}
	if existing != nil {
		return model.User{}, ErrEmailTaken
	}

	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`),
		u.ID, u.Email, u.PasswordHash, formatTime(u.CreatedAt),
	); err != nil {
		slog.Error("failed to create user", "email", u.Email, "error", err)
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(
		`INSERT INTO profiles (user_id, full_name) VALUES (?, ?)`),
		u.ID, strings.TrimSpace(fullName),
	); err != nil {
		return model.User{}, fmt.Errorf("insert profile: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(
		`INSERT INTO user_roles (user_id, role) VALUES (?, ?)`),
		u.ID, model.RoleMember,
	); err != nil {
		return model.User{}, fmt.Errorf("insert role: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, err
	}
	slog.Info("created user", "id", u.ID, "email", u.Email)
	return u, nil
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var (
		u       model.User
		created string
	)
	err := s.queryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE `+where+` = ?`, arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail returns a user by email, or nil if not registered.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, "email", NormalizeEmail(email))
}

// GetUserByID returns a user by ID, or nil if not found.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, "id", id)
}

// UserCount returns the total number of users.
func (s *Store) UserCount(ctx context.Context) (int, error) {
	var count int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// UpsertProfile creates or replaces the profile of a user.
func (s *Store) UpsertProfile(ctx context.Context, p model.Profile) error {
	_, err := s.exec(ctx,
		`INSERT INTO profiles (user_id, full_name, avatar_url) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET full_name = excluded.full_name, avatar_url = excluded.avatar_url`,
		p.UserID, p.FullName, p.AvatarURL,
	)
	return err
}

// GetProfile returns the profile of a user, or nil if none exists.
func (s *Store) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	err := s.queryRow(ctx,
		`SELECT user_id, full_name, avatar_url FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.FullName, &p.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GrantRole adds a role to a user. Granting a held role is a no-op.
func (s *Store) GrantRole(ctx context.Context, userID string, role model.Role) error {
	_, err := s.exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		userID, role,
	)
	return err
}

// RevokeRole removes a role from a user.
func (s *Store) RevokeRole(ctx context.Context, userID string, role model.Role) error {
	_, err := s.exec(ctx, `DELETE FROM user_roles WHERE user_id = ? AND role = ?`, userID, role)
	return err
}

// ListRoles returns the roles held by a user.
func (s *Store) ListRoles(ctx context.Context, userID string) ([]model.Role, error) {
	rows, err := s.query(ctx, `SELECT role FROM user_roles WHERE user_id = ? ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []model.Role
	for rows.Next() {
		var r model.Role
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// HasRole reports whether a user holds role.
func (s *Store) HasRole(ctx context.Context, userID string, role model.Role) (bool, error) {
	var n int
	err := s.queryRow(ctx,
		`SELECT COUNT(*) FROM user_roles WHERE user_id = ? AND role = ?`, userID, role,
	).Scan(&n)
	return n > 0, err
}

// CountRole returns the number of users holding role.
func (s *Store) CountRole(ctx context.Context, role model.Role) (int, error) {
	var n int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM user_roles WHERE role = ?`, role).Scan(&n)
	return n, err
}
