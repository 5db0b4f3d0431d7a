package store

import (
	"context"
	"database/sql"
	"errors"
)

// SetMetadata upserts a key-value pair in the site_metadata table.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx,
		`INSERT INTO site_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.queryRow(ctx, `SELECT value FROM site_metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SchemaVersion returns the schema version recorded by the last migration.
func (s *Store) SchemaVersion(ctx context.Context) (string, error) {
	return s.GetMetadata(ctx, "schema_version")
}
