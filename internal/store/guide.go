package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dharmapatha/portal/internal/model"
)

const guideColumns = `id, title, description, category, target_audience, image_url, author_id, created_at`

// CreateGuide inserts a career guide. The ID and CreatedAt are assigned here.
func (s *Store) CreateGuide(ctx context.Context, g model.CareerGuide) (model.CareerGuide, error) {
	g.ID = uuid.NewString()
	g.CreatedAt = time.Now().UTC()
	_, err := s.exec(ctx,
		`INSERT INTO career_guides (`+guideColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Title, g.Description, g.Category, g.TargetAudience, g.ImagePath, g.AuthorID,
		formatTime(g.CreatedAt),
	)
	if err != nil {
		return model.CareerGuide{}, fmt.Errorf("insert guide: %w", err)
	}
	return g, nil
}

// UpdateGuide overwrites the editable fields of a guide. The last write wins.
func (s *Store) UpdateGuide(ctx context.Context, g model.CareerGuide) error {
	res, err := s.exec(ctx,
		`UPDATE career_guides SET title = ?, description = ?, category = ?, target_audience = ?, image_url = ?
		 WHERE id = ?`,
		g.Title, g.Description, g.Category, g.TargetAudience, g.ImagePath, g.ID,
	)
	if err != nil {
		return fmt.Errorf("update guide: %w", err)
	}
	return expectOne(res)
}

// DeleteGuide removes a guide.
func (s *Store) DeleteGuide(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM career_guides WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete guide: %w", err)
	}
	return expectOne(res)
}

// GetGuide returns a guide by ID, or ErrNotFound.
func (s *Store) GetGuide(ctx context.Context, id string) (model.CareerGuide, error) {
	g, err := scanGuide(s.queryRow(ctx, `SELECT `+guideColumns+` FROM career_guides WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.CareerGuide{}, ErrNotFound
	}
	return g, err
}

// ListGuides returns all guides, newest first.
func (s *Store) ListGuides(ctx context.Context) ([]model.CareerGuide, error) {
	return s.listGuides(ctx, `SELECT `+guideColumns+` FROM career_guides ORDER BY created_at DESC, id`)
}

// ListGuidesByAudience returns the guides for one target audience, newest first.
func (s *Store) ListGuidesByAudience(ctx context.Context, audience model.Audience) ([]model.CareerGuide, error) {
	return s.listGuides(ctx,
		`SELECT `+guideColumns+` FROM career_guides WHERE target_audience = ? ORDER BY created_at DESC, id`, audience)
}

func (s *Store) listGuides(ctx context.Context, query string, args ...any) ([]model.CareerGuide, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var guides []model.CareerGuide
	for rows.Next() {
		g, err := scanGuide(rows)
		if err != nil {
			return nil, err
		}
		guides = append(guides, g)
	}
	return guides, rows.Err()
}

func scanGuide(row scanner) (model.CareerGuide, error) {
	var (
		g       model.CareerGuide
		created string
	)
	if err := row.Scan(&g.ID, &g.Title, &g.Description, &g.Category, &g.TargetAudience,
		&g.ImagePath, &g.AuthorID, &created); err != nil {
		return g, err
	}
	var err error
	g.CreatedAt, err = parseTime(created)
	return g, err
}
