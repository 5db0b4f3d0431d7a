package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dharmapatha/portal/internal/model"
)

const assessmentColumns = `id, user_id, email, assessment_type, answers, score, recommendations, created_at`

// InsertAssessment stores a submitted assessment. The ID and CreatedAt are assigned here.
func (s *Store) InsertAssessment(ctx context.Context, rec model.AssessmentRecord) (model.AssessmentRecord, error) {
	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return model.AssessmentRecord{}, fmt.Errorf("marshal answers: %w", err)
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()

	var userID sql.NullString
	if rec.UserID != nil {
		userID = sql.NullString{String: *rec.UserID, Valid: true}
	}
	_, err = s.exec(ctx,
		`INSERT INTO assessments (`+assessmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, userID, rec.Email, rec.AssessmentType, string(answers), rec.Score, rec.Recommendations,
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return model.AssessmentRecord{}, fmt.Errorf("insert assessment: %w", err)
	}
	return rec, nil
}

// ListAssessments returns all assessments, newest first.
func (s *Store) ListAssessments(ctx context.Context) ([]model.AssessmentRecord, error) {
	return s.listAssessments(ctx,
		`SELECT `+assessmentColumns+` FROM assessments ORDER BY created_at DESC, id`)
}

// ListAssessmentsByUser returns the assessments submitted by a user, newest first.
func (s *Store) ListAssessmentsByUser(ctx context.Context, userID string) ([]model.AssessmentRecord, error) {
	return s.listAssessments(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
}

func (s *Store) listAssessments(ctx context.Context, query string, args ...any) ([]model.AssessmentRecord, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []model.AssessmentRecord
	for rows.Next() {
		rec, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row scanner) (model.AssessmentRecord, error) {
	var (
		rec              model.AssessmentRecord
		userID           sql.NullString
		answers, created string
	)
	if err := row.Scan(&rec.ID, &userID, &rec.Email, &rec.AssessmentType, &answers,
		&rec.Score, &rec.Recommendations, &created); err != nil {
		return rec, err
	}
	if userID.Valid {
		uid := userID.String
		rec.UserID = &uid
	}
	if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
		return rec, fmt.Errorf("unmarshal answers of %s: %w", rec.ID, err)
	}
	var err error
	rec.CreatedAt, err = parseTime(created)
	return rec, err
}
