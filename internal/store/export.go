package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dharmapatha/portal/internal/model"
)

// ExportAssessments builds export-ready rows from all assessments, oldest first,
// with the submitter's profile name when the submission was signed in.
func (s *Store) ExportAssessments(ctx context.Context) ([]model.AssessmentResult, error) {
	rows, err := s.query(ctx,
		`SELECT a.id, a.email, COALESCE(p.full_name, ''), a.assessment_type, a.score, a.answers,
		        a.recommendations, a.created_at
		 FROM assessments a
		 LEFT JOIN profiles p ON p.user_id = a.user_id
		 ORDER BY a.created_at, a.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var results []model.AssessmentResult
	for rows.Next() {
		var (
			r                model.AssessmentResult
			answers, created string
		)
		if err := rows.Scan(&r.ID, &r.Email, &r.FullName, &r.AssessmentType, &r.Score, &answers,
			&r.Recommendations, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answers), &r.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers of %s: %w", r.ID, err)
		}
		if r.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
