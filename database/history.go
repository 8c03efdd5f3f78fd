package database

import (
	"context"
	"fmt"
	"time"

	apperrors "techsupport-agent/errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// HistoryRecord is one answered question.
type HistoryRecord struct {
	ID          uuid.UUID `json:"id"`
	Question    string    `json:"question"`
	AnswerTypes []string  `json:"answer_types"`
	TopCategory string    `json:"top_category"`
	Emergency   bool      `json:"emergency"`
	Symptoms    []string  `json:"symptoms"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordQuestion inserts rec, assigning an ID and timestamp when missing.
func (s *PostgresStore) RecordQuestion(ctx context.Context, rec HistoryRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO question_history (id, question, answer_types, top_category, emergency, symptoms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.DB.ExecContext(ctx, query,
		rec.ID,
		rec.Question,
		pq.Array(nonNil(rec.AnswerTypes)),
		rec.TopCategory,
		rec.Emergency,
		pq.Array(nonNil(rec.Symptoms)),
		rec.CreatedAt,
	)
	if err != nil {
		return apperrors.Join(apperrors.ErrDatabaseOperation, fmt.Errorf("failed to record question: %w", err))
	}
	return nil
}

// RecentQuestions returns up to limit records, newest first.
func (s *PostgresStore) RecentQuestions(ctx context.Context, limit int) ([]HistoryRecord, error) {
	query := `
		SELECT id, question, answer_types, top_category, emergency, symptoms, created_at
		FROM question_history
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.Join(apperrors.ErrDatabaseOperation, err)
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var rec HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.Question, pq.Array(&rec.AnswerTypes), &rec.TopCategory, &rec.Emergency, pq.Array(&rec.Symptoms), &rec.CreatedAt); err != nil {
			return nil, apperrors.Join(apperrors.ErrDatabaseOperation, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteHistoryOlderThan removes records created before cutoff.
func (s *PostgresStore) DeleteHistoryOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM question_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, apperrors.Join(apperrors.ErrDatabaseOperation, fmt.Errorf("failed to delete history: %w", err))
	}
	return result.RowsAffected()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
