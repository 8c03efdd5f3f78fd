package database

import (
	"context"
	"fmt"

	apperrors "techsupport-agent/errors"
	"techsupport-agent/knowledge"

	"go.uber.org/zap"
)

// LoadKnowledgeBase reads every category and entry in their stored order.
func (s *PostgresStore) LoadKnowledgeBase(ctx context.Context) (*knowledge.Base, error) {
	query := `
		SELECT c.id, c.label, e.question, e.answer
		FROM kb_categories c
		LEFT JOIN kb_entries e ON e.category_id = c.id
		ORDER BY c.position, c.id, e.position
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Join(apperrors.ErrDatabaseOperation, fmt.Errorf("failed to query knowledge base: %w", err))
	}
	defer rows.Close()

	var categories []knowledge.Category
	lastID := -1
	for rows.Next() {
		var (
			id               int
			label            string
			question, answer *string
		)
		if err := rows.Scan(&id, &label, &question, &answer); err != nil {
			return nil, apperrors.Join(apperrors.ErrDatabaseOperation, err)
		}
		if id != lastID {
			categories = append(categories, knowledge.Category{Label: label})
			lastID = id
		}
		if question == nil {
			continue
		}
		entry := knowledge.Entry{Question: *question}
		if answer != nil {
			entry.Answer = *answer
		}
		last := &categories[len(categories)-1]
		last.Entries = append(last.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Join(apperrors.ErrDatabaseOperation, err)
	}

	base := knowledge.NewBase(categories)
	s.logger.Info("Loaded knowledge base from database",
		zap.Int("categories", len(categories)),
		zap.Int("questions", base.Len()))
	return base, nil
}

// ImportKnowledgeBase replaces the stored knowledge base with base inside a
// single transaction and returns the number of entries written.
func (s *PostgresStore) ImportKnowledgeBase(ctx context.Context, base *knowledge.Base) (int, error) {
	if base == nil || base.Len() == 0 {
		return 0, apperrors.WrapError(apperrors.ErrInvalidInput, "knowledge base is empty")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.Join(apperrors.ErrDatabaseOperation, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM kb_categories`); err != nil {
		return 0, apperrors.Join(apperrors.ErrDatabaseOperation, fmt.Errorf("failed to clear knowledge base: %w", err))
	}

	written := 0
	for i, c := range base.Categories() {
		var categoryID int
		err := tx.QueryRowContext(ctx,
			`INSERT INTO kb_categories (label, position) VALUES ($1, $2) RETURNING id`,
			c.Label, i,
		).Scan(&categoryID)
		if err != nil {
			return 0, apperrors.Join(apperrors.ErrDatabaseOperation, fmt.Errorf("failed to insert category %q: %w", c.Label, err))
		}

		for j, e := range c.Entries {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO kb_entries (category_id, position, question, answer) VALUES ($1, $2, $3, $4)`,
				categoryID, j, e.Question, e.Answer,
			)
			if err != nil {
				return 0, apperrors.Join(apperrors.ErrDatabaseOperation, fmt.Errorf("failed to insert entry %q: %w", e.Question, err))
			}
			written++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.Join(apperrors.ErrDatabaseOperation, err)
	}
	s.logger.Info("Imported knowledge base", zap.Int("questions", written))
	return written, nil
}
