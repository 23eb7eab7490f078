// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/know-you/apperr"
	"github.com/danielhkuo/know-you/db"
	"github.com/danielhkuo/know-you/models"
)

// CatalogService manages questions, categories and their associations.
type CatalogService struct {
	db       *sql.DB
	scaleMin int
	scaleMax int
}

// NewCatalogService uses scaleMin..scaleMax for questions that do not declare a range.
func NewCatalogService(conn *sql.DB, scaleMin, scaleMax int) *CatalogService {
	return &CatalogService{db: conn, scaleMin: scaleMin, scaleMax: scaleMax}
}

// QuestionInput carries a full replacement of a question's mutable fields.
// Nil scale bounds fall back to the current value, then the configured default.
type QuestionInput struct {
	Text        string
	CategoryIDs []int
	ScaleMin    *int
	ScaleMax    *int
}

// ListQuestions returns every question with its categories, ordered by id.
func (s *CatalogService) ListQuestions(ctx context.Context) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, scale_min, scale_max FROM questions ORDER BY id
	`)
	if err != nil {
		return nil, apperr.Store("failed to query questions", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	index := map[int]int{}
	for rows.Next() {
		q := models.Question{Categories: []models.Category{}}
		if err := rows.Scan(&q.ID, &q.Text, &q.ScaleMin, &q.ScaleMax); err != nil {
			return nil, apperr.Store("failed to scan question", err)
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("failed to read questions", err)
	}
	rows.Close()

	// Categories for all questions in one round trip
	catRows, err := s.db.QueryContext(ctx, `
		SELECT qc.question_id, c.id, c.name
		FROM question_categories qc
		JOIN categories c ON c.id = qc.category_id
		ORDER BY qc.question_id, c.id
	`)
	if err != nil {
		return nil, apperr.Store("failed to query question categories", err)
	}
	defer catRows.Close()

	for catRows.Next() {
		var questionID int
		var c models.Category
		if err := catRows.Scan(&questionID, &c.ID, &c.Name); err != nil {
			return nil, apperr.Store("failed to scan question category", err)
		}
		if i, ok := index[questionID]; ok {
			questions[i].Categories = append(questions[i].Categories, c)
		}
	}
	if err := catRows.Err(); err != nil {
		return nil, apperr.Store("failed to read question categories", err)
	}

	return questions, nil
}

// GetQuestion returns one question with its categories.
func (s *CatalogService) GetQuestion(ctx context.Context, id int) (models.Question, error) {
	return loadQuestion(ctx, s.db, id)
}

// CreateQuestion inserts the question and its category set in one transaction.
func (s *CatalogService) CreateQuestion(ctx context.Context, in QuestionInput) (models.Question, error) {
	text := normalize(in.Text)
	if text == "" {
		return models.Question{}, apperr.Validation("text is required")
	}
	scaleMin, scaleMax, err := s.resolveScale(in, s.scaleMin, s.scaleMax)
	if err != nil {
		return models.Question{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Question{}, apperr.Store("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var id int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO questions (text, scale_min, scale_max)
		VALUES ($1, $2, $3)
		RETURNING id
	`, text, scaleMin, scaleMax).Scan(&id)
	if err != nil {
		return models.Question{}, apperr.Store("failed to create question", err)
	}

	if err := replaceCategories(ctx, tx, id, in.CategoryIDs); err != nil {
		return models.Question{}, err
	}

	q, err := loadQuestion(ctx, tx, id)
	if err != nil {
		return models.Question{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Question{}, apperr.Store("failed to commit question", err)
	}
	return q, nil
}

// UpdateQuestion replaces text, scale and the whole category set.
func (s *CatalogService) UpdateQuestion(ctx context.Context, id int, in QuestionInput) (models.Question, error) {
	text := normalize(in.Text)
	if text == "" {
		return models.Question{}, apperr.Validation("text is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Question{}, apperr.Store("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var curMin, curMax int
	err = tx.QueryRowContext(ctx, `
		SELECT scale_min, scale_max FROM questions WHERE id = $1
	`, id).Scan(&curMin, &curMax)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Question{}, apperr.NotFound("question not found")
	}
	if err != nil {
		return models.Question{}, apperr.Store("failed to query question", err)
	}

	scaleMin, scaleMax, err := s.resolveScale(in, curMin, curMax)
	if err != nil {
		return models.Question{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE questions SET text = $1, scale_min = $2, scale_max = $3 WHERE id = $4
	`, text, scaleMin, scaleMax, id)
	if err != nil {
		return models.Question{}, apperr.Store("failed to update question", err)
	}

	if err := replaceCategories(ctx, tx, id, in.CategoryIDs); err != nil {
		return models.Question{}, err
	}

	q, err := loadQuestion(ctx, tx, id)
	if err != nil {
		return models.Question{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Question{}, apperr.Store("failed to commit question", err)
	}
	return q, nil
}

// DeleteQuestion removes the question; associations and answers cascade.
func (s *CatalogService) DeleteQuestion(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return apperr.Store("failed to delete question", err)
	}
	return requireAffected(res, "question not found")
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, apperr.Store("failed to query categories", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, apperr.Store("failed to scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("failed to read categories", err)
	}
	return categories, nil
}

// CreateCategory inserts a category; a taken name is a Conflict.
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	c := models.Category{Name: normalize(name)}
	if c.Name == "" {
		return models.Category{}, apperr.Validation("name is required")
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name) VALUES ($1) RETURNING id
	`, c.Name).Scan(&c.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return models.Category{}, apperr.Conflict(fmt.Sprintf("category %q already exists", c.Name))
		}
		return models.Category{}, apperr.Store("failed to create category", err)
	}
	return c, nil
}

// UpdateCategory renames a category.
func (s *CatalogService) UpdateCategory(ctx context.Context, id int, name string) (models.Category, error) {
	c := models.Category{ID: id, Name: normalize(name)}
	if c.Name == "" {
		return models.Category{}, apperr.Validation("name is required")
	}

	res, err := s.db.ExecContext(ctx, `UPDATE categories SET name = $1 WHERE id = $2`, c.Name, id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return models.Category{}, apperr.Conflict(fmt.Sprintf("category %q already exists", c.Name))
		}
		return models.Category{}, apperr.Store("failed to update category", err)
	}
	if err := requireAffected(res, "category not found"); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// DeleteCategory removes the category and untags every question that had it.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return apperr.Store("failed to delete category", err)
	}
	return requireAffected(res, "category not found")
}

// Seed loads catalog into an empty question table and returns how many
// questions were inserted. A store that already has questions is left alone.
func (s *CatalogService) Seed(ctx context.Context, catalog db.SeedCatalog) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperr.Store("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&existing); err != nil {
		return 0, apperr.Store("failed to count questions", err)
	}
	if existing > 0 {
		return 0, nil
	}

	categoryIDs := make(map[string]int, len(catalog.Categories))
	for _, name := range catalog.Categories {
		name = normalize(name)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories (name) VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, name)
		if err != nil {
			return 0, apperr.Store("failed to seed category", err)
		}
		var id int
		if err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = $1`, name).Scan(&id); err != nil {
			return 0, apperr.Store("failed to look up seeded category", err)
		}
		categoryIDs[name] = id
	}

	for _, sq := range catalog.Questions {
		in := QuestionInput{Text: sq.Text}
		if sq.ScaleMin != 0 || sq.ScaleMax != 0 {
			in.ScaleMin, in.ScaleMax = &sq.ScaleMin, &sq.ScaleMax
		}
		scaleMin, scaleMax, err := s.resolveScale(in, s.scaleMin, s.scaleMax)
		if err != nil {
			return 0, err
		}

		var id int
		err = tx.QueryRowContext(ctx, `
			INSERT INTO questions (text, scale_min, scale_max)
			VALUES ($1, $2, $3)
			RETURNING id
		`, normalize(sq.Text), scaleMin, scaleMax).Scan(&id)
		if err != nil {
			return 0, apperr.Store("failed to seed question", err)
		}

		ids := make([]int, 0, len(sq.Categories))
		for _, name := range sq.Categories {
			ids = append(ids, categoryIDs[normalize(name)])
		}
		if err := replaceCategories(ctx, tx, id, ids); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.Store("failed to commit seed", err)
	}
	return len(catalog.Questions), nil
}

func (s *CatalogService) resolveScale(in QuestionInput, defMin, defMax int) (int, int, error) {
	scaleMin, scaleMax := defMin, defMax
	if in.ScaleMin != nil {
		scaleMin = *in.ScaleMin
	}
	if in.ScaleMax != nil {
		scaleMax = *in.ScaleMax
	}
	if scaleMin >= scaleMax {
		return 0, 0, apperr.ValidationWithDetails("scaleMin must be less than scaleMax",
			map[string]string{"scaleMin": fmt.Sprintf("must be less than %d", scaleMax)})
	}
	return scaleMin, scaleMax, nil
}

// replaceCategories swaps the question's association set for ids.
func replaceCategories(ctx context.Context, q querier, questionID int, ids []int) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM question_categories WHERE question_id = $1`, questionID); err != nil {
		return apperr.Store("failed to clear question categories", err)
	}

	seen := make(map[int]bool, len(ids))
	for _, categoryID := range ids {
		if seen[categoryID] {
			continue
		}
		seen[categoryID] = true

		_, err := q.ExecContext(ctx, `
			INSERT INTO question_categories (question_id, category_id) VALUES ($1, $2)
		`, questionID, categoryID)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return apperr.Validation(fmt.Sprintf("unknown category id %d", categoryID))
			}
			return apperr.Store("failed to tag question", err)
		}
	}
	return nil
}

func loadQuestion(ctx context.Context, q querier, id int) (models.Question, error) {
	question := models.Question{Categories: []models.Category{}}
	err := q.QueryRowContext(ctx, `
		SELECT id, text, scale_min, scale_max FROM questions WHERE id = $1
	`, id).Scan(&question.ID, &question.Text, &question.ScaleMin, &question.ScaleMax)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Question{}, apperr.NotFound("question not found")
	}
	if err != nil {
		return models.Question{}, apperr.Store("failed to query question", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT c.id, c.name
		FROM question_categories qc
		JOIN categories c ON c.id = qc.category_id
		WHERE qc.question_id = $1
		ORDER BY c.id
	`, id)
	if err != nil {
		return models.Question{}, apperr.Store("failed to query question categories", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return models.Question{}, apperr.Store("failed to scan question category", err)
		}
		question.Categories = append(question.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return models.Question{}, apperr.Store("failed to read question categories", err)
	}
	return question, nil
}

func requireAffected(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store("failed to read affected rows", err)
	}
	if n == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}
