package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"learningtime/internal/database"
	"learningtime/internal/models"
)

const questionColumns = `id, path, course, course_order, module, module_order,
	question, answers, guess, status, created_at, updated_at`

// QuestionRepository handles question database operations
type QuestionRepository struct {
	db *database.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *database.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// ListQuestions retrieves all questions ordered by course order
func (r *QuestionRepository) ListQuestions(ctx context.Context) ([]models.Question, error) {
	query := `SELECT ` + questionColumns + `
		FROM questions
		ORDER BY course_order ASC, module_order ASC, created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

// RecordGuess stores the user's chosen answer key for a question
func (r *QuestionRepository) RecordGuess(ctx context.Context, id, guess string) error {
	query := `UPDATE questions SET guess = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, guess, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to record guess: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to record guess: %w", err)
	}
	if affected == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

// AddQuestions inserts a batch of questions in a single transaction
func (r *QuestionRepository) AddQuestions(ctx context.Context, questions []models.Question) ([]string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO questions (` + questionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	ids := make([]string, 0, len(questions))
	for i := range questions {
		q := prepareForInsert(questions[i], now)

		var guess sql.NullString
		if q.Guess != "" {
			guess = sql.NullString{String: q.Guess, Valid: true}
		}

		_, err := tx.ExecContext(ctx, query,
			q.ID, q.Path, q.Course, q.CourseOrder, q.Module, q.ModuleOrder,
			q.Question, q.Answers, guess, string(q.Status), q.CreatedAt, q.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert question %d: %w", i, err)
		}
		ids = append(ids, q.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit questions: %w", err)
	}
	return ids, nil
}

// DeleteByCourse deletes every question belonging to a course
func (r *QuestionRepository) DeleteByCourse(ctx context.Context, course string) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM questions WHERE course = ?", course)
	if err != nil {
		return 0, fmt.Errorf("failed to delete questions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted questions: %w", err)
	}
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuestion(row rowScanner) (models.Question, error) {
	var q models.Question
	var guess sql.NullString
	var status string

	err := row.Scan(
		&q.ID,
		&q.Path,
		&q.Course,
		&q.CourseOrder,
		&q.Module,
		&q.ModuleOrder,
		&q.Question,
		&q.Answers,
		&guess,
		&status,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		return q, err
	}

	if guess.Valid {
		q.Guess = guess.String
	}
	q.Status = models.Status(status)
	return q, nil
}

// prepareForInsert assigns the store-owned fields of a new question
func prepareForInsert(q models.Question, now time.Time) models.Question {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.Status == "" {
		q.Status = models.StatusPending
	}
	q.CreatedAt = now
	q.UpdatedAt = now
	return q
}
