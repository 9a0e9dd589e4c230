package repository

import (
	"context"
	"errors"

	"learningtime/internal/models"
)

// ErrQuestionNotFound is returned when no question has the requested id
var ErrQuestionNotFound = errors.New("question not found")

// QuestionStore is the question document store used by the services.
// Implementations: QuestionRepository (SQL), MemoryQuestionStore and
// firestore.Store.
type QuestionStore interface {
	// ListQuestions returns every question ordered by course order
	ListQuestions(ctx context.Context) ([]models.Question, error)

	// RecordGuess sets the guess of a question; last write wins
	RecordGuess(ctx context.Context, id, guess string) error

	// AddQuestions inserts questions, assigning ids and timestamps.
	// Either every question is written or none is.
	AddQuestions(ctx context.Context, questions []models.Question) ([]string, error)

	// DeleteByCourse removes every question with the given course label
	DeleteByCourse(ctx context.Context, course string) (int, error)
}
