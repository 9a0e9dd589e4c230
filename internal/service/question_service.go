package service

import (
	"context"
	"fmt"
	"strings"

	"learningtime/internal/models"
	"learningtime/internal/practice"
	"learningtime/internal/repository"
	"learningtime/internal/validation"
)

// QuestionService handles question retrieval and answer recording
type QuestionService struct {
	store repository.QuestionStore
}

// NewQuestionService creates a new question service
func NewQuestionService(store repository.QuestionStore) *QuestionService {
	return &QuestionService{store: store}
}

// List returns every question ordered by course order
func (s *QuestionService) List(ctx context.Context) ([]models.Question, error) {
	questions, err := s.store.ListQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

// RecordGuess stores guess for question id. The guess is not checked
// against the question's answers; the latest write wins.
func (s *QuestionService) RecordGuess(ctx context.Context, id, guess string) error {
	if strings.TrimSpace(id) == "" {
		return validation.ValidationError{Field: "id", Message: "id is required"}
	}
	return s.store.RecordGuess(ctx, id, guess)
}

// Summary is the filtered question list with its drop-down options
type Summary struct {
	Questions []models.Question `json:"questions"`
	Filters   practice.Filters  `json:"filters"`
	Options   practice.Options  `json:"options"`
	Count     int               `json:"count"`
	Total     int               `json:"total"`
}

// Summary fetches all questions and applies f
func (s *QuestionService) Summary(ctx context.Context, f practice.Filters) (*Summary, error) {
	questions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := practice.Apply(questions, f)
	return &Summary{
		Questions: filtered,
		Filters:   f,
		Options:   practice.OptionsFor(questions),
		Count:     len(filtered),
		Total:     len(questions),
	}, nil
}
