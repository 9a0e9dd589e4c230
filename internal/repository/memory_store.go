package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"learningtime/internal/models"
)

// MemoryQuestionStore keeps questions in process memory. It backs tests
// and the STORE_BACKEND=memory development mode.
type MemoryQuestionStore struct {
	mu        sync.RWMutex
	questions []models.Question
}

// NewMemoryQuestionStore creates a store seeded with questions as-is
func NewMemoryQuestionStore(seed ...models.Question) *MemoryQuestionStore {
	s := &MemoryQuestionStore{}
	for _, q := range seed {
		s.questions = append(s.questions, cloneQuestion(q))
	}
	return s
}

func (s *MemoryQuestionStore) ListQuestions(ctx context.Context) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = cloneQuestion(q)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CourseOrder != b.CourseOrder {
			return a.CourseOrder < b.CourseOrder
		}
		if a.ModuleOrder != b.ModuleOrder {
			return a.ModuleOrder < b.ModuleOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *MemoryQuestionStore) RecordGuess(ctx context.Context, id, guess string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.questions {
		if s.questions[i].ID == id {
			s.questions[i].Guess = guess
			s.questions[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrQuestionNotFound
}

func (s *MemoryQuestionStore) AddQuestions(ctx context.Context, questions []models.Question) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		q = prepareForInsert(cloneQuestion(q), now)
		s.questions = append(s.questions, q)
		ids = append(ids, q.ID)
	}
	return ids, nil
}

func (s *MemoryQuestionStore) DeleteByCourse(ctx context.Context, course string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.questions[:0]
	deleted := 0
	for _, q := range s.questions {
		if q.Course == course {
			deleted++
			continue
		}
		kept = append(kept, q)
	}
	s.questions = kept
	return deleted, nil
}

func cloneQuestion(q models.Question) models.Question {
	if q.Answers != nil {
		q.Answers = append(models.Answers(nil), q.Answers...)
	}
	return q
}
