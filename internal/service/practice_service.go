package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"learningtime/internal/practice"
	"learningtime/internal/repository"
)

// DefaultPersistTimeout bounds each background guess write
const DefaultPersistTimeout = 10 * time.Second

// PracticeService keeps one practice session per signed-in user
type PracticeService struct {
	store          repository.QuestionStore
	persistTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*userSession

	persists sync.WaitGroup
}

type userSession struct {
	mu      sync.Mutex
	session *practice.Session
	loaded  bool

	// guesses chosen in this session that the store may not hold yet
	guesses map[string]string
}

// NewPracticeService creates a new practice service
func NewPracticeService(store repository.QuestionStore) *PracticeService {
	return &PracticeService{
		store:          store,
		persistTimeout: DefaultPersistTimeout,
		sessions:       make(map[string]*userSession),
	}
}

func (s *PracticeService) userSession(email string) *userSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	us, ok := s.sessions[email]
	if !ok {
		us = &userSession{session: practice.NewSession(), guesses: make(map[string]string)}
		s.sessions[email] = us
	}
	return us
}

// with runs fn on the user's session, loading questions on first use
func (s *PracticeService) with(ctx context.Context, email string, fn func(*practice.Session) error) (practice.View, error) {
	if fn == nil {
		return s.withUser(ctx, email, nil)
	}
	return s.withUser(ctx, email, func(us *userSession) error {
		return fn(us.session)
	})
}

func (s *PracticeService) withUser(ctx context.Context, email string, fn func(*userSession) error) (practice.View, error) {
	us := s.userSession(email)
	us.mu.Lock()
	defer us.mu.Unlock()

	if !us.loaded {
		if err := s.load(ctx, us); err != nil {
			return practice.View{}, err
		}
	}

	if fn != nil {
		if err := fn(us); err != nil {
			return us.session.View(), err
		}
	}
	return us.session.View(), nil
}

func (s *PracticeService) load(ctx context.Context, us *userSession) error {
	questions, err := s.store.ListQuestions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	for i := range questions {
		if guess, ok := us.guesses[questions[i].ID]; ok {
			questions[i].Guess = guess
		}
	}
	us.session.SetQuestions(questions)
	us.loaded = true
	return nil
}

// View returns the user's current practice view
func (s *PracticeService) View(ctx context.Context, email string) (practice.View, error) {
	return s.with(ctx, email, nil)
}

// SetFilters reloads the questions from the store and applies f,
// restarting at the first matching question. Guesses still being
// written are kept over the reloaded copies.
func (s *PracticeService) SetFilters(ctx context.Context, email string, f practice.Filters) (practice.View, error) {
	us := s.userSession(email)
	us.mu.Lock()
	defer us.mu.Unlock()

	if err := s.load(ctx, us); err != nil {
		return practice.View{}, err
	}
	us.session.SetFilters(f)
	return us.session.View(), nil
}

// Next moves to the next question
func (s *PracticeService) Next(ctx context.Context, email string) (practice.View, error) {
	return s.with(ctx, email, func(ps *practice.Session) error {
		ps.Next()
		return nil
	})
}

// Previous moves to the previous question
func (s *PracticeService) Previous(ctx context.Context, email string) (practice.View, error) {
	return s.with(ctx, email, func(ps *practice.Session) error {
		ps.Previous()
		return nil
	})
}

// Reveal shows more of the current question
func (s *PracticeService) Reveal(ctx context.Context, email string) (practice.View, error) {
	return s.with(ctx, email, func(ps *practice.Session) error {
		ps.RevealMore()
		return nil
	})
}

// Undo reverts the last reveal step
func (s *PracticeService) Undo(ctx context.Context, email string) (practice.View, error) {
	return s.with(ctx, email, func(ps *practice.Session) error {
		ps.Undo()
		return nil
	})
}

// SelectAnswer records key for the current question. The view is
// updated immediately and the guess is written in the background; a
// failed write is logged and the local selection is kept.
func (s *PracticeService) SelectAnswer(ctx context.Context, email, key string) (practice.View, error) {
	return s.withUser(ctx, email, func(us *userSession) error {
		q, err := us.session.SelectAnswer(key)
		if err != nil {
			return err
		}
		us.guesses[q.ID] = key
		s.persistGuess(us, q.ID, key)
		return nil
	})
}

// GoTo makes the question with id current, widening the filters when
// they hide it
func (s *PracticeService) GoTo(ctx context.Context, email, id string) (practice.View, error) {
	return s.with(ctx, email, func(ps *practice.Session) error {
		return ps.GoTo(id)
	})
}

// CopyText returns the current question formatted for copying
func (s *PracticeService) CopyText(ctx context.Context, email string) (string, error) {
	var text string
	_, err := s.with(ctx, email, func(ps *practice.Session) error {
		var err error
		text, err = ps.CopyText()
		return err
	})
	return text, err
}

// Forget drops the user's session
func (s *PracticeService) Forget(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, email)
}

// Wait blocks until every background guess write has finished
func (s *PracticeService) Wait() {
	s.persists.Wait()
}

func (s *PracticeService) persistGuess(us *userSession, id, guess string) {
	s.persists.Add(1)
	go func() {
		defer s.persists.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
		defer cancel()

		if err := s.store.RecordGuess(ctx, id, guess); err != nil {
			log.Printf("Failed to save guess for question %s: %v", id, err)
			return
		}

		us.mu.Lock()
		if us.guesses[id] == guess {
			delete(us.guesses, id)
		}
		us.mu.Unlock()
	}()
}
