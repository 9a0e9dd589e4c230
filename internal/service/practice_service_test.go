package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"learningtime/internal/models"
	"learningtime/internal/practice"
	"learningtime/internal/repository"
)

func seedQuestions() []models.Question {
	answers := models.Answers{{Key: "A", Text: "yes"}, {Key: "B", Text: "no"}}
	return []models.Question{
		{ID: "q1", Path: "AWS", Course: "Compute", CourseOrder: 1, Module: "EC2", Question: "First question text", Answers: answers},
		{ID: "q2", Path: "AWS", Course: "Compute", CourseOrder: 1, Module: "EC2", Question: "Second question text", Answers: answers},
		{ID: "q3", Path: "GCP", Course: "Storage", CourseOrder: 2, Module: "GCS", Question: "Third", Answers: answers, Guess: "A"},
	}
}

// failingStore fails guess writes and counts list calls
type failingStore struct {
	*repository.MemoryQuestionStore
	mu        sync.Mutex
	listCalls int
	listErr   error
}

func (f *failingStore) ListQuestions(ctx context.Context) ([]models.Question, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.MemoryQuestionStore.ListQuestions(ctx)
}

func (f *failingStore) RecordGuess(ctx context.Context, id, guess string) error {
	return errors.New("store unavailable")
}

// slowStore holds guess writes until release is closed
type slowStore struct {
	*repository.MemoryQuestionStore
	release chan struct{}
}

func (s *slowStore) RecordGuess(ctx context.Context, id, guess string) error {
	<-s.release
	return s.MemoryQuestionStore.RecordGuess(ctx, id, guess)
}

func TestPracticeServiceFlow(t *testing.T) {
	store := repository.NewMemoryQuestionStore(seedQuestions()...)
	svc := NewPracticeService(store)
	ctx := context.Background()
	email := "learner@example.com"

	view, err := svc.View(ctx, email)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if view.Total != 2 {
		t.Fatalf("Total = %d, want 2 unguessed questions", view.Total)
	}

	if _, err := svc.SelectAnswer(ctx, email, "A"); !errors.Is(err, practice.ErrAnswersHidden) {
		t.Errorf("expected ErrAnswersHidden, got %v", err)
	}

	view, _ = svc.Reveal(ctx, email)
	if !view.Done {
		t.Fatal("three-word question should be done after one reveal")
	}

	view, err = svc.SelectAnswer(ctx, email, "B")
	if err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}
	if view.SelectedAnswer != "B" {
		t.Errorf("SelectedAnswer = %q, want B", view.SelectedAnswer)
	}

	svc.Wait()
	questions, _ := store.ListQuestions(ctx)
	if questions[0].Guess != "B" {
		t.Errorf("stored guess = %q, want B", questions[0].Guess)
	}

	view, _ = svc.Next(ctx, email)
	if view.Index != 1 || view.Question.ID != "q2" {
		t.Errorf("after Next: index %d question %+v", view.Index, view.Question)
	}
	view, _ = svc.Next(ctx, email)
	if view.Index != 1 {
		t.Errorf("Next at the end should be a no-op, index %d", view.Index)
	}
	view, _ = svc.Previous(ctx, email)
	if view.Index != 0 || view.SelectedAnswer != "B" {
		t.Errorf("back on q1 the guess should be preselected: %+v", view)
	}
}

func TestPracticeServiceSetFiltersReloads(t *testing.T) {
	store := &failingStore{MemoryQuestionStore: repository.NewMemoryQuestionStore(seedQuestions()...)}
	svc := NewPracticeService(store)
	ctx := context.Background()

	if _, err := svc.View(ctx, "u@example.com"); err != nil {
		t.Fatalf("View failed: %v", err)
	}
	view, err := svc.SetFilters(ctx, "u@example.com", practice.Filters{Path: "GCP", IncludeGuessed: true})
	if err != nil {
		t.Fatalf("SetFilters failed: %v", err)
	}
	if view.Total != 1 || view.Question.ID != "q3" {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.Stage != "answers_revealed" || view.SelectedAnswer != "A" {
		t.Errorf("guessed question should be fully revealed with its guess: %+v", view)
	}
	if store.listCalls != 2 {
		t.Errorf("listCalls = %d, want 2", store.listCalls)
	}

	if _, err := svc.Next(ctx, "u@example.com"); err != nil {
		t.Fatal(err)
	}
	if store.listCalls != 2 {
		t.Errorf("navigation should not refetch, listCalls = %d", store.listCalls)
	}
}

func TestPracticeServiceUsersAreIndependent(t *testing.T) {
	svc := NewPracticeService(repository.NewMemoryQuestionStore(seedQuestions()...))
	ctx := context.Background()

	svc.Next(ctx, "a@example.com")
	view, _ := svc.View(ctx, "b@example.com")
	if view.Index != 0 {
		t.Errorf("second user should start at 0, got %d", view.Index)
	}

	svc.Forget("a@example.com")
	view, _ = svc.View(ctx, "a@example.com")
	if view.Index != 0 {
		t.Errorf("forgotten session should restart, got %d", view.Index)
	}
}

func TestPracticeServiceKeepsSelectionWhenPersistFails(t *testing.T) {
	store := &failingStore{MemoryQuestionStore: repository.NewMemoryQuestionStore(seedQuestions()...)}
	svc := NewPracticeService(store)
	ctx := context.Background()
	email := "learner@example.com"

	svc.Reveal(ctx, email)
	view, err := svc.SelectAnswer(ctx, email, "A")
	if err != nil {
		t.Fatalf("SelectAnswer should not surface persist errors: %v", err)
	}
	svc.Wait()

	if view.SelectedAnswer != "A" {
		t.Errorf("SelectedAnswer = %q, want A", view.SelectedAnswer)
	}
	view, _ = svc.View(ctx, email)
	if view.SelectedAnswer != "A" {
		t.Errorf("selection should survive a failed write, got %q", view.SelectedAnswer)
	}
}

func TestPracticeServiceLoadError(t *testing.T) {
	store := &failingStore{
		MemoryQuestionStore: repository.NewMemoryQuestionStore(),
		listErr:             errors.New("connection refused"),
	}
	svc := NewPracticeService(store)

	if _, err := svc.View(context.Background(), "u@example.com"); err == nil {
		t.Error("expected load error")
	}
}

func TestPracticeServiceCopyText(t *testing.T) {
	svc := NewPracticeService(repository.NewMemoryQuestionStore(seedQuestions()...))

	text, err := svc.CopyText(context.Background(), "u@example.com")
	if err != nil {
		t.Fatalf("CopyText failed: %v", err)
	}
	want := "First question text\n\n" + practice.CopyPrompt + "\n\nA. yes\nB. no"
	if text != want {
		t.Errorf("CopyText() = %q, want %q", text, want)
	}
}

func TestPracticeServiceSetFiltersKeepsPendingGuess(t *testing.T) {
	store := &slowStore{
		MemoryQuestionStore: repository.NewMemoryQuestionStore(seedQuestions()...),
		release:             make(chan struct{}),
	}
	svc := NewPracticeService(store)
	ctx := context.Background()
	email := "learner@example.com"

	svc.Reveal(ctx, email)
	if _, err := svc.SelectAnswer(ctx, email, "B"); err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}

	view, err := svc.SetFilters(ctx, email, practice.Filters{Path: "AWS"})
	if err != nil {
		t.Fatalf("SetFilters failed: %v", err)
	}
	if view.Total != 1 || view.Question == nil || view.Question.ID != "q2" {
		t.Errorf("answered q1 should be hidden while its write is pending: total %d question %+v", view.Total, view.Question)
	}

	view, _ = svc.SetFilters(ctx, email, practice.Filters{Path: "AWS", IncludeGuessed: true})
	if view.Question == nil || view.Question.ID != "q1" || view.SelectedAnswer != "B" {
		t.Errorf("q1 should show its pending guess: question %+v selected %q", view.Question, view.SelectedAnswer)
	}

	close(store.release)
	svc.Wait()

	view, _ = svc.SetFilters(ctx, email, practice.Filters{Path: "AWS"})
	if view.Total != 1 {
		t.Errorf("after the write lands Total = %d, want 1", view.Total)
	}
}

func TestPracticeServiceGoTo(t *testing.T) {
	svc := NewPracticeService(repository.NewMemoryQuestionStore(seedQuestions()...))
	ctx := context.Background()

	view, err := svc.GoTo(ctx, "u@example.com", "q3")
	if err != nil {
		t.Fatalf("GoTo failed: %v", err)
	}
	if view.Question == nil || view.Question.ID != "q3" || view.SelectedAnswer != "A" {
		t.Errorf("unexpected view: %+v", view)
	}
	if !view.Filters.IncludeGuessed {
		t.Error("jumping to a guessed question should include guessed questions")
	}

	if _, err := svc.GoTo(ctx, "u@example.com", "nope"); !errors.Is(err, practice.ErrNoQuestion) {
		t.Errorf("GoTo(nope) error = %v, want ErrNoQuestion", err)
	}
}
