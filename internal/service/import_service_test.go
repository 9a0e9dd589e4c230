package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"learningtime/internal/models"
	"learningtime/internal/repository"
)

const importBatch = `[
  {"path":"AWS","course":"Compute","courseOrder":1,"module":"EC2","moduleOrder":1,"question":"Pick a family","answers":{"A":"r5","B":"c5"}},
  {"path":"AWS","course":"Compute","courseOrder":1,"module":"EC2","moduleOrder":2,"question":"Pick a size","answers":{"A":"large"},"status":"approved"}
]`

func TestImportFromReader(t *testing.T) {
	store := repository.NewMemoryQuestionStore()
	svc := NewImportService(store)
	ctx := context.Background()

	ids, err := svc.ImportFromReader(ctx, strings.NewReader(importBatch))
	if err != nil {
		t.Fatalf("ImportFromReader failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}

	questions, _ := store.ListQuestions(ctx)
	if questions[0].Status != models.StatusPending {
		t.Errorf("default status = %q, want pending", questions[0].Status)
	}
	if questions[1].Status != models.StatusApproved {
		t.Errorf("supplied status = %q, want approved", questions[1].Status)
	}
}

func TestImportRejectsWholeBatchOnInvalidRecord(t *testing.T) {
	store := repository.NewMemoryQuestionStore()
	svc := NewImportService(store)
	ctx := context.Background()

	batch := `[
	  {"path":"AWS","course":"Compute","courseOrder":1,"module":"EC2","moduleOrder":1,"question":"ok","answers":{"A":"a"}},
	  {"path":"AWS","course":"Compute","courseOrder":1,"module":"EC2","question":"no module order","answers":{"A":"a"}}
	]`

	_, err := svc.ImportFromReader(ctx, strings.NewReader(batch))

	var importErr *ImportError
	if !errors.As(err, &importErr) {
		t.Fatalf("expected *ImportError, got %v", err)
	}
	if len(importErr.Records) != 1 || importErr.Records[0].Index != 1 {
		t.Fatalf("unexpected record errors: %+v", importErr.Records)
	}
	if !strings.Contains(err.Error(), "moduleOrder") {
		t.Errorf("error should name the missing field: %v", err)
	}

	questions, _ := store.ListQuestions(ctx)
	if len(questions) != 0 {
		t.Errorf("nothing should be written, found %d questions", len(questions))
	}
}

func TestImportRejectsBadInput(t *testing.T) {
	svc := NewImportService(repository.NewMemoryQuestionStore())
	ctx := context.Background()

	if _, err := svc.ImportFromReader(ctx, strings.NewReader(`[]`)); !errors.Is(err, ErrEmptyImport) {
		t.Errorf("expected ErrEmptyImport, got %v", err)
	}
	if _, err := svc.ImportFromReader(ctx, strings.NewReader(`{"not":"an array"}`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestDeleteCourse(t *testing.T) {
	store := repository.NewMemoryQuestionStore()
	svc := NewImportService(store)
	ctx := context.Background()

	if _, err := svc.ImportFromReader(ctx, strings.NewReader(importBatch)); err != nil {
		t.Fatal(err)
	}

	deleted, err := svc.DeleteCourse(ctx, " Compute ")
	if err != nil {
		t.Fatalf("DeleteCourse failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	if _, err := svc.DeleteCourse(ctx, "  "); err == nil {
		t.Error("expected error for blank course")
	}
}

func TestExportRoundTrip(t *testing.T) {
	store := repository.NewMemoryQuestionStore()
	svc := NewImportService(store)
	ctx := context.Background()

	if _, err := svc.ImportFromReader(ctx, strings.NewReader(importBatch)); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordGuess(ctx, mustFirstID(t, store), "B"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	n, err := svc.ExportToWriter(ctx, &buf)
	if err != nil {
		t.Fatalf("ExportToWriter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("exported %d, want 2", n)
	}

	other := repository.NewMemoryQuestionStore()
	if _, err := NewImportService(other).ImportFromReader(ctx, &buf); err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	questions, _ := other.ListQuestions(ctx)
	if len(questions) != 2 || questions[0].Guess != "B" {
		t.Errorf("unexpected re-imported questions: %+v", questions)
	}
	if keys := strings.Join(questions[0].Answers.Keys(), ""); keys != "AB" {
		t.Errorf("answer order = %s, want AB", keys)
	}
}

func mustFirstID(t *testing.T, store repository.QuestionStore) string {
	t.Helper()
	questions, err := store.ListQuestions(context.Background())
	if err != nil || len(questions) == 0 {
		t.Fatalf("no questions: %v", err)
	}
	return questions[0].ID
}
