package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"learningtime/internal/repository"
	"learningtime/internal/validation"
)

// ErrEmptyImport is returned when an import file holds no records
var ErrEmptyImport = errors.New("import file contains no questions")

// ImportError lists every invalid record of a rejected import
type ImportError struct {
	Records []validation.RecordError
}

func (e *ImportError) Error() string {
	lines := make([]string, len(e.Records))
	for i, rec := range e.Records {
		lines[i] = rec.Error()
	}
	return fmt.Sprintf("%d invalid record(s), nothing was imported:\n%s", len(e.Records), strings.Join(lines, "\n"))
}

// ImportService loads, exports and deletes questions in bulk
type ImportService struct {
	store repository.QuestionStore
}

// NewImportService creates a new import service
func NewImportService(store repository.QuestionStore) *ImportService {
	return &ImportService{store: store}
}

// Import reads a JSON array of question records from a file
func (s *ImportService) Import(ctx context.Context, inputPath string) ([]string, error) {
	log.Printf("Starting question import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader validates every record before writing any. When a
// record is invalid an *ImportError naming each bad record is returned
// and the store is untouched.
func (s *ImportService) ImportFromReader(ctx context.Context, reader io.Reader) ([]string, error) {
	var records []json.RawMessage
	if err := json.NewDecoder(reader).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyImport
	}

	questions, recordErrs := validation.ValidateQuestionRecords(records)
	if len(recordErrs) > 0 {
		return nil, &ImportError{Records: recordErrs}
	}

	ids, err := s.store.AddQuestions(ctx, questions)
	if err != nil {
		return nil, fmt.Errorf("failed to write questions: %w", err)
	}

	log.Printf("Question import completed: %d questions", len(ids))
	return ids, nil
}

// DeleteCourse removes every question of a course
func (s *ImportService) DeleteCourse(ctx context.Context, course string) (int, error) {
	course = strings.TrimSpace(course)
	if course == "" {
		return 0, validation.ValidationError{Field: "course", Message: "course is required"}
	}

	deleted, err := s.store.DeleteByCourse(ctx, course)
	if err != nil {
		return 0, fmt.Errorf("failed to delete course %q: %w", course, err)
	}

	log.Printf("Deleted %d questions from course %q", deleted, course)
	return deleted, nil
}

// Export writes all questions to a file
func (s *ImportService) Export(ctx context.Context, outputPath string) (int, error) {
	log.Printf("Starting question export to %s...", outputPath)

	file, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	n, err := s.ExportToWriter(ctx, file)
	if err != nil {
		return 0, err
	}
	return n, file.Close()
}

// ExportToWriter writes all questions as an indented JSON array that
// Import accepts
func (s *ImportService) ExportToWriter(ctx context.Context, w io.Writer) (int, error) {
	questions, err := s.store.ListQuestions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list questions: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(questions); err != nil {
		return 0, fmt.Errorf("failed to encode questions: %w", err)
	}
	return len(questions), nil
}
