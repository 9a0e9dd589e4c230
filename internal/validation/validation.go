// Package validation checks user supplied input: sign-in emails and
// question records for bulk import.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"learningtime/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// RequiredQuestionFields lists the fields every imported record must carry
var RequiredQuestionFields = []string{
	"path", "course", "courseOrder", "module", "moduleOrder", "question", "answers",
}

// RecordError describes everything wrong with one import record
type RecordError struct {
	Index   int
	Missing []string
	Invalid []ValidationError
}

func (e RecordError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	for _, v := range e.Invalid {
		parts = append(parts, v.Error())
	}
	return fmt.Sprintf("record %d: %s", e.Index, strings.Join(parts, "; "))
}

// ValidateQuestionRecord checks one raw JSON record and decodes it.
// A field is missing when it is absent, null or a blank string.
// Store owned fields (id, timestamps) are cleared.
func ValidateQuestionRecord(index int, raw json.RawMessage) (models.Question, *RecordError) {
	recErr := &RecordError{Index: index}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		recErr.Invalid = append(recErr.Invalid, ValidationError{Field: "record", Message: "must be a JSON object"})
		return models.Question{}, recErr
	}

	var q models.Question
	for _, name := range RequiredQuestionFields {
		value, ok := fields[name]
		if !ok || isBlank(value) {
			recErr.Missing = append(recErr.Missing, name)
			continue
		}
		if err := decodeField(&q, name, value); err != nil {
			recErr.Invalid = append(recErr.Invalid, ValidationError{Field: name, Message: err.Error()})
		}
	}

	if value, ok := fields["status"]; ok && !isBlank(value) {
		if err := json.Unmarshal(value, &q.Status); err != nil || !q.Status.Valid() {
			recErr.Invalid = append(recErr.Invalid, ValidationError{Field: "status", Message: "must be pending, approved or rejected"})
		}
	}
	if value, ok := fields["guess"]; ok && !isBlank(value) {
		if err := json.Unmarshal(value, &q.Guess); err != nil {
			recErr.Invalid = append(recErr.Invalid, ValidationError{Field: "guess", Message: "must be a string"})
		} else if q.Answers != nil && !q.Answers.Has(q.Guess) {
			recErr.Invalid = append(recErr.Invalid, ValidationError{Field: "guess", Message: "must be one of the answer keys"})
		}
	}

	if len(recErr.Missing) > 0 || len(recErr.Invalid) > 0 {
		return models.Question{}, recErr
	}
	if q.Status == "" {
		q.Status = models.StatusPending
	}
	return q, nil
}

// ValidateQuestionRecords validates every record and returns either all
// decoded questions or every record error
func ValidateQuestionRecords(records []json.RawMessage) ([]models.Question, []RecordError) {
	questions := make([]models.Question, 0, len(records))
	var errs []RecordError
	for i, raw := range records {
		q, err := ValidateQuestionRecord(i, raw)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		questions = append(questions, q)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return questions, nil
}

func isBlank(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return true
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func decodeField(q *models.Question, name string, value json.RawMessage) error {
	switch name {
	case "path":
		return decodeString(value, &q.Path)
	case "course":
		return decodeString(value, &q.Course)
	case "module":
		return decodeString(value, &q.Module)
	case "question":
		return decodeString(value, &q.Question)
	case "courseOrder":
		return decodeInt(value, &q.CourseOrder)
	case "moduleOrder":
		return decodeInt(value, &q.ModuleOrder)
	case "answers":
		if err := json.Unmarshal(value, &q.Answers); err != nil {
			return fmt.Errorf("must be an object of key to text: %v", err)
		}
		if len(q.Answers) == 0 {
			return fmt.Errorf("must have at least one answer")
		}
		return nil
	}
	return fmt.Errorf("unknown field")
}

func decodeString(value json.RawMessage, dst *string) error {
	if err := json.Unmarshal(value, dst); err != nil {
		return fmt.Errorf("must be a string")
	}
	return nil
}

func decodeInt(value json.RawMessage, dst *int) error {
	if err := json.Unmarshal(value, dst); err != nil {
		return fmt.Errorf("must be an integer")
	}
	return nil
}
