package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Status is the moderation state of a question
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known moderation states
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Question represents a multiple-choice study question
type Question struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Course      string    `json:"course"`
	CourseOrder int       `json:"courseOrder"`
	Module      string    `json:"module"`
	ModuleOrder int       `json:"moduleOrder"`
	Question    string    `json:"question"`
	Answers     Answers   `json:"answers"`
	Guess       string    `json:"guess,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasGuess reports whether an answer has been recorded for the question
func (q *Question) HasGuess() bool {
	return q.Guess != ""
}

// Answer is a single choice of a question
type Answer struct {
	Key  string
	Text string
}

// Answers is an ordered set of answer choices. It encodes as a JSON object
// whose key order is the slice order.
type Answers []Answer

// Get returns the text for key
func (a Answers) Get(key string) (string, bool) {
	for _, ans := range a {
		if ans.Key == key {
			return ans.Text, true
		}
	}
	return "", false
}

// Has reports whether key is one of the choices
func (a Answers) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Keys returns the choice keys in display order
func (a Answers) Keys() []string {
	keys := make([]string, len(a))
	for i, ans := range a {
		keys[i] = ans.Key
	}
	return keys
}

// Map returns the choices as a map, losing order
func (a Answers) Map() map[string]string {
	m := make(map[string]string, len(a))
	for _, ans := range a {
		m[ans.Key] = ans.Text
	}
	return m
}

// AnswersFromMap builds Answers from an unordered map, sorting by key
func AnswersFromMap(m map[string]string) Answers {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	answers := make(Answers, 0, len(keys))
	for _, k := range keys {
		answers = append(answers, Answer{Key: k, Text: m[k]})
	}
	return answers
}

// Lines formats the choices as "key. text" lines
func (a Answers) Lines() []string {
	lines := make([]string, len(a))
	for i, ans := range a {
		lines[i] = fmt.Sprintf("%s. %s", ans.Key, ans.Text)
	}
	return lines
}

// MarshalJSON writes the answers as an object, preserving order
func (a Answers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ans := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ans.Key)
		if err != nil {
			return nil, err
		}
		text, err := json.Marshal(ans.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(text)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of choices, keeping the document order
func (a *Answers) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*a = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("answers must be a JSON object")
	}

	answers := Answers{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New("answers key must be a string")
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("answer %q: %w", key, err)
		}
		if seen[key] {
			return fmt.Errorf("duplicate answer key %q", key)
		}
		seen[key] = true
		answers = append(answers, Answer{Key: key, Text: text})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*a = answers
	return nil
}

// Value stores answers as their JSON text
func (a Answers) Value() (driver.Value, error) {
	data, err := a.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan reads answers from a JSON text column
func (a *Answers) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return a.UnmarshalJSON(v)
	case string:
		return a.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("cannot scan %T into Answers", src)
	}
}
