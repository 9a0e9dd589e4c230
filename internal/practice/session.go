// Package practice implements the practice view: a filtered walk through
// the question list where each question's text and then its answers are
// revealed a step at a time.
package practice

import (
	"errors"
	"strings"

	"learningtime/internal/models"
)

// WordsPerReveal is the number of question words each reveal step shows
const WordsPerReveal = 4

// CopyPrompt is placed between the question and its answers in CopyText
const CopyPrompt = "Which option is right? Please explain why others are wrong."

var (
	ErrNoQuestion    = errors.New("no question to show")
	ErrAnswersHidden = errors.New("answers are not revealed yet")
	ErrUnknownAnswer = errors.New("answer is not one of the question's choices")
)

// Stage is the reveal progress of the current question
type Stage int

const (
	StageHidden Stage = iota
	StageRevealing
	StageTextDone
	StageAnswersRevealed
)

func (s Stage) String() string {
	switch s {
	case StageHidden:
		return "hidden"
	case StageRevealing:
		return "revealing"
	case StageTextDone:
		return "text_done"
	case StageAnswersRevealed:
		return "answers_revealed"
	default:
		return "unknown"
	}
}

type reveal struct {
	words   int
	answers int
}

// Session is the practice state of one user. It is not safe for
// concurrent use.
type Session struct {
	questions []models.Question
	filters   Filters
	filtered  []models.Question
	index     int
	selected  string
	reveal    reveal
	history   []reveal
}

// NewSession creates an empty session with default filters
func NewSession() *Session {
	return &Session{}
}

// SetQuestions replaces the source list, re-filters and restarts at the
// first matching question
func (s *Session) SetQuestions(questions []models.Question) {
	s.questions = append([]models.Question(nil), questions...)
	s.refilter()
}

// SetFilters changes the filter selection and restarts at the first
// matching question
func (s *Session) SetFilters(f Filters) {
	s.filters = f
	s.refilter()
}

// Filters returns the active filter selection
func (s *Session) Filters() Filters {
	return s.filters
}

// Questions returns the unfiltered source list
func (s *Session) Questions() []models.Question {
	return s.questions
}

// Len is the size of the filtered list
func (s *Session) Len() int {
	return len(s.filtered)
}

// Index is the position of the current question in the filtered list
func (s *Session) Index() int {
	return s.index
}

// Current returns the question being practiced
func (s *Session) Current() (models.Question, bool) {
	if len(s.filtered) == 0 {
		return models.Question{}, false
	}
	return s.filtered[s.index], true
}

// Next moves forward one question. It reports false at the end of the list.
func (s *Session) Next() bool {
	if s.index >= len(s.filtered)-1 {
		return false
	}
	s.index++
	s.resetReveal()
	return true
}

// Previous moves back one question. It reports false at the start.
func (s *Session) Previous() bool {
	if s.index <= 0 {
		return false
	}
	s.index--
	s.resetReveal()
	return true
}

// GoTo makes the question with id current. When the active filters hide
// it, guessed questions are let in first; failing that the filters switch
// to the question's own path, course and module.
func (s *Session) GoTo(id string) error {
	target, ok := s.find(id)
	if !ok {
		return ErrNoQuestion
	}

	if !s.filters.Match(target) {
		f := s.filters
		f.IncludeGuessed = true
		if !f.Match(target) {
			f = Filters{Path: target.Path, Course: target.Course, Module: target.Module, IncludeGuessed: true}
		}
		s.filters = f
		s.filtered = Apply(s.questions, f)
	}

	for i, q := range s.filtered {
		if q.ID == id {
			s.index = i
			break
		}
	}
	s.resetReveal()
	return nil
}

func (s *Session) find(id string) (models.Question, bool) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, true
		}
	}
	return models.Question{}, false
}

// RevealMore shows the next words of the question text or, once the
// text is complete, the next answer. It reports false when nothing is
// left to show.
func (s *Session) RevealMore() bool {
	q, ok := s.Current()
	if !ok {
		return false
	}

	next := s.reveal
	switch {
	case !s.Done():
		next.words++
	case next.answers < len(q.Answers):
		next.answers++
	default:
		return false
	}

	s.history = append(s.history, s.reveal)
	s.reveal = next
	return true
}

// Undo reverts the most recent reveal step
func (s *Session) Undo() bool {
	if len(s.history) == 0 {
		return false
	}
	s.reveal = s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	return true
}

// CanUndo reports whether Undo has a step to revert
func (s *Session) CanUndo() bool {
	return len(s.history) > 0
}

// Done reports whether the whole question text is visible
func (s *Session) Done() bool {
	return wordsShown(s.reveal.words, s.wordCount()) >= s.wordCount()
}

// Stage returns the reveal progress of the current question
func (s *Session) Stage() Stage {
	q, _ := s.Current()
	switch {
	case s.reveal.words == 0 && !s.Done():
		return StageHidden
	case !s.Done():
		return StageRevealing
	case s.reveal.answers < len(q.Answers):
		return StageTextDone
	default:
		return StageAnswersRevealed
	}
}

// VisibleWordCount is the number of reveal steps taken over the text
func (s *Session) VisibleWordCount() int {
	return s.reveal.words
}

// VisibleAnswerCount is the number of answers shown
func (s *Session) VisibleAnswerCount() int {
	return s.reveal.answers
}

// VisibleText returns the part of the question text revealed so far
func (s *Session) VisibleText() string {
	q, ok := s.Current()
	if !ok {
		return ""
	}
	tokens := strings.Fields(q.Question)
	return strings.Join(tokens[:wordsShown(s.reveal.words, len(tokens))], " ")
}

// VisibleAnswers returns the answers revealed so far, in display order
func (s *Session) VisibleAnswers() models.Answers {
	q, ok := s.Current()
	if !ok {
		return nil
	}
	return q.Answers[:min(s.reveal.answers, len(q.Answers))]
}

// Selected returns the chosen answer key of the current question
func (s *Session) Selected() string {
	return s.selected
}

// SelectAnswer records key as the choice for the current question and
// returns the updated question. The filtered list is not recomputed, so
// the question stays current even when guessed questions are hidden.
func (s *Session) SelectAnswer(key string) (models.Question, error) {
	q, ok := s.Current()
	if !ok {
		return models.Question{}, ErrNoQuestion
	}
	if !s.Done() {
		return models.Question{}, ErrAnswersHidden
	}
	if !q.Answers.Has(key) {
		return models.Question{}, ErrUnknownAnswer
	}

	s.selected = key
	s.filtered[s.index].Guess = key
	for i := range s.questions {
		if s.questions[i].ID == q.ID {
			s.questions[i].Guess = key
		}
	}
	return s.filtered[s.index], nil
}

// CopyText formats the current question and all of its answers for
// pasting into a chat assistant
func (s *Session) CopyText() (string, error) {
	q, ok := s.Current()
	if !ok {
		return "", ErrNoQuestion
	}
	return CopyText(q), nil
}

// CopyText formats q with its prompt and "key. text" answer lines
func CopyText(q models.Question) string {
	return q.Question + "\n\n" + CopyPrompt + "\n\n" + strings.Join(q.Answers.Lines(), "\n")
}

func (s *Session) refilter() {
	s.filtered = Apply(s.questions, s.filters)
	s.index = 0
	s.resetReveal()
}

// resetReveal hides the current question again, or fully reveals it
// with the stored guess selected when it was already answered
func (s *Session) resetReveal() {
	s.history = nil
	s.selected = ""
	s.reveal = reveal{}

	q, ok := s.Current()
	if !ok || !q.HasGuess() {
		return
	}
	s.selected = q.Guess
	s.reveal = reveal{
		words:   (s.wordCount() + WordsPerReveal - 1) / WordsPerReveal,
		answers: len(q.Answers),
	}
}

func (s *Session) wordCount() int {
	q, ok := s.Current()
	if !ok {
		return 0
	}
	return len(strings.Fields(q.Question))
}

func wordsShown(steps, total int) int {
	if steps <= 0 {
		return 0
	}
	return min(total, steps*WordsPerReveal)
}
