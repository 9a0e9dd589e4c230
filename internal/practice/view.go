package practice

import "learningtime/internal/models"

// View is a snapshot of a session for rendering
type View struct {
	Filters            Filters       `json:"filters"`
	Options            Options       `json:"options"`
	Index              int           `json:"index"`
	Total              int           `json:"total"`
	Question           *QuestionView `json:"question,omitempty"`
	Stage              string        `json:"stage"`
	Done               bool          `json:"done"`
	VisibleWordCount   int           `json:"visibleWordCount"`
	VisibleAnswerCount int           `json:"visibleAnswerCount"`
	CanUndo            bool          `json:"canUndo"`
	HasPrevious        bool          `json:"hasPrevious"`
	HasNext            bool          `json:"hasNext"`
	SelectedAnswer     string        `json:"selectedAnswer,omitempty"`
}

// QuestionView is the revealed part of the current question
type QuestionView struct {
	ID           string         `json:"id"`
	Path         string         `json:"path"`
	Course       string         `json:"course"`
	Module       string         `json:"module"`
	Text         string         `json:"text"`
	Answers      models.Answers `json:"answers"`
	TotalAnswers int            `json:"totalAnswers"`
}

// View captures the current state of the session
func (s *Session) View() View {
	v := View{
		Filters:            s.filters,
		Options:            OptionsFor(s.questions),
		Index:              s.index,
		Total:              len(s.filtered),
		Done:               s.Done(),
		VisibleWordCount:   s.reveal.words,
		VisibleAnswerCount: s.reveal.answers,
		CanUndo:            s.CanUndo(),
		HasPrevious:        s.index > 0,
		HasNext:            s.index < len(s.filtered)-1,
		SelectedAnswer:     s.selected,
	}

	q, ok := s.Current()
	if !ok {
		v.Stage = StageHidden.String()
		return v
	}

	v.Stage = s.Stage().String()
	v.Question = &QuestionView{
		ID:           q.ID,
		Path:         q.Path,
		Course:       q.Course,
		Module:       q.Module,
		Text:         s.VisibleText(),
		Answers:      s.VisibleAnswers(),
		TotalAnswers: len(q.Answers),
	}
	return v
}
