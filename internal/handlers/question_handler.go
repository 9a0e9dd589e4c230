package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"learningtime/internal/repository"
	"learningtime/internal/service"
	"learningtime/internal/validation"
)

// QuestionHandler serves the question API
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListQuestions returns every question ordered by course order
func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questionService.List(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, ErrInternalServerErrorUC, "Error fetching questions", err)
		return
	}
	respondJSON(w, http.StatusOK, questionsResponse{Questions: questions})
}

// RecordGuess stores the chosen answer for a question
func (h *QuestionHandler) RecordGuess(w http.ResponseWriter, r *http.Request) {
	var req recordGuessRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	err := h.questionService.RecordGuess(r.Context(), req.ID, req.Guess)

	var verr validation.ValidationError
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.As(err, &verr):
		respondJSONError(w, http.StatusBadRequest, verr.Error(), "", nil)
	case errors.Is(err, repository.ErrQuestionNotFound):
		respondJSONError(w, http.StatusNotFound, ErrQuestionNotFound, "", nil)
	default:
		respondJSONError(w, http.StatusInternalServerError, ErrInternalServerErrorUC, "Error updating question", err)
	}
}
