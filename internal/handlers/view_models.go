package handlers

import (
	"learningtime/internal/models"
	"learningtime/internal/practice"
	"learningtime/internal/service"
)

type HomeViewData struct {
	Title     string
	User      *models.User
	CSRFToken string
}

type LoginViewData struct {
	Title      string
	User       *models.User
	Configured bool
	Error      string
}

type ForbiddenViewData struct {
	Title string
	User  *models.User
	Email string
}

type PracticeViewData struct {
	Title     string
	User      *models.User
	CSRFToken string
	View      practice.View
	Error     string
}

type SummaryViewData struct {
	Title     string
	User      *models.User
	CSRFToken string
	Summary   *service.Summary
	Error     string
}

type meResponse struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Picture   string `json:"picture,omitempty"`
	CSRFToken string `json:"csrfToken"`
}

type questionsResponse struct {
	Questions []models.Question `json:"questions"`
}

type recordGuessRequest struct {
	ID    string `json:"id"`
	Guess string `json:"guess"`
}

type answerRequest struct {
	Key string `json:"key"`
}

type gotoRequest struct {
	ID string `json:"id"`
}
