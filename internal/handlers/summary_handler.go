package handlers

import (
	"html/template"
	"net/http"

	"learningtime/internal/service"
)

// SummaryHandler serves the read-only question summary
type SummaryHandler struct {
	questionService *service.QuestionService
	middleware      *Middleware
	templates       *template.Template
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(questionService *service.QuestionService, middleware *Middleware, templates *template.Template) *SummaryHandler {
	return &SummaryHandler{
		questionService: questionService,
		middleware:      middleware,
		templates:       templates,
	}
}

// ShowSummary renders the filtered question list
func (h *SummaryHandler) ShowSummary(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxPracticeBody)

	data := SummaryViewData{
		Title:     "Summary - Learning Time",
		User:      &session.User,
		CSRFToken: h.middleware.CSRFToken(session),
	}

	f, err := filtersFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "Invalid summary filters", err)
		return
	}
	summary, err := h.questionService.Summary(r.Context(), f)
	if err != nil {
		logError("Failed to load questions", "", err)
		data.Error = "Failed to load questions"
	}
	data.Summary = summary

	if err := h.templates.ExecuteTemplate(w, "summary.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering summary template", err)
	}
}

// APISummary returns the filtered question list as JSON
func (h *SummaryHandler) APISummary(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPracticeBody)
	f, err := filtersFromRequest(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	}
	summary, err := h.questionService.Summary(r.Context(), f)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, ErrInternalServerErrorUC, "Error fetching summary", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
