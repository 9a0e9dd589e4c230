package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"learningtime/internal/practice"
	"learningtime/internal/service"
)

// PracticeHandler serves the practice page and its JSON API
type PracticeHandler struct {
	practiceService *service.PracticeService
	middleware      *Middleware
	templates       *template.Template
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService *service.PracticeService, middleware *Middleware, templates *template.Template) *PracticeHandler {
	return &PracticeHandler{
		practiceService: practiceService,
		middleware:      middleware,
		templates:       templates,
	}
}

// maxPracticeBody caps form and JSON bodies sent to practice actions
const maxPracticeBody = 1 << 16

// PracticeAction changes the signed-in user's practice session
type PracticeAction func(r *http.Request, email string) (practice.View, error)

// ShowPractice renders the practice page. An "id" query parameter jumps
// to that question first.
func (h *PracticeHandler) ShowPractice(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	if id := strings.TrimSpace(r.URL.Query().Get("id")); id != "" {
		target := "/practice"
		if _, err := h.practiceService.GoTo(r.Context(), session.User.Email, id); err != nil {
			_, msg := practiceErrorStatus(err)
			logError(msg, "Practice jump failed", err)
			target += "?" + url.Values{"error": {msg}}.Encode()
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	data := PracticeViewData{
		Title:     "Practice - Learning Time",
		User:      &session.User,
		CSRFToken: h.middleware.CSRFToken(session),
		Error:     r.URL.Query().Get("error"),
	}

	view, err := h.practiceService.View(r.Context(), session.User.Email)
	if err != nil {
		logError("Failed to load questions", "", err)
		data.Error = "Failed to load questions"
	}
	data.View = view

	if err := h.templates.ExecuteTemplate(w, "practice.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering practice template", err)
	}
}

// APIView returns the practice view as JSON
func (h *PracticeHandler) APIView(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	view, err := h.practiceService.View(r.Context(), session.User.Email)
	if err != nil {
		respondPracticeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Page runs action for a form post and redirects back to the practice page
func (h *PracticeHandler) Page(action PracticeAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := GetSessionFromContext(r.Context())
		r.Body = http.MaxBytesReader(w, r.Body, maxPracticeBody)

		target := "/practice"
		if _, err := action(r, session.User.Email); err != nil {
			status, msg := practiceErrorStatus(err)
			logError(msg, "Practice action failed", err)
			if status == http.StatusInternalServerError {
				msg = "Something went wrong, please try again"
			}
			target += "?" + url.Values{"error": {msg}}.Encode()
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// API runs action and responds with the resulting view
func (h *PracticeHandler) API(action PracticeAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := GetSessionFromContext(r.Context())
		r.Body = http.MaxBytesReader(w, r.Body, maxPracticeBody)

		view, err := action(r, session.User.Email)
		if err != nil {
			respondPracticeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, view)
	}
}

// SetFilters reloads questions and applies the submitted filters
func (h *PracticeHandler) SetFilters(r *http.Request, email string) (practice.View, error) {
	f, err := filtersFromRequest(r)
	if err != nil {
		return practice.View{}, err
	}
	return h.practiceService.SetFilters(r.Context(), email, f)
}

func (h *PracticeHandler) Next(r *http.Request, email string) (practice.View, error) {
	return h.practiceService.Next(r.Context(), email)
}

func (h *PracticeHandler) Previous(r *http.Request, email string) (practice.View, error) {
	return h.practiceService.Previous(r.Context(), email)
}

func (h *PracticeHandler) Reveal(r *http.Request, email string) (practice.View, error) {
	return h.practiceService.Reveal(r.Context(), email)
}

func (h *PracticeHandler) Undo(r *http.Request, email string) (practice.View, error) {
	return h.practiceService.Undo(r.Context(), email)
}

// Answer selects an answer key from the form field or JSON body "key"
func (h *PracticeHandler) Answer(r *http.Request, email string) (practice.View, error) {
	var req answerRequest
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return practice.View{}, errBadPracticeInput
		}
	} else {
		req.Key = r.FormValue("key")
	}
	return h.practiceService.SelectAnswer(r.Context(), email, strings.TrimSpace(req.Key))
}

// GoTo jumps to the question named by the form field or JSON body "id"
func (h *PracticeHandler) GoTo(r *http.Request, email string) (practice.View, error) {
	var req gotoRequest
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return practice.View{}, errBadPracticeInput
		}
	} else {
		req.ID = r.FormValue("id")
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		return practice.View{}, errBadPracticeInput
	}
	return h.practiceService.GoTo(r.Context(), email, req.ID)
}

// Copy returns the current question and its answers as plain text
func (h *PracticeHandler) Copy(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	text, err := h.practiceService.CopyText(r.Context(), session.User.Email)
	if err != nil {
		if isAPIRequest(r) {
			respondPracticeError(w, err)
		} else {
			status, msg := practiceErrorStatus(err)
			respondWithError(w, status, msg, "Practice copy failed", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

var errBadPracticeInput = errors.New("invalid practice input")

func practiceErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, practice.ErrAnswersHidden):
		return http.StatusConflict, "Reveal the whole question before answering"
	case errors.Is(err, practice.ErrUnknownAnswer):
		return http.StatusBadRequest, "That answer is not one of the choices"
	case errors.Is(err, errBadPracticeInput):
		return http.StatusBadRequest, ErrInvalidFormData
	case errors.Is(err, practice.ErrNoQuestion):
		return http.StatusNotFound, "No question matches the current filters"
	default:
		return http.StatusInternalServerError, ErrInternalServerErrorUC
	}
}

func respondPracticeError(w http.ResponseWriter, err error) {
	status, msg := practiceErrorStatus(err)
	if status == http.StatusInternalServerError {
		respondJSONError(w, status, msg, "Practice request failed", err)
		return
	}
	respondJSONError(w, status, msg, "", nil)
}

// filtersFromRequest reads filters from a JSON body, a form post or the
// query string
func filtersFromRequest(r *http.Request) (practice.Filters, error) {
	var f practice.Filters
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			return f, errBadPracticeInput
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return f, errBadPracticeInput
		}
		f = practice.Filters{
			Path:           r.Form.Get("path"),
			Course:         r.Form.Get("course"),
			Module:         r.Form.Get("module"),
			IncludeGuessed: parseCheckbox(r.Form.Get("includeGuessed")),
		}
	}

	f.Path = strings.TrimSpace(f.Path)
	f.Course = strings.TrimSpace(f.Course)
	f.Module = strings.TrimSpace(f.Module)
	return f, nil
}

func parseCheckbox(value string) bool {
	switch strings.ToLower(value) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
