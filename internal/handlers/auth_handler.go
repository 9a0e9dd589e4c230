package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"learningtime/internal/models"
	"learningtime/internal/security"
	"learningtime/internal/service"
)

// AuthHandler handles sign-in, sign-out and account pages
type AuthHandler struct {
	authService          *service.AuthService
	emailService         *service.EmailService
	practiceService      *service.PracticeService
	middleware           *Middleware
	templates            *template.Template
	provider             OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService *service.AuthService,
	emailService *service.EmailService,
	practiceService *service.PracticeService,
	middleware *Middleware,
	templates *template.Template,
	provider OAuthProvider,
	oauthRedirectBaseURL string,
) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		emailService:         emailService,
		practiceService:      practiceService,
		middleware:           middleware,
		templates:            templates,
		provider:             provider,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

func (h *AuthHandler) currentSession(r *http.Request) (*models.Session, error) {
	cookie, err := r.Cookie(security.SessionCookieName)
	if err != nil {
		return nil, service.ErrUnauthenticated
	}
	return h.authService.Authorize(cookie.Value)
}

// Home renders the landing page for signed-in users
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	session, err := h.currentSession(r)
	switch {
	case errors.Is(err, service.ErrForbidden):
		http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
		return
	case err != nil:
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data := HomeViewData{
		Title:     "Learning Time",
		User:      &session.User,
		CSRFToken: h.middleware.CSRFToken(session),
	}
	if err := h.templates.ExecuteTemplate(w, "home.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering home template", err)
	}
}

// ShowLogin renders the sign-in page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := h.currentSession(r); err == nil {
		http.Redirect(w, r, "/practice", http.StatusSeeOther)
		return
	}

	data := LoginViewData{
		Title:      "Sign in - Learning Time",
		Configured: h.provider.configured(),
	}
	if err := h.templates.ExecuteTemplate(w, "login.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering login template", err)
	}
}

// completeSignIn sets the session cookie for a Google account. Accounts
// outside the allow-list still get a session so the forbidden page can
// name them, and the operator is notified.
func (h *AuthHandler) completeSignIn(w http.ResponseWriter, r *http.Request, info oauthUserInfo) {
	session, err := h.authService.IssueSession(models.User{
		Subject: info.Subject,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	})
	if err != nil {
		h.httpError(w, r, "Could not sign in with this account", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, session.Token, session.ExpiresAt))

	if !h.authService.Permits(session.User.Email) {
		log.Printf("Sign-in blocked for %s: not on the allow-list", session.User.Email)
		if h.emailService != nil {
			if err := h.emailService.SendAccessDeniedNotice(r.Context(), session.User.Email, session.User.Name, time.Now()); err != nil {
				log.Printf("Failed to send access notification: %v", err)
			}
		}
		http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
		return
	}

	log.Printf("User signed in: %s", session.User.Email)
	http.Redirect(w, r, "/practice", http.StatusSeeOther)
}

// Logout clears the session cookie and the user's practice state
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(security.SessionCookieName); err == nil {
		if session, err := h.authService.ParseSession(cookie.Value); err == nil && h.practiceService != nil {
			h.practiceService.Forget(session.User.Email)
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowForbidden explains that the signed-in account is not allowed
func (h *AuthHandler) ShowForbidden(w http.ResponseWriter, r *http.Request) {
	var session *models.Session
	if cookie, err := r.Cookie(security.SessionCookieName); err == nil {
		session, _ = h.authService.ParseSession(cookie.Value)
	}
	renderForbidden(w, h.templates, session)
}

// Me returns the signed-in user and the CSRF token API clients must send
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, meResponse{
		Email:     session.User.Email,
		Name:      session.User.Name,
		Picture:   session.User.Picture,
		CSRFToken: h.middleware.CSRFToken(session),
	})
}

// Healthz reports that the server is up
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func renderForbidden(w http.ResponseWriter, templates *template.Template, session *models.Session) {
	data := ForbiddenViewData{Title: "Access denied - Learning Time"}
	if session != nil {
		data.Email = session.User.Email
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	if err := templates.ExecuteTemplate(w, "forbidden.tmpl", data); err != nil {
		log.Printf("Error rendering forbidden template: %v", err)
	}
}
