package handlers

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/cors"

	"learningtime/internal/models"
	"learningtime/internal/security"
	"learningtime/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const SessionContextKey ContextKey = "session"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	csrf        *security.CSRFGenerator
	limiter     *security.RateLimiter
	templates   *template.Template
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, csrf *security.CSRFGenerator, limiter *security.RateLimiter, templates *template.Template) *Middleware {
	return &Middleware{
		authService: authService,
		csrf:        csrf,
		limiter:     limiter,
		templates:   templates,
	}
}

func (m *Middleware) authorize(r *http.Request) (*models.Session, error) {
	cookie, err := r.Cookie(security.SessionCookieName)
	if err != nil {
		return nil, service.ErrUnauthenticated
	}
	return m.authService.Authorize(cookie.Value)
}

// RequireAPIAuth answers 401 or 403 JSON errors for requests without an
// allowed session
func (m *Middleware) RequireAPIAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := m.authorize(r)
		switch {
		case errors.Is(err, service.ErrForbidden):
			respondJSONError(w, http.StatusForbidden, ErrForbiddenAPI, "", nil)
			return
		case err != nil:
			respondJSONError(w, http.StatusUnauthorized, ErrUnauthorizedAPI, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next(w, r.WithContext(ctx))
	}
}

// RequirePageAuth redirects to the login page without a session and
// shows the forbidden page for accounts outside the allow-list
func (m *Middleware) RequirePageAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := m.authorize(r)
		switch {
		case errors.Is(err, service.ErrForbidden):
			renderForbidden(w, m.templates, session)
			return
		case err != nil:
			if _, cookieErr := r.Cookie(security.SessionCookieName); cookieErr == nil {
				http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next(w, r.WithContext(ctx))
	}
}

// CSRFProtect checks the token of state-changing requests. It must run
// inside RequireAPIAuth or RequirePageAuth.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := GetSessionFromContext(r.Context())

		token := r.Header.Get(CSRFHeaderName)
		if token == "" && isFormRequest(r) {
			token = r.FormValue(CSRFFormField)
		}

		if session == nil || !m.csrf.ValidateToken(session.ID, token) {
			if isAPIRequest(r) {
				respondJSONError(w, http.StatusForbidden, ErrInvalidCSRF, "", nil)
			} else {
				respondWithError(w, http.StatusForbidden, ErrInvalidCSRF, "", nil)
			}
			return
		}

		next(w, r)
	}
}

// CSRFToken returns the token pages and API clients must send back
func (m *Middleware) CSRFToken(session *models.Session) string {
	if session == nil {
		return ""
	}
	token, err := m.csrf.GenerateToken(session.ID)
	if err != nil {
		log.Printf("Error generating CSRF token: %v", err)
		return ""
	}
	return token
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(security.GetClientIP(r)) {
			if isAPIRequest(r) {
				respondJSONError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			} else {
				respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			}
			return
		}
		next(w, r)
	}
}

// CORS allows browser clients on the given origins to call the API with
// credentials. With no origins it adds nothing.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", CSRFHeaderName},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// GetSessionFromContext retrieves the session from the request context
func GetSessionFromContext(ctx context.Context) *models.Session {
	session, ok := ctx.Value(SessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func isFormRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}
