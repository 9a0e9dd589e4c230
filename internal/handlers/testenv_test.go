package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"learningtime/internal/models"
	"learningtime/internal/repository"
	"learningtime/internal/security"
	"learningtime/internal/service"
	"learningtime/internal/templates"
)

const (
	allowedEmail = "learner@example.com"
	blockedEmail = "stranger@example.com"
	testSecret   = "test-session-secret"
)

type testEnv struct {
	handler    http.Handler
	auth       *service.AuthService
	middleware *Middleware
	store      *repository.MemoryQuestionStore
	practice   *service.PracticeService
}

func testQuestions() []models.Question {
	answers := models.Answers{{Key: "A", Text: "yes"}, {Key: "B", Text: "no"}}
	return []models.Question{
		{ID: "q1", Path: "AWS", Course: "Compute", CourseOrder: 1, Module: "EC2", ModuleOrder: 1, Question: "First question text", Answers: answers},
		{ID: "q2", Path: "AWS", Course: "Compute", CourseOrder: 1, Module: "EC2", ModuleOrder: 2, Question: "Second question text", Answers: answers},
		{ID: "q3", Path: "GCP", Course: "Storage", CourseOrder: 2, Module: "GCS", ModuleOrder: 1, Question: "Third", Answers: answers, Guess: "A"},
	}
}

func newTestEnv(t *testing.T, provider OAuthProvider, corsOrigins ...string) *testEnv {
	t.Helper()

	tmpl, err := templates.Load("")
	if err != nil {
		t.Fatalf("templates.Load() error = %v", err)
	}
	auth, err := service.NewAuthService(testSecret, allowedEmail, time.Hour)
	if err != nil {
		t.Fatalf("NewAuthService() error = %v", err)
	}
	key, err := security.DeriveKey(testSecret, security.PurposeCSRF)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	limiter := security.NewRateLimiter(100, time.Minute)
	t.Cleanup(limiter.Stop)

	store := repository.NewMemoryQuestionStore(testQuestions()...)
	practiceService := service.NewPracticeService(store)
	questionService := service.NewQuestionService(store)
	middleware := NewMiddleware(auth, security.NewCSRFGenerator(key), limiter, tmpl)

	routes := &Routes{
		Middleware:  middleware,
		Auth:        NewAuthHandler(auth, nil, practiceService, middleware, tmpl, provider, ""),
		Questions:   NewQuestionHandler(questionService),
		Practice:    NewPracticeHandler(practiceService, middleware, tmpl),
		Summary:     NewSummaryHandler(questionService, middleware, tmpl),
		CORSOrigins: corsOrigins,
	}

	return &testEnv{
		handler:    routes.Handler(),
		auth:       auth,
		middleware: middleware,
		store:      store,
		practice:   practiceService,
	}
}

// signIn issues a session for email and returns its cookie and CSRF token
func (e *testEnv) signIn(t *testing.T, email string) (*http.Cookie, string) {
	t.Helper()
	session, err := e.auth.IssueSession(models.User{Email: email, Name: "Test Learner"})
	if err != nil {
		t.Fatalf("IssueSession() error = %v", err)
	}
	cookie := &http.Cookie{Name: security.SessionCookieName, Value: session.Token}
	return cookie, e.middleware.CSRFToken(session)
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func newJSONRequest(method, target, body string, cookie *http.Cookie, csrfToken string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if csrfToken != "" {
		req.Header.Set(CSRFHeaderName, csrfToken)
	}
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// formBody encodes key/value pairs as a form post body
func formBody(pairs ...string) io.Reader {
	values := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		values.Set(pairs[i], pairs[i+1])
	}
	return strings.NewReader(values.Encode())
}
