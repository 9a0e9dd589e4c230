package handlers

import "net/http"

// Routes bundles the handlers served by the web server
type Routes struct {
	Middleware  *Middleware
	Auth        *AuthHandler
	Questions   *QuestionHandler
	Practice    *PracticeHandler
	Summary     *SummaryHandler
	CORSOrigins []string
}

// Handler registers every route and wraps the mux with CORS for /api/
// and request logging
func (rt *Routes) Handler() http.Handler {
	m := rt.Middleware
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /{$}", rt.Auth.Home)
	mux.HandleFunc("GET /healthz", Healthz)
	mux.HandleFunc("GET /login", rt.Auth.ShowLogin)
	mux.HandleFunc("GET /auth/google/start", m.RateLimit(rt.Auth.StartOAuth))
	mux.HandleFunc("GET /auth/google/callback", m.RateLimit(rt.Auth.OAuthCallback))
	mux.HandleFunc("POST /logout", rt.Auth.Logout)
	mux.HandleFunc("GET /forbidden", rt.Auth.ShowForbidden)

	// Question API
	mux.HandleFunc("GET /api/me", m.RequireAPIAuth(rt.Auth.Me))
	mux.HandleFunc("GET /api/questions", m.RequireAPIAuth(rt.Questions.ListQuestions))
	mux.HandleFunc("PATCH /api/questions", m.RequireAPIAuth(m.CSRFProtect(rt.Questions.RecordGuess)))

	// Practice page and API
	p := rt.Practice
	actions := map[string]PracticeAction{
		"filters":  p.SetFilters,
		"next":     p.Next,
		"previous": p.Previous,
		"reveal":   p.Reveal,
		"undo":     p.Undo,
		"answer":   p.Answer,
		"goto":     p.GoTo,
	}
	mux.HandleFunc("GET /practice", m.RequirePageAuth(p.ShowPractice))
	mux.HandleFunc("GET /practice/copy", m.RequirePageAuth(p.Copy))
	mux.HandleFunc("GET /api/practice", m.RequireAPIAuth(p.APIView))
	mux.HandleFunc("GET /api/practice/copy", m.RequireAPIAuth(p.Copy))
	for name, action := range actions {
		mux.HandleFunc("POST /practice/"+name, m.RequirePageAuth(m.CSRFProtect(p.Page(action))))
		mux.HandleFunc("POST /api/practice/"+name, m.RequireAPIAuth(m.CSRFProtect(p.API(action))))
	}

	// Summary
	mux.HandleFunc("GET /summary", m.RequirePageAuth(rt.Summary.ShowSummary))
	mux.HandleFunc("GET /api/summary", m.RequireAPIAuth(rt.Summary.APISummary))

	api := CORS(rt.CORSOrigins)(mux)
	return Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAPIRequest(r) {
			api.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	}))
}
