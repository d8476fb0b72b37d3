package http

import (
	"net/http"
	"strings"
	"time"

	"taxpro/internal/http/handlers"
	"taxpro/internal/http/metrics"
	httpmw "taxpro/internal/http/middleware"
	"taxpro/internal/security"
)

type RouterDependencies struct {
	ConnectionHandler  *handlers.ConnectionHandler
	JobHandler         *handlers.JobHandler
	ApplicationHandler *handlers.ApplicationHandler
	ProfileHandler     *handlers.ProfileHandler
	BenchHandler       *handlers.BenchHandler
	MetricsHandler     *handlers.MetricsHandler
	HealthHandler      *handlers.HealthHandler
	AuthMiddleware     *httpmw.AuthMiddleware
	Metrics            *metrics.Collector
	Limiter            httpmw.Limiter
	ConnectPerMin      int
	RequestTimeout     time.Duration
}

type Router struct {
	deps    RouterDependencies
	handler http.Handler
}

const maxBodyBytes = 1 << 20

func NewRouter(deps RouterDependencies) http.Handler {
	r := &Router{deps: deps}
	r.handler = withMiddleware(r.baseHandler(), deps)
	return r
}

// withMiddleware wraps h in the server chain. Metrics sits outside Recover so
// a recovered panic is counted as a 5xx.
func withMiddleware(h http.Handler, deps RouterDependencies) http.Handler {
	return httpmw.Chain(h, httpmw.RequestID, httpmw.Logging, httpmw.BodyLimit(maxBodyBytes), httpmw.Metrics(deps.Metrics), httpmw.Recover, httpmw.Timeout(deps.RequestTimeout))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// match reports whether path has the same segments as pattern, where "*"
// matches any single segment.
func match(path string, pattern ...string) bool {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) != len(pattern) {
		return false
	}
	for i, want := range pattern {
		if want != "*" && segments[i] != want {
			return false
		}
	}
	return true
}

func (r *Router) baseHandler() http.Handler {
	protected := r.deps.AuthMiddleware.Authenticate(http.HandlerFunc(r.handleProtected))
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		switch {
		case req.Method == http.MethodGet && path == "/health":
			r.deps.HealthHandler.Get(w, req)
			return
		case req.Method == http.MethodGet && path == "/metrics":
			r.deps.MetricsHandler.Get(w, req)
			return
		}

		for _, prefix := range []string{"/connections", "/jobs", "/applications", "/profiles", "/firms", "/firm-bench"} {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				protected.ServeHTTP(w, req)
				return
			}
		}

		http.NotFound(w, req)
	})
}

func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	method := req.Method

	switch {
	case method == http.MethodPost && match(path, "connections"):
		httpmw.RateLimit(r.deps.Limiter, httpmw.ProfileKey("connect"), r.deps.ConnectPerMin, time.Minute)(http.HandlerFunc(r.deps.ConnectionHandler.Create)).ServeHTTP(w, req)
		return
	case method == http.MethodGet && match(path, "connections"):
		r.deps.ConnectionHandler.List(w, req)
		return
	case method == http.MethodGet && match(path, "connections", "*"):
		r.deps.ConnectionHandler.Get(w, req)
		return
	case method == http.MethodPost && match(path, "connections", "*", "decision"):
		r.deps.ConnectionHandler.Decide(w, req)
		return
	case method == http.MethodDelete && match(path, "connections", "*"):
		r.deps.ConnectionHandler.Withdraw(w, req)
		return

	case method == http.MethodPost && match(path, "jobs"):
		r.deps.JobHandler.Create(w, req)
		return
	case method == http.MethodGet && match(path, "jobs"):
		r.deps.JobHandler.ListOpen(w, req)
		return
	case method == http.MethodGet && match(path, "jobs", "*"):
		r.deps.JobHandler.Get(w, req)
		return
	case method == http.MethodPatch && match(path, "jobs", "*", "status"):
		r.deps.JobHandler.UpdateStatus(w, req)
		return
	case method == http.MethodPost && match(path, "jobs", "*", "applications"):
		r.deps.ApplicationHandler.Apply(w, req)
		return
	case method == http.MethodGet && match(path, "jobs", "*", "applications"):
		r.deps.ApplicationHandler.ListForJob(w, req)
		return

	case method == http.MethodGet && match(path, "applications"):
		r.deps.ApplicationHandler.ListMine(w, req)
		return
	case method == http.MethodGet && match(path, "applications", "*"):
		r.deps.ApplicationHandler.Get(w, req)
		return
	case method == http.MethodPatch && match(path, "applications", "*"):
		r.deps.ApplicationHandler.Update(w, req)
		return
	case method == http.MethodDelete && match(path, "applications", "*"):
		r.deps.ApplicationHandler.Withdraw(w, req)
		return

	case method == http.MethodPost && match(path, "profiles", "me"):
		r.deps.ProfileHandler.Create(w, req)
		return
	case method == http.MethodPost && match(path, "profiles", "me", "verification"):
		r.deps.ProfileHandler.RequestVerification(w, req)
		return
	case method == http.MethodPatch && match(path, "profiles", "me", "listed"):
		r.deps.ProfileHandler.SetListed(w, req)
		return
	case method == http.MethodPatch && match(path, "profiles", "*", "verification"):
		httpmw.RequireRole(security.RoleAdmin)(http.HandlerFunc(r.deps.ProfileHandler.DecideVerification)).ServeHTTP(w, req)
		return
	case method == http.MethodGet && match(path, "profiles", "*"):
		r.deps.ProfileHandler.Get(w, req)
		return

	case method == http.MethodPost && match(path, "firms"):
		r.deps.ProfileHandler.CreateFirm(w, req)
		return
	case method == http.MethodGet && match(path, "firms", "*"):
		r.deps.ProfileHandler.GetFirm(w, req)
		return

	case method == http.MethodPost && match(path, "firm-bench", "invite"):
		r.deps.BenchHandler.Invite(w, req)
		return
	case method == http.MethodPost && match(path, "firm-bench", "reorder"):
		r.deps.BenchHandler.Reorder(w, req)
		return
	case method == http.MethodPost && match(path, "firm-bench", "invites", "*", "accept"):
		r.deps.BenchHandler.AcceptInvite(w, req)
		return
	case method == http.MethodPost && match(path, "firm-bench", "invites", "*", "decline"):
		r.deps.BenchHandler.DeclineInvite(w, req)
		return
	case method == http.MethodDelete && match(path, "firm-bench", "invites", "*"):
		r.deps.BenchHandler.CancelInvite(w, req)
		return
	case method == http.MethodPatch && match(path, "firm-bench", "entries", "*"):
		r.deps.BenchHandler.UpdateEntry(w, req)
		return
	case method == http.MethodDelete && match(path, "firm-bench", "entries", "*"):
		r.deps.BenchHandler.Remove(w, req)
		return
	case method == http.MethodGet && match(path, "firm-bench", "*"):
		r.deps.BenchHandler.List(w, req)
		return
	}

	http.NotFound(w, req)
}
