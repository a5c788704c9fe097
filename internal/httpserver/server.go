// internal/httpserver/server.go
//
// HTTP server wiring for the globe trivia backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, CORS, timeouts, panic recovery).
//   - Public endpoints: "/", "/health", "/metrics", GET /api/countries/*.
//   - Game endpoints under /api/game, bound to the caller's session cookie.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the session cookie works).
//   - Handlers never touch session internals; they call game.Session operations
//     and persist the result through store.Store.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/narharikale/globe/internal/game"
	"github.com/narharikale/globe/internal/metrics"
	"github.com/narharikale/globe/internal/store"
)

// Options configures a Server.
type Options struct {
	ClientOrigin  string
	CookieName    string
	CookieSecure  bool
	SessionSecret string
	SessionTTL    time.Duration
	Timeout       time.Duration // per-request handler budget; 0 means 10s
}

// Server bundles the router, game engine and session registry.
type Server struct {
	r        *chi.Mux
	engine   *game.Engine
	sessions store.Store
	cookies  *cookieJar
	validate *validator.Validate
}

// New constructs a Server, installs middleware, and registers routes.
func New(engine *game.Engine, sessions store.Store, opts Options, logger zerolog.Logger) (*Server, error) {
	jar, err := newCookieJar(opts.SessionSecret, opts.CookieName, opts.CookieSecure, opts.SessionTTL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &Server{
		r:        chi.NewRouter(),
		engine:   engine,
		sessions: sessions,
		cookies:  jar,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)         // add X-Request-ID
	s.r.Use(chimw.RealIP)            // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(logger)) // request-scoped logger
	s.r.Use(accessLog)               // one line + histogram sample per request
	s.r.Use(chimw.Recoverer)         // recover from panics
	s.r.Use(chimw.Timeout(timeout))  // bound handler time
	s.r.Use(jsonContentType)         // default JSON responses

	// credentials-friendly CORS
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.ClientOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"globe","endpoints":["/health","/metrics","/api/countries","/api/countries/all","/api/countries/{id}/facts","/api/game"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.r.Route("/api", func(r chi.Router) {
		r.Route("/countries", func(r chi.Router) {
			r.Get("/", s.handleCountries)
			r.Get("/all", s.handleAllCountries)
			r.Get("/{id}/facts", s.handleCountryFacts)
		})
		s.mountGame(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s, nil
}

// Handler exposes the router as an http.Handler.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// accessLog logs each request and records its latency under the chi route pattern.
var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
	route := r.URL.Path
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		route = rc.RoutePattern()
	}
	metrics.RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(duration.Seconds())
	hlog.FromRequest(r).Info().
		Str("request_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("route", route).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
})

// ------------------------------ responses ----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Retry  bool   `json:"retry,omitempty"`
}

// writeError maps engine and store errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, body, outcome := http.StatusInternalServerError, errorBody{Error: "internal"}, "error"
	switch {
	case errors.Is(err, game.ErrTransitionInFlight):
		status, body, outcome = http.StatusConflict, errorBody{Error: "transition_in_flight", Retry: true}, "invalid"
	case errors.Is(err, game.ErrInvalidTransition):
		status, body, outcome = http.StatusConflict, errorBody{Error: "invalid_transition", Detail: err.Error()}, "invalid"
	case errors.Is(err, store.ErrNotFound):
		status, body, outcome = http.StatusNotFound, errorBody{Error: "session_not_found"}, "not_found"
	case errors.Is(err, game.ErrNotFound):
		status, body, outcome = http.StatusNotFound, errorBody{Error: "not_found"}, "not_found"
	case errors.Is(err, game.ErrContentUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		status, body, outcome = http.StatusServiceUnavailable, errorBody{Error: "content_unavailable", Retry: true}, "unavailable"
	}
	if op != "" {
		metrics.Transitions.WithLabelValues(op, outcome).Inc()
	}

	ev := hlog.FromRequest(r).Debug()
	if status >= http.StatusInternalServerError {
		ev = hlog.FromRequest(r).Error()
	}
	ev.Err(err).Str("op", op).Int("status", status).Msg("request failed")
	writeJSON(w, status, body)
}
