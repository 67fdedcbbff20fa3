package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/aretw0/spectrum/api"
	"github.com/aretw0/spectrum/internal/logging"
	"github.com/aretw0/spectrum/internal/runtime"
	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/ports"
	"github.com/aretw0/spectrum/pkg/preferences"
	"github.com/aretw0/spectrum/pkg/session"
)

// Sessions is the part of the session manager the HTTP layer drives.
type Sessions interface {
	Open(ctx context.Context, sessionID string, cfg session.OpenConfig) (*domain.Snapshot, error)
	Get(ctx context.Context, sessionID string) (*domain.Snapshot, error)
	Apply(ctx context.Context, sessionID string, mutation domain.Mutation) (*session.Result, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
	Catalog() ports.PresetCatalog
	Subscribe(fn func(domain.Notification)) runtime.Subscription
}

var _ Sessions = (*session.Manager)(nil)

// Server exposes gradient sessions over HTTP and SSE.
type Server struct {
	Sessions Sessions
	Streams  *StreamManager

	prefs   *preferences.Context
	metrics http.Handler
	origins []string
	version string
	logger  *slog.Logger

	doc *openapi3.T
	sub runtime.Subscription
}

// Option configures the Server.
type Option func(*Server)

// WithPreferences exposes /preferences and tracks in-flight mutations
// through the loading counter.
func WithPreferences(prefs *preferences.Context) Option {
	return func(s *Server) {
		s.prefs = prefs
	}
}

// WithMetrics mounts a metrics handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithAllowedOrigins sets the CORS allow list. "*" allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithVersion sets the build version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = strings.TrimSpace(v)
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Server and starts relaying session notifications to SSE clients.
func New(sessions Sessions, opts ...Option) (*Server, error) {
	doc, err := openapi3.NewLoader().LoadFromData(api.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}

	s := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		origins:  []string{"*"},
		version:  "dev",
		logger:   logging.NewNop(),
		doc:      doc,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	s.sub = sessions.Subscribe(s.relay)
	return s, nil
}

// Close stops relaying notifications. Open streams end when their clients disconnect.
func (s *Server) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.cors)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	if s.prefs != nil {
		r.Get("/preferences", s.GetPreferences)
		r.Put("/preferences", s.UpdatePreferences)
	}

	r.Get("/presets", s.ListPresets)
	r.Post("/validate", s.ValidateColors)
	r.Post("/render", s.Render)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.With(s.loading).Post("/", s.OpenSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Group(func(r chi.Router) {
				r.Use(s.loading)
				r.Put("/", s.ReconfigureSession)
				r.Post("/colors", s.AddColor)
				r.Put("/colors/{index}", s.SetColor)
				r.Delete("/colors/{index}", s.RemoveColor)
				r.Put("/direction", s.SetDirection)
				r.Post("/preset", s.ApplyPreset)
			})
		})
	})

	return r
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	for _, o := range s.origins {
		if o == "*" {
			return "*"
		}
		if origin != "" && o == origin {
			return origin
		}
	}
	return ""
}

// loading holds the preferences loading counter for the duration of a request.
func (s *Server) loading(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.prefs != nil {
			done := s.prefs.BeginLoading()
			defer done()
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Spectrum API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc != nil && s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "spectrum-http",
		"version":     s.version,
		"api_version": apiVersion,
	})
}

// GetPreferences handles the GET /preferences request.
func (s *Server) GetPreferences(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.prefs.State())
}

// UpdatePreferences handles the PUT /preferences request.
func (s *Server) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Language string `json:"language"`
		Theme    string `json:"theme"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Language != "" {
		lang, err := preferences.ParseLanguage(body.Language)
		if err == nil {
			err = s.prefs.SetLanguage(lang)
		}
		if err != nil {
			s.writeError(w, err)
			return
		}
	}
	if body.Theme != "" {
		theme, err := preferences.ParseTheme(body.Theme)
		if err == nil {
			err = s.prefs.SetTheme(theme)
		}
		if err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, s.prefs.State())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		// Chunked requests report an unknown length; an empty one is still empty.
		if errors.Is(err, io.EOF) {
			return true
		}
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
