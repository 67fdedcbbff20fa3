package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/session"
)

// TokenReport classifies one color token.
type TokenReport struct {
	Token  string             `json:"token"`
	Format domain.ColorFormat `json:"format"`
	Valid  bool               `json:"valid"`
}

// Rendered is the response of a stateless render.
type Rendered struct {
	Expression string   `json:"expression"`
	Colors     []string `json:"colors"`
	Direction  string   `json:"direction"`
}

type openRequest struct {
	ID        string            `json:"id"`
	Colors    []string          `json:"colors"`
	Direction string            `json:"direction"`
	Compact   bool              `json:"compact"`
	Metadata  map[string]string `json:"metadata"`
}

type gradientRequest struct {
	Colors    []string `json:"colors"`
	Direction string   `json:"direction"`
}

type resultResponse struct {
	Applied  bool             `json:"applied"`
	Snapshot *domain.Snapshot `json:"snapshot"`
}

// ListPresets handles the GET /presets request.
func (s *Server) ListPresets(w http.ResponseWriter, r *http.Request) {
	catalog := s.Sessions.Catalog()
	if catalog == nil {
		s.writeJSON(w, http.StatusOK, []domain.Preset{})
		return
	}
	presets, err := catalog.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, presets)
}

// ValidateColors handles the POST /validate request.
func (s *Server) ValidateColors(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tokens []string `json:"tokens"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	reports := make([]TokenReport, len(body.Tokens))
	for i, tok := range body.Tokens {
		format := domain.ClassifyColor(tok)
		reports[i] = TokenReport{Token: tok, Format: format, Valid: format != domain.FormatInvalid}
	}
	s.writeJSON(w, http.StatusOK, reports)
}

// Render handles the POST /render request. It never touches a session.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	var body gradientRequest
	if !s.decode(w, r, &body) {
		return
	}
	g := domain.NewGradient(body.Colors, body.Direction)
	if err := g.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, Rendered{
		Expression: g.Expression(),
		Colors:     g.Colors,
		Direction:  g.Direction,
	})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// OpenSession handles the POST /sessions request.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	var body openRequest
	if !s.decode(w, r, &body) {
		return
	}
	snap, err := s.Sessions.Open(r.Context(), body.ID, session.OpenConfig{
		Colors:    body.Colors,
		Direction: body.Direction,
		Compact:   body.Compact,
		Metadata:  body.Metadata,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, snap)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReconfigureSession handles the PUT /sessions/{id} request.
func (s *Server) ReconfigureSession(w http.ResponseWriter, r *http.Request) {
	var body gradientRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.apply(w, r, domain.Mutation{Kind: domain.MutationReconfigure, Tokens: body.Colors, Direction: body.Direction})
}

// AddColor handles the POST /sessions/{id}/colors request.
// An empty body appends the default color.
func (s *Server) AddColor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	s.apply(w, r, domain.Mutation{Kind: domain.MutationAdd, Token: body.Token})
}

// SetColor handles the PUT /sessions/{id}/colors/{index} request.
func (s *Server) SetColor(w http.ResponseWriter, r *http.Request) {
	index, ok := s.bindIndex(w, r)
	if !ok {
		return
	}
	var body struct {
		Token string `json:"token"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	s.apply(w, r, domain.Mutation{Kind: domain.MutationSet, Index: index, Token: body.Token})
}

// RemoveColor handles the DELETE /sessions/{id}/colors/{index} request.
// A guarded removal answers 200 with applied=false.
func (s *Server) RemoveColor(w http.ResponseWriter, r *http.Request) {
	index, ok := s.bindIndex(w, r)
	if !ok {
		return
	}
	s.apply(w, r, domain.Mutation{Kind: domain.MutationRemove, Index: index})
}

// SetDirection handles the PUT /sessions/{id}/direction request.
func (s *Server) SetDirection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Direction string `json:"direction"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	s.apply(w, r, domain.Mutation{Kind: domain.MutationDirection, Direction: body.Direction})
}

// ApplyPreset handles the POST /sessions/{id}/preset request.
func (s *Server) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	s.apply(w, r, domain.Mutation{Kind: domain.MutationPreset, Preset: body.Name})
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, mut domain.Mutation) {
	res, err := s.Sessions.Apply(r.Context(), chi.URLParam(r, "id"), mut)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resultResponse{Applied: res.Applied, Snapshot: res.Snapshot})
}

func (s *Server) bindIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	var index int
	err := runtime.BindStyledParameterWithOptions("simple", "index", chi.URLParam(r, "index"), &index, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid index: " + err.Error()})
		return 0, false
	}
	return index, true
}
