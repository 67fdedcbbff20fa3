package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/spectrum/internal/logging"
	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/ports"
	"github.com/aretw0/spectrum/pkg/session"
)

// PresetsURI addresses the preset catalog resource.
const PresetsURI = "spectrum://presets"

// TokenReport classifies one color token.
type TokenReport struct {
	Token  string             `json:"token" jsonschema_description:"The token as received"`
	Format domain.ColorFormat `json:"format" jsonschema_description:"hex, rgb, rgba, hsl, named or invalid"`
	Valid  bool               `json:"valid" jsonschema_description:"Whether the token is an accepted color"`
}

// RenderResponse is the serialized form of a gradient.
type RenderResponse struct {
	Expression string   `json:"expression" jsonschema_description:"CSS linear-gradient expression"`
	Colors     []string `json:"colors" jsonschema_description:"Committed colors"`
	Direction  string   `json:"direction" jsonschema_description:"Gradient direction"`
}

// SessionResponse is returned by the session tools.
type SessionResponse struct {
	Applied  bool             `json:"applied" jsonschema_description:"False when the mutation left the committed state untouched"`
	Snapshot *domain.Snapshot `json:"snapshot" jsonschema_description:"The session after the call"`
}

// Sessions is the part of the session manager the MCP tools drive.
type Sessions interface {
	Open(ctx context.Context, sessionID string, cfg session.OpenConfig) (*domain.Snapshot, error)
	Apply(ctx context.Context, sessionID string, mutation domain.Mutation) (*session.Result, error)
	Catalog() ports.PresetCatalog
}

// Server exposes gradient tooling as an MCP server.
type Server struct {
	sessions  Sessions
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions Sessions, version string, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("spectrum-mcp", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("validate_color",
		mcp.WithDescription("Classify a color token (hex, rgb, rgba, hsl or named) and report whether it is valid."),
		mcp.WithString("token", mcp.Required(), mcp.Description("The color token to check")),
		mcp.WithOutputSchema[TokenReport](),
	), mcp.NewStructuredToolHandler(s.handleValidateColor))

	s.mcpServer.AddTool(mcp.NewTool("render_gradient",
		mcp.WithDescription("Serialize colors and a direction into a CSS linear-gradient expression. Missing values take defaults."),
		mcp.WithArray("colors", mcp.WithStringItems(), mcp.Description("At least two color tokens")),
		mcp.WithString("direction", mcp.Description("Direction keyword or angle, e.g. 'to right' or '45deg'")),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleRenderGradient))

	s.mcpServer.AddTool(mcp.NewTool("list_presets",
		mcp.WithDescription("List the available gradient presets."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := s.presetsJSON(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list presets failed: %v", err)), nil
		}
		return mcp.NewToolResultText(text), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("open_session",
		mcp.WithDescription("Open a gradient session, creating it when it does not exist."),
		mcp.WithString("session_id", mcp.Description("Session id (generated when omitted)")),
		mcp.WithArray("colors", mcp.WithStringItems(), mcp.Description("Initial colors for a new session")),
		mcp.WithString("direction", mcp.Description("Initial direction for a new session")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleOpenSession))

	s.mcpServer.AddTool(mcp.NewTool("mutate_session",
		mcp.WithDescription("Apply one mutation to a gradient session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Target session")),
		mcp.WithString("kind", mcp.Required(),
			mcp.Enum(string(domain.MutationAdd), string(domain.MutationRemove), string(domain.MutationSet),
				string(domain.MutationDirection), string(domain.MutationPreset), string(domain.MutationReplace),
				string(domain.MutationReconfigure)),
			mcp.Description("Mutation kind"),
		),
		mcp.WithNumber("index", mcp.Description("Color index for set and remove")),
		mcp.WithString("token", mcp.Description("Color token for add and set")),
		mcp.WithArray("tokens", mcp.WithStringItems(), mcp.Description("Colors for replace and reconfigure")),
		mcp.WithString("direction", mcp.Description("Direction for direction and reconfigure")),
		mcp.WithString("preset", mcp.Description("Preset name for preset")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleMutateSession))
}

func (s *Server) handleValidateColor(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TokenReport, error) {
	token, _ := args["token"].(string)
	format := domain.ClassifyColor(token)
	return TokenReport{Token: token, Format: format, Valid: format != domain.FormatInvalid}, nil
}

func (s *Server) handleRenderGradient(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RenderResponse, error) {
	var in struct {
		Colors    []string `mapstructure:"colors"`
		Direction string   `mapstructure:"direction"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return RenderResponse{}, err
	}
	g := domain.NewGradient(in.Colors, in.Direction)
	if err := g.Validate(); err != nil {
		return RenderResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return RenderResponse{Expression: g.Expression(), Colors: g.Colors, Direction: g.Direction}, nil
}

func (s *Server) handleOpenSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	var in struct {
		SessionID string   `mapstructure:"session_id"`
		Colors    []string `mapstructure:"colors"`
		Direction string   `mapstructure:"direction"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return SessionResponse{}, err
	}
	snap, err := s.sessions.Open(ctx, in.SessionID, session.OpenConfig{Colors: in.Colors, Direction: in.Direction})
	if err != nil {
		return SessionResponse{}, fmt.Errorf("open failed: %w", err)
	}
	return SessionResponse{Applied: true, Snapshot: snap}, nil
}

func (s *Server) handleMutateSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	sessionID, _ := args["session_id"].(string)

	var mut domain.Mutation
	if err := decodeArgs(args, &mut); err != nil {
		return SessionResponse{}, err
	}

	res, err := s.sessions.Apply(ctx, sessionID, mut)
	if err != nil {
		s.logger.Warn("MCP mutate_session rejected", "session_id", sessionID, "kind", mut.Kind, "error", err)
		return SessionResponse{}, fmt.Errorf("mutation failed: %w", err)
	}
	return SessionResponse{Applied: res.Applied, Snapshot: res.Snapshot}, nil
}

// decodeArgs maps loose tool arguments onto a tagged struct. JSON numbers
// arrive as float64 and are converted to ints.
func decodeArgs(args map[string]interface{}, dest any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dest,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) presetsJSON(ctx context.Context) (string, error) {
	presets := []domain.Preset{}
	if catalog := s.sessions.Catalog(); catalog != nil {
		list, err := catalog.List(ctx)
		if err != nil {
			return "", err
		}
		presets = list
	}
	b, err := json.Marshal(presets)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(PresetsURI, "Gradient Presets",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.presetsJSON(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list presets: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      PresetsURI,
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})
}
