package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/spectrum/api"
	"github.com/aretw0/spectrum/pkg/adapters/memory"
	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/preferences"
	"github.com/aretw0/spectrum/pkg/session"
)

func setup(t *testing.T, opts ...Option) (*session.Manager, *Server, http.Handler) {
	t.Helper()
	mgr := session.NewManager(memory.NewStore(), session.WithCatalog(memory.NewBuiltinCatalog()))
	srv, err := New(mgr, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		srv.Close()
		_ = mgr.Shutdown(context.Background())
	})
	return mgr, srv, srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) resultResponse {
	t.Helper()
	var res resultResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestOpenAPIDocument_IsValid(t *testing.T) {
	doc, err := openapi3.NewLoader().LoadFromData(api.Spec)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))
	assert.NotEmpty(t, doc.Info.Version)
}

func TestHealthAndInfo(t *testing.T) {
	_, _, h := setup(t, WithVersion("1.2.3\n"))

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "0.3.0", info["api_version"])
}

func TestPresetsValidateRender(t *testing.T) {
	_, _, h := setup(t)

	w := do(t, h, http.MethodGet, "/presets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var presets []domain.Preset
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &presets))
	assert.Len(t, presets, len(domain.BuiltinPresets()))

	w = do(t, h, http.MethodPost, "/validate", map[string]any{"tokens": []string{"#fff", "teal", "nope"}})
	require.Equal(t, http.StatusOK, w.Code)
	var reports []TokenReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reports))
	require.Len(t, reports, 3)
	assert.Equal(t, domain.FormatHex, reports[0].Format)
	assert.True(t, reports[1].Valid)
	assert.False(t, reports[2].Valid)

	w = do(t, h, http.MethodPost, "/render", map[string]any{"colors": []string{"red", "blue"}, "direction": "45deg"})
	require.Equal(t, http.StatusOK, w.Code)
	var out Rendered
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "linear-gradient(45deg, red, blue)", out.Expression)

	w = do(t, h, http.MethodPost, "/render", map[string]any{"colors": []string{"red"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	_, _, h := setup(t)

	w := do(t, h, http.MethodPost, "/sessions", map[string]any{
		"id":       "s1",
		"metadata": map[string]string{"record": "product/42"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "linear-gradient(to right, #ff512f, #dd2476)", snap.Expression)
	assert.Equal(t, "product/42", snap.Metadata["record"])

	w = do(t, h, http.MethodPost, "/sessions/s1/colors", map[string]string{"token": "teal"})
	require.Equal(t, http.StatusOK, w.Code)
	res := decodeResult(t, w)
	assert.True(t, res.Applied)
	assert.Equal(t, []string{"#ff512f", "#dd2476", "teal"}, res.Snapshot.Colors)

	w = do(t, h, http.MethodPut, "/sessions/s1/colors/0", map[string]string{"token": "#12"})
	require.Equal(t, http.StatusOK, w.Code)
	res = decodeResult(t, w)
	assert.False(t, res.Applied)
	assert.Equal(t, "#12", res.Snapshot.Drafts[0])
	assert.Equal(t, "#ff512f", res.Snapshot.Colors[0])

	w = do(t, h, http.MethodPut, "/sessions/s1/direction", map[string]string{"direction": "to bottom"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "linear-gradient(to bottom, #ff512f, #dd2476, teal)", decodeResult(t, w).Snapshot.Expression)

	w = do(t, h, http.MethodPost, "/sessions/s1/preset", map[string]string{"name": "ocean"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "linear-gradient(to bottom, #2193b0, #6dd5ed)", decodeResult(t, w).Snapshot.Expression)

	w = do(t, h, http.MethodDelete, "/sessions/s1/colors/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res = decodeResult(t, w)
	assert.False(t, res.Applied, "a two-color gradient keeps its colors")
	assert.Len(t, res.Snapshot.Colors, 2)

	w = do(t, h, http.MethodPut, "/sessions/s1", map[string]any{"colors": []string{"red", "blue"}, "direction": "to left"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "linear-gradient(to left, red, blue)", decodeResult(t, w).Snapshot.Expression)

	w = do(t, h, http.MethodGet, "/sessions", nil)
	assert.JSONEq(t, `["s1"]`, w.Body.String())

	w = do(t, h, http.MethodDelete, "/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/sessions/s1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorMapping(t *testing.T) {
	mgr, _, h := setup(t)
	_, err := mgr.Open(context.Background(), "s1", session.OpenConfig{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown session", http.MethodPost, "/sessions/missing/colors", map[string]string{"token": "red"}, http.StatusNotFound},
		{"unknown preset", http.MethodPost, "/sessions/s1/preset", map[string]string{"name": "nope"}, http.StatusNotFound},
		{"invalid color", http.MethodPost, "/sessions/s1/colors", map[string]string{"token": "nope"}, http.StatusBadRequest},
		{"empty direction", http.MethodPut, "/sessions/s1/direction", map[string]string{"direction": ""}, http.StatusBadRequest},
		{"index out of range", http.MethodPut, "/sessions/s1/colors/9", map[string]string{"token": "red"}, http.StatusBadRequest},
		{"non numeric index", http.MethodDelete, "/sessions/s1/colors/abc", nil, http.StatusBadRequest},
		{"invalid open colors", http.MethodPost, "/sessions", map[string]any{"colors": []string{"red"}}, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/render", "{", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w *httptest.ResponseRecorder
			if s, ok := tt.body.(string); ok {
				req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(s))
				w = httptest.NewRecorder()
				h.ServeHTTP(w, req)
			} else {
				w = do(t, h, tt.method, tt.path, tt.body)
			}
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestCORS(t *testing.T) {
	_, _, h := setup(t, WithAllowedOrigins("https://admin.example"))

	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	req.Header.Set("Origin", "https://admin.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://admin.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreferences(t *testing.T) {
	prefs := preferences.New()
	t.Cleanup(prefs.Dispose)

	var loadingSeen bool
	sub := prefs.Subscribe(func(s preferences.State) {
		if s.Loading {
			loadingSeen = true
		}
	})
	defer sub.Unsubscribe()

	_, _, h := setup(t, WithPreferences(prefs))

	w := do(t, h, http.MethodPut, "/preferences", map[string]string{"language": "ar", "theme": "dark"})
	require.Equal(t, http.StatusOK, w.Code)
	var state preferences.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, preferences.TextDirection("rtl"), state.Direction)
	assert.Equal(t, preferences.Theme("dark"), state.Theme)

	w = do(t, h, http.MethodPut, "/preferences", map[string]string{"language": "fr"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, loadingSeen, "mutating requests raise the loading flag")
	assert.False(t, prefs.State().Loading)
}

func TestMetricsMounted(t *testing.T) {
	_, _, h := setup(t, WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("spectrum_up 1\n"))
	})))

	w := do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "spectrum_up")
}

// readEvents collects SSE event names until stop returns true or the deadline passes.
func readEvents(t *testing.T, sc *bufio.Scanner, stop func(name, data string) bool) []string {
	t.Helper()
	var names []string
	var name string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			names = append(names, name)
			if stop(name, strings.TrimPrefix(line, "data: ")) {
				return names
			}
		}
	}
	t.Fatalf("stream ended early: %v (%v)", names, sc.Err())
	return nil
}

func openStream(t *testing.T, url string) (*bufio.Scanner, func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewScanner(resp.Body), func() {
		cancel()
		resp.Body.Close()
	}
}

func TestSubscribeEvents_Session(t *testing.T) {
	mgr, _, h := setup(t)
	ts := httptest.NewServer(h)
	defer ts.Close()

	ctx := context.Background()
	_, err := mgr.Open(ctx, "s1", session.OpenConfig{})
	require.NoError(t, err)

	sc, stop := openStream(t, ts.URL+"/events?session_id=s1")
	defer stop()

	names := readEvents(t, sc, func(name, data string) bool {
		if name == "snapshot" {
			assert.Contains(t, data, "linear-gradient(to right, #ff512f, #dd2476)")
			return true
		}
		return false
	})
	assert.Equal(t, []string{"ping", "snapshot"}, names)

	_, err = mgr.Apply(ctx, "s1", domain.Mutation{Kind: domain.MutationDirection, Direction: "to top"})
	require.NoError(t, err)

	names = readEvents(t, sc, func(name, data string) bool {
		if name == "direction" {
			var n domain.Notification
			require.NoError(t, json.Unmarshal([]byte(data), &n))
			assert.Equal(t, "to top", n.Value)
			assert.Equal(t, "s1", n.SessionID)
			return true
		}
		return false
	})
	assert.Equal(t, []string{"expression", "direction"}, names)
}

func TestSubscribeEvents_WatchFilter(t *testing.T) {
	mgr, _, h := setup(t)
	ts := httptest.NewServer(h)
	defer ts.Close()

	ctx := context.Background()
	_, err := mgr.Open(ctx, "s1", session.OpenConfig{})
	require.NoError(t, err)

	sc, stop := openStream(t, ts.URL+"/events?session_id=s1&watch=colors")
	defer stop()
	readEvents(t, sc, func(name, _ string) bool { return name == "snapshot" })

	_, err = mgr.Apply(ctx, "s1", domain.Mutation{Kind: domain.MutationDirection, Direction: "to top"})
	require.NoError(t, err)
	_, err = mgr.Apply(ctx, "s1", domain.Mutation{Kind: domain.MutationAdd, Token: "teal"})
	require.NoError(t, err)

	names := readEvents(t, sc, func(name, _ string) bool { return name == "colors" })
	assert.Equal(t, []string{"colors"}, names)
}

func TestSubscribeEvents_Global(t *testing.T) {
	mgr, srv, h := setup(t)
	ts := httptest.NewServer(h)
	defer ts.Close()

	sc, stop := openStream(t, ts.URL+"/events")
	defer stop()
	readEvents(t, sc, func(name, _ string) bool { return name == "ping" })
	require.Eventually(t, func() bool { return srv.Streams.Subscribers(AllSessions) == 1 }, time.Second, 10*time.Millisecond)

	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		_, err := mgr.Open(ctx, id, session.OpenConfig{})
		require.NoError(t, err)
		_, err = mgr.Apply(ctx, id, domain.Mutation{Kind: domain.MutationDirection, Direction: "to top"})
		require.NoError(t, err)
	}

	var sessions []string
	readEvents(t, sc, func(name, data string) bool {
		if name != "direction" {
			return false
		}
		var n domain.Notification
		require.NoError(t, json.Unmarshal([]byte(data), &n))
		sessions = append(sessions, n.SessionID)
		return len(sessions) == 2
	})
	assert.Equal(t, []string{"a", "b"}, sessions)
}

func TestSubscribeEvents_Errors(t *testing.T) {
	_, _, h := setup(t)

	w := do(t, h, http.MethodGet, "/events?session_id=missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/events?watch=context", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe("s1")
	defer cancel()

	for i := 0; i < 20; i++ {
		sm.Broadcast("s1", Event{Name: "colors", Data: []byte("{}")})
	}
	assert.Len(t, ch, 16)

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("s1"))
}

func TestAddColor_EmptyChunkedBody(t *testing.T) {
	_, _, h := setup(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/sessions", map[string]string{"id": "s1"}).Code)

	req := httptest.NewRequest(http.MethodPost, "/sessions/s1/colors", strings.NewReader(""))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeResult(t, w)
	assert.True(t, res.Applied)
	assert.Equal(t, []string{"#ff512f", "#dd2476", domain.DefaultNewColor}, res.Snapshot.Colors)

	// Malformed bodies are still rejected.
	req = httptest.NewRequest(http.MethodPost, "/sessions/s1/colors", strings.NewReader("{"))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
