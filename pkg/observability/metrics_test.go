package observability_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/spectrum/internal/runtime"
	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/observability"
	"github.com/aretw0/spectrum/pkg/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	s, err := runtime.NewSynchronizer(runtime.Config{}, runtime.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)
	require.NoError(t, s.Start())

	require.NoError(t, s.SetDirection("to left"))
	s.RemoveAt(0)
	s.Dispose()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Emissions.WithLabelValues("expression")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Emissions.WithLabelValues("colors")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Emissions.WithLabelValues("direction")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("direction", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("remove", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Disposals))
}

func TestMetrics_Interceptor(t *testing.T) {
	m := observability.NewMetrics()
	chain := pipeline.NewChain(m.Interceptor())
	req := &pipeline.Request{Mutation: domain.Mutation{Kind: domain.MutationAdd}}

	_ = chain.HandleError(context.Background(), req, fmt.Errorf("wrapped: %w", domain.ErrInvalidColor))
	_ = chain.HandleError(context.Background(), req, domain.ErrInvalidColor)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Rejections.WithLabelValues("add", "invalid_color")))
}

func TestReason(t *testing.T) {
	assert.Equal(t, "session_not_found", observability.Reason(domain.ErrSessionNotFound))
	assert.Equal(t, "sanitize", observability.Reason(pipeline.ErrInputTooLarge))
	assert.Equal(t, "canceled", observability.Reason(context.Canceled))
	assert.Equal(t, "internal", observability.Reason(io.EOF))
}

func TestMetrics_HandlerAndLiveGauge(t *testing.T) {
	m := observability.NewMetrics()
	m.RegisterLiveSessions(func() int { return 3 })
	m.Disposals.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "spectrum_live_sessions 3")
	assert.Contains(t, body, "spectrum_disposals_total 1")
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := runtime.NewSynchronizer(runtime.Config{}, runtime.WithLifecycleHooks(observability.LoggingHooks(logger)))
	require.NoError(t, err)
	require.NoError(t, s.Start())
	require.NoError(t, s.AddColor("#abc"))
	s.Dispose()

	out := buf.String()
	assert.Contains(t, out, "channel=expression")
	assert.Contains(t, out, "kind=add")
	assert.Contains(t, out, "msg=dispose")
}
