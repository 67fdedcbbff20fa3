package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_TransformOrderAndShortCircuit(t *testing.T) {
	var trace []string
	stage := func(name string, fail bool) pipeline.Interceptor {
		return pipeline.Interceptor{
			Name: name,
			TransformRequest: func(ctx context.Context, req *pipeline.Request) error {
				trace = append(trace, name)
				if fail {
					return errors.New(name + " refused")
				}
				return nil
			},
		}
	}

	chain := pipeline.NewChain(stage("a", false), stage("b", true), stage("c", false))
	err := chain.Transform(context.Background(), &pipeline.Request{})

	assert.EqualError(t, err, "b refused")
	assert.Equal(t, []string{"a", "b"}, trace)
}

func TestChain_HandleErrorRunsInReverse(t *testing.T) {
	wrap := func(name string) pipeline.Interceptor {
		return pipeline.Interceptor{
			Name: name,
			HandleError: func(ctx context.Context, req *pipeline.Request, err error) error {
				return fmt.Errorf("%s: %w", name, err)
			},
		}
	}

	chain := pipeline.NewChain(wrap("outer"), pipeline.Interceptor{Name: "noop"}, wrap("inner"))
	err := chain.HandleError(context.Background(), &pipeline.Request{}, domain.ErrInvalidColor)

	assert.EqualError(t, err, "outer: inner: "+domain.ErrInvalidColor.Error())
	assert.ErrorIs(t, err, domain.ErrInvalidColor)
	assert.NoError(t, chain.HandleError(context.Background(), &pipeline.Request{}, nil))
}

func TestChain_NilIsUsable(t *testing.T) {
	var chain *pipeline.Chain
	assert.NoError(t, chain.Transform(context.Background(), &pipeline.Request{}))
	assert.Equal(t, 0, chain.Len())
	assert.ErrorIs(t, chain.HandleError(context.Background(), &pipeline.Request{}, domain.ErrDisposed), domain.ErrDisposed)
}

func TestLogging_Interceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	chain := pipeline.NewChain()
	chain.Use(pipeline.Logging(logger))
	require.Equal(t, 1, chain.Len())

	req := &pipeline.Request{SessionID: "s1", Mutation: domain.Mutation{Kind: domain.MutationAdd}}
	require.NoError(t, chain.Transform(context.Background(), req))
	err := chain.HandleError(context.Background(), req, domain.ErrInvalidColor)

	assert.ErrorIs(t, err, domain.ErrInvalidColor)
	out := buf.String()
	assert.Contains(t, out, "mutation requested")
	assert.Contains(t, out, "mutation rejected")
	assert.Contains(t, out, "session_id=s1")
}
