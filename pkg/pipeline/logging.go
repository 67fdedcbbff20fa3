package pipeline

import (
	"context"
	"log/slog"
)

// Logging returns an interceptor that logs requested and failed mutations.
func Logging(logger *slog.Logger) Interceptor {
	return Interceptor{
		Name: "logging",
		TransformRequest: func(ctx context.Context, req *Request) error {
			logger.DebugContext(ctx, "mutation requested",
				"session_id", req.SessionID,
				"kind", req.Mutation.Kind,
				"index", req.Mutation.Index,
			)
			return nil
		},
		HandleError: func(ctx context.Context, req *Request, err error) error {
			logger.WarnContext(ctx, "mutation rejected",
				"session_id", req.SessionID,
				"kind", req.Mutation.Kind,
				"error", err,
			)
			return err
		},
	}
}
