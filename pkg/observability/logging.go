package observability

import (
	"log/slog"

	"github.com/aretw0/spectrum/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that audit synchronizer activity through logger.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(e *domain.MutationEvent) {
			logger.Debug("mutation",
				"kind", e.Kind,
				"index", e.Index,
				"applied", e.Applied,
			)
		},
		OnEmit: func(e *domain.EmitEvent) {
			logger.Info("emit",
				"channel", e.Channel,
				"value", e.Value,
				"forced", e.Forced,
			)
		},
		OnDispose: func() {
			logger.Debug("dispose")
		},
	}
}
