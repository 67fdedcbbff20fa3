package domain

import (
	"time"
)

// Channel names one of the three independent notification streams.
type Channel string

const (
	ChannelExpression Channel = "expression"
	ChannelColors     Channel = "colors"
	ChannelDirection  Channel = "direction"
)

// Channels lists every channel in emission order.
var Channels = []Channel{ChannelExpression, ChannelColors, ChannelDirection}

// EmitEvent describes a value delivered on a channel.
type EmitEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Channel   Channel   `json:"channel"`
	Value     any       `json:"value"`
	// Forced is set when a reconfiguration re-emitted a value regardless of change detection.
	Forced bool `json:"forced,omitempty"`
}

// MutationEvent describes a mutation after it was applied (or ignored).
type MutationEvent struct {
	Timestamp time.Time    `json:"timestamp"`
	Kind      MutationKind `json:"kind"`
	Index     int          `json:"index,omitempty"`
	// Applied is false when the mutation left the committed state untouched
	// (guarded removal, invalid draft, unchanged reconfiguration).
	Applied bool `json:"applied"`
}

// LifecycleHooks defines callbacks for synchronizer observability.
type LifecycleHooks struct {
	OnMutation func(*MutationEvent)
	OnEmit     func(*EmitEvent)
	OnDispose  func()
}

// Notification is a channel emission addressed to a session, as streamed to remote observers.
type Notification struct {
	SessionID string  `json:"session_id"`
	Channel   Channel `json:"channel"`
	Value     any     `json:"value"`
}

// MergeHooks fans each callback out to every non-nil hook in order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnMutation: func(e *MutationEvent) {
			for _, h := range hooks {
				if h.OnMutation != nil {
					h.OnMutation(e)
				}
			}
		},
		OnEmit: func(e *EmitEvent) {
			for _, h := range hooks {
				if h.OnEmit != nil {
					h.OnEmit(e)
				}
			}
		},
		OnDispose: func() {
			for _, h := range hooks {
				if h.OnDispose != nil {
					h.OnDispose()
				}
			}
		},
	}
}
