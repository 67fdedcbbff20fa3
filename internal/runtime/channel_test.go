package runtime_test

import (
	"testing"

	"github.com/aretw0/spectrum/internal/runtime"
	"github.com/stretchr/testify/assert"
)

func TestChannel_PublishInOrder(t *testing.T) {
	var ch runtime.Channel[int]
	var got []string

	ch.Subscribe(func(v int) { got = append(got, "a") })
	ch.Subscribe(func(v int) { got = append(got, "b") })
	ch.Publish(1)

	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 2, ch.Len())
}

func TestChannel_UnsubscribeDuringPublish(t *testing.T) {
	var ch runtime.Channel[string]
	calls := 0

	var sub runtime.Subscription
	sub = ch.Subscribe(func(string) {
		calls++
		sub.Unsubscribe()
	})

	ch.Publish("x")
	ch.Publish("y")
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, ch.Len())
}

func TestChannel_Close(t *testing.T) {
	var ch runtime.Channel[string]
	calls := 0
	ch.Subscribe(func(string) { calls++ })

	ch.Close()
	ch.Publish("ignored")
	assert.Equal(t, 0, calls)

	// Subscribing after close yields a handle that is safe to use.
	sub := ch.Subscribe(func(string) { calls++ })
	sub.Unsubscribe()
	ch.Publish("ignored")
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, ch.Len())
}

func TestChannel_NilHandler(t *testing.T) {
	var ch runtime.Channel[int]
	sub := ch.Subscribe(nil)
	assert.NotNil(t, sub)
	assert.Equal(t, 0, ch.Len())
	ch.Publish(1)
}
