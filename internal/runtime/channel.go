package runtime

import "sync"

// Subscription is the dispose handle returned by Subscribe.
type Subscription interface {
	// Unsubscribe stops delivery. Calling it more than once is a no-op.
	Unsubscribe()
}

// Channel is a synchronous publish/subscribe channel.
// Subscribers are invoked in subscription order on the publishing goroutine.
type Channel[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber[T]
	closed bool
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

type subscription struct {
	once   sync.Once
	cancel func()
}

func (s *subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// Subscribe registers fn. Subscribing to a closed channel returns an inert handle.
func (c *Channel[T]) Subscribe(fn func(T)) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || fn == nil {
		return &subscription{cancel: func() {}}
	}

	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber[T]{id: id, fn: fn})

	return &subscription{cancel: func() { c.remove(id) }}
}

func (c *Channel[T]) remove(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers v to every current subscriber.
// The subscriber list is copied first so handlers may unsubscribe themselves.
func (c *Channel[T]) Publish(v T) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	subs := make([]subscriber[T], len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of active subscribers.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Close drops every subscriber; later publishes are ignored.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.subs = nil
}
