package pipeline

import (
	"context"

	"github.com/aretw0/spectrum/pkg/domain"
)

// Request is a mutation addressed to a session.
type Request struct {
	SessionID string
	Mutation  domain.Mutation
}

// Interceptor hooks into the mutation path. Either function may be nil.
type Interceptor struct {
	Name string

	// TransformRequest may modify req in place. A non-nil error rejects the mutation.
	TransformRequest func(ctx context.Context, req *Request) error

	// HandleError receives the error of a rejected or failed mutation and returns
	// the error to propagate (possibly wrapped).
	HandleError func(ctx context.Context, req *Request, err error) error
}

// Chain is an ordered list of interceptors.
type Chain struct {
	interceptors []Interceptor
}

// NewChain creates a chain from interceptors.
func NewChain(interceptors ...Interceptor) *Chain {
	return &Chain{interceptors: interceptors}
}

// Use appends interceptors to the chain.
func (c *Chain) Use(interceptors ...Interceptor) {
	c.interceptors = append(c.interceptors, interceptors...)
}

// Len returns the number of registered interceptors.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.interceptors)
}

// Transform runs every TransformRequest in order, stopping at the first error.
func (c *Chain) Transform(ctx context.Context, req *Request) error {
	if c == nil {
		return nil
	}
	for _, i := range c.interceptors {
		if i.TransformRequest == nil {
			continue
		}
		if err := i.TransformRequest(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// HandleError runs every HandleError in reverse order and returns the final error.
func (c *Chain) HandleError(ctx context.Context, req *Request, err error) error {
	if c == nil || err == nil {
		return err
	}
	for idx := len(c.interceptors) - 1; idx >= 0; idx-- {
		h := c.interceptors[idx].HandleError
		if h == nil {
			continue
		}
		if next := h(ctx, req, err); next != nil {
			err = next
		}
	}
	return err
}
