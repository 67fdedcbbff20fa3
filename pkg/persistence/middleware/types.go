package middleware

import "github.com/aretw0/spectrum/pkg/ports"

// Middleware allows wrapping a GradientStore to add behavior.
type Middleware func(ports.GradientStore) ports.GradientStore

// Chain applies middlewares so that the first one listed is the outermost.
func Chain(store ports.GradientStore, mws ...Middleware) ports.GradientStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
