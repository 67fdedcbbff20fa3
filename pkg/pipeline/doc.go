/*
Package pipeline implements the interceptor chain applied to session mutations.

Each Interceptor may rewrite a Request before it reaches the synchronizer
(TransformRequest) and observe or translate the error of a failed mutation
(HandleError). Request transforms run in registration order; error handlers
run in reverse order, so the first interceptor registered sees the final error.

# Usage

	chain := pipeline.NewChain(
		pipeline.Sanitize(),
		pipeline.Logging(logger),
	)
*/
package pipeline
