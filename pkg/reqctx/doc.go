// Package reqctx carries request-scoped values through context.Context:
// the request metadata set for every HTTP request and the bearer claims set
// only for authenticated ones. Services read the caller through
// authorize.ActorFromContext; loggers and tracing read it from here.
package reqctx
