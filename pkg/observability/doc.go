/*
Package observability provides tools for monitoring gradient synchronizers and sessions.

It exposes Prometheus metrics fed by synchronizer lifecycle hooks and by a
mutation pipeline interceptor, plus structured-logging hooks for auditing
emissions and mutations.
*/
package observability
