// Package api exposes the focus tracker over HTTP. Every handler resolves
// the request identity to a workspace and delegates to the services in
// internal/service; errors are translated by HandleAPIError.
package api
