// Package http implements the HTTP transport layer of the storefront
// backend. It provides middleware, route handlers, and request/response
// utilities for the REST API. Session authentication, logging, tracing,
// and webhook signature plumbing are handled at this layer before
// requests are forwarded to the service layer.
package http
