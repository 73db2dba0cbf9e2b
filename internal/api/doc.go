// Package api is the HTTP surface of the scheduler: chi routing, request
// decoding and the mapping from service errors to status codes.
package api
