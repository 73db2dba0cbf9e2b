// Package task runs recurring background jobs, such as the daily
// adaptation batch, alongside the HTTP server.
package task
