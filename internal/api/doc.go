// Package api is the HTTP adapter of the service. It decodes and validates
// JSON requests, calls the session manager and services, and maps error
// kinds to status codes without exposing collaborator error text.
package api
