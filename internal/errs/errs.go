// Package errs defines the error types returned to API clients.
//
// Every client-facing failure is an *HTTPError so responses share one JSON
// shape: a machine code, a human message, the status and optional field errors.
package errs
