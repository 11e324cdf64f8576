// Package handler is the HTTP layer. Handlers bind and validate requests
// through the validation package, resolve the caller's identity and call
// the settlement services.
package handler
