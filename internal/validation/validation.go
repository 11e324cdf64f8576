// Package validation binds request payloads and validates them with
// go-playground/validator, turning failures into field-level errs.HTTPError
// responses.
package validation
