// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package validation

import (
	"fmt"
	"strings"
)

// ErrCodeValidation is the API error code for validation failures.
const ErrCodeValidation = "VALIDATION_ERROR"

// ValidationError is one rejected field.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field is the JSON path of the field, e.g. "filters.minDay".
func (e *ValidationError) Field() string { return e.field }

// Tag is the rule that failed.
func (e *ValidationError) Tag() string { return e.tag }

// Param is the rule parameter, e.g. "100" for max=100.
func (e *ValidationError) Param() string { return e.param }

// Value is the rejected value.
func (e *ValidationError) Value() interface{} { return e.value }

func (e *ValidationError) Error() string { return e.message }

// RequestValidationError is returned by ValidateStruct.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors lists the rejected fields in declaration order.
func (ve *RequestValidationError) Errors() []ValidationError { return ve.errors }

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	for i := range ve.errors {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ve.errors[i].message)
	}
	return b.String()
}

// APIError is the body the handlers write for a 400.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError flattens the failures into an APIError. A single failure puts
// field, tag and value directly in Details; several go under "fields".
func (ve *RequestValidationError) ToAPIError() *APIError {
	out := &APIError{Code: ErrCodeValidation, Message: "Validation failed"}

	switch len(ve.errors) {
	case 0:
		return out
	case 1:
		e := ve.errors[0]
		out.Message = e.message
		out.Details = map[string]interface{}{"field": e.field, "tag": e.tag, "value": e.value}
		return out
	}

	fields := make([]map[string]interface{}, 0, len(ve.errors))
	parts := make([]string, 0, len(ve.errors))
	for _, e := range ve.errors {
		fields = append(fields, map[string]interface{}{"field": e.field, "tag": e.tag, "message": e.message})
		parts = append(parts, fmt.Sprintf("%s: %s", e.field, e.message))
	}
	out.Message = strings.Join(parts, "; ")
	out.Details = map[string]interface{}{"fields": fields}
	return out
}
