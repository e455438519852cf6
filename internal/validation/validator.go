// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/campusrec/internal/recommend"
)

// GetValidator returns the process-wide validator. Field names in errors
// come from json (then koanf) tags, and the weightname rule accepts the
// keys of recommend.ScoringWeights.
var GetValidator = sync.OnceValue(newValidator)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(tagName)
	if err := v.RegisterValidation("weightname", func(fl validator.FieldLevel) bool {
		return recommend.IsWeightName(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("validation: register weightname: %v", err))
	}
	return v
}

func tagName(fld reflect.StructField) string {
	for _, key := range []string{"json", "koanf"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return fld.Name
}

// ValidateStruct runs the validate tags on s and returns nil when s is valid.
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{errors: []ValidationError{
			{field: "unknown", tag: "unknown", message: err.Error()},
		}}
	}

	out := &RequestValidationError{errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		path := fieldPath(fe)
		out.errors = append(out.errors, ValidationError{
			field:   path,
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: describe(fe, path),
		})
	}
	return out
}

// fieldPath drops the root struct name from the namespace:
// "recommendRequest.filters.minDay" becomes "filters.minDay".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

// phrases maps a rule to the predicate of its message. %s is the parameter.
var phrases = map[string]string{
	"required":      "is required",
	"weightname":    "is not a known scoring weight",
	"url":           "must be a valid URL",
	"hostname_port": "must be host:port",
	"oneof":         "must be one of: %s",
	"gte":           "must be greater than or equal to %s",
	"lte":           "must be less than or equal to %s",
	"gt":            "must be greater than %s",
	"lt":            "must be less than %s",
	"gtefield":      "must not be before %s",
	"required_if":   "is required when %s",
}

func describe(fe validator.FieldError, path string) string {
	tag := fe.Tag()
	if tag == "min" || tag == "max" {
		bound := "at least"
		if tag == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s %s characters", path, bound, fe.Param())
		}
		return fmt.Sprintf("%s must be %s %s", path, bound, fe.Param())
	}

	phrase, ok := phrases[tag]
	if !ok {
		return fmt.Sprintf("%s failed %s validation", path, tag)
	}
	if strings.Contains(phrase, "%s") {
		phrase = fmt.Sprintf(phrase, fe.Param())
	}
	return path + " " + phrase
}
