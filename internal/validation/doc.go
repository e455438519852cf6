// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

// Package validation wraps go-playground/validator v10 for request bodies
// and configuration structs.
//
// The shared validator reports fields by their json (or koanf) name, so
// messages match what clients send:
//
//	type RecommendRequest struct {
//	    UserID int `json:"userId" validate:"required,min=1"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // 400 with apiErr.Code == "VALIDATION_ERROR"
//	}
//
// # Custom Tags
//
//   - weightname: the value is a scoring weight name such as
//     "content_similarity". Use it on map keys:
//     `validate:"dive,keys,weightname,endkeys,gte=0"`.
package validation
