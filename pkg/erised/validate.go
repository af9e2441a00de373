// Package erised provides the official Go client for the Erised visual memory service.
package erised

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Request parameters are collected into small structs and checked against
// their validate tags before any bytes reach the wire. Failed checks surface
// as ValidationError carrying the wire name of the offending field.

// addParams carries Add inputs through validation.
type addParams struct {
	UserID string `json:"user_id" validate:"required"`
}

// searchParams carries Search inputs through validation.
type searchParams struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k" validate:"gt=0"`
}

// listParams carries List inputs through validation.
type listParams struct {
	Limit  int `json:"limit" validate:"gt=0"`
	Offset int `json:"offset" validate:"gte=0"`
}

// memoryIDParams carries memory-addressed inputs through validation.
type memoryIDParams struct {
	MemoryID string `json:"memory_id" validate:"required"`
}

// newValidator builds the validator used for pre-flight request checks.
//
// Violations are reported under the field's json tag name so errors speak
// the API's vocabulary rather than Go identifiers.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// checkParams validates a request parameter struct.
//
// The first violation is translated into a ValidationError; nil means the
// parameters are safe to serialize.
func (c *Client) checkParams(params interface{}) error {
	err := c.validate.Struct(params)
	if err == nil {
		return nil
	}

	var violations validator.ValidationErrors
	if errors.As(err, &violations) && len(violations) > 0 {
		fe := violations[0]
		return &ValidationError{Field: fe.Field(), Reason: validationReason(fe)}
	}

	return &ValidationError{Field: "request", Reason: err.Error()}
}

// validationReason renders a readable reason for a failed validation tag.
func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
