package swagger

import (
	"errors"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrorCode categorizes assembly failures.
type ErrorCode string

const (
	// ShapeError means a schema has a form the converter cannot express.
	ShapeError ErrorCode = "ShapeError"
	// ConflictError means two different schemas claim the same model name.
	ConflictError ErrorCode = "ConflictError"
	// ValidationError means the assembled document is not valid Swagger.
	ValidationError ErrorCode = "ValidationError"
	// Canceled means the context ended before assembly finished.
	Canceled ErrorCode = "Canceled"
)

// Error is returned by Assemble, the converters and Validate. Encode returns
// plain encoding errors.
type Error struct {
	Code    ErrorCode
	Message string
	Pointer string // JSON pointer into the input or output document
	Cause   error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Cause }

func shapeErr(pointer, msg string) error {
	return &Error{Code: ShapeError, Message: msg, Pointer: pointer}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	if me, ok := err.(openapi3.MultiError); ok {
		if len(me) > 0 {
			return extractJSONPointer(me[0])
		}
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
	}
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}
