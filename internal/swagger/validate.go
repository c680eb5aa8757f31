package swagger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"sigs.k8s.io/yaml"
)

// Validate checks doc against the Swagger rules kin-openapi knows about. The
// document is converted to OpenAPI 3 (which resolves every $ref, so a dangling
// definition reference fails here) and validated there. doc is not modified.
func Validate(ctx context.Context, doc *openapi2.T) error {
	if doc == nil {
		return &Error{Code: ValidationError, Message: "swagger: nil document"}
	}
	if doc.Swagger != Version {
		return &Error{Code: ValidationError, Message: fmt.Sprintf("swagger: unsupported version %q", doc.Swagger), Pointer: "#/swagger"}
	}

	// The conversion rewrites schema refs in place; work on a copy.
	raw, err := json.Marshal(doc)
	if err != nil {
		return &Error{Code: ValidationError, Message: fmt.Sprintf("encode document: %v", err), Cause: err}
	}
	var clone openapi2.T
	if err := json.Unmarshal(raw, &clone); err != nil {
		return &Error{Code: ValidationError, Message: fmt.Sprintf("copy document: %v", err), Cause: err}
	}

	v3, err := openapi2conv.ToV3(&clone)
	if err != nil {
		return &Error{Code: ValidationError, Message: fmt.Sprintf("invalid swagger document: %v", err), Pointer: extractJSONPointer(err), Cause: err}
	}
	if v3.Paths == nil {
		v3.Paths = openapi3.Paths{}
	}
	if err := v3.Validate(ctx); err != nil {
		return &Error{Code: ValidationError, Message: fmt.Sprintf("invalid swagger document: %v", err), Pointer: extractJSONPointer(err), Cause: err}
	}
	return nil
}

// ParseDocument reads a Swagger 2.0 document in JSON or YAML.
func ParseDocument(data []byte) (*openapi2.T, error) {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, &Error{Code: ValidationError, Message: fmt.Sprintf("parse document: %v", err), Cause: err}
	}
	var doc openapi2.T
	if err := json.Unmarshal(js, &doc); err != nil {
		return nil, &Error{Code: ValidationError, Message: fmt.Sprintf("parse document: %v", err), Cause: err}
	}
	return &doc, nil
}
