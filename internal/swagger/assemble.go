// Package swagger turns a route table into a Swagger 2.0 document.
//
// Assembly runs in two independent passes over the same input: every body and
// response schema is walked to collect the named models that become
// definitions, and every operation is converted into a path entry. Nothing is
// shared between calls, so one Document can be assembled concurrently.
package swagger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/mark3labs/routes2swagger/internal/schema"
	"github.com/mark3labs/routes2swagger/internal/spec"
)

// Version is the value of the top-level "swagger" field.
const Version = "2.0"

type settings struct {
	logger   *zap.Logger
	validate bool
}

// Option configures Assemble.
type Option func(*settings)

// WithLogger sets the logger used for debug output. The default discards logs.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithValidation makes Assemble validate the result before returning it.
func WithValidation(enabled bool) Option { return func(s *settings) { s.validate = enabled } }

// Assemble builds the Swagger document for doc. Any shape, conflict or
// validation failure aborts the whole call; no partial document is returned.
func Assemble(ctx context.Context, doc *spec.Document, opts ...Option) (*openapi2.T, error) {
	cfg := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if doc == nil {
		return nil, shapeErr("", "nil document")
	}
	log := cfg.logger.With(zap.String("title", doc.Info.Title))

	models, err := CollectModels(schemaRoots(doc)...)
	if err != nil {
		return nil, err
	}
	definitions := make(map[string]*openapi3.SchemaRef, len(models))
	for _, name := range models.Names() {
		rendered, err := RenderDefinition(models[name])
		if err != nil {
			return nil, at("#/definitions/"+name, "definition "+name, err)
		}
		definitions[name] = rendered
	}

	out := &openapi2.T{
		Swagger: Version,
		Info: openapi3.Info{
			Title:          doc.Info.Title,
			Version:        doc.Info.Version,
			Description:    doc.Info.Description,
			TermsOfService: doc.Info.TermsOfService,
		},
		Host:        doc.Host,
		BasePath:    doc.BasePath,
		Schemes:     doc.Schemes,
		Consumes:    doc.Consumes,
		Produces:    doc.Produces,
		Paths:       map[string]*openapi2.PathItem{},
		Definitions: definitions,
	}
	for _, t := range doc.Tags {
		out.Tags = append(out.Tags, &openapi3.Tag{Name: t.Name, Description: t.Description})
	}

	if doc.Paths != nil {
		for pair := doc.Paths.Oldest(); pair != nil; pair = pair.Next() {
			if err := ctx.Err(); err != nil {
				return nil, &Error{Code: Canceled, Message: fmt.Sprintf("assemble: %v", err), Cause: err}
			}
			templated := TemplatePath(pair.Key)
			for i, op := range pair.Value {
				ptr := fmt.Sprintf("#/paths/%s/%d", escapePointer(pair.Key), i)
				method := strings.ToUpper(string(op.Method))
				where := method + " " + pair.Key
				converted, err := convertOperation(op)
				if err != nil {
					return nil, at(ptr, where, err)
				}
				if item := out.Paths[templated]; item != nil && item.GetOperation(method) != nil {
					return nil, &Error{
						Code:    ConflictError,
						Message: fmt.Sprintf("%s: another route already maps to %s %s", where, method, templated),
						Pointer: ptr,
					}
				}
				out.AddOperation(templated, method, converted)
				log.Debug("converted operation",
					zap.String("method", method),
					zap.String("path", templated),
					zap.Int("parameters", len(converted.Parameters)),
					zap.Int("responses", len(converted.Responses)))
			}
		}
	}

	log.Debug("assembled swagger document",
		zap.Int("paths", len(out.Paths)),
		zap.Int("definitions", len(out.Definitions)))

	if cfg.validate {
		if err := Validate(ctx, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// schemaRoots lists every body and response schema of doc in route order.
// Non-body parameters never contribute definitions.
func schemaRoots(doc *spec.Document) []*schema.Schema {
	var roots []*schema.Schema
	if doc.Paths == nil {
		return roots
	}
	for pair := doc.Paths.Oldest(); pair != nil; pair = pair.Next() {
		for _, op := range pair.Value {
			if op.Parameters.Body != nil {
				roots = append(roots, op.Parameters.Body)
			}
			for _, key := range sortedStatusKeys(op.Responses) {
				if s := op.Responses[key].Schema; s != nil {
					roots = append(roots, s)
				}
			}
		}
	}
	return roots
}

func convertOperation(op spec.Operation) (*openapi2.Operation, error) {
	params, err := ConvertParameters(op.Parameters)
	if err != nil {
		return nil, err
	}
	responses, err := ConvertResponses(op.Responses)
	if err != nil {
		return nil, err
	}
	out := &openapi2.Operation{
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
		Tags:        op.Tags,
		OperationID: op.OperationID,
		Parameters:  params,
		Responses:   responses,
		Consumes:    op.Consumes,
		Produces:    op.Produces,
	}
	if op.ExternalDocs != nil {
		out.ExternalDocs = &openapi3.ExternalDocs{Description: op.ExternalDocs.Description, URL: op.ExternalDocs.URL}
	}
	return out, nil
}

// at prefixes a package error with the location it occurred at.
func at(pointer, where string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return &Error{Code: e.Code, Message: where + ": " + e.Message, Pointer: pointer + e.Pointer, Cause: e.Cause}
	}
	return &Error{Code: ShapeError, Message: where + ": " + err.Error(), Pointer: pointer, Cause: err}
}

func escapePointer(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}
