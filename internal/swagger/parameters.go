package swagger

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/routes2swagger/internal/schema"
	"github.com/mark3labs/routes2swagger/internal/spec"
)

// anonymousBodyName names the body parameter when the body schema has no
// model name.
const anonymousBodyName = "body"

// ConvertParameters flattens the per-location schemas of an operation into
// Swagger parameters: body first, then query, path, header and form, each in
// declaration order.
func ConvertParameters(params spec.Parameters) (openapi2.Parameters, error) {
	var out openapi2.Parameters
	for _, loc := range spec.Locations {
		var (
			converted openapi2.Parameters
			err       error
		)
		switch loc {
		case spec.Body:
			converted, err = bodyParameters(params.Body)
		case spec.Query, spec.Path, spec.Header, spec.Form:
			converted, err = fieldParameters(loc, params.At(loc))
		default:
			err = shapeErr("", fmt.Sprintf("unknown parameter location %s", loc))
		}
		if err != nil {
			return nil, err
		}
		out = append(out, converted...)
	}
	return out, nil
}

func bodyParameters(s *schema.Schema) (openapi2.Parameters, error) {
	if schema.ShapeOf(s) == schema.ShapeNothing {
		return nil, nil
	}
	if name, ok := schema.NameOf(s); ok {
		return openapi2.Parameters{{
			In:       spec.Body.In(),
			Name:     strings.ToLower(name),
			Required: true,
			Schema:   refSchema(name),
		}}, nil
	}
	inline, err := renderStructure(s, "/parameters/body")
	if err != nil {
		return nil, err
	}
	return openapi2.Parameters{{
		In:       spec.Body.In(),
		Name:     anonymousBodyName,
		Required: true,
		Schema:   inline,
	}}, nil
}

func fieldParameters(loc spec.Location, s *schema.Schema) (openapi2.Parameters, error) {
	ptr := "/parameters/" + loc.String()
	switch schema.ShapeOf(s) {
	case schema.ShapeAnything, schema.ShapeNothing:
		return nil, nil
	case schema.ShapeMap:
	default:
		return nil, shapeErr(ptr, fmt.Sprintf("%s parameters must be a map of name to type, got %s", loc, s.Shape))
	}

	out := make(openapi2.Parameters, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Key.Wildcard {
			continue
		}
		required, name := schema.FieldMeta(e.Key)
		// Swagger 2.0 requires path parameters to be required.
		if loc == spec.Path {
			required = true
		}
		p := &openapi2.Parameter{In: loc.In(), Name: name, Required: required}
		if err := describeParameter(p, e.Value, ptr+"/"+name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// describeParameter fills type information for a non-body parameter. Only
// primitives and collections of primitives can be expressed there.
func describeParameter(p *openapi2.Parameter, s *schema.Schema, ptr string) error {
	if s == nil {
		return shapeErr(ptr, fmt.Sprintf("parameter %q has no schema", p.Name))
	}
	switch s.Shape {
	case schema.ShapePrimitive:
		p.Type = s.Primitive.Type
		p.Format = s.Primitive.Format
		for _, v := range s.Primitive.Enum {
			p.Enum = append(p.Enum, v)
		}
		return nil
	case schema.ShapeSequence, schema.ShapeSet:
		if schema.ShapeOf(s.Elem) != schema.ShapePrimitive {
			return shapeErr(ptr, fmt.Sprintf("parameter %q: %s items must be primitive in %s", p.Name, s.Shape, p.In))
		}
		p.Type = openapi3.TypeArray
		p.Items = openapi3.NewSchemaRef("", primitiveSchema(s.Elem.Primitive))
		p.UniqueItems = s.Shape == schema.ShapeSet
		return nil
	case schema.ShapeAnything:
		// Free-form values outside the body arrive as raw strings.
		p.Type = openapi3.TypeString
		return nil
	case schema.ShapeMap, schema.ShapeNothing:
		return shapeErr(ptr, fmt.Sprintf("parameter %q: %s values are only supported in the body", p.Name, s.Shape))
	default:
		return shapeErr(ptr, fmt.Sprintf("parameter %q: unknown schema shape %s", p.Name, s.Shape))
	}
}
