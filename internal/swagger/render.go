package swagger

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/routes2swagger/internal/schema"
)

const definitionsPrefix = "#/definitions/"

// RefTo is the in-document reference to a definition.
func RefTo(name string) string { return definitionsPrefix + name }

func refSchema(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef(RefTo(name), nil)
}

// RenderDefinition renders the body of a named schema for the definitions
// section. For a map that is its properties plus the required field names;
// the schema's own name is ignored so it never references itself.
func RenderDefinition(s *schema.Schema) (*openapi3.SchemaRef, error) {
	return renderStructure(s, "")
}

// RenderSchema renders s where it is used: named schemas become a $ref,
// anything else is inlined.
func RenderSchema(s *schema.Schema) (*openapi3.SchemaRef, error) {
	return renderAt(s, "")
}

func renderAt(s *schema.Schema, ptr string) (*openapi3.SchemaRef, error) {
	if s == nil {
		return nil, shapeErr(ptr, "missing schema")
	}
	if name, ok := schema.NameOf(s); ok {
		return refSchema(name), nil
	}
	return renderStructure(s, ptr)
}

func renderStructure(s *schema.Schema, ptr string) (*openapi3.SchemaRef, error) {
	if s == nil {
		return nil, shapeErr(ptr, "missing schema")
	}
	switch s.Shape {
	case schema.ShapePrimitive:
		return openapi3.NewSchemaRef("", primitiveSchema(s.Primitive)), nil
	case schema.ShapeSequence, schema.ShapeSet:
		if s.Elem == nil {
			return nil, shapeErr(ptr, fmt.Sprintf("%s without an element type", s.Shape))
		}
		items, err := renderAt(s.Elem, ptr+"/items")
		if err != nil {
			return nil, err
		}
		out := &openapi3.Schema{Type: openapi3.TypeArray, Items: items}
		if s.Shape == schema.ShapeSet {
			out.UniqueItems = true
		}
		return openapi3.NewSchemaRef("", out), nil
	case schema.ShapeMap:
		out := &openapi3.Schema{}
		for _, e := range s.Entries {
			if e.Key.Wildcard {
				continue
			}
			required, field := schema.FieldMeta(e.Key)
			if e.Value == nil {
				return nil, shapeErr(ptr+"/properties/"+field, fmt.Sprintf("field %q has no schema", field))
			}
			prop, err := renderAt(e.Value, ptr+"/properties/"+field)
			if err != nil {
				return nil, err
			}
			if out.Properties == nil {
				out.Properties = make(openapi3.Schemas, len(s.Entries))
			}
			out.Properties[field] = prop
			if required {
				out.Required = append(out.Required, field)
			}
		}
		return openapi3.NewSchemaRef("", out), nil
	case schema.ShapeAnything, schema.ShapeNothing:
		return openapi3.NewSchemaRef("", openapi3.NewSchema()), nil
	default:
		return nil, shapeErr(ptr, fmt.Sprintf("unknown schema shape %s", s.Shape))
	}
}

func primitiveSchema(p schema.Primitive) *openapi3.Schema {
	out := &openapi3.Schema{Type: p.Type, Format: p.Format}
	for _, v := range p.Enum {
		out.Enum = append(out.Enum, v)
	}
	return out
}
