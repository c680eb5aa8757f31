package swagger

import (
	"fmt"
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/mark3labs/routes2swagger/internal/schema"
)

// Models maps a model name to the schema that defines it.
type Models map[string]*schema.Schema

// Names returns the model names in lexical order.
func (m Models) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var structuralEq = cmpopts.EquateEmpty()

// CollectModels folds over every root and returns each distinct named schema
// reachable from them. Named nodes are recorded and still descended into, so
// nested models surface as their own entries. A node already visited (by
// pointer) is not entered again, which terminates recursive models.
//
// Two schemas registered under one name must be structurally equal; otherwise a
// ConflictError is returned.
func CollectModels(roots ...*schema.Schema) (Models, error) {
	models := Models{}
	visited := map[*schema.Schema]struct{}{}

	var walk func(s *schema.Schema) error
	walk = func(s *schema.Schema) error {
		if s == nil {
			return nil
		}
		if _, ok := visited[s]; ok {
			return nil
		}
		visited[s] = struct{}{}

		if name, ok := schema.NameOf(s); ok {
			if prev, dup := models[name]; dup {
				if !cmp.Equal(prev, s, structuralEq) {
					return &Error{
						Code:    ConflictError,
						Message: fmt.Sprintf("model %q is defined twice with different structure: %s vs %s", name, describe(prev), describe(s)),
						Pointer: "#/definitions/" + name,
					}
				}
				// Equal structure means an equal subtree, already covered.
				return nil
			}
			models[name] = s
		}

		switch s.Shape {
		case schema.ShapeMap:
			for _, e := range s.Entries {
				if err := walk(e.Value); err != nil {
					return err
				}
			}
		case schema.ShapeSequence, schema.ShapeSet:
			return walk(s.Elem)
		case schema.ShapePrimitive, schema.ShapeAnything, schema.ShapeNothing:
		}
		return nil
	}

	for _, root := range roots {
		if err := walk(root); err != nil {
			return nil, err
		}
	}
	return models, nil
}

// describe lists the top-level keys of a model for conflict messages.
func describe(s *schema.Schema) string {
	if s.Shape != schema.ShapeMap {
		return s.Shape.String()
	}
	anon := *s
	anon.Name = ""
	return anon.String()
}
