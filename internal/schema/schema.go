// Package schema is the typed schema value that route tables are declared
// with. A Schema is a tagged node: a primitive, a keyed map, a sequence, a set,
// or one of the two sentinels Anything and Nothing. Any node may carry a model
// name, which makes it a candidate for a top-level definition.
package schema

import (
	"fmt"
	"strings"
)

// Shape is the closed set of node kinds.
type Shape int

const (
	ShapePrimitive Shape = iota
	ShapeMap
	ShapeSequence
	ShapeSet
	ShapeAnything
	ShapeNothing
)

func (s Shape) String() string {
	switch s {
	case ShapePrimitive:
		return "primitive"
	case ShapeMap:
		return "map"
	case ShapeSequence:
		return "sequence"
	case ShapeSet:
		return "set"
	case ShapeAnything:
		return "anything"
	case ShapeNothing:
		return "nothing"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Primitive is the Swagger rendering of a leaf value.
type Primitive struct {
	Type   string
	Format string
	Enum   []string
}

// Presence is how a literal key is marked.
type Presence int

const (
	// Unmarked keys are documented as properties but not listed as required.
	Unmarked Presence = iota
	Required
	Optional
)

// Key addresses one entry of a map schema.
type Key struct {
	Name     string
	Presence Presence
	Wildcard bool
}

// Req is an explicitly required literal key.
func Req(name string) Key { return Key{Name: name, Presence: Required} }

// Opt is an optional literal key.
func Opt(name string) Key { return Key{Name: name, Presence: Optional} }

// Plain is a literal key with no presence marker.
func Plain(name string) Key { return Key{Name: name} }

// AnyKey matches any key; it never produces a property.
var AnyKey = Key{Wildcard: true}

func (k Key) String() string {
	switch {
	case k.Wildcard:
		return "*"
	case k.Presence == Required:
		return k.Name + "!"
	case k.Presence == Optional:
		return k.Name + "?"
	default:
		return k.Name
	}
}

// Entry is one key/value pair of a map schema, kept in declaration order.
type Entry struct {
	Key   Key
	Value *Schema
}

// Schema is a node of a schema tree. Map nodes may reference themselves
// (directly or through other named nodes) so walkers must track visited
// pointers.
type Schema struct {
	Name      string
	Shape     Shape
	Primitive Primitive
	Entries   []Entry
	Elem      *Schema
}

func (s *Schema) String() string {
	if s == nil {
		return "<nil>"
	}
	if s.Name != "" {
		return s.Name
	}
	switch s.Shape {
	case ShapePrimitive:
		if s.Primitive.Format != "" {
			return s.Primitive.Type + "/" + s.Primitive.Format
		}
		return s.Primitive.Type
	case ShapeSequence:
		return "[" + s.Elem.String() + "]"
	case ShapeSet:
		return "#{" + s.Elem.String() + "}"
	case ShapeMap:
		keys := make([]string, 0, len(s.Entries))
		for _, e := range s.Entries {
			keys = append(keys, e.Key.String())
		}
		return "{" + strings.Join(keys, " ") + "}"
	default:
		return s.Shape.String()
	}
}

func primitive(typ, format string) *Schema {
	return &Schema{Shape: ShapePrimitive, Primitive: Primitive{Type: typ, Format: format}}
}

func String() *Schema   { return primitive("string", "") }
func Int() *Schema      { return primitive("integer", "int32") }
func Long() *Schema     { return primitive("integer", "int64") }
func Float() *Schema    { return primitive("number", "float") }
func Double() *Schema   { return primitive("number", "double") }
func Number() *Schema   { return primitive("number", "") }
func Boolean() *Schema  { return primitive("boolean", "") }
func Date() *Schema     { return primitive("string", "date") }
func DateTime() *Schema { return primitive("string", "date-time") }
func UUID() *Schema     { return primitive("string", "uuid") }
func Bytes() *Schema    { return primitive("string", "byte") }

// Enum is a string primitive restricted to values.
func Enum(values ...string) *Schema {
	s := String()
	s.Primitive.Enum = append([]string(nil), values...)
	return s
}

// Anything accepts any value. It is never promoted to a definition.
func Anything() *Schema { return &Schema{Shape: ShapeAnything} }

// Nothing accepts no value; as a body it means "no body".
func Nothing() *Schema { return &Schema{Shape: ShapeNothing} }

// Field builds a map entry.
func Field(k Key, v *Schema) Entry { return Entry{Key: k, Value: v} }

// Map builds an anonymous map schema.
func Map(entries ...Entry) *Schema {
	return &Schema{Shape: ShapeMap, Entries: entries}
}

// Model builds a named map schema.
func Model(name string, entries ...Entry) *Schema {
	return &Schema{Name: name, Shape: ShapeMap, Entries: entries}
}

func Seq(elem *Schema) *Schema { return &Schema{Shape: ShapeSequence, Elem: elem} }

func SetOf(elem *Schema) *Schema { return &Schema{Shape: ShapeSet, Elem: elem} }

// WithName returns a shallow copy of s carrying name.
func WithName(name string, s *Schema) *Schema {
	c := *s
	c.Name = name
	return &c
}

var builtins = map[string]func() *Schema{
	"string":    String,
	"int":       Int,
	"int32":     Int,
	"long":      Long,
	"int64":     Long,
	"integer":   Long,
	"float":     Float,
	"double":    Double,
	"number":    Number,
	"boolean":   Boolean,
	"bool":      Boolean,
	"date":      Date,
	"date-time": DateTime,
	"datetime":  DateTime,
	"uuid":      UUID,
	"byte":      Bytes,
	"any":       Anything,
	"anything":  Anything,
	"nothing":   Nothing,
}

// Builtin resolves a scalar type name (case-insensitive) to a fresh schema.
func Builtin(name string) (*Schema, bool) {
	fn, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return fn(), true
}
