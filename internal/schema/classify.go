package schema

// NameOf reports the model name of s. The sentinels never count as named,
// whatever their Name field says.
func NameOf(s *Schema) (string, bool) {
	if s == nil || s.Name == "" {
		return "", false
	}
	if IsSentinel(s) {
		return "", false
	}
	return s.Name, true
}

// ShapeOf returns the node kind of s. A nil schema is treated as Nothing.
func ShapeOf(s *Schema) Shape {
	if s == nil {
		return ShapeNothing
	}
	return s.Shape
}

// IsSentinel is true for Anything and Nothing.
func IsSentinel(s *Schema) bool {
	switch ShapeOf(s) {
	case ShapeAnything, ShapeNothing:
		return true
	default:
		return false
	}
}

// FieldMeta reports whether a literal key is required and the property name it
// contributes. Only keys explicitly marked Required are required. Wildcard keys
// contribute no property; callers check Wildcard first.
func FieldMeta(k Key) (required bool, name string) {
	if k.Wildcard {
		return false, ""
	}
	return k.Presence == Required, k.Name
}
