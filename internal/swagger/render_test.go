package swagger

import (
	"errors"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/routes2swagger/internal/schema"
)

func TestRenderDefinition_Model(t *testing.T) {
	t.Parallel()
	pet := petModel(legOfPet())

	ref, err := RenderDefinition(pet)
	require.NoError(t, err)
	assert.Empty(t, ref.Ref, "a definition never refers to itself")

	s := ref.Value
	assert.Equal(t, []string{"id", "name"}, s.Required)
	require.Len(t, s.Properties, 3)
	assert.Equal(t, "integer", s.Properties["id"].Value.Type)
	assert.Equal(t, "int64", s.Properties["id"].Value.Format)
	assert.Equal(t, "string", s.Properties["name"].Value.Type)

	legs := s.Properties["legs"].Value
	assert.Equal(t, openapi3.TypeArray, legs.Type)
	assert.Equal(t, "#/definitions/LegOfPet", legs.Items.Ref)
}

func TestRenderDefinition_OmitsEmptyRequired(t *testing.T) {
	t.Parallel()
	ref, err := RenderDefinition(schema.Model("Loose",
		schema.Field(schema.Opt("a"), schema.String()),
		schema.Field(schema.Plain("b"), schema.Long()),
	))
	require.NoError(t, err)
	assert.Nil(t, ref.Value.Required)
	assert.Len(t, ref.Value.Properties, 2)
}

func TestRenderSchema(t *testing.T) {
	t.Parallel()
	leg := legOfPet()

	tests := []struct {
		name  string
		in    *schema.Schema
		check func(t *testing.T, ref *openapi3.SchemaRef)
	}{
		{
			name: "named becomes ref",
			in:   leg,
			check: func(t *testing.T, ref *openapi3.SchemaRef) {
				assert.Equal(t, "#/definitions/LegOfPet", ref.Ref)
			},
		},
		{
			name: "set is unique array",
			in:   schema.SetOf(schema.UUID()),
			check: func(t *testing.T, ref *openapi3.SchemaRef) {
				assert.Equal(t, openapi3.TypeArray, ref.Value.Type)
				assert.True(t, ref.Value.UniqueItems)
				assert.Equal(t, "uuid", ref.Value.Items.Value.Format)
			},
		},
		{
			name: "enum",
			in:   schema.Enum("red", "green"),
			check: func(t *testing.T, ref *openapi3.SchemaRef) {
				assert.Equal(t, "string", ref.Value.Type)
				assert.Equal(t, []interface{}{"red", "green"}, ref.Value.Enum)
			},
		},
		{
			name: "wildcard keys are skipped",
			in: schema.Map(
				schema.Field(schema.Req("id"), schema.Long()),
				schema.Field(schema.AnyKey, schema.Anything()),
			),
			check: func(t *testing.T, ref *openapi3.SchemaRef) {
				assert.Len(t, ref.Value.Properties, 1)
				assert.Equal(t, []string{"id"}, ref.Value.Required)
			},
		},
		{
			name: "anything is an empty schema",
			in:   schema.Anything(),
			check: func(t *testing.T, ref *openapi3.SchemaRef) {
				assert.Empty(t, ref.Ref)
				assert.Empty(t, ref.Value.Type)
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ref, err := RenderSchema(tt.in)
			require.NoError(t, err)
			tt.check(t, ref)
		})
	}
}

func TestRenderSchema_ShapeErrors(t *testing.T) {
	t.Parallel()
	for name, in := range map[string]*schema.Schema{
		"nil":            nil,
		"sequence no el": {Shape: schema.ShapeSequence},
		"nil field":      schema.Map(schema.Field(schema.Req("x"), nil)),
		"unknown shape":  {Shape: schema.Shape(42)},
	} {
		_, err := RenderSchema(in)
		var se *Error
		require.True(t, errors.As(err, &se), name)
		assert.Equal(t, ShapeError, se.Code, name)
	}
}
