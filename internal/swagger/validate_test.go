package swagger

import (
	"context"
	"errors"
	"testing"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AssembledDocument(t *testing.T) {
	t.Parallel()
	out, err := Assemble(context.Background(), petDocument())
	require.NoError(t, err)
	require.NoError(t, Validate(context.Background(), out))

	// Validation works on a copy.
	assert.Equal(t, "#/definitions/Pet", out.Paths["/api/pets"].Post.Parameters[0].Schema.Ref)
}

func TestValidate_DanglingRef(t *testing.T) {
	t.Parallel()
	doc := &openapi2.T{
		Swagger: Version,
		Info:    openapi3.Info{Title: "Broken", Version: "1"},
	}
	doc.AddOperation("/x", "GET", &openapi2.Operation{
		Responses: map[string]*openapi2.Response{
			"200": {Description: "ok", Schema: refSchema("Missing")},
		},
	})

	err := Validate(context.Background(), doc)
	var se *Error
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, ValidationError, se.Code)
}

func TestValidate_WrongVersion(t *testing.T) {
	t.Parallel()
	err := Validate(context.Background(), &openapi2.T{Swagger: "3.0", Info: openapi3.Info{Title: "t", Version: "1"}})
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "#/swagger", se.Pointer)

	assert.Error(t, Validate(context.Background(), nil))
}

func TestParseDocument(t *testing.T) {
	t.Parallel()
	doc, err := ParseDocument([]byte(`swagger: "2.0"
info: {title: Parsed, version: "1"}
paths:
  /x:
    get:
      responses:
        "200": {description: ok}
`))
	require.NoError(t, err)
	assert.Equal(t, "Parsed", doc.Info.Title)
	require.NoError(t, Validate(context.Background(), doc))

	_, err = ParseDocument([]byte("swagger: [unclosed"))
	assert.Error(t, err)
}
