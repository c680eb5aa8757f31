package swagger

import (
	"github.com/mark3labs/routes2swagger/internal/schema"
	"github.com/mark3labs/routes2swagger/internal/spec"
)

func legOfPet() *schema.Schema {
	return schema.Model("LegOfPet", schema.Field(schema.Req("length"), schema.Double()))
}

func petModel(leg *schema.Schema) *schema.Schema {
	return schema.Model("Pet",
		schema.Field(schema.Req("id"), schema.Long()),
		schema.Field(schema.Req("name"), schema.String()),
		schema.Field(schema.Opt("legs"), schema.Seq(leg)),
	)
}

// petDocument is the pet store route table used across the package tests.
func petDocument() *spec.Document {
	pet := petModel(legOfPet())

	paths := spec.NewRouteTable()
	paths.Set("/api/pets", []spec.Operation{
		{
			Method:  spec.GET,
			Summary: "List pets",
			Tags:    []string{"read"},
			Responses: spec.Responses{
				spec.Status(200): {Description: "ok", Schema: schema.Seq(pet)},
			},
		},
		{
			Method:     spec.POST,
			Tags:       []string{"write"},
			Parameters: spec.Parameters{Body: pet},
			Responses: spec.Responses{
				spec.Status(200): {Description: "created", Schema: pet},
			},
		},
	})
	paths.Set("/api/pets/:id", []spec.Operation{
		{
			Method: spec.GET,
			Tags:   []string{"read"},
			Parameters: spec.Parameters{
				Path:  schema.Map(schema.Field(schema.Plain("id"), schema.Long())),
				Query: schema.Map(schema.Field(schema.Opt("verbose"), schema.Boolean())),
			},
			Responses: spec.Responses{
				spec.Status(200):   {Description: "ok", Schema: pet},
				spec.DefaultStatus: {Description: "error", Schema: schema.Map(schema.Field(schema.Plain("code"), schema.Long()))},
			},
		},
	})

	return &spec.Document{
		Info:     spec.Info{Title: "Pet API", Version: "1.0.0"},
		BasePath: "/",
		Consumes: []string{"application/json"},
		Produces: []string{"application/json"},
		Tags:     []spec.Tag{{Name: "read"}, {Name: "write"}},
		Paths:    paths,
	}
}
