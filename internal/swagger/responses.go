package swagger

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi2"

	"github.com/mark3labs/routes2swagger/internal/schema"
	"github.com/mark3labs/routes2swagger/internal/spec"
)

// ConvertResponses renders each documented response. Named schemas become a
// $ref, anonymous ones are inlined, and a missing (or Nothing) schema leaves
// the response without a schema.
func ConvertResponses(responses spec.Responses) (map[string]*openapi2.Response, error) {
	out := make(map[string]*openapi2.Response, len(responses))

	for _, key := range sortedStatusKeys(responses) {
		r := responses[key]
		resp := &openapi2.Response{Description: r.Description}
		if schema.ShapeOf(r.Schema) != schema.ShapeNothing {
			rendered, err := renderAt(r.Schema, "/responses/"+key.String()+"/schema")
			if err != nil {
				return nil, err
			}
			resp.Schema = rendered
		}
		out[key.String()] = resp
	}
	return out, nil
}

func sortedStatusKeys(responses spec.Responses) []spec.StatusKey {
	keys := make([]spec.StatusKey, 0, len(responses))
	for k := range responses {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}
