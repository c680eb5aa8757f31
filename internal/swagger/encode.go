package swagger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/routes2swagger/internal/spec"
)

// Format is an output encoding for a document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (allowed: json, yaml)", raw)
	}
}

// Ext is the file extension for f, without the dot.
func (f Format) Ext() string { return string(f) }

// ContentType is the HTTP media type for f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// topLevelOrder is the field order of an encoded document. Unknown fields
// (extensions) follow in lexical order.
var topLevelOrder = []string{
	"swagger", "info", "host", "basePath", "schemes", "consumes", "produces",
	"tags", "externalDocs", "paths", "definitions", "parameters", "responses",
	"securityDefinitions", "security",
}

// PathOrder lists the templated paths of doc in route table order, without
// duplicates.
func PathOrder(doc *spec.Document) []string {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	seen := make(map[string]bool, doc.Paths.Len())
	out := make([]string, 0, doc.Paths.Len())
	for pair := doc.Paths.Oldest(); pair != nil; pair = pair.Next() {
		p := TemplatePath(pair.Key)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// Encode renders doc. Paths are written in pathOrder; paths missing from it
// follow sorted. JSON output is indented and newline terminated.
func Encode(doc *openapi2.T, f Format, pathOrder []string) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode swagger json: %w", err)
	}
	ordered, err := reorder(raw, pathOrder)
	if err != nil {
		return nil, fmt.Errorf("encode swagger json: %w", err)
	}
	switch f {
	case FormatJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, ordered, "", "  "); err != nil {
			return nil, fmt.Errorf("indent swagger json: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case FormatYAML:
		out, err := jsonToYAML(ordered)
		if err != nil {
			return nil, fmt.Errorf("encode swagger yaml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

func reorder(raw []byte, pathOrder []string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if paths, ok := fields["paths"]; ok {
		var byPath map[string]json.RawMessage
		if err := json.Unmarshal(paths, &byPath); err != nil {
			return nil, err
		}
		reordered, err := json.Marshal(orderFields(byPath, pathOrder))
		if err != nil {
			return nil, err
		}
		fields["paths"] = reordered
	}
	return json.Marshal(orderFields(fields, topLevelOrder))
}

func orderFields(fields map[string]json.RawMessage, first []string) *orderedmap.OrderedMap[string, json.RawMessage] {
	out := orderedmap.New[string, json.RawMessage](len(fields))
	for _, k := range first {
		if v, ok := fields[k]; ok {
			out.Set(k, v)
		}
	}
	rest := make([]string, 0, len(fields))
	for k := range fields {
		if _, done := out.Get(k); !done {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out.Set(k, fields[k])
	}
	return out
}

// jsonToYAML re-encodes JSON as block-style YAML, keeping key order.
func jsonToYAML(js []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(js, &root); err != nil {
		return nil, err
	}
	blockStyle(&root)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blockStyle(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str" {
		// Pin the tag so strings like "200" or "true" stay quoted.
		n.Tag = "!!str"
	}
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
