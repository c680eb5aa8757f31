package spec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/routes2swagger/internal/schema"
)

// Route files are YAML (or JSON). Type expressions:
//
//	string, long, date-time, ...   builtin scalar
//	Pet                            reference to an entry under models
//	[Pet]                          sequence
//	!set [Pet]   / {$set: Pet}     set
//	!enum [a, b] / {$enum: [a, b]} string enum
//	{id!: long, "name?": string, "*": any}
//	                               anonymous map; "!" marks required, "?" optional,
//	                               "*" is a wildcard key
//
// Inside a flow mapping ({...}) YAML cannot read a plain key ending in "?", so
// optional keys there must be quoted. Block mappings take name?: unquoted.

type rawInfo struct {
	Title          string `yaml:"title"`
	Version        string `yaml:"version"`
	Description    string `yaml:"description"`
	TermsOfService string `yaml:"termsOfService"`
}

type rawTag struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type rawExternalDocs struct {
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
}

type rawDocument struct {
	Info     rawInfo   `yaml:"info"`
	Host     string    `yaml:"host"`
	BasePath string    `yaml:"basePath"`
	Schemes  []string  `yaml:"schemes"`
	Consumes []string  `yaml:"consumes"`
	Produces []string  `yaml:"produces"`
	Tags     []rawTag  `yaml:"tags"`
	Models   yaml.Node `yaml:"models"`
	Paths    yaml.Node `yaml:"paths"`
}

type rawResponse struct {
	Description string    `yaml:"description"`
	Schema      yaml.Node `yaml:"schema"`
}

type rawOperation struct {
	Method       string                 `yaml:"method"`
	Summary      string                 `yaml:"summary"`
	Description  string                 `yaml:"description"`
	Tags         []string               `yaml:"tags"`
	OperationID  string                 `yaml:"operationId"`
	Consumes     []string               `yaml:"consumes"`
	Produces     []string               `yaml:"produces"`
	Deprecated   bool                   `yaml:"deprecated"`
	ExternalDocs *rawExternalDocs       `yaml:"externalDocs"`
	Parameters   map[string]yaml.Node   `yaml:"parameters"`
	Responses    map[string]rawResponse `yaml:"responses"`
}

// Decode parses a route file into a Document.
func Decode(data []byte) (*Document, error) {
	var raw rawDocument
	if err := decodeStrict(bytes.NewReader(data), &raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SpecError{Code: ParseError, Message: "spec: route file is empty"}
		}
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse route file: %v", err), Cause: err}
	}

	d := &decoder{models: map[string]*schema.Schema{}}
	if err := d.declareModels(&raw.Models); err != nil {
		return nil, err
	}

	doc := &Document{
		Info: Info{
			Title:          strings.TrimSpace(raw.Info.Title),
			Version:        strings.TrimSpace(raw.Info.Version),
			Description:    raw.Info.Description,
			TermsOfService: raw.Info.TermsOfService,
		},
		Host:     strings.TrimSpace(raw.Host),
		BasePath: strings.TrimSpace(raw.BasePath),
		Schemes:  raw.Schemes,
		Consumes: raw.Consumes,
		Produces: raw.Produces,
		Models:   d.models,
		Paths:    NewRouteTable(),
	}
	for _, t := range raw.Tags {
		doc.Tags = append(doc.Tags, Tag{Name: t.Name, Description: t.Description})
	}
	if doc.BasePath == "" {
		doc.BasePath = "/"
	}

	if err := d.decodePaths(&raw.Paths, doc.Paths); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeStrict(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	return dec.Decode(out)
}

// decodeNodeStrict re-encodes n so nested structures get unknown-field checks too.
func decodeNodeStrict(n *yaml.Node, out any) error {
	buf, err := yaml.Marshal(n)
	if err != nil {
		return err
	}
	return decodeStrict(bytes.NewReader(buf), out)
}

type decoder struct {
	models map[string]*schema.Schema
}

func parseErr(pointer, format string, args ...any) error {
	return &SpecError{Code: ParseError, Message: fmt.Sprintf(format, args...), JSONPointer: pointer}
}

// declareModels registers a placeholder per model before parsing any bodies so
// models can refer to each other (and themselves) in any order.
func (d *decoder) declareModels(n *yaml.Node) error {
	if n.Kind == 0 {
		return nil
	}
	n = resolveAlias(n)
	if n.Kind != yaml.MappingNode {
		return parseErr("#/models", "models: expected a mapping of model name to type")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := strings.TrimSpace(n.Content[i].Value)
		if name == "" {
			return parseErr("#/models", "models: empty model name")
		}
		if _, ok := schema.Builtin(name); ok {
			return parseErr("#/models/"+escapePointer(name), "models: %q shadows a builtin type", name)
		}
		if _, dup := d.models[name]; dup {
			return parseErr("#/models/"+escapePointer(name), "models: duplicate model %q", name)
		}
		d.models[name] = &schema.Schema{Name: name}
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := strings.TrimSpace(n.Content[i].Value)
		ptr := "#/models/" + escapePointer(name)
		body := resolveAlias(n.Content[i+1])
		if body.Kind == yaml.ScalarNode {
			if _, ok := d.models[strings.TrimSpace(body.Value)]; ok {
				return parseErr(ptr, "model %q: aliasing another model is not supported", name)
			}
		}
		parsed, err := d.parseType(body, ptr)
		if err != nil {
			return err
		}
		placeholder := d.models[name]
		*placeholder = *parsed
		placeholder.Name = name
	}
	return nil
}

func (d *decoder) decodePaths(n *yaml.Node, table *RouteTable) error {
	if n.Kind == 0 {
		return nil
	}
	n = resolveAlias(n)
	if n.Kind != yaml.MappingNode {
		return parseErr("#/paths", "paths: expected a mapping of path to operations")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		path := strings.TrimSpace(n.Content[i].Value)
		ptr := "#/paths/" + escapePointer(path)
		if !strings.HasPrefix(path, "/") {
			return parseErr(ptr, "path %q must start with /", path)
		}
		if _, dup := table.Get(path); dup {
			return parseErr(ptr, "duplicate path %q", path)
		}
		var raws []rawOperation
		if err := decodeNodeStrict(n.Content[i+1], &raws); err != nil {
			return &SpecError{Code: ParseError, Message: fmt.Sprintf("path %s: %v", path, err), JSONPointer: ptr, Cause: err}
		}
		ops := make([]Operation, 0, len(raws))
		seen := map[HttpMethod]struct{}{}
		for idx, ro := range raws {
			op, err := d.decodeOperation(ro, fmt.Sprintf("%s/%d", ptr, idx))
			if err != nil {
				return err
			}
			if _, dup := seen[op.Method]; dup {
				return parseErr(fmt.Sprintf("%s/%d", ptr, idx), "path %s: duplicate method %s", path, op.Method)
			}
			seen[op.Method] = struct{}{}
			ops = append(ops, op)
		}
		table.Set(path, ops)
	}
	return nil
}

func (d *decoder) decodeOperation(ro rawOperation, ptr string) (Operation, error) {
	method, err := ParseMethod(ro.Method)
	if err != nil {
		return Operation{}, parseErr(ptr+"/method", "%v", err)
	}
	op := Operation{
		Method:      method,
		Summary:     ro.Summary,
		Description: ro.Description,
		Tags:        ro.Tags,
		OperationID: ro.OperationID,
		Consumes:    ro.Consumes,
		Produces:    ro.Produces,
		Deprecated:  ro.Deprecated,
	}
	if ro.ExternalDocs != nil {
		op.ExternalDocs = &ExternalDocs{Description: ro.ExternalDocs.Description, URL: ro.ExternalDocs.URL}
	}
	for key, node := range ro.Parameters {
		loc, err := ParseLocation(key)
		if err != nil {
			return Operation{}, parseErr(ptr+"/parameters", "%v", err)
		}
		if op.Parameters.At(loc) != nil {
			return Operation{}, parseErr(ptr+"/parameters/"+key, "duplicate %s parameters", loc)
		}
		node := node
		s, err := d.parseType(&node, ptr+"/parameters/"+escapePointer(key))
		if err != nil {
			return Operation{}, err
		}
		op.Parameters.Set(loc, s)
	}
	if len(ro.Responses) > 0 {
		op.Responses = make(Responses, len(ro.Responses))
	}
	for key, rr := range ro.Responses {
		rptr := ptr + "/responses/" + escapePointer(key)
		status, err := ParseStatusKey(key)
		if err != nil {
			return Operation{}, parseErr(rptr, "%v", err)
		}
		if _, dup := op.Responses[status]; dup {
			return Operation{}, parseErr(rptr, "duplicate response %s", status)
		}
		spec := ResponseSpec{Description: rr.Description}
		if rr.Schema.Kind != 0 {
			node := rr.Schema
			s, err := d.parseType(&node, rptr+"/schema")
			if err != nil {
				return Operation{}, err
			}
			spec.Schema = s
		}
		op.Responses[status] = spec
	}
	return op, nil
}

func (d *decoder) parseType(n *yaml.Node, ptr string) (*schema.Schema, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return nil, parseErr(ptr, "missing type")
		}
		name := strings.TrimSpace(n.Value)
		if s, ok := schema.Builtin(name); ok {
			return s, nil
		}
		if m, ok := d.models[name]; ok {
			return m, nil
		}
		return nil, parseErr(ptr, "unknown type %q", name)
	case yaml.SequenceNode:
		switch n.Tag {
		case "!enum":
			return parseEnum(n, ptr)
		case "!set":
			elem, err := d.singleElem(n, ptr)
			if err != nil {
				return nil, err
			}
			return schema.SetOf(elem), nil
		default:
			elem, err := d.singleElem(n, ptr)
			if err != nil {
				return nil, err
			}
			return schema.Seq(elem), nil
		}
	case yaml.MappingNode:
		if len(n.Content) == 2 {
			switch n.Content[0].Value {
			case "$set":
				elem, err := d.parseType(n.Content[1], ptr+"/$set")
				if err != nil {
					return nil, err
				}
				return schema.SetOf(elem), nil
			case "$enum":
				return parseEnum(resolveAlias(n.Content[1]), ptr+"/$enum")
			}
		}
		entries := make([]schema.Entry, 0, len(n.Content)/2)
		seen := map[string]struct{}{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, err := parseKey(n.Content[i].Value)
			if err != nil {
				return nil, parseErr(ptr, "%v", err)
			}
			id := key.Name
			if key.Wildcard {
				id = "*"
			}
			if _, dup := seen[id]; dup {
				return nil, parseErr(ptr, "duplicate key %q", id)
			}
			seen[id] = struct{}{}
			value, err := d.parseType(n.Content[i+1], ptr+"/"+escapePointer(n.Content[i].Value))
			if err != nil {
				return nil, err
			}
			entries = append(entries, schema.Field(key, value))
		}
		return schema.Map(entries...), nil
	default:
		return nil, parseErr(ptr, "unsupported type expression")
	}
}

func (d *decoder) singleElem(n *yaml.Node, ptr string) (*schema.Schema, error) {
	if len(n.Content) != 1 {
		return nil, parseErr(ptr, "collection types take exactly one element type, got %d", len(n.Content))
	}
	return d.parseType(n.Content[0], ptr+"/0")
}

func parseEnum(n *yaml.Node, ptr string) (*schema.Schema, error) {
	if n.Kind != yaml.SequenceNode || len(n.Content) == 0 {
		return nil, parseErr(ptr, "enum needs a non-empty list of values")
	}
	values := make([]string, 0, len(n.Content))
	for _, c := range n.Content {
		c = resolveAlias(c)
		if c.Kind != yaml.ScalarNode {
			return nil, parseErr(ptr, "enum values must be scalars")
		}
		values = append(values, c.Value)
	}
	return schema.Enum(values...), nil
}

func parseKey(raw string) (schema.Key, error) {
	k := strings.TrimSpace(raw)
	switch {
	case k == "*":
		return schema.AnyKey, nil
	case k == "":
		return schema.Key{}, errors.New("empty key")
	case strings.HasSuffix(k, "?"), strings.HasSuffix(k, "!"):
		name := strings.TrimSpace(k[:len(k)-1])
		if name == "" {
			return schema.Key{}, fmt.Errorf("empty key %q", raw)
		}
		if k[len(k)-1] == '!' {
			return schema.Req(name), nil
		}
		return schema.Opt(name), nil
	default:
		return schema.Plain(k), nil
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func escapePointer(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}
