package spec

import (
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mark3labs/routes2swagger/internal/schema"
)

// Route table definitions consumed by the swagger assembler.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
)

// ParseMethod accepts any casing of the supported methods.
func ParseMethod(raw string) (HttpMethod, error) {
	m := HttpMethod(strings.ToLower(strings.TrimSpace(raw)))
	switch m {
	case GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported method %q", raw)
	}
}

// Location is where a parameter lives in a request.
type Location int

const (
	Body Location = iota
	Query
	Path
	Header
	Form
)

// Locations lists every location in emission order.
var Locations = []Location{Body, Query, Path, Header, Form}

// In is the Swagger 2.0 "in" value.
func (l Location) In() string {
	switch l {
	case Body:
		return "body"
	case Query:
		return "query"
	case Path:
		return "path"
	case Header:
		return "header"
	case Form:
		return "formData"
	default:
		return ""
	}
}

func (l Location) String() string {
	switch l {
	case Body:
		return "body"
	case Query:
		return "query"
	case Path:
		return "path"
	case Header:
		return "header"
	case Form:
		return "form"
	default:
		return fmt.Sprintf("location(%d)", int(l))
	}
}

// ParseLocation maps a route file key to a Location.
func ParseLocation(raw string) (Location, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "body":
		return Body, nil
	case "query":
		return Query, nil
	case "path":
		return Path, nil
	case "header":
		return Header, nil
	case "form", "formdata":
		return Form, nil
	default:
		return 0, fmt.Errorf("unknown parameter location %q", raw)
	}
}

// Parameters holds at most one schema per location; nil means absent.
type Parameters struct {
	Body   *schema.Schema
	Query  *schema.Schema
	Path   *schema.Schema
	Header *schema.Schema
	Form   *schema.Schema
}

// At returns the schema declared for loc.
func (p Parameters) At(loc Location) *schema.Schema {
	switch loc {
	case Body:
		return p.Body
	case Query:
		return p.Query
	case Path:
		return p.Path
	case Header:
		return p.Header
	case Form:
		return p.Form
	default:
		return nil
	}
}

// Set stores s at loc.
func (p *Parameters) Set(loc Location, s *schema.Schema) {
	switch loc {
	case Body:
		p.Body = s
	case Query:
		p.Query = s
	case Path:
		p.Path = s
	case Header:
		p.Header = s
	case Form:
		p.Form = s
	}
}

// StatusKey is a numeric HTTP status or the catch-all "default".
type StatusKey struct {
	code int
}

// DefaultStatus is the "default" response key.
var DefaultStatus = StatusKey{}

// Status returns the key for an HTTP status code.
func Status(code int) StatusKey { return StatusKey{code: code} }

func (k StatusKey) IsDefault() bool { return k.code == 0 }

func (k StatusKey) Code() int { return k.code }

func (k StatusKey) String() string {
	if k.IsDefault() {
		return "default"
	}
	return strconv.Itoa(k.code)
}

// ParseStatusKey accepts "default" or a status code in 100..599.
func ParseStatusKey(raw string) (StatusKey, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "default") {
		return DefaultStatus, nil
	}
	code, err := strconv.Atoi(raw)
	if err != nil || code < 100 || code > 599 {
		return StatusKey{}, fmt.Errorf("invalid response status %q", raw)
	}
	return Status(code), nil
}

// ResponseSpec documents one response. A nil Schema means no body.
type ResponseSpec struct {
	Description string
	Schema      *schema.Schema
}

type Responses map[StatusKey]ResponseSpec

type ExternalDocs struct {
	Description string
	URL         string
}

type Operation struct {
	Method       HttpMethod
	Summary      string
	Description  string
	Tags         []string
	OperationID  string
	Consumes     []string
	Produces     []string
	Deprecated   bool
	ExternalDocs *ExternalDocs
	Parameters   Parameters
	Responses    Responses
}

// RouteTable maps internal path templates (":id" style) to their operations,
// preserving declaration order.
type RouteTable = orderedmap.OrderedMap[string, []Operation]

// NewRouteTable returns an empty table.
func NewRouteTable() *RouteTable {
	return orderedmap.New[string, []Operation]()
}

type Info struct {
	Title          string
	Version        string
	Description    string
	TermsOfService string
}

type Tag struct {
	Name        string
	Description string
}

// Document is the full input: route table plus passthrough top-level fields.
type Document struct {
	Info     Info
	Host     string
	BasePath string
	Schemes  []string
	Consumes []string
	Produces []string
	Tags     []Tag
	Models   map[string]*schema.Schema
	Paths    *RouteTable
}

// OperationCount is the total number of operations across all paths.
func (d *Document) OperationCount() int {
	if d == nil || d.Paths == nil {
		return 0
	}
	n := 0
	for pair := d.Paths.Oldest(); pair != nil; pair = pair.Next() {
		n += len(pair.Value)
	}
	return n
}
