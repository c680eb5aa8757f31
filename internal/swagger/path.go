package swagger

import "regexp"

var pathParamRe = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_-]*)`)

// TemplatePath rewrites ":name" path parameters to Swagger's "{name}" form.
// A colon not followed by an identifier is left alone.
func TemplatePath(path string) string {
	return pathParamRe.ReplaceAllString(path, "{${1}}")
}
