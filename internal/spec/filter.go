package spec

import (
	"fmt"
	"regexp"
	"strings"
)

// FilterOption configures which operations Filter keeps.
type FilterOption func(*filterConfig)

type filterConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HttpMethod]struct{}
	pathRes     []*regexp.Regexp
	err         error
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) FilterOption {
	return func(c *filterConfig) {
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if c.includeTags == nil {
				c.includeTags = make(map[string]struct{}, len(tags))
			}
			c.includeTags[t] = struct{}{}
		}
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) FilterOption {
	return func(c *filterConfig) {
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if c.excludeTags == nil {
				c.excludeTags = make(map[string]struct{}, len(tags))
			}
			c.excludeTags[t] = struct{}{}
		}
	}
}

// WithMethods keeps only operations using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) FilterOption {
	return func(c *filterConfig) {
		if len(methods) == 0 {
			return
		}
		if c.methods == nil {
			c.methods = make(map[HttpMethod]struct{}, len(methods))
		}
		for _, m := range methods {
			c.methods[m] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only operations whose internal path matches at least
// one of the regular expressions. An invalid pattern makes Filter fail.
func WithPathPatterns(patterns []string) FilterOption {
	return func(c *filterConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				if c.err == nil {
					c.err = &SpecError{Code: InputError, Message: fmt.Sprintf("invalid path pattern %q: %v", p, err), Cause: err}
				}
				continue
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// Filter returns a copy of doc keeping only the matching operations. Paths left
// without operations are dropped. Models are carried over unchanged; the
// assembler only emits the ones still reachable.
func Filter(doc *Document, opts ...FilterOption) (*Document, error) {
	if doc == nil {
		return nil, &SpecError{Code: InputError, Message: "spec: nil document"}
	}
	cfg := &filterConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}

	out := *doc
	out.Paths = NewRouteTable()
	if doc.Paths == nil {
		return &out, nil
	}
	for pair := doc.Paths.Oldest(); pair != nil; pair = pair.Next() {
		if !cfg.allowPath(pair.Key) {
			continue
		}
		kept := make([]Operation, 0, len(pair.Value))
		for _, op := range pair.Value {
			if !cfg.allowMethod(op.Method) || !cfg.allowTags(op.Tags) {
				continue
			}
			kept = append(kept, op)
		}
		if len(kept) > 0 {
			out.Paths.Set(pair.Key, kept)
		}
	}
	return &out, nil
}

func (c *filterConfig) allowPath(p string) bool {
	if len(c.pathRes) == 0 {
		return true
	}
	for _, re := range c.pathRes {
		if re.MatchString(p) {
			return true
		}
	}
	return false
}

func (c *filterConfig) allowMethod(m HttpMethod) bool {
	if len(c.methods) == 0 {
		return true
	}
	_, ok := c.methods[m]
	return ok
}

func (c *filterConfig) allowTags(tags []string) bool {
	if len(c.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := c.includeTags[strings.TrimSpace(t)]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := c.excludeTags[strings.TrimSpace(t)]; blocked {
			return false
		}
	}
	return true
}
