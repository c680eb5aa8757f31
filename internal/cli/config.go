package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/routes2swagger/internal/spec"
)

// SourceConfig selects the route file and which of its routes to keep. It is
// shared by every command that reads a route file.
type SourceConfig struct {
	Input        string
	IncludeTags  []string
	ExcludeTags  []string
	Methods      []string
	PathPatterns []string
}

func addSourceFlags(flags *pflag.FlagSet) {
	flags.String("input", "", "Path or URL to the route file (YAML or JSON)")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include these HTTP methods")
	flags.StringSlice("paths", nil, "Only include paths matching these regular expressions")
}

func (c *SourceConfig) applyFlagOverrides(flags *pflag.FlagSet) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		c.Input = strings.TrimSpace(value)
	}
	lists := []struct {
		name string
		dst  *[]string
	}{
		{"include-tags", &c.IncludeTags},
		{"exclude-tags", &c.ExcludeTags},
		{"methods", &c.Methods},
		{"paths", &c.PathPatterns},
	}
	for _, l := range lists {
		if !flags.Changed(l.name) {
			continue
		}
		value, err := flags.GetStringSlice(l.name)
		if err != nil {
			return err
		}
		*l.dst = sanitizeList(value)
	}
	return nil
}

// applyConfigValue handles the source keys of a config file. It reports false
// for keys it does not own.
func (c *SourceConfig) applyConfigValue(normalized, key string, value any) (bool, error) {
	var err error
	switch normalized {
	case "input":
		c.Input, err = valueAsString(value)
	case "includetags":
		c.IncludeTags, err = valueAsStringSlice(value)
	case "excludetags":
		c.ExcludeTags, err = valueAsStringSlice(value)
	case "methods":
		c.Methods, err = valueAsStringSlice(value)
	case "paths":
		c.PathPatterns, err = valueAsStringSlice(value)
	default:
		return false, nil
	}
	if err != nil {
		return true, newUsageError(fmt.Sprintf("config field %q: %v", key, err))
	}
	return true, nil
}

func (c *SourceConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
	c.Methods = sanitizeList(c.Methods)
	c.PathPatterns = sanitizeList(c.PathPatterns)
}

func (c *SourceConfig) validate(command string) error {
	if c.Input == "" {
		return newUsageError(command + ": --input is required (set via flag or config file)")
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("%s: include/exclude tags overlap: %s", command, strings.Join(overlap, ", ")))
	}
	for _, m := range c.Methods {
		if _, err := spec.ParseMethod(m); err != nil {
			return newUsageError(fmt.Sprintf("%s: %v", command, err))
		}
	}
	return nil
}

// load reads the route file and applies the route filters.
func (c *SourceConfig) load(ctx context.Context, log *zap.Logger) (*spec.Document, error) {
	doc, err := spec.Load(ctx, c.Input)
	if err != nil {
		return nil, specUsageError(err)
	}
	log.Debug("loaded route file",
		zap.String("input", c.Input),
		zap.Int("paths", doc.Paths.Len()),
		zap.Int("operations", doc.OperationCount()),
		zap.Int("models", len(doc.Models)))

	methods := make([]spec.HttpMethod, 0, len(c.Methods))
	for _, m := range c.Methods {
		parsed, err := spec.ParseMethod(m)
		if err != nil {
			return nil, newUsageError(err.Error())
		}
		methods = append(methods, parsed)
	}
	filtered, err := spec.Filter(doc,
		spec.WithIncludeTags(c.IncludeTags),
		spec.WithExcludeTags(c.ExcludeTags),
		spec.WithMethods(methods),
		spec.WithPathPatterns(c.PathPatterns),
	)
	if err != nil {
		return nil, specUsageError(err)
	}
	if n := filtered.OperationCount(); n != doc.OperationCount() {
		log.Debug("filtered routes", zap.Int("kept", n), zap.Int("dropped", doc.OperationCount()-n))
	}
	return filtered, nil
}

func specUsageError(err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("spec: %s", se.Message)
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return newUsageError(msg)
}

// newLogger builds the CLI logger: development output when verbose, otherwise
// production JSON at quiet level and above.
func newLogger(verbose bool, quiet zapcore.Level) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(quiet)
	return cfg.Build()
}

// readConfigFile parses a YAML or JSON config file and calls apply for every
// top-level key. Keys nobody owns are rejected.
func readConfigFile(path string, apply func(normalized, key string, value any) (bool, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		ok, err := apply(normalizeKey(key), key, value)
		if err != nil {
			return err
		}
		if !ok {
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}
	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

// sanitizeList trims, drops empties and de-duplicates while keeping order.
func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}
