package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mark3labs/routes2swagger/internal/emitter"
	"github.com/mark3labs/routes2swagger/internal/swagger"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	SourceConfig
	Out        string
	Formats    []string
	BaseName   string
	Validate   bool
	ConfigPath string
	DryRun     bool
	Force      bool
	Verbose    bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Out: ".", Formats: []string{"json"}, Validate: true}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Swagger 2.0 document from a route file",
		Long: "Generate a Swagger 2.0 document from a route file. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  routes2swagger generate --input routes.yaml --out ./docs --format json,yaml
  routes2swagger --config routes2swagger.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	addSourceFlags(flags)
	flags.String("out", "", "Output directory (defaults to the current directory)")
	flags.StringSlice("format", nil, "Output formats (json|yaml); defaults to json")
	flags.String("name", "", "Output file name without extension (derived from info.title when omitted)")
	flags.Bool("validate", true, "Validate the generated document before writing it")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output files")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := readConfigFile(configPath, cfg.applyConfigValue); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if err := cfg.SourceConfig.applyFlagOverrides(flags); err != nil {
		return err
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("format") {
		value, err := flags.GetStringSlice("format")
		if err != nil {
			return err
		}
		cfg.Formats = sanitizeList(value)
	}
	if flags.Changed("name") {
		value, err := flags.GetString("name")
		if err != nil {
			return err
		}
		cfg.BaseName = strings.TrimSpace(value)
	}
	bools := []struct {
		name string
		dst  *bool
	}{
		{"validate", &cfg.Validate},
		{"dry-run", &cfg.DryRun},
		{"force", &cfg.Force},
		{"verbose", &cfg.Verbose},
	}
	for _, b := range bools {
		if !flags.Changed(b.name) {
			continue
		}
		value, err := flags.GetBool(b.name)
		if err != nil {
			return err
		}
		*b.dst = value
	}
	return nil
}

func (c *GenerateConfig) applyConfigValue(normalized, key string, value any) (bool, error) {
	if ok, err := c.SourceConfig.applyConfigValue(normalized, key, value); ok || err != nil {
		return ok, err
	}
	var err error
	switch normalized {
	case "out":
		c.Out, err = valueAsString(value)
	case "format", "formats":
		c.Formats, err = valueAsStringSlice(value)
	case "name", "basename":
		c.BaseName, err = valueAsString(value)
	case "validate":
		c.Validate, err = valueAsBool(value)
	case "dryrun":
		c.DryRun, err = valueAsBool(value)
	case "force":
		c.Force, err = valueAsBool(value)
	case "verbose":
		c.Verbose, err = valueAsBool(value)
	default:
		return false, nil
	}
	if err != nil {
		return true, newUsageError(fmt.Sprintf("config field %q: %v", key, err))
	}
	return true, nil
}

func (c *GenerateConfig) normalize() {
	c.SourceConfig.normalize()
	c.Out = strings.TrimSpace(c.Out)
	if c.Out == "" {
		c.Out = "."
	}
	c.BaseName = strings.TrimSpace(c.BaseName)
	c.Formats = sanitizeList(c.Formats)
	for i, f := range c.Formats {
		c.Formats[i] = strings.ToLower(f)
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{"json"}
	}
}

func (c *GenerateConfig) validate() error {
	if err := c.SourceConfig.validate("generate"); err != nil {
		return err
	}
	for _, f := range c.Formats {
		if _, err := swagger.ParseFormat(f); err != nil {
			return newUsageError(fmt.Sprintf("generate: %v", err))
		}
	}
	return nil
}

func (c *GenerateConfig) formats() []swagger.Format {
	out := make([]swagger.Format, 0, len(c.Formats))
	for _, f := range c.Formats {
		if parsed, err := swagger.ParseFormat(f); err == nil {
			out = append(out, parsed)
		}
	}
	return out
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	log, err := newLogger(cfg.Verbose, zapcore.WarnLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// 1) Load the route file and apply the filters
	doc, err := cfg.load(ctx, log)
	if err != nil {
		return err
	}

	// 2) Assemble (and validate) the document
	out, err := swagger.Assemble(ctx, doc, swagger.WithLogger(log), swagger.WithValidation(cfg.Validate))
	if err != nil {
		return swaggerUsageError(err)
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	// 3) Emit
	res, err := emitter.Emit(ctx, out, emitter.Options{
		OutDir:    cfg.Out,
		BaseName:  cfg.BaseName,
		Formats:   cfg.formats(),
		PathOrder: swagger.PathOrder(doc),
		Force:     cfg.Force,
		DryRun:    cfg.DryRun,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}
	if cfg.DryRun {
		printPlan(absOut, res.Planned)
		return nil
	}
	for _, p := range res.Planned {
		fmt.Fprintf(os.Stdout, "Wrote %s (%d bytes)\n", filepath.Join(absOut, p.RelPath), p.Size)
	}
	log.Info("generated swagger document",
		zap.String("out", absOut),
		zap.Int("paths", len(out.Paths)),
		zap.Int("definitions", len(out.Definitions)))
	return nil
}

func printPlan(outDir string, planned []emitter.PlannedFile) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, len(planned))
	for _, p := range planned {
		fmt.Fprintf(os.Stdout, "- %s (%d bytes, sha256 %s)\n", p.RelPath, p.Size, p.Digest)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "already exists") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}
