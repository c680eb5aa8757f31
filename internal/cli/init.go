package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	RoutesPath string // empty skips the sample route file
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample routes2swagger configuration and route file",
		Long:  "Scaffold a commented routes2swagger configuration file that documents available options, and a sample route file to start from.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			routes, err := cmd.Flags().GetString("routes")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				RoutesPath: routes,
				Force:      force,
				Verbose:    verbose,
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", "routes2swagger.yaml", "Where to write the sample config file")
	cmd.Flags().String("routes", "routes.yaml", "Where to write the sample route file (empty to skip)")
	cmd.Flags().Bool("force", false, "Overwrite target files if they already exist")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "routes2swagger.yaml"
	}
	files := []struct {
		path, content, what string
	}{
		{out, sampleConfigYAML, "sample config"},
	}
	if routes := strings.TrimSpace(cfg.RoutesPath); routes != "" {
		files = append(files, struct{ path, content, what string }{routes, sampleRoutesYAML, "sample route file"})
	}

	// Check every target first so a refusal leaves nothing half-written.
	abs := make([]string, len(files))
	for i, f := range files {
		p, err := filepath.Abs(f.path)
		if err != nil {
			return fmt.Errorf("init: resolve output path: %w", err)
		}
		if st, err := os.Stat(p); err == nil && !cfg.Force && st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", p))
		}
		abs[i] = p
	}

	for i, f := range files {
		if err := writeAtomic(abs[i], strings.TrimSpace(f.content)+"\n"); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Wrote %s to %s\n", f.what, abs[i])
	}
	return nil
}

func writeAtomic(absPath, content string) error {
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# routes2swagger configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Path or URL (http/https) to the route file.
# input: ./routes.yaml

# Only include operations with these tags (comma-separated or list).
# includeTags: [public,read]

# Exclude operations with these tags (comma-separated or list).
# excludeTags: [internal]

# Only include these HTTP methods.
# methods: [get, post]

# Only include paths matching these regular expressions.
# paths: ["^/api/"]

# Output directory for generate. Defaults to the current directory.
# out: ./docs

# Output formats for generate (json, yaml).
# format: [json, yaml]

# Output file name without extension. Derived from info.title when omitted.
# name: pet-api

# Validate the document before writing it.
# validate: true

# Listen address for serve.
# addr: 127.0.0.1:8080

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite existing output files.
# force: false

# Enable verbose logging.
# verbose: false
`

// sampleRoutesYAML is a small route table exercising models, nesting and
// every parameter location.
const sampleRoutesYAML = `# Field keys: "name!" is required, "name?" is optional, a bare name is
# documented without a requirement, "*" accepts any extra key.
# Types: string, int, long, float, double, number, boolean, date, date-time,
# uuid, byte, any, nothing, a model name, [T], !set [T], !enum [a, b], or an
# inline mapping.
info:
  title: Pet API
  version: "1.0.0"
basePath: /
consumes: [application/json]
produces: [application/json]
tags:
  - name: read
  - name: write
models:
  Pet:
    id!: long
    name!: string
    legs?: [LegOfPet]
  LegOfPet:
    length!: double
paths:
  /api/pets:
    - method: get
      summary: List pets
      tags: [read]
      parameters:
        query:
          limit?: int
      responses:
        "200":
          description: ok
          schema: [Pet]
    - method: post
      summary: Create a pet
      tags: [write]
      parameters:
        body: Pet
      responses:
        "200":
          description: created
          schema: Pet
  /api/pets/:id:
    - method: get
      summary: Fetch one pet
      tags: [read]
      parameters:
        path:
          id: long
      responses:
        "200":
          description: ok
          schema: Pet
        default:
          description: error
          schema:
            code: long
`
