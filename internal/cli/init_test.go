package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/routes2swagger/internal/spec"
	"github.com/mark3labs/routes2swagger/internal/swagger"
)

func TestInit_WritesSampleFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	routes := filepath.Join(dir, "routes.yaml")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--routes", routes})

	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "routes2swagger configuration") {
		t.Fatalf("unexpected config contents: %s", data)
	}

	// The sample route file must assemble into a valid document.
	doc, err := spec.Load(context.Background(), routes)
	if err != nil {
		t.Fatalf("load sample routes: %v", err)
	}
	out, err := swagger.Assemble(context.Background(), doc, swagger.WithValidation(true))
	if err != nil {
		t.Fatalf("assemble sample routes: %v", err)
	}
	if len(out.Definitions) != 2 {
		t.Fatalf("expected Pet and LegOfPet, got %d definitions", len(out.Definitions))
	}
}

func TestInit_SkipRoutes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--routes", ""})
	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the config file, got %d entries", len(entries))
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	routes := filepath.Join(dir, "routes.yaml")
	if err := os.WriteFile(routes, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--routes", routes})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if _, ok := err.(usageError); !ok {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("config should not be written when a target is refused")
	}

	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--routes", routes, "--force"})
	if err := root.Execute(); err != nil {
		t.Fatalf("forced init: %v", err)
	}
}
