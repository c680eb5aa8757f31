package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidate_RouteFile(t *testing.T) {
	dir := t.TempDir()
	routesPath := writeRoutes(t, dir, minimalRoutesYAML)

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"validate", "--input", routesPath})

	out := captureStdout(func() {
		if err := root.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	if !strings.Contains(out, "OK:") || !strings.Contains(out, "2 operations") || !strings.Contains(out, "1 definitions") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestValidate_Document(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte(`swagger: "2.0"
info: {title: Doc, version: "1"}
paths:
  /x:
    get:
      responses:
        "200": {description: ok}
`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"swagger":"2.0","info":{"title":"Doc","version":"1"},"paths":{"/x":{"get":{"responses":{"200":{"description":"ok","schema":{"$ref":"#/definitions/Missing"}}}}}}}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"validate", "--document", good})
	out := captureStdout(func() {
		if err := root.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	if !strings.Contains(out, "valid Swagger 2.0 document") {
		t.Fatalf("unexpected output: %s", out)
	}

	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"validate", "--document", bad})
	err := root.Execute()
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "ValidationError") {
		t.Fatalf("expected validation usage error, got %v", err)
	}
}

func TestValidate_FlagErrors(t *testing.T) {
	t.Parallel()
	for _, args := range [][]string{
		{"validate"},
		{"validate", "--input", "a.yaml", "--document", "b.json"},
	} {
		root := NewRootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs(args)
		if err := root.Execute(); !errors.Is(err, ErrUsage) {
			t.Fatalf("%v: expected usage error, got %v", args, err)
		}
	}
}
