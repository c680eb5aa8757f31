package emitter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/routes2swagger/internal/swagger"
)

func minimalDocument() *openapi2.T {
	doc := &openapi2.T{
		Swagger: swagger.Version,
		Info:    openapi3.Info{Title: "Sample API", Version: "1.0.0"},
	}
	doc.AddOperation("/hello", "GET", &openapi2.Operation{
		Summary:   "Say hello",
		Responses: map[string]*openapi2.Response{"200": {Description: "ok"}},
	})
	return doc
}

func TestEmit_DryRun_Plan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	res, err := Emit(ctx, minimalDocument(), Options{
		OutDir:  dir,
		Formats: []swagger.Format{swagger.FormatYAML, swagger.FormatJSON},
		DryRun:  true,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.BaseName != "sample-api" {
		t.Fatalf("unexpected base name %q", res.BaseName)
	}
	if len(res.Planned) != 2 || res.Planned[0].RelPath != "sample-api.json" || res.Planned[1].RelPath != "sample-api.yaml" {
		t.Fatalf("unexpected plan: %+v", res.Planned)
	}
	for _, pf := range res.Planned {
		if pf.Size == 0 || len(pf.Digest) != 64 {
			t.Fatalf("incomplete planned file: %+v", pf)
		}
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("expected no files written on dry-run")
	}
}

func TestEmit_WriteAndContents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "out")

	res, err := Emit(ctx, minimalDocument(), Options{OutDir: dir, BaseName: "api"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(res.Planned) != 1 || res.Planned[0].RelPath != "api.json" {
		t.Fatalf("expected only api.json, got %+v", res.Planned)
	}

	data, err := os.ReadFile(filepath.Join(dir, "api.json"))
	if err != nil {
		t.Fatalf("read api.json: %v", err)
	}
	if res.Planned[0].Size != len(data) {
		t.Fatalf("planned size %d != written %d", res.Planned[0].Size, len(data))
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("api.json invalid: %v", err)
	}
	if v["swagger"] != "2.0" {
		t.Fatalf("unexpected swagger field: %v", v["swagger"])
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestEmit_NoForce_ExistingFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "swagger.json"), []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}
	_, err := Emit(ctx, minimalDocument(), Options{OutDir: dir, BaseName: "swagger"})
	if err == nil {
		t.Fatalf("expected error on existing file without force")
	}

	if _, err := Emit(ctx, minimalDocument(), Options{OutDir: dir, BaseName: "swagger", Force: true}); err != nil {
		t.Fatalf("force emit: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "swagger.json"))
	if !strings.Contains(string(data), `"Sample API"`) {
		t.Fatalf("expected overwritten content, got %s", data)
	}
}

func TestEmit_UnrelatedFilesAllowed(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}
	if _, err := Emit(context.Background(), minimalDocument(), Options{OutDir: dir}); err != nil {
		t.Fatalf("emit: %v", err)
	}
}

func TestEmit_Errors(t *testing.T) {
	t.Parallel()
	if _, err := Emit(context.Background(), nil, Options{OutDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error for nil document")
	}
	if _, err := Emit(context.Background(), minimalDocument(), Options{}); err == nil {
		t.Fatalf("expected error for missing OutDir")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Emit(ctx, minimalDocument(), Options{OutDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestSanitizeBaseName(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"Pet Store API v2": "pet-store-api-v2",
		"  ":               "",
		"orders/v1.2":      "orders-v1-2",
		"PetStore":         "pet-store",
		"!!!":              "",
	}
	for in, want := range tests {
		if got := sanitizeBaseName(in); got != want {
			t.Fatalf("sanitizeBaseName(%q) = %q, want %q", in, got, want)
		}
	}
}
