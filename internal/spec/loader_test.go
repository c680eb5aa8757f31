package spec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const petRoutes = `info:
  title: Pet API
  version: "1.0.0"
basePath: /
consumes: [application/json]
produces: [application/json]
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
      responses:
        "200":
          description: ok
          schema: [Pet]
    - method: post
      tags: [write]
      parameters:
        body: Pet
      responses:
        "200":
          description: created
          schema: Pet
  /api/pets/:id:
    - method: get
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

func TestLoad_BlocksFileURL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, err := Load(ctx, "file:///etc/hosts")
	if err == nil {
		t.Fatalf("expected error for file:// URL")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != InputError {
		t.Fatalf("expected InputError, got %v", se.Code)
	}
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, err := Load(ctx, "ftp://example.com/routes.yaml")
	if err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_EmptyInput(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "  ")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_NetworkError(t *testing.T) {
	t.Parallel()
	// Unused port to provoke a quick network failure.
	url := "http://127.0.0.1:1/routes.yaml"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Load(ctx, url, WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(2), WithBackoffBase(10*time.Millisecond))
	if err == nil {
		t.Fatalf("expected network error")
	}
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
}

func TestLoad_RetriesTransientHTTPErrors(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(petRoutes))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL+"/routes.yaml", WithMaxRetries(3), WithBackoffBase(5*time.Millisecond))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if doc.Info.Title != "Pet API" {
		t.Fatalf("unexpected title %q", doc.Info.Title)
	}
}

func TestLoad_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL+"/missing.yaml", WithMaxRetries(4), WithBackoffBase(5*time.Millisecond))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
	if !strings.Contains(se.Message, "http 404") {
		t.Fatalf("expected status in message, got %q", se.Message)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yaml")
	if err := os.WriteFile(path, []byte(petRoutes), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Paths.Len() != 2 {
		t.Fatalf("expected 2 paths, got %d", doc.Paths.Len())
	}
	if doc.OperationCount() != 3 {
		t.Fatalf("expected 3 operations, got %d", doc.OperationCount())
	}
}

func TestLoad_ParseErrorCarriesLocation(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	content := strings.TrimSpace(`info:
  title: Bad
  version: "1.0.0"
paths:
  /pets:
    - method: get
      parameters:
        body: Unknown
      responses:
        "200":
          description: ok
`) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Load(context.Background(), path)
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v", se.Code)
	}
	if se.Location == "" {
		t.Fatalf("expected location to be set")
	}
	if se.JSONPointer != "#/paths/~1pets/0/parameters/body" {
		t.Fatalf("unexpected pointer %q", se.JSONPointer)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}
