package emitter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/stoewer/go-strcase"

	"github.com/mark3labs/routes2swagger/internal/swagger"
)

// DefaultBaseName is used when neither Options.BaseName nor the document title
// yields a usable file name.
const DefaultBaseName = "swagger"

// Options controls where and how a document is written.
type Options struct {
	OutDir    string           // required; target directory
	BaseName  string           // file name without extension; derived from info.title when empty
	Formats   []swagger.Format // defaults to JSON only
	PathOrder []string         // order of paths in the output, see swagger.PathOrder
	Force     bool             // overwrite existing files
	DryRun    bool             // don't write, only plan
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
	Digest  string // sha256 of the content, hex encoded
}

// Result returns the planned files and the resolved base name.
type Result struct {
	BaseName string
	Planned  []PlannedFile
}

// Emit encodes doc in every requested format and writes one file per format.
func Emit(ctx context.Context, doc *openapi2.T, opts Options) (*Result, error) {
	if doc == nil {
		return nil, errors.New("emitter: nil document")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, errors.New("emitter: OutDir is required")
	}
	base := sanitizeBaseName(opts.BaseName)
	if base == "" {
		base = sanitizeBaseName(doc.Info.Title)
	}
	if base == "" {
		base = DefaultBaseName
	}
	formats := opts.Formats
	if len(formats) == 0 {
		formats = []swagger.Format{swagger.FormatJSON}
	}

	files := map[string][]byte{}
	for _, f := range formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel := base + "." + f.Ext()
		if _, dup := files[rel]; dup {
			continue
		}
		content, err := swagger.Encode(doc, f, opts.PathOrder)
		if err != nil {
			return nil, fmt.Errorf("emitter: %w", err)
		}
		files[rel] = content
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		sum := sha256.Sum256(files[rel])
		planned = append(planned, PlannedFile{
			RelPath: rel,
			Size:    len(files[rel]),
			Mode:    0o644,
			Digest:  hex.EncodeToString(sum[:]),
		})
	}

	if !opts.DryRun {
		if err := writeFiles(ctx, opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}

	return &Result{BaseName: base, Planned: planned}, nil
}

func writeFiles(ctx context.Context, outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	// Pre-flight so nothing is written when any target already exists.
	if !force {
		for rel := range files {
			if _, err := os.Stat(filepath.Join(abs, rel)); err == nil {
				return fmt.Errorf("emitter: %s already exists in %q (use --force to overwrite)", rel, abs)
			}
		}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	for rel, content := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := filepath.Join(abs, rel)
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}

// sanitizeBaseName turns a title like "Pet Store API v2" into "pet-store-api-v2".
func sanitizeBaseName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	repl := strings.NewReplacer("/", " ", ".", " ", ",", " ", ":", " ", "\\", " ")
	name = strcase.KebabCase(repl.Replace(name))
	b := strings.Builder{}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
