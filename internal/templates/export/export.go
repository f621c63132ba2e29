// Package export renders filled-in templates to PDF or DOCX files under a
// single output directory.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"github.com/segmentio/ksuid"
)

const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

var (
	ErrInvalidFormat = errors.New("invalid export format")
	ErrInvalidName   = errors.New("invalid file name")
	ErrNotFound      = errors.New("export not found")
)

// Document is the input to an export.
type Document struct {
	Title   string
	Content string
	Data    map[string]any
}

// Result describes a written export.
type Result struct {
	Filename string
	Path     string
	Format   string
	Size     int64
	// Pages is set for PDF exports.
	Pages int
}

// Exporter writes exports into Dir.
type Exporter struct {
	Dir   string
	NewID func() string
}

func New(dir string) *Exporter {
	return &Exporter{Dir: dir, NewID: func() string { return ksuid.New().String() }}
}

// Export writes doc in format, PDF when empty. PDF output has Data
// substituted into Content; DOCX output is the raw Content and Data as JSON.
func (e *Exporter) Export(ctx context.Context, doc Document, format string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatDOCX {
		return Result{}, ErrInvalidFormat
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create export dir: %w", err)
	}

	name := e.fileName(doc.Title, format)
	path := filepath.Join(e.Dir, name)

	res := Result{Filename: name, Path: path, Format: format}
	switch format {
	case FormatPDF:
		pages, err := writePDF(path, doc.Title, Substitute(doc.Content, doc.Data))
		if err != nil {
			return Result{}, fmt.Errorf("write pdf: %w", err)
		}
		res.Pages = pages
	case FormatDOCX:
		if err := writeDOCX(path, doc); err != nil {
			return Result{}, fmt.Errorf("write docx: %w", err)
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, err
	}
	res.Size = info.Size()
	return res, nil
}

func (e *Exporter) fileName(title, ext string) string {
	base := slug.Make(title)
	if base == "" {
		base = "document"
	}
	id := ksuid.New().String()
	if e.NewID != nil {
		id = e.NewID()
	}
	return base + "-" + id + "." + ext
}

// Path resolves a bare export file name to its location on disk.
func (e *Exporter) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	path := filepath.Join(e.Dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	if info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

// Substitute replaces every literal {key} in content with the matching value.
// Unknown placeholders are left as they are.
func Substitute(content string, data map[string]any) string {
	if len(data) == 0 {
		return content
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", formatValue(data[k]))
	}
	return strings.NewReplacer(pairs...).Replace(content)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}
