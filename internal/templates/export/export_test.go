package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

func fixedID() string { return "2ABCDEF" }

func TestSubstitute(t *testing.T) {
	got := Substitute("Hello {name}, you owe {amount}. {name}! {unknown}", map[string]any{
		"name":   "Ada",
		"amount": float64(120),
	})
	want := "Hello Ada, you owe 120. Ada! {unknown}"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExportPDF(t *testing.T) {
	e := &Exporter{Dir: t.TempDir(), NewID: fixedID}
	res, err := e.Export(context.Background(), Document{
		Title:   "Service Agreement",
		Content: "Between {client} and {provider}.",
		Data:    map[string]any{"client": "Acme", "provider": "Zed"},
	}, "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Filename != "service-agreement-2ABCDEF.pdf" || res.Format != FormatPDF {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Pages != 1 {
		t.Fatalf("expected 1 page, got %d", res.Pages)
	}
	raw, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(raw), "%PDF-") {
		t.Fatalf("expected a PDF header")
	}
}

func TestExportDOCX(t *testing.T) {
	e := &Exporter{Dir: t.TempDir(), NewID: fixedID}
	res, err := e.Export(context.Background(), Document{
		Title:   "Invoice",
		Content: "BILL TO:\n{clientName} & Co",
		Data:    map[string]any{"clientName": "Acme"},
	}, "DOCX")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Filename != "invoice-2ABCDEF.docx" {
		t.Fatalf("unexpected filename %q", res.Filename)
	}

	raw, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var source struct {
		Template string         `json:"template"`
		Data     map[string]any `json:"data"`
	}
	if err := json.Unmarshal(raw, &source); err != nil {
		t.Fatalf("docx export is not the template JSON: %v", err)
	}
	if source.Template != "BILL TO:\n{clientName} & Co" || source.Data["clientName"] != "Acme" {
		t.Fatalf("unexpected export body %+v", source)
	}
	if res.Size != int64(len(raw)) {
		t.Fatalf("size = %d, want %d", res.Size, len(raw))
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	e := New(t.TempDir())
	_, err := e.Export(context.Background(), Document{Title: "x", Content: "y"}, "rtf")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)
	for _, name := range []string{"", "..", "../etc/passwd", "a/b.pdf", `a\b.pdf`} {
		if _, err := e.Path(name); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("%q: expected ErrInvalidName, got %v", name, err)
		}
	}
	if _, err := e.Path("missing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := os.WriteFile(dir+"/ok.pdf", []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if p, err := e.Path("ok.pdf"); err != nil || !strings.HasSuffix(p, "ok.pdf") {
		t.Fatalf("expected path, got %q %v", p, err)
	}
}
