package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/storage/object/local"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDocxParagraphs(t *testing.T) {
	data := buildDocx(t, `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+
		`<w:p><w:r><w:t>Termination clause</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Governing law</w:t></w:r></w:p></w:body></w:document>`)

	text, err := ExtractTextFromBytes(context.Background(), data, TypeDOCX)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "Termination clause\nGoverning law" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractDocxWithoutDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("notes.txt")
	_, _ = w.Write([]byte("hello"))
	_ = zw.Close()

	if _, err := ExtractTextFromBytes(context.Background(), buf.Bytes(), TypeDOCX); err == nil {
		t.Fatal("expected error for zip without document.xml")
	}
}

func TestExtractPlainText(t *testing.T) {
	text, err := ExtractTextFromBytes(context.Background(), []byte("Payment due in 30 days."), "TXT")
	if err != nil || text != "Payment due in 30 days." {
		t.Fatalf("unexpected result %q %v", text, err)
	}
	if _, err := ExtractTextFromBytes(context.Background(), []byte{0xff, 0xfe, 0xfd}, TypeTXT); err == nil {
		t.Fatal("expected invalid utf-8 to fail")
	}
}

func TestExtractInvalidPDF(t *testing.T) {
	if _, err := ExtractTextFromBytes(context.Background(), []byte("not a pdf"), TypePDF); err == nil {
		t.Fatal("expected error for invalid pdf")
	}
}

func TestExtractUnsupported(t *testing.T) {
	_, err := ExtractTextFromBytes(context.Background(), []byte("x"), "rtf")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestExtractSniffsWhenTypeMissing(t *testing.T) {
	text, err := ExtractTextFromBytes(context.Background(), []byte("plain words here"), "")
	if err != nil || text != "plain words here" {
		t.Fatalf("unexpected result %q %v", text, err)
	}
}

func TestExtractTextFromStore(t *testing.T) {
	store := local.New(t.TempDir())
	ctx := context.Background()
	key, _, _, err := store.Save(ctx, "user-1", "nda.txt", strings.NewReader("This is confidential."))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	text, err := ExtractText(ctx, store, key, TypeTXT)
	if err != nil || text != "This is confidential." {
		t.Fatalf("unexpected result %q %v", text, err)
	}
	if _, err := ExtractText(ctx, store, "missing/key.txt", TypeTXT); err == nil {
		t.Fatal("expected missing object error")
	}
}

func TestTypeFromMime(t *testing.T) {
	cases := map[string]string{
		"application/pdf":           TypePDF,
		MimeDOCX:                    TypeDOCX,
		"text/plain; charset=utf-8": TypeTXT,
		"image/png":                 "",
	}
	for in, want := range cases {
		if got := TypeFromMime(in); got != want {
			t.Fatalf("TypeFromMime(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractDocxTabsAndMalformedXML(t *testing.T) {
	data := buildDocx(t, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+
		`<w:p><w:r><w:t>Fee</w:t><w:tab/><w:t>$500</w:t></w:r></w:p></w:body></w:document>`)
	text, err := ExtractTextFromBytes(context.Background(), data, TypeDOCX)
	if err != nil || text != "Fee\t$500" {
		t.Fatalf("unexpected result %q %v", text, err)
	}

	broken := buildDocx(t, `<w:document><w:body><w:p>`)
	if _, err := ExtractTextFromBytes(context.Background(), broken, TypeDOCX); err == nil {
		t.Fatal("expected error for truncated document.xml")
	}
}

func TestExtractDocxCapsDocumentXML(t *testing.T) {
	old := maxDocumentXML
	maxDocumentXML = 1024
	t.Cleanup(func() { maxDocumentXML = old })

	big := buildDocx(t, `<w:document><w:body><w:p><w:r><w:t>`+strings.Repeat("a", 4096)+`</w:t></w:r></w:p></w:body></w:document>`)
	if _, err := ExtractTextFromBytes(context.Background(), big, TypeDOCX); !errors.Is(err, errDocumentTooLarge) {
		t.Fatalf("expected errDocumentTooLarge, got %v", err)
	}
}
