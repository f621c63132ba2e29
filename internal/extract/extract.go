package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/storage/object"
)

const (
	TypePDF  = "pdf"
	TypeDOCX = "docx"
	TypeTXT  = "txt"

	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTXT  = "text/plain"
)

// MaxBytes caps how much of a stored object is read for extraction.
const MaxBytes = 20 << 20

// ErrUnsupported is returned for payloads that are not PDF, DOCX or text.
var ErrUnsupported = errors.New("unsupported file type")

// maxDocumentXML caps the decompressed size of word/document.xml.
var maxDocumentXML uint64 = MaxBytes

var errDocumentTooLarge = errors.New("docx document.xml too large")

var extractors = map[string]func([]byte) (string, error){
	TypePDF:  pdfText,
	TypeDOCX: docxText,
	TypeTXT:  plainText,
}

var mimeTypes = map[string]string{
	MimePDF:  TypePDF,
	MimeDOCX: TypeDOCX,
	MimeTXT:  TypeTXT,
}

// ExtractText reads a stored object and returns its plain text.
func ExtractText(ctx context.Context, store object.ObjectStore, fileKey string, fileType string) (string, error) {
	wrap := func(err error) error {
		return fmt.Errorf("extract %s (%s): %w", fileKey, fileType, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return "", wrap(err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, MaxBytes+1))
	if err != nil {
		return "", wrap(err)
	}
	if len(data) > MaxBytes {
		return "", wrap(fmt.Errorf("object larger than %d bytes", MaxBytes))
	}
	text, err := ExtractTextFromBytes(ctx, data, fileType)
	if err != nil {
		return "", wrap(err)
	}
	return text, nil
}

// ExtractTextFromBytes extracts text from an in-memory payload. An empty
// fileType falls back to content sniffing.
func ExtractTextFromBytes(ctx context.Context, data []byte, fileType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	kind := strings.ToLower(strings.TrimSpace(fileType))
	if kind == "" {
		kind = TypeFromMime(mimetype.Detect(data).String())
	}
	fn, ok := extractors[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, fileType)
	}
	return fn(data)
}

// TypeFromMime maps a MIME type to pdf, docx or txt, or "" when unknown.
// Parameters such as charset are ignored.
func TypeFromMime(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return mimeTypes[strings.ToLower(strings.TrimSpace(base))]
}

func plainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("text is not valid utf-8")
	}
	return string(data), nil
}

// pdfText joins the text of every page. Pages that fail to decode are
// skipped; a document with no readable page is an error.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var (
		pages []string
		last  error
	)
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			last = err
			continue
		}
		pages = append(pages, content)
	}
	if len(pages) == 0 && last != nil {
		return "", last
	}
	return strings.Join(pages, "\n"), nil
}

func docxText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != "word/document.xml" {
			continue
		}
		if f.UncompressedSize64 > maxDocumentXML {
			return "", errDocumentTooLarge
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		// UncompressedSize64 comes from the archive and may be wrong.
		lr := &io.LimitedReader{R: rc, N: int64(maxDocumentXML) + 1}
		text, err := wordML(lr)
		if lr.N <= 0 {
			return "", errDocumentTooLarge
		}
		return text, err
	}
	return "", errors.New("docx has no word/document.xml")
}

// wordML collects character data, ending a line at each paragraph or break.
func wordML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				sb.WriteByte('\t')
			}
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && sb.Len() > 0 {
				sb.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
