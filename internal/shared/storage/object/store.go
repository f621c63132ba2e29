package object

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/util"
)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// SniffLen is how many leading bytes are inspected to detect a MIME type.
const SniffLen = 3072

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	// Delete removes the object. A missing object is not an error.
	Delete(ctx context.Context, storageKey string) error
}

// MaxNameLen caps the file-name part of a key, in bytes, so the whole key
// segment stays well under common filesystem and object-name limits.
const MaxNameLen = 100

// NewKey builds a storage key of the form <sha256(owner)>/<random>_<name>.
// Keys are unique per call so concurrent uploads of the same file never
// collide. Long names keep their extension and lose the end of the stem.
func NewKey(ownerID, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		name = "file" + strings.ToLower(filepath.Ext(strings.ReplaceAll(fileName, "..", "")))
	}
	prefix, err := util.RandomHex(16)
	if err != nil {
		return "", fmt.Errorf("random key: %w", err)
	}
	return path.Join(util.HashUserKey(ownerID), prefix+"_"+shortenName(name)), nil
}

func shortenName(name string) string {
	if len(name) <= MaxNameLen {
		return name
	}
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 16 {
		ext = ""
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	limit := MaxNameLen - len(ext)
	if len(stem) <= limit {
		return stem + ext
	}
	for limit > 0 && !utf8.RuneStart(stem[limit]) {
		limit--
	}
	return stem[:limit] + ext
}

// Sniff reads up to SniffLen bytes from r and detects their MIME type. The
// returned reader replays the consumed bytes followed by the rest of r.
func Sniff(r io.Reader) (io.Reader, string, error) {
	head := make([]byte, SniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", fmt.Errorf("read sniff: %w", err)
	}
	head = head[:n]
	mime := mimetype.Detect(head)
	return io.MultiReader(bytes.NewReader(head), r), mime.String(), nil
}

// CleanKey rejects keys that escape the store root.
func CleanKey(storageKey string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(storageKey, "\\", "/"))
	if clean == "." || strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return clean, nil
}

// Join places key under a bucket prefix. Surrounding slashes on either part
// are ignored.
func Join(prefix, key string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	key = strings.TrimLeft(key, "/")
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "/" + key
	}
}

// CountingReader counts the bytes read through it.
type CountingReader struct {
	R io.Reader
	N int64
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.R.Read(p)
	c.N += int64(n)
	return n, err
}
