package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MattyO101/Legalassist-MPV/internal/extract"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/metrics"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/storage/object"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/telemetry"
)

const DefaultMaxUploadSize = 10 << 20

var allowedMimeTypes = map[string]bool{
	extract.MimePDF:  true,
	extract.MimeDOCX: true,
	extract.MimeTXT:  true,
}

var extensionTypes = map[string]string{
	".pdf":  extract.TypePDF,
	".docx": extract.TypeDOCX,
	".txt":  extract.TypeTXT,
}

// DependentsCleaner removes rows that hang off a document.
type DependentsCleaner interface {
	DeleteByDocument(ctx context.Context, documentID string) error
}

// Service contains business logic for documents.
type Service struct {
	Store         object.ObjectStore
	Repo          Repo
	Dependents    DependentsCleaner
	MaxUploadSize int64
	Now           func() time.Time
}

// Upload is one file received from a client.
type Upload struct {
	FileName     string
	Title        string
	DeclaredMime string
	Size         int64
	Body         io.Reader
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) maxUploadSize() int64 {
	if s.MaxUploadSize > 0 {
		return s.MaxUploadSize
	}
	return DefaultMaxUploadSize
}

// Upload validates the file, stores it under the owner's prefix and records
// it with status uploaded. Nothing is persisted if validation fails.
func (s *Service) Upload(ctx context.Context, userID string, up Upload) (Document, error) {
	if up.Body == nil || strings.TrimSpace(up.FileName) == "" {
		return Document{}, apierr.BadRequest("No file uploaded")
	}
	if up.Size > s.maxUploadSize() {
		return Document{}, apierr.BadRequest("File too large")
	}

	body, sniffed, err := object.Sniff(up.Body)
	if err != nil {
		return Document{}, apierr.BadRequest("No file uploaded")
	}
	mimeType := effectiveMime(up.DeclaredMime, sniffed)
	if !allowedMimeTypes[mimeType] {
		return Document{}, apierr.BadRequest("Only PDF, DOCX, and TXT files are allowed")
	}
	fileType, ok := extensionTypes[strings.ToLower(filepath.Ext(up.FileName))]
	if !ok {
		return Document{}, apierr.BadRequest("Unsupported file type")
	}

	limited := &io.LimitedReader{R: body, N: s.maxUploadSize() + 1}
	key, size, _, err := s.Store.Save(ctx, userID, up.FileName, limited)
	if err != nil {
		return Document{}, fmt.Errorf("store upload: %w", err)
	}
	if size > s.maxUploadSize() {
		_ = s.Store.Delete(context.WithoutCancel(ctx), key)
		return Document{}, apierr.BadRequest("File too large")
	}

	title := strings.TrimSpace(up.Title)
	if title == "" {
		title = up.FileName
	}
	now := s.now()
	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userID,
		Title:            title,
		OriginalFilename: up.FileName,
		Filename:         key,
		FileType:         fileType,
		FileSize:         size,
		MimeType:         mimeType,
		Status:           StatusUploaded,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		_ = s.Store.Delete(context.WithoutCancel(ctx), key)
		return Document{}, err
	}
	metrics.IncDocumentUploaded(fileType)
	telemetry.Info("document.uploaded", map[string]any{
		"user_id":     userID,
		"document_id": doc.ID,
		"file_type":   fileType,
		"size_bytes":  size,
	})
	return doc, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Document, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, apierr.NotFound("Document not found")
		}
		return Document{}, err
	}
	return doc, nil
}

// Delete removes the stored file, the document's dependents and the row.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, doc.Filename); err != nil && !errors.Is(err, object.ErrNotFound) {
		return fmt.Errorf("delete stored file: %w", err)
	}
	if s.Dependents != nil {
		if err := s.Dependents.DeleteByDocument(ctx, doc.ID); err != nil {
			return fmt.Errorf("delete dependents: %w", err)
		}
	}
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apierr.NotFound("Document not found")
		}
		return err
	}
	telemetry.Info("document.deleted", map[string]any{"user_id": userID, "document_id": id})
	return nil
}

// BeginAnalysis claims the document for analysis by moving it from uploaded
// to processing. Exactly one concurrent caller wins.
func (s *Service) BeginAnalysis(ctx context.Context, userID, id string) (Document, error) {
	doc, err := s.Repo.TransitionStatus(ctx, userID, id, StatusUploaded, StatusProcessing, s.now())
	if err == nil {
		return doc, nil
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return Document{}, apierr.NotFound("Document not found")
	case errors.Is(err, ErrStatusConflict):
		switch doc.Status {
		case StatusProcessing:
			return Document{}, apierr.BadRequest("Document is already being processed")
		case StatusCompleted:
			return Document{}, apierr.BadRequest("Document has already been analyzed")
		default:
			return Document{}, apierr.BadRequest("Document analysis has already failed")
		}
	default:
		return Document{}, err
	}
}

// FinishAnalysis moves a processing document to completed or failed.
func (s *Service) FinishAnalysis(ctx context.Context, userID, id, status string) (Document, error) {
	if status != StatusCompleted && status != StatusFailed {
		return Document{}, fmt.Errorf("invalid terminal status %q", status)
	}
	return s.Repo.TransitionStatus(ctx, userID, id, StatusProcessing, status, s.now())
}

// Open returns the stored file for a document.
func (s *Service) Open(ctx context.Context, doc Document) (io.ReadCloser, error) {
	return s.Store.Open(ctx, doc.Filename)
}

func baseMime(m string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(m, ";")[0]))
}

// effectiveMime is the client's declared type. The sniffed type stands in
// only when the client declared nothing specific.
func effectiveMime(declared, sniffed string) string {
	switch m := baseMime(declared); m {
	case "", "application/octet-stream":
		return baseMime(sniffed)
	default:
		return m
	}
}
