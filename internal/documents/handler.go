package documents

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/middleware"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/respond"
)

// multipartOverhead allows for boundaries and the title field on top of the
// file itself.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group. The group
// must already require authentication.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.POST("/documents", h.upload)
	rg.GET("/documents/:id", h.get)
	rg.DELETE("/documents/:id", h.delete)
	rg.GET("/documents/:id/status", h.status)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.maxUploadSize()+multipartOverhead)

	fileHeader, err := c.FormFile("document")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respond.Error(c, apierr.BadRequest("File too large"))
			return
		}
		respond.Error(c, apierr.BadRequest("No file uploaded"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, apierr.BadRequest("No file uploaded"))
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), userID, Upload{
		FileName:     fileHeader.Filename,
		Title:        c.PostForm("title"),
		DeclaredMime: fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Body:         file,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.Set("documentId", doc.ID)
	respond.Created(c, gin.H{"document": doc})
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"documents": docs})
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"document": doc})
}

func (h *Handler) status(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"status": doc.Status})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true})
}
