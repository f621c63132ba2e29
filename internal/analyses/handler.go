package analyses

import (
	"github.com/gin-gonic/gin"

	"github.com/MattyO101/Legalassist-MPV/internal/documents"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/middleware"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis and recommendation routes to an
// authenticated router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/analyze", h.analyze)
	rg.GET("/recommendations/document/:documentId", h.listForDocument)
	rg.POST("/recommendations/:id/apply", h.apply)
	rg.POST("/recommendations/:id/reject", h.reject)
}

func (h *Handler) analyze(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)
	count, err := h.Svc.Analyze(c.Request.Context(), middleware.UserIDFromContext(c), documentID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.Set("statusTransition", documents.StatusProcessing+"->"+documents.StatusCompleted)
	respond.OK(c, gin.H{"success": true, "count": count})
}

func (h *Handler) listForDocument(c *gin.Context) {
	documentID := c.Param("documentId")
	c.Set("documentId", documentID)
	recs, err := h.Svc.ListForDocument(c.Request.Context(), middleware.UserIDFromContext(c), documentID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"recommendations": recs})
}

func (h *Handler) apply(c *gin.Context) {
	rec, err := h.Svc.Apply(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"recommendation": rec})
}

func (h *Handler) reject(c *gin.Context) {
	rec, err := h.Svc.Reject(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"recommendation": rec})
}
