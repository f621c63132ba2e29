package templates

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/middleware"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/request"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/respond"
	"github.com/MattyO101/Legalassist-MPV/internal/templates/export"
)

// Handler wires HTTP handlers to the templates service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts /templates under rg. Browsing is public; requireAuth
// guards everything that acts for a user.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	g := rg.Group("/templates")
	g.GET("", h.list)
	g.GET("/categories", h.categories)
	g.GET("/:id", h.get)

	authed := g.Group("", requireAuth)
	authed.POST("/:id/customize", h.customize)
	authed.POST("/:id/export", h.export)
	authed.GET("/user/templates", h.listUserTemplates)
	authed.POST("/user/templates", h.saveUserTemplate)
	authed.DELETE("/user/templates/:id", h.deleteUserTemplate)
}

// RegisterDownloads serves exported files at /downloads/:filename.
func (h *Handler) RegisterDownloads(r gin.IRoutes) {
	r.GET("/downloads/:filename", h.download)
}

func (h *Handler) list(c *gin.Context) {
	tpls, err := h.Svc.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"templates": tpls})
}

func (h *Handler) categories(c *gin.Context) {
	cats, err := h.Svc.Categories(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"categories": cats})
}

func (h *Handler) get(c *gin.Context) {
	t, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"template": t})
}

func (h *Handler) customize(c *gin.Context) {
	var data map[string]any
	if err := request.BindJSON(c, &data); err != nil {
		respond.Error(c, err)
		return
	}
	out, err := h.Svc.Customize(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) export(c *gin.Context) {
	var req ExportRequest
	if err := request.BindJSON(c, &req); err != nil {
		respond.Error(c, err)
		return
	}
	res, err := h.Svc.Export(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, ExportResponse{
		Message:     "Template exported successfully",
		Filename:    res.Filename,
		DownloadURL: "/downloads/" + res.Filename,
	})
}

func (h *Handler) listUserTemplates(c *gin.Context) {
	rows, err := h.Svc.ListUserTemplates(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"templates": rows})
}

func (h *Handler) saveUserTemplate(c *gin.Context) {
	var req SaveUserTemplateRequest
	if err := request.BindJSON(c, &req); err != nil {
		respond.Error(c, err)
		return
	}
	ut, err := h.Svc.SaveUserTemplate(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"template": ut})
}

func (h *Handler) deleteUserTemplate(c *gin.Context) {
	if err := h.Svc.DeleteUserTemplate(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true})
}

func (h *Handler) download(c *gin.Context) {
	name := c.Param("filename")
	path, err := h.Svc.Exporter.Path(name)
	if err != nil {
		switch {
		case errors.Is(err, export.ErrInvalidName):
			respond.Error(c, apierr.BadRequest("Invalid file name"))
		case errors.Is(err, export.ErrNotFound):
			respond.Error(c, apierr.NotFound("File not found"))
		default:
			respond.Error(c, err)
		}
		return
	}
	c.FileAttachment(path, name)
}
