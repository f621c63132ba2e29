package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/middleware"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/request"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
	// ExposeResetToken returns the raw reset token in the forgot-password
	// response. Never enabled in production.
	ExposeResetToken bool
}

func NewHandler(svc *Service, exposeResetToken bool) *Handler {
	return &Handler{Svc: svc, ExposeResetToken: exposeResetToken}
}

// RegisterRoutes mounts /auth under rg. requireAuth guards /auth/me.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/refresh-token", h.refreshToken)
	g.POST("/forgot-password", h.forgotPassword)
	g.POST("/reset-password", h.resetPassword)
	g.GET("/me", requireAuth, h.me)
}

func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if err := request.BindJSON(c, &req); err != nil {
		respond.Error(c, err)
		return
	}
	out, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Created(c, out)
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := request.BindJSON(c, &req); err != nil {
		respond.Error(c, err)
		return
	}
	out, err := h.Svc.Login(c.Request.Context(), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) refreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := request.BindJSON(c, &req); err != nil {
		respond.Error(c, err)
		return
	}
	out, err := h.Svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := request.BindJSON(c, &req); err != nil {
		respond.Error(c, err)
		return
	}
	token, err := h.Svc.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		respond.Error(c, err)
		return
	}
	resp := ForgotPasswordResponse{Message: "Password reset link sent to your email"}
	if h.ExposeResetToken {
		resp.ResetToken = token
	}
	respond.OK(c, resp)
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := request.BindJSON(c, &req); err != nil {
		respond.Error(c, err)
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req); err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, "Password reset successful")
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Svc.Me(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"user": user})
}
