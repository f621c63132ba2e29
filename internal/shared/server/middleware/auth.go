package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/respond"
)

const userIDKey = "userId"

// TokenVerifier resolves a bearer token to a user ID. Failures should be
// *apierr.Error values so their message reaches the client.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// Auth requires a valid bearer token and stores the user ID in context.
// Preflight requests pass through untouched.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respond.Error(c, apierr.Unauthorized("Please authenticate"))
			return
		}
		userID, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// bearerToken pulls the credentials out of an "Authorization: Bearer" value.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserIDFromContext returns the user ID set by Auth, or "".
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}
