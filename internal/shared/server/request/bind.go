package request

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
)

// BindJSON decodes the request body into dst. An empty body leaves dst at
// its zero value so handlers can report their own missing-field messages.
func BindJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apierr.BadRequest("Invalid request body")
	}
	return nil
}
