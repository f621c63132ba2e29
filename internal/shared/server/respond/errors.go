package respond

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/telemetry"
)

// ErrorBody is the single error shape every service emits.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

var production atomic.Bool

// SetProduction hides stacks and internal messages when on.
func SetProduction(on bool) {
	production.Store(on)
}

// Error converts err into an API error, logs it and aborts with the standard body.
func Error(c *gin.Context, err error) {
	apiErr := apierr.From(err)
	if apiErr == nil {
		apiErr = apierr.Internal(http.StatusText(http.StatusInternalServerError), nil)
	}

	body := ErrorBody{Code: apiErr.Status, Message: apiErr.Message}
	if production.Load() {
		if !apiErr.Operational {
			body.Message = http.StatusText(http.StatusInternalServerError)
		}
	} else {
		body.Stack = apiErr.Stack()
	}

	fields := map[string]any{
		"status":     apiErr.Status,
		"message":    apiErr.Message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if apiErr.Status >= http.StatusInternalServerError {
		fields["error"] = apiErr.Error()
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Info("http.error", fields)
	}

	c.AbortWithStatusJSON(apiErr.Status, body)
}
