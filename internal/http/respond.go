package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/draftdeck-backend/internal/platform/apierr"
)

// fail translates a typed error into the HTTP response. Unknown errors
// become opaque 500s so internal detail never leaks to the client.
func fail(c *gin.Context, err error) {
	status := apierr.StatusFor(err)
	code := "internal_error"
	if ae, ok := apierr.As(err); ok {
		code = ae.Code
	}
	msg := "internal error"
	if status != http.StatusInternalServerError {
		msg = err.Error()
	}
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": msg}})
}
