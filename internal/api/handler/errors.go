package handler

import (
	"errors"
	"log"
	"net/http"

	"roomchat/backend/internal/apperr"

	"github.com/gin-gonic/gin"
)

const codeRateLimited = "RATE_LIMITED"

func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalidInput:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodePermissionDenied:
		return http.StatusForbidden
	case apperr.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error", "code", "detail"}: error is localized by
// Accept-Language, detail is the message of the failure. Causes are logged
// and never sent to the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	status := statusFor(code)

	detail := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) {
		detail = ae.Message
	}
	if status >= http.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		if code == apperr.CodeUnknown {
			detail = ""
		}
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error":  h.localize(c, string(code)),
		"code":   code,
		"detail": detail,
	})
}

// badRequest reports a body or query that failed to bind.
func (h *Handler) badRequest(c *gin.Context, err error) {
	h.respondError(c, apperr.InvalidInput("%s", err.Error()))
}

func (h *Handler) localize(c *gin.Context, key string) string {
	if h.Localizer == nil {
		return key
	}
	lang := h.Localizer.PreferredLanguage(c.GetHeader("Accept-Language"))
	return h.Localizer.GetString(lang, key)
}
