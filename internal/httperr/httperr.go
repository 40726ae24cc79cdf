package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// FromError writes err using its apperr kind. Persistence and unknown
// errors never expose their cause.
func FromError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		Write(c, http.StatusBadRequest, code, "Invalid request.")
	case apperr.KindNotFound:
		Write(c, http.StatusNotFound, code, "Not found.")
	case apperr.KindConflict:
		Write(c, http.StatusConflict, code, "The request conflicts with the current state.")
	case apperr.KindUpstream:
		Write(c, http.StatusBadGateway, "upstream_unavailable", "A dependency is unavailable.")
	default:
		Write(c, http.StatusInternalServerError, "internal_error", "Internal error.")
	}
}
