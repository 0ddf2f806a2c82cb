package response

import (
	"errors"
	"log"
	"net/http"

	"bookstore/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the wire format for every error response.
type ErrorBody struct {
	Message string `json:"message"`
}

// Error writes an error body with the given status code.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Message: message})
}

// AbortError writes an error body and aborts the handler chain.
func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Message: message})
}

// FromError maps a domain error to its HTTP status and writes the error
// body. Every handler funnels service failures through here so the
// kind→status mapping lives in exactly one place. Wrapped causes stay
// server-side; the client only ever sees the message.
func FromError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := statusOf(appErr.Kind)
	// An upstream rejection of our request (no cause, e.g. bad
	// credentials) is the caller's fault; a transport or protocol
	// failure talking to the provider is not.
	if appErr.Kind == apperror.KindUpstream && appErr.Unwrap() != nil {
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		log.Printf("%d on %s %s: %v", status, c.Request.Method, c.Request.URL.Path, err)
		if status == http.StatusInternalServerError {
			Error(c, status, "Internal server error")
			return
		}
	}
	Error(c, status, appErr.Message)
}

func statusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindInvalid, apperror.KindAlreadyExists, apperror.KindUpstream:
		return http.StatusBadRequest
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
