package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "pmblueprints/pkg/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

var statusLabels = map[int]string{
	http.StatusBadRequest:      "validation_error",
	http.StatusUnauthorized:    "unauthorized",
	http.StatusForbidden:       "forbidden",
	http.StatusNotFound:        "not_found",
	http.StatusConflict:        "already_exists",
	http.StatusTooManyRequests: "quota_exceeded",
}

// handleError converts usecase errors to appropriate HTTP responses.
func handleError(c *gin.Context, log *zap.Logger, err error) {
	status := apperrors.StatusOf(err)
	label, ok := statusLabels[status]
	if !ok {
		label = "internal_error"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		message = "An internal error occurred"
	}

	c.JSON(status, ErrorResponse{Error: label, Message: message})
}

// pathID parses a positive int64 path parameter. A zero return means
// the response has already been written.
func pathID(c *gin.Context, name string) int64 {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: name + " must be a valid number",
		})
		return 0
	}
	return id
}
