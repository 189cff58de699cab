package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrTutorNotFound, http.StatusNotFound},
	{service.ErrChildNotFound, http.StatusNotFound},
	{service.ErrBookingNotFound, http.StatusNotFound},
	{service.ErrDBSNotFound, http.StatusNotFound},
	{service.ErrNotificationNotFound, http.StatusNotFound},
	{service.ErrNotParty, http.StatusForbidden},
	{service.ErrNotOwner, http.StatusForbidden},
	{service.ErrForbiddenAction, http.StatusForbidden},
	{service.ErrInvalidTransition, http.StatusConflict},
	{service.ErrAlreadyReviewed, http.StatusConflict},
	{service.ErrChildHasBookings, http.StatusConflict},
	{service.ErrBookingReviewed, http.StatusConflict},
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrInvalidLinkCode, http.StatusBadRequest},
	{service.ErrUnsupportedFileType, http.StatusUnsupportedMediaType},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
}

// respondError maps service errors to a status and a short message.
// Anything unknown is logged and reported as an internal error.
func (h *Handler) respondError(c *gin.Context, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			c.AbortWithStatusJSON(e.status, gin.H{"error": publicMessage(err, e.err)})
			return
		}
	}

	h.logger.Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// publicMessage drops the operation prefixes added while the error bubbled up
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return sentinel.Error()
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
