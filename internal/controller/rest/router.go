package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires middleware and routes
func NewRouter(h *Handler, auth *Authenticator, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(logger), Recovery(logger))
	r.MaxMultipartMemory = h.maxUploadBytes

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", auth.Middleware())

	bookings := api.Group("/bookings")
	bookings.POST("", h.CreateBooking)
	bookings.GET("", h.ListBookings)
	bookings.GET("/stats", h.BookingStats)
	bookings.GET("/:id", h.GetBooking)
	bookings.PATCH("/:id/status", h.UpdateBookingStatus)
	bookings.DELETE("/:id", h.DeleteBooking)

	children := api.Group("/children")
	children.GET("", h.ListChildren)
	children.POST("", h.CreateChild)
	children.PUT("/:id", h.UpdateChild)
	children.DELETE("/:id", h.DeleteChild)

	dbs := api.Group("/dbs")
	dbs.POST("", h.UploadDBS)
	dbs.GET("", h.ListDBS)
	dbs.GET("/pending", h.ListPendingDBS)
	dbs.POST("/:id/review", h.ReviewDBS)
	dbs.GET("/:id/file", h.DownloadDBS)

	notifications := api.Group("/notifications")
	notifications.GET("", h.ListNotifications)
	notifications.POST("/read-all", h.MarkAllNotificationsRead)
	notifications.POST("/:id/read", h.MarkNotificationRead)

	api.POST("/reviews", h.CreateReview)
	api.GET("/tutors", h.SearchTutors)
	api.GET("/tutors/:id/reviews", h.TutorReviews)
	api.POST("/telegram/link-code", h.IssueLinkCode)

	return r
}

// RequestLogger logs one line per request
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if actor := actorFrom(c); actor.Role != "" {
			fields = append(fields, zap.String("actor_id", actor.ID.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Debug("HTTP request", fields...)
		}
	}
}

// Recovery turns panics into 500 responses
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic in handler",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
		}()
		c.Next()
	}
}
