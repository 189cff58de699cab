package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/Freeeeeet/tutorhub/internal/service/views"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createBookingRequest struct {
	TutorID         string    `json:"tutor_id" validate:"required,uuid"`
	ChildID         string    `json:"child_id" validate:"required,uuid"`
	Subject         string    `json:"subject" validate:"notblank,max=100"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=15,max=480"`
	Format          string    `json:"format" validate:"omitempty,oneof=online in_person hybrid"`
	Fee             int       `json:"fee" validate:"min=0"`
	Notes           string    `json:"notes" validate:"max=2000"`
}

type updateStatusRequest struct {
	Status      string     `json:"status" validate:"required,oneof=pending confirmed completed cancelled rescheduled no_show"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Reason      string     `json:"reason" validate:"max=500"`
}

// CreateBooking handles POST /api/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.svc.Bookings.Create(c.Request.Context(), actorFrom(c), service.CreateBookingInput{
		TutorID:         uuid.MustParse(req.TutorID),
		ChildID:         uuid.MustParse(req.ChildID),
		Subject:         req.Subject,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Format:          model.LessonFormat(req.Format),
		Fee:             req.Fee,
		Notes:           req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListBookings handles GET /api/bookings?child_id=&subject=&status=a,b&from=&to=&view=upcoming|past
func (h *Handler) ListBookings(c *gin.Context) {
	filter, ok := bookingFilterFromQuery(c)
	if !ok {
		return
	}

	bookings, err := h.svc.Bookings.ListForActor(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	bookings = views.FilterBookings(bookings, filter)

	switch view := c.Query("view"); view {
	case "":
	case "upcoming", "past":
		upcoming, past := views.SplitUpcoming(bookings, h.now())
		if view == "upcoming" {
			bookings = upcoming
		} else {
			bookings = past
		}
	default:
		badRequest(c, "view must be upcoming or past")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// BookingStats handles GET /api/bookings/stats
func (h *Handler) BookingStats(c *gin.Context) {
	filter, ok := bookingFilterFromQuery(c)
	if !ok {
		return
	}

	bookings, err := h.svc.Bookings.ListForActor(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, views.Progress(views.FilterBookings(bookings, filter)))
}

// GetBooking handles GET /api/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	booking, err := h.svc.Bookings.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// UpdateBookingStatus handles PATCH /api/bookings/:id/status
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.svc.Bookings.UpdateStatus(c.Request.Context(), actorFrom(c), id, service.StatusChange{
		Status:      model.BookingStatus(req.Status),
		ScheduledAt: req.ScheduledAt,
		Reason:      req.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// DeleteBooking handles DELETE /api/bookings/:id
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Bookings.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func bookingFilterFromQuery(c *gin.Context) (views.BookingFilter, bool) {
	var f views.BookingFilter

	if s := c.Query("child_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			badRequest(c, "invalid child_id")
			return f, false
		}
		f.ChildID = id
	}
	f.Subject = c.Query("subject")

	if s := c.Query("status"); s != "" {
		for _, part := range strings.Split(s, ",") {
			status := model.BookingStatus(strings.TrimSpace(part))
			if !status.Valid() {
				badRequest(c, "invalid status "+string(status))
				return f, false
			}
			f.Statuses = append(f.Statuses, status)
		}
	}

	var ok bool
	if f.From, ok = queryTime(c, "from"); !ok {
		return f, false
	}
	if f.To, ok = queryTime(c, "to"); !ok {
		return f, false
	}
	return f, true
}

func queryTime(c *gin.Context, key string) (time.Time, bool) {
	s := c.Query(key)
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		badRequest(c, "invalid "+key+" (RFC3339 expected)")
		return time.Time{}, false
	}
	return t, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
