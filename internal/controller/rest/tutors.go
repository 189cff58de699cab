package rest

import (
	"net/http"
	"strconv"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/Freeeeeet/tutorhub/internal/service/views"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createReviewRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// SearchTutors handles GET /api/tutors?subject=&format=&max_rate=&min_rating=&verified=&q=
func (h *Handler) SearchTutors(c *gin.Context) {
	f := views.TutorFilter{
		Subject: c.Query("subject"),
		Format:  model.LessonFormat(c.Query("format")),
		Query:   c.Query("q"),
	}

	if s := c.Query("max_rate"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			badRequest(c, "invalid max_rate")
			return
		}
		f.MaxRate = v
	}
	if s := c.Query("min_rating"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			badRequest(c, "invalid min_rating")
			return
		}
		f.MinRating = v
	}
	if s := c.Query("verified"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			badRequest(c, "invalid verified flag")
			return
		}
		f.VerifiedOnly = v
	}

	results, err := h.svc.Tutors.Search(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// TutorReviews handles GET /api/tutors/:id/reviews
func (h *Handler) TutorReviews(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	reviews, rating, err := h.svc.Reviews.ListForTutor(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "rating": rating})
}

// CreateReview handles POST /api/reviews
func (h *Handler) CreateReview(c *gin.Context) {
	var req createReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.svc.Reviews.Create(c.Request.Context(), actorFrom(c), service.CreateReviewInput{
		BookingID: uuid.MustParse(req.BookingID),
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// IssueLinkCode handles POST /api/telegram/link-code
func (h *Handler) IssueLinkCode(c *gin.Context) {
	code, err := h.svc.Users.IssueLinkCode(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":    code,
		"command": "/start " + code.String(),
	})
}
