package rest

import (
	"net/http"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/gin-gonic/gin"
)

type childRequest struct {
	FirstName          string                        `json:"first_name" validate:"notblank,max=100"`
	YearGroup          string                        `json:"year_group" validate:"max=50"`
	SubjectsOfInterest []string                      `json:"subjects_of_interest" validate:"max=20,dive,max=100"`
	Levels             map[string]model.SubjectLevel `json:"levels"`
}

func (r childRequest) input() service.ChildInput {
	return service.ChildInput{
		FirstName:          r.FirstName,
		YearGroup:          r.YearGroup,
		SubjectsOfInterest: r.SubjectsOfInterest,
		Levels:             r.Levels,
	}
}

// ListChildren handles GET /api/children
func (h *Handler) ListChildren(c *gin.Context) {
	children, err := h.svc.Children.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, children)
}

// CreateChild handles POST /api/children
func (h *Handler) CreateChild(c *gin.Context) {
	var req childRequest
	if !bindJSON(c, &req) {
		return
	}

	child, err := h.svc.Children.Create(c.Request.Context(), actorFrom(c), req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, child)
}

// UpdateChild handles PUT /api/children/:id
func (h *Handler) UpdateChild(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req childRequest
	if !bindJSON(c, &req) {
		return
	}

	child, err := h.svc.Children.Update(c.Request.Context(), actorFrom(c), id, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, child)
}

// DeleteChild handles DELETE /api/children/:id
func (h *Handler) DeleteChild(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Children.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
