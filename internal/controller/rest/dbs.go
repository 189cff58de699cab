package rest

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// multipart framing allowance on top of the file limit
const multipartOverhead = 64 << 10

type uploadDBSForm struct {
	CertificateNumber string `form:"certificate_number" validate:"notblank,max=64"`
	IssueDate         string `form:"issue_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate        string `form:"expiry_date" validate:"required,datetime=2006-01-02"`
}

type reviewDBSRequest struct {
	Status string `json:"status" validate:"required,oneof=verified rejected"`
	Reason string `json:"reason" validate:"max=500"`
}

// dbsResponse adds the status as of now, which differs from the stored one
// for verified certificates past their expiry date
type dbsResponse struct {
	*model.DBSRecord
	EffectiveStatus model.DBSStatus `json:"effective_status"`
}

func (h *Handler) dbsResponses(records []*model.DBSRecord) []dbsResponse {
	now := h.svc.DBS.Now()
	out := make([]dbsResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, dbsResponse{DBSRecord: rec, EffectiveStatus: rec.EffectiveStatus(now)})
	}
	return out
}

// UploadDBS handles POST /api/dbs (multipart: file, certificate_number, issue_date, expiry_date)
func (h *Handler) UploadDBS(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	var form uploadDBSForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(c, fmt.Errorf("%w: limit is %d bytes", service.ErrFileTooLarge, h.maxUploadBytes))
			return
		}
		badRequest(c, "invalid multipart form")
		return
	}
	if !validateRequest(c, &form) {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		h.respondError(c, fmt.Errorf("%w: limit is %d bytes", service.ErrFileTooLarge, h.maxUploadBytes))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	issue, _ := time.Parse(dateLayout, form.IssueDate)
	expiry, _ := time.Parse(dateLayout, form.ExpiryDate)

	rec, err := h.svc.DBS.Upload(c.Request.Context(), actorFrom(c), service.UploadInput{
		CertificateNumber: form.CertificateNumber,
		IssueDate:         issue,
		ExpiryDate:        expiry,
		FileName:          fileHeader.Filename,
		Content:           file,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dbsResponse{DBSRecord: rec, EffectiveStatus: rec.EffectiveStatus(h.svc.DBS.Now())})
}

// ListDBS handles GET /api/dbs. Admins may pass tutor_id.
func (h *Handler) ListDBS(c *gin.Context) {
	actor := actorFrom(c)
	tutorID := actor.ID
	if s := c.Query("tutor_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			badRequest(c, "invalid tutor_id")
			return
		}
		tutorID = id
	}

	records, err := h.svc.DBS.ListForTutor(c.Request.Context(), actor, tutorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.dbsResponses(records))
}

// ListPendingDBS handles GET /api/dbs/pending
func (h *Handler) ListPendingDBS(c *gin.Context) {
	records, err := h.svc.DBS.ListPending(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.dbsResponses(records))
}

// ReviewDBS handles POST /api/dbs/:id/review
func (h *Handler) ReviewDBS(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reviewDBSRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.svc.DBS.Review(c.Request.Context(), actorFrom(c), id, service.ReviewDecision{
		Status: model.DBSStatus(req.Status),
		Reason: req.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dbsResponse{DBSRecord: rec, EffectiveStatus: rec.EffectiveStatus(h.svc.DBS.Now())})
}

// DownloadDBS handles GET /api/dbs/:id/file
func (h *Handler) DownloadDBS(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	rec, rc, err := h.svc.DBS.OpenFile(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, rec.SizeBytes, rec.ContentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", rec.FileName),
	})
}
