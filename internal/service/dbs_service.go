package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes is the certificate size limit (5 MiB)
const DefaultMaxUploadBytes int64 = 5 << 20

var allowedCertificateTypes = []string{"application/pdf", "image/jpeg", "image/png"}

type DBSStore interface {
	Create(ctx context.Context, rec *model.DBSRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.DBSRecord, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.DBSRecord, error)
	ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*model.DBSRecord, error)
	ListByStatus(ctx context.Context, status model.DBSStatus) ([]*model.DBSRecord, error)
	UpdateReview(ctx context.Context, rec *model.DBSRecord) error
	ExpireVerified(ctx context.Context, now time.Time) ([]*model.DBSRecord, error)
}

type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// UploadInput is a certificate upload from a tutor
type UploadInput struct {
	CertificateNumber string
	IssueDate         time.Time
	ExpiryDate        time.Time
	FileName          string
	Content           io.Reader
}

// ReviewDecision is an admin's verdict on a pending certificate
type ReviewDecision struct {
	Status model.DBSStatus // verified or rejected
	Reason string
}

type DBSService struct {
	tx            TxRunner
	records       DBSStore
	blobs         BlobStore
	notifications NotificationWriter
	logger        *zap.Logger
	maxBytes      int64
	now           func() time.Time
}

func NewDBSService(
	tx TxRunner,
	records DBSStore,
	blobs BlobStore,
	notifications NotificationWriter,
	logger *zap.Logger,
	maxBytes int64,
) *DBSService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &DBSService{
		tx:            tx,
		records:       records,
		blobs:         blobs,
		notifications: notifications,
		logger:        logger,
		maxBytes:      maxBytes,
		now:           time.Now,
	}
}

// Upload validates and stores a certificate, leaving it pending review
func (s *DBSService) Upload(ctx context.Context, actor Actor, in UploadInput) (*model.DBSRecord, error) {
	if !actor.IsTeacher() {
		return nil, fmt.Errorf("%w: only tutors upload DBS certificates", ErrForbiddenAction)
	}

	in.CertificateNumber = strings.TrimSpace(in.CertificateNumber)
	if in.CertificateNumber == "" {
		return nil, fmt.Errorf("%w: certificate number is required", ErrValidation)
	}
	if in.IssueDate.IsZero() || in.ExpiryDate.IsZero() {
		return nil, fmt.Errorf("%w: issue and expiry dates are required", ErrValidation)
	}
	if !in.ExpiryDate.After(in.IssueDate) {
		return nil, fmt.Errorf("%w: expiry date must be after issue date", ErrValidation)
	}
	if in.Content == nil {
		return nil, fmt.Errorf("%w: file is required", ErrValidation)
	}

	data, err := io.ReadAll(io.LimitReader(in.Content, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrValidation)
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedCertificateTypes...) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, mtype.String())
	}

	rec := &model.DBSRecord{
		ID:                uuid.New(),
		TutorID:           actor.ID,
		CertificateNumber: in.CertificateNumber,
		IssueDate:         in.IssueDate,
		ExpiryDate:        in.ExpiryDate,
		FileName:          path.Base(strings.ReplaceAll(in.FileName, "\\", "/")),
		ContentType:       mtype.String(),
		SizeBytes:         int64(len(data)),
		Status:            model.DBSStatusPending,
	}
	rec.FileKey = fmt.Sprintf("dbs/%s/%s%s", rec.TutorID, rec.ID, mtype.Extension())

	if err := s.blobs.Put(ctx, rec.FileKey, data); err != nil {
		return nil, fmt.Errorf("store certificate: %w", err)
	}

	if err := s.records.Create(ctx, rec); err != nil {
		if delErr := s.blobs.Delete(ctx, rec.FileKey); delErr != nil {
			s.logger.Warn("Failed to remove orphaned certificate",
				zap.String("file_key", rec.FileKey), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("DBS certificate uploaded",
		zap.String("record_id", rec.ID.String()),
		zap.String("tutor_id", actor.ID.String()),
		zap.String("content_type", rec.ContentType),
		zap.Int64("size_bytes", rec.SizeBytes),
	)

	return rec, nil
}

// Review records the admin decision on a pending certificate and notifies the tutor
func (s *DBSService) Review(ctx context.Context, actor Actor, id uuid.UUID, d ReviewDecision) (*model.DBSRecord, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins review DBS certificates", ErrForbiddenAction)
	}
	if d.Status != model.DBSStatusVerified && d.Status != model.DBSStatusRejected {
		return nil, fmt.Errorf("%w: decision must be verified or rejected", ErrValidation)
	}
	d.Reason = strings.TrimSpace(d.Reason)
	if d.Status == model.DBSStatusRejected && d.Reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}

	var rec *model.DBSRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.records.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrDBSNotFound
		}
		if !rec.IsPending() {
			return fmt.Errorf("%w: certificate is %s", ErrInvalidTransition, rec.Status)
		}

		now := s.now()
		reviewer := actor.ID
		rec.Status = d.Status
		rec.VerifiedBy = &reviewer
		rec.VerifiedAt = &now
		if d.Status == model.DBSStatusRejected {
			rec.RejectionReason = d.Reason
		}
		if d.Status == model.DBSStatusVerified && rec.IsExpiredAt(now) {
			rec.Status = model.DBSStatusExpired
		}

		if err := s.records.UpdateReview(ctx, rec); err != nil {
			return err
		}
		return s.notifications.Create(ctx, dbsNotification(rec))
	})
	if err != nil {
		return nil, fmt.Errorf("review dbs record: %w", err)
	}

	s.logger.Info("DBS certificate reviewed",
		zap.String("record_id", id.String()),
		zap.String("admin_id", actor.ID.String()),
		zap.String("status", string(rec.Status)),
	)

	return rec, nil
}

// ExpireOverdue rewrites verified certificates past their expiry date as
// expired and notifies each tutor. Returns the number of expired records.
func (s *DBSService) ExpireOverdue(ctx context.Context) (int, error) {
	var expired []*model.DBSRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		expired, err = s.records.ExpireVerified(ctx, s.now())
		if err != nil {
			return err
		}
		for _, rec := range expired {
			if err := s.notifications.Create(ctx, dbsNotification(rec)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("expire dbs records: %w", err)
	}

	if len(expired) > 0 {
		s.logger.Info("DBS certificates expired", zap.Int("count", len(expired)))
	}
	return len(expired), nil
}

// ListForTutor returns a tutor's certificates; tutors see their own, admins anyone's
func (s *DBSService) ListForTutor(ctx context.Context, actor Actor, tutorID uuid.UUID) ([]*model.DBSRecord, error) {
	if actor.ID != tutorID && !actor.IsAdmin() {
		return nil, ErrNotOwner
	}
	return s.records.ListByTutor(ctx, tutorID)
}

// ListPending is the admin review queue
func (s *DBSService) ListPending(ctx context.Context, actor Actor) ([]*model.DBSRecord, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins review DBS certificates", ErrForbiddenAction)
	}
	return s.records.ListByStatus(ctx, model.DBSStatusPending)
}

// OpenFile returns the certificate file for the owning tutor or an admin.
// The caller closes the reader.
func (s *DBSService) OpenFile(ctx context.Context, actor Actor, id uuid.UUID) (*model.DBSRecord, io.ReadCloser, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get dbs record: %w", err)
	}
	if rec == nil {
		return nil, nil, ErrDBSNotFound
	}
	if rec.TutorID != actor.ID && !actor.IsAdmin() {
		return nil, nil, ErrNotOwner
	}

	rc, err := s.blobs.Open(ctx, rec.FileKey)
	if err != nil {
		return nil, nil, fmt.Errorf("open certificate: %w", err)
	}
	return rec, rc, nil
}

// Now exposes the service clock for presenting effective statuses
func (s *DBSService) Now() time.Time {
	return s.now()
}

