package rest

import (
	"context"
	"io"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/Freeeeeet/tutorhub/internal/service/views"
	"github.com/google/uuid"
)

type stubBookings struct {
	created  service.CreateBookingInput
	change   service.StatusChange
	list     []*model.Booking
	err      error
	deleted  uuid.UUID
	lastUser service.Actor
}

func (s *stubBookings) Create(_ context.Context, actor service.Actor, in service.CreateBookingInput) (*model.Booking, error) {
	s.created, s.lastUser = in, actor
	if s.err != nil {
		return nil, s.err
	}
	return &model.Booking{
		ID:              uuid.New(),
		ParentID:        actor.ID,
		TutorID:         in.TutorID,
		ChildID:         in.ChildID,
		Subject:         in.Subject,
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: in.DurationMinutes,
		Status:          model.BookingStatusPending,
		ParentConfirmed: true,
	}, nil
}

func (s *stubBookings) Get(_ context.Context, _ service.Actor, id uuid.UUID) (*model.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Booking{ID: id}, nil
}

func (s *stubBookings) ListForActor(_ context.Context, actor service.Actor) ([]*model.Booking, error) {
	s.lastUser = actor
	return s.list, s.err
}

func (s *stubBookings) UpdateStatus(_ context.Context, _ service.Actor, id uuid.UUID, change service.StatusChange) (*model.Booking, error) {
	s.change = change
	if s.err != nil {
		return nil, s.err
	}
	return &model.Booking{ID: id, Status: change.Status}, nil
}

func (s *stubBookings) Delete(_ context.Context, _ service.Actor, id uuid.UUID) error {
	s.deleted = id
	return s.err
}

type stubChildren struct {
	in  service.ChildInput
	err error
}

func (s *stubChildren) Create(_ context.Context, actor service.Actor, in service.ChildInput) (*model.Child, error) {
	s.in = in
	if s.err != nil {
		return nil, s.err
	}
	return &model.Child{ID: uuid.New(), ParentID: actor.ID, FirstName: in.FirstName}, nil
}

func (s *stubChildren) List(context.Context, service.Actor) ([]*model.Child, error) {
	return []*model.Child{}, s.err
}

func (s *stubChildren) Update(_ context.Context, _ service.Actor, id uuid.UUID, in service.ChildInput) (*model.Child, error) {
	s.in = in
	if s.err != nil {
		return nil, s.err
	}
	return &model.Child{ID: id, FirstName: in.FirstName}, nil
}

func (s *stubChildren) Delete(context.Context, service.Actor, uuid.UUID) error {
	return s.err
}

type stubDBS struct {
	upload  service.UploadInput
	content []byte
	records []*model.DBSRecord
	file    []byte
	now     time.Time
	err     error
}

func (s *stubDBS) Upload(_ context.Context, actor service.Actor, in service.UploadInput) (*model.DBSRecord, error) {
	s.upload = in
	data, err := io.ReadAll(in.Content)
	if err != nil {
		return nil, err
	}
	s.content = data
	if s.err != nil {
		return nil, s.err
	}
	return &model.DBSRecord{
		ID:                uuid.New(),
		TutorID:           actor.ID,
		CertificateNumber: in.CertificateNumber,
		IssueDate:         in.IssueDate,
		ExpiryDate:        in.ExpiryDate,
		FileName:          in.FileName,
		Status:            model.DBSStatusPending,
	}, nil
}

func (s *stubDBS) Review(_ context.Context, _ service.Actor, id uuid.UUID, d service.ReviewDecision) (*model.DBSRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.DBSRecord{ID: id, Status: d.Status, ExpiryDate: s.now.AddDate(1, 0, 0)}, nil
}

func (s *stubDBS) ListForTutor(context.Context, service.Actor, uuid.UUID) ([]*model.DBSRecord, error) {
	return s.records, s.err
}

func (s *stubDBS) ListPending(context.Context, service.Actor) ([]*model.DBSRecord, error) {
	return s.records, s.err
}

func (s *stubDBS) OpenFile(_ context.Context, _ service.Actor, id uuid.UUID) (*model.DBSRecord, io.ReadCloser, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	rec := &model.DBSRecord{ID: id, FileName: "dbs.pdf", ContentType: "application/pdf", SizeBytes: int64(len(s.file))}
	return rec, io.NopCloser(bytesReader(s.file)), nil
}

func (s *stubDBS) Now() time.Time { return s.now }

type stubNotifications struct {
	unreadOnly bool
	limit      int
	err        error
}

func (s *stubNotifications) List(_ context.Context, actor service.Actor, unreadOnly bool, limit int) ([]*model.Notification, error) {
	s.unreadOnly, s.limit = unreadOnly, limit
	return []*model.Notification{{ID: uuid.New(), UserID: actor.ID, Title: "Booking confirmed"}}, s.err
}

func (s *stubNotifications) MarkRead(context.Context, service.Actor, uuid.UUID) error {
	return s.err
}

func (s *stubNotifications) MarkAllRead(context.Context, service.Actor) (int64, error) {
	return 3, s.err
}

type stubReviews struct {
	in  service.CreateReviewInput
	err error
}

func (s *stubReviews) Create(_ context.Context, actor service.Actor, in service.CreateReviewInput) (*model.Review, error) {
	s.in = in
	if s.err != nil {
		return nil, s.err
	}
	return &model.Review{ID: uuid.New(), BookingID: in.BookingID, ParentID: actor.ID, Rating: in.Rating}, nil
}

func (s *stubReviews) ListForTutor(_ context.Context, tutorID uuid.UUID) ([]*model.Review, model.TutorRating, error) {
	return []*model.Review{{TutorID: tutorID, Rating: 4}}, model.TutorRating{TutorID: tutorID, Average: 4, Count: 1}, s.err
}

type stubTutors struct {
	filter views.TutorFilter
	err    error
}

func (s *stubTutors) Search(_ context.Context, f views.TutorFilter) ([]views.TutorResult, error) {
	s.filter = f
	return []views.TutorResult{}, s.err
}

type stubUsers struct {
	code uuid.UUID
}

func (s *stubUsers) IssueLinkCode(context.Context, service.Actor) (uuid.UUID, error) {
	return s.code, nil
}
