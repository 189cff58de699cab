package rest

import (
	"context"
	"io"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/Freeeeeet/tutorhub/internal/service/views"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingAPI interface {
	Create(ctx context.Context, actor service.Actor, in service.CreateBookingInput) (*model.Booking, error)
	Get(ctx context.Context, actor service.Actor, id uuid.UUID) (*model.Booking, error)
	ListForActor(ctx context.Context, actor service.Actor) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, actor service.Actor, id uuid.UUID, change service.StatusChange) (*model.Booking, error)
	Delete(ctx context.Context, actor service.Actor, id uuid.UUID) error
}

type ChildAPI interface {
	Create(ctx context.Context, actor service.Actor, in service.ChildInput) (*model.Child, error)
	List(ctx context.Context, actor service.Actor) ([]*model.Child, error)
	Update(ctx context.Context, actor service.Actor, id uuid.UUID, in service.ChildInput) (*model.Child, error)
	Delete(ctx context.Context, actor service.Actor, id uuid.UUID) error
}

type DBSAPI interface {
	Upload(ctx context.Context, actor service.Actor, in service.UploadInput) (*model.DBSRecord, error)
	Review(ctx context.Context, actor service.Actor, id uuid.UUID, d service.ReviewDecision) (*model.DBSRecord, error)
	ListForTutor(ctx context.Context, actor service.Actor, tutorID uuid.UUID) ([]*model.DBSRecord, error)
	ListPending(ctx context.Context, actor service.Actor) ([]*model.DBSRecord, error)
	OpenFile(ctx context.Context, actor service.Actor, id uuid.UUID) (*model.DBSRecord, io.ReadCloser, error)
	Now() time.Time
}

type NotificationAPI interface {
	List(ctx context.Context, actor service.Actor, unreadOnly bool, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, actor service.Actor, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor service.Actor) (int64, error)
}

type ReviewAPI interface {
	Create(ctx context.Context, actor service.Actor, in service.CreateReviewInput) (*model.Review, error)
	ListForTutor(ctx context.Context, tutorID uuid.UUID) ([]*model.Review, model.TutorRating, error)
}

type TutorAPI interface {
	Search(ctx context.Context, f views.TutorFilter) ([]views.TutorResult, error)
}

type UserAPI interface {
	IssueLinkCode(ctx context.Context, actor service.Actor) (uuid.UUID, error)
}

// Services groups the dependencies of the HTTP handlers
type Services struct {
	Bookings      BookingAPI
	Children      ChildAPI
	DBS           DBSAPI
	Notifications NotificationAPI
	Reviews       ReviewAPI
	Tutors        TutorAPI
	Users         UserAPI
}

type Handler struct {
	svc            Services
	logger         *zap.Logger
	maxUploadBytes int64
	now            func() time.Time
}

func NewHandler(svc Services, logger *zap.Logger, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = service.DefaultMaxUploadBytes
	}
	return &Handler{
		svc:            svc,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}
