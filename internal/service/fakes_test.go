package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository"
	"github.com/google/uuid"
)

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeBookings struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]model.Booking
	reviewed map[uuid.UUID]bool
	locks    int
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{rows: make(map[uuid.UUID]model.Booking), reviewed: make(map[uuid.UUID]bool)}
}

func (f *fakeBookings) Create(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	f.rows[b.ID] = *b
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeBookings) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	f.mu.Lock()
	f.locks++
	f.mu.Unlock()
	return f.GetByID(ctx, id)
}

func (f *fakeBookings) listWhere(match func(model.Booking) bool) []*model.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range f.rows {
		if match(b) {
			b := b
			out = append(out, &b)
		}
	}
	return out
}

func (f *fakeBookings) ListByParent(_ context.Context, parentID uuid.UUID) ([]*model.Booking, error) {
	return f.listWhere(func(b model.Booking) bool { return b.ParentID == parentID }), nil
}

func (f *fakeBookings) ListByTutor(_ context.Context, tutorID uuid.UUID) ([]*model.Booking, error) {
	return f.listWhere(func(b model.Booking) bool { return b.TutorID == tutorID }), nil
}

func (f *fakeBookings) ListAll(context.Context) ([]*model.Booking, error) {
	return f.listWhere(func(model.Booking) bool { return true }), nil
}

func (f *fakeBookings) UpdateStatus(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[b.ID]; !ok {
		return errors.New("booking not found")
	}
	b.UpdatedAt = time.Now()
	f.rows[b.ID] = *b
	return nil
}

func (f *fakeBookings) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return 0, nil
	}
	delete(f.rows, id)
	return 1, nil
}

func (f *fakeBookings) HasReview(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reviewed[id], nil
}

func (f *fakeBookings) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeChildren struct {
	rows     map[uuid.UUID]model.Child
	bookings map[uuid.UUID]int
}

func newFakeChildren() *fakeChildren {
	return &fakeChildren{rows: make(map[uuid.UUID]model.Child), bookings: make(map[uuid.UUID]int)}
}

func (f *fakeChildren) add(parentID uuid.UUID, name string) *model.Child {
	c := model.Child{ID: uuid.New(), ParentID: parentID, FirstName: name, Levels: map[string]model.SubjectLevel{}}
	f.rows[c.ID] = c
	return &c
}

func (f *fakeChildren) Create(_ context.Context, c *model.Child) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeChildren) GetByID(_ context.Context, id uuid.UUID) (*model.Child, error) {
	c, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeChildren) ListByParent(_ context.Context, parentID uuid.UUID) ([]*model.Child, error) {
	out := []*model.Child{}
	for _, c := range f.rows {
		if c.ParentID == parentID {
			c := c
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeChildren) Update(_ context.Context, c *model.Child) error {
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeChildren) CountBookings(_ context.Context, childID uuid.UUID) (int, error) {
	return f.bookings[childID], nil
}

func (f *fakeChildren) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

type fakeUsers struct {
	rows map[uuid.UUID]*model.User
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{rows: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		f.rows[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return f.rows[id], nil
}

func (f *fakeUsers) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	for _, u := range f.rows {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByLinkCode(_ context.Context, code uuid.UUID) (*model.User, error) {
	for _, u := range f.rows {
		if u.TelegramLinkCode != nil && *u.TelegramLinkCode == code {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) SetLinkCode(_ context.Context, userID uuid.UUID, code uuid.UUID) error {
	u, ok := f.rows[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.TelegramLinkCode = &code
	return nil
}

func (f *fakeUsers) LinkTelegram(_ context.Context, userID uuid.UUID, telegramID int64) error {
	for _, u := range f.rows {
		if u.ID != userID && u.TelegramID != nil && *u.TelegramID == telegramID {
			u.TelegramID = nil
		}
	}
	u, ok := f.rows[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.TelegramID = &telegramID
	u.TelegramLinkCode = nil
	return nil
}

func (f *fakeUsers) ListTutors(context.Context) ([]*model.User, error) {
	out := []*model.User{}
	for _, u := range f.rows {
		if u.IsTeacher() {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeNotifications struct {
	mu        sync.Mutex
	rows      []*model.Notification
	telegram  map[uuid.UUID]int64
	attempts  map[uuid.UUID]int
	retryAt   map[uuid.UUID]time.Time
	dropped   map[uuid.UUID]bool
	createErr error
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{
		telegram: make(map[uuid.UUID]int64),
		attempts: make(map[uuid.UUID]int),
		retryAt:  make(map[uuid.UUID]time.Time),
		dropped:  make(map[uuid.UUID]bool),
	}
}

func (f *fakeNotifications) Create(_ context.Context, n *model.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	f.rows = append(f.rows, n)
	return nil
}

func (f *fakeNotifications) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*model.Notification, error) {
	out := []*model.Notification{}
	for _, n := range f.rows {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, userID, id uuid.UUID) (bool, error) {
	for _, n := range f.rows {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	var affected int64
	for _, n := range f.rows {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			affected++
		}
	}
	return affected, nil
}

func (f *fakeNotifications) ListUndelivered(_ context.Context, now time.Time, limit int) ([]repository.PendingDelivery, error) {
	out := []repository.PendingDelivery{}
	for _, n := range f.rows {
		chat, ok := f.telegram[n.UserID]
		if !ok || n.DeliveredAt != nil || f.dropped[n.ID] || f.retryAt[n.ID].After(now) {
			continue
		}
		out = append(out, repository.PendingDelivery{Notification: n, TelegramID: chat, Attempts: f.attempts[n.ID]})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeNotifications) MarkDelivered(_ context.Context, id uuid.UUID) error {
	for _, n := range f.rows {
		if n.ID == id {
			now := time.Now()
			n.DeliveredAt = &now
		}
	}
	return nil
}

func (f *fakeNotifications) ScheduleRetry(_ context.Context, id uuid.UUID, at time.Time) error {
	f.attempts[id]++
	f.retryAt[id] = at
	return nil
}

func (f *fakeNotifications) MarkUndeliverable(_ context.Context, id uuid.UUID) error {
	f.attempts[id]++
	f.dropped[id] = true
	return nil
}

func (f *fakeNotifications) forUser(userID uuid.UUID) []*model.Notification {
	out := []*model.Notification{}
	for _, n := range f.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakeDBS struct {
	rows map[uuid.UUID]model.DBSRecord
}

func newFakeDBS() *fakeDBS {
	return &fakeDBS{rows: make(map[uuid.UUID]model.DBSRecord)}
}

func (f *fakeDBS) Create(_ context.Context, rec *model.DBSRecord) error {
	rec.CreatedAt = time.Now()
	f.rows[rec.ID] = *rec
	return nil
}

func (f *fakeDBS) GetByID(_ context.Context, id uuid.UUID) (*model.DBSRecord, error) {
	rec, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeDBS) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.DBSRecord, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeDBS) ListByTutor(_ context.Context, tutorID uuid.UUID) ([]*model.DBSRecord, error) {
	return f.ListByTutors(context.Background(), []uuid.UUID{tutorID})
}

func (f *fakeDBS) ListByTutors(_ context.Context, tutorIDs []uuid.UUID) ([]*model.DBSRecord, error) {
	out := []*model.DBSRecord{}
	for _, rec := range f.rows {
		for _, id := range tutorIDs {
			if rec.TutorID == id {
				rec := rec
				out = append(out, &rec)
			}
		}
	}
	return out, nil
}

func (f *fakeDBS) ListByStatus(_ context.Context, status model.DBSStatus) ([]*model.DBSRecord, error) {
	out := []*model.DBSRecord{}
	for _, rec := range f.rows {
		if rec.Status == status {
			rec := rec
			out = append(out, &rec)
		}
	}
	return out, nil
}

func (f *fakeDBS) UpdateReview(_ context.Context, rec *model.DBSRecord) error {
	f.rows[rec.ID] = *rec
	return nil
}

func (f *fakeDBS) ExpireVerified(_ context.Context, now time.Time) ([]*model.DBSRecord, error) {
	out := []*model.DBSRecord{}
	for id, rec := range f.rows {
		if rec.Status == model.DBSStatusVerified && rec.ExpiryDate.Before(now) {
			rec.Status = model.DBSStatusExpired
			f.rows[id] = rec
			rec := rec
			out = append(out, &rec)
		}
	}
	return out, nil
}

type fakeBlobs struct {
	data map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{data: make(map[string][]byte)}
}

func (f *fakeBlobs) Put(_ context.Context, key string, data []byte) error {
	f.data[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeBlobs) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.data[key]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

type fakeReviews struct {
	rows      []*model.Review
	createErr error
}

func (f *fakeReviews) Create(_ context.Context, rv *model.Review) error {
	if f.createErr != nil {
		return f.createErr
	}
	rv.ID = uuid.New()
	rv.CreatedAt = time.Now()
	f.rows = append(f.rows, rv)
	return nil
}

func (f *fakeReviews) GetByBookingID(_ context.Context, bookingID uuid.UUID) (*model.Review, error) {
	for _, rv := range f.rows {
		if rv.BookingID == bookingID {
			return rv, nil
		}
	}
	return nil, nil
}

func (f *fakeReviews) ListByTutor(_ context.Context, tutorID uuid.UUID) ([]*model.Review, error) {
	out := []*model.Review{}
	for _, rv := range f.rows {
		if rv.TutorID == tutorID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (f *fakeReviews) RatingsByTutors(_ context.Context, tutorIDs []uuid.UUID) (map[uuid.UUID]model.TutorRating, error) {
	sums := make(map[uuid.UUID]int)
	out := make(map[uuid.UUID]model.TutorRating)
	for _, rv := range f.rows {
		for _, id := range tutorIDs {
			if rv.TutorID == id {
				r := out[id]
				r.TutorID = id
				r.Count++
				sums[id] += rv.Rating
				r.Average = float64(sums[id]) / float64(r.Count)
				out[id] = r
			}
		}
	}
	return out, nil
}
