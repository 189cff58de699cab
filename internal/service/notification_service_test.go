package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent    map[int64][]string
	failOn  int64
	failErr error
	calls   int
}

func (f *fakeSender) Send(_ context.Context, telegramID int64, n *model.Notification) error {
	f.calls++
	if telegramID == f.failOn {
		if f.failErr != nil {
			return f.failErr
		}
		return errors.New("too many requests")
	}
	if f.sent == nil {
		f.sent = make(map[int64][]string)
	}
	f.sent[telegramID] = append(f.sent[telegramID], n.Title)
	return nil
}

func TestNotificationService_ReadFlags(t *testing.T) {
	store := newFakeNotifications()
	svc := NewNotificationService(store, zap.NewNop())
	ctx := context.Background()
	user := Actor{ID: uuid.New(), Role: model.UserTypeParent}
	other := Actor{ID: uuid.New(), Role: model.UserTypeTeacher}

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Create(ctx, &model.Notification{UserID: user.ID, Title: "hi"}))
	}
	require.NoError(t, store.Create(ctx, &model.Notification{UserID: other.ID, Title: "hi"}))

	all, err := svc.List(ctx, user, false, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	require.NoError(t, svc.MarkRead(ctx, user, all[0].ID))
	assert.ErrorIs(t, svc.MarkRead(ctx, other, all[1].ID), ErrNotificationNotFound)

	unread, err := svc.List(ctx, user, true, 0)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	n, err := svc.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	unread, err = svc.List(ctx, user, true, 0)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestNotificationService_DispatchPending(t *testing.T) {
	store := newFakeNotifications()
	svc := NewNotificationService(store, zap.NewNop())
	ctx := context.Background()

	linked, broken, unlinked := uuid.New(), uuid.New(), uuid.New()
	store.telegram[linked] = 100
	store.telegram[broken] = 200
	for _, id := range []uuid.UUID{linked, linked, broken, unlinked} {
		require.NoError(t, store.Create(ctx, &model.Notification{UserID: id, Title: "Booking confirmed"}))
	}

	delivered, err := svc.DispatchPending(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, delivered, "no sender installed")

	sender := &fakeSender{failOn: 200}
	svc.SetSender(sender)

	delivered, err = svc.DispatchPending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, delivered)
	assert.Len(t, sender.sent[100], 2)

	for _, n := range store.forUser(broken) {
		assert.Nil(t, n.DeliveredAt, "failed sends stay pending")
		assert.Equal(t, 1, store.attempts[n.ID])
		assert.False(t, store.dropped[n.ID])
	}
	for _, n := range store.forUser(unlinked) {
		assert.Nil(t, n.DeliveredAt)
	}

	delivered, err = svc.DispatchPending(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, delivered)
}

func TestNotificationService_DispatchSkipsFailingBacklog(t *testing.T) {
	store := newFakeNotifications()
	svc := NewNotificationService(store, zap.NewNop())
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	blocked, healthy := uuid.New(), uuid.New()
	store.telegram[blocked] = 200
	store.telegram[healthy] = 100
	for i := 0; i < 100; i++ {
		require.NoError(t, store.Create(ctx, &model.Notification{UserID: blocked, Title: "Booking confirmed"}))
	}
	require.NoError(t, store.Create(ctx, &model.Notification{UserID: healthy, Title: "New booking"}))

	sender := &fakeSender{failOn: 200}
	svc.SetSender(sender)

	delivered, err := svc.DispatchPending(ctx, 100)
	require.NoError(t, err)
	assert.Zero(t, delivered, "the whole batch failed")

	delivered, err = svc.DispatchPending(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, []string{"New booking"}, sender.sent[100])

	// retries back off 1, 2, 4, 8 minutes and the fifth failure drops the row
	for _, wait := range []time.Duration{time.Minute, 2 * time.Minute, 4 * time.Minute, 8 * time.Minute} {
		now = now.Add(wait)
		_, err := svc.DispatchPending(ctx, 100)
		require.NoError(t, err)
	}
	for _, n := range store.forUser(blocked) {
		assert.Equal(t, maxDeliveryAttempts, store.attempts[n.ID])
		assert.True(t, store.dropped[n.ID])
		assert.Nil(t, n.DeliveredAt)
	}

	calls := sender.calls
	now = now.Add(time.Hour)
	delivered, err = svc.DispatchPending(ctx, 100)
	require.NoError(t, err)
	assert.Zero(t, delivered)
	assert.Equal(t, calls, sender.calls, "dropped rows are not retried")
}

func TestNotificationService_DispatchDropsUnreachableChat(t *testing.T) {
	store := newFakeNotifications()
	svc := NewNotificationService(store, zap.NewNop())
	ctx := context.Background()

	user := uuid.New()
	store.telegram[user] = 200
	require.NoError(t, store.Create(ctx, &model.Notification{UserID: user, Title: "Booking cancelled"}))

	svc.SetSender(&fakeSender{failOn: 200, failErr: fmt.Errorf("send: %w: forbidden", ErrUndeliverable)})

	delivered, err := svc.DispatchPending(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, delivered)

	n := store.forUser(user)[0]
	assert.True(t, store.dropped[n.ID])
	assert.Equal(t, 1, store.attempts[n.ID])
}
