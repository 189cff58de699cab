package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service/views"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTutorService_Search(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ann := &model.User{ID: uuid.New(), UserType: model.UserTypeTeacher, FirstName: "Ann", Subjects: []string{"Maths"}}
	ben := &model.User{ID: uuid.New(), UserType: model.UserTypeTeacher, FirstName: "Ben", Subjects: []string{"Maths"}}
	parent := &model.User{ID: uuid.New(), UserType: model.UserTypeParent, FirstName: "Pat"}

	reviews := &fakeReviews{rows: []*model.Review{{TutorID: ben.ID, Rating: 5}}}
	dbs := newFakeDBS()
	dbs.rows[uuid.New()] = model.DBSRecord{TutorID: ann.ID, Status: model.DBSStatusVerified, ExpiryDate: now.AddDate(1, 0, 0)}

	svc := NewTutorService(newFakeUsers(ann, ben, parent), reviews, dbs, zap.NewNop())
	svc.now = func() time.Time { return now }

	res, err := svc.Search(context.Background(), views.TutorFilter{Subject: "maths"})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, ben.ID, res[0].Tutor.ID)
	assert.Equal(t, ann.ID, res[1].Tutor.ID)
	assert.True(t, res[1].Verified)

	res, err = svc.Search(context.Background(), views.TutorFilter{VerifiedOnly: true})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, ann.ID, res[0].Tutor.ID)

	_, err = svc.Search(context.Background(), views.TutorFilter{Format: "telepathy"})
	assert.ErrorIs(t, err, ErrValidation)
}
