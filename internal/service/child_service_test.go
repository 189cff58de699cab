package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChildService_Lifecycle(t *testing.T) {
	store := newFakeChildren()
	svc := NewChildService(store, zap.NewNop())
	ctx := context.Background()
	parent := Actor{ID: uuid.New(), Role: model.UserTypeParent}

	child, err := svc.Create(ctx, parent, ChildInput{
		FirstName:          " Sam ",
		YearGroup:          "Year 6",
		SubjectsOfInterest: []string{"Maths", "maths", " ", "English"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sam", child.FirstName)
	assert.Equal(t, []string{"Maths", "English"}, child.SubjectsOfInterest)
	assert.NotNil(t, child.Levels)

	updated, err := svc.Update(ctx, parent, child.ID, ChildInput{
		FirstName: "Samuel",
		Levels:    map[string]model.SubjectLevel{"Maths": {Current: "4", Target: "6"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Samuel", updated.FirstName)
	assert.Equal(t, "6", updated.Levels["Maths"].Target)

	list, err := svc.List(ctx, parent)
	require.NoError(t, err)
	require.Len(t, list, 1)

	store.bookings[child.ID] = 2
	assert.ErrorIs(t, svc.Delete(ctx, parent, child.ID), ErrChildHasBookings)

	store.bookings[child.ID] = 0
	require.NoError(t, svc.Delete(ctx, parent, child.ID))
	_, err = svc.Get(ctx, parent, child.ID)
	assert.ErrorIs(t, err, ErrChildNotFound)
}

func TestChildService_Ownership(t *testing.T) {
	store := newFakeChildren()
	svc := NewChildService(store, zap.NewNop())
	ctx := context.Background()
	owner := Actor{ID: uuid.New(), Role: model.UserTypeParent}
	other := Actor{ID: uuid.New(), Role: model.UserTypeParent}
	child := store.add(owner.ID, "Sam")

	_, err := svc.Get(ctx, other, child.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.Update(ctx, other, child.ID, ChildInput{FirstName: "X"})
	assert.ErrorIs(t, err, ErrNotOwner)

	assert.ErrorIs(t, svc.Delete(ctx, other, child.ID), ErrNotOwner)

	_, err = svc.Create(ctx, Actor{ID: uuid.New(), Role: model.UserTypeTeacher}, ChildInput{FirstName: "Sam"})
	assert.ErrorIs(t, err, ErrForbiddenAction)

	_, err = svc.Create(ctx, owner, ChildInput{FirstName: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := svc.Get(ctx, Actor{ID: uuid.New(), Role: model.UserTypeAdmin}, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", got.FirstName)
}
