package views

import (
	"testing"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func booking(subject string, status model.BookingStatus, at time.Time, minutes int) *model.Booking {
	return &model.Booking{
		ID:              uuid.New(),
		ChildID:         uuid.New(),
		Subject:         subject,
		Status:          status,
		ScheduledAt:     at,
		DurationMinutes: minutes,
	}
}

func TestSplitUpcoming(t *testing.T) {
	later := booking("Maths", model.BookingStatusConfirmed, now.Add(48*time.Hour), 60)
	soon := booking("Maths", model.BookingStatusPending, now.Add(time.Hour), 60)
	exactlyNow := booking("English", model.BookingStatusRescheduled, now, 30)
	cancelledFuture := booking("Maths", model.BookingStatusCancelled, now.Add(24*time.Hour), 60)
	old := booking("Maths", model.BookingStatusCompleted, now.Add(-72*time.Hour), 60)
	recent := booking("Maths", model.BookingStatusConfirmed, now.Add(-time.Hour), 60)

	upcoming, past := SplitUpcoming([]*model.Booking{later, old, soon, cancelledFuture, recent, exactlyNow}, now)

	assert.Equal(t, []*model.Booking{exactlyNow, soon, later}, upcoming)
	assert.Equal(t, []*model.Booking{cancelledFuture, recent, old}, past)
}

func TestSplitUpcoming_Empty(t *testing.T) {
	upcoming, past := SplitUpcoming(nil, now)
	assert.Empty(t, upcoming)
	assert.Empty(t, past)
}

func TestFilterBookings(t *testing.T) {
	child := uuid.New()
	a := booking("Maths", model.BookingStatusPending, now, 60)
	a.ChildID = child
	b := booking("maths ", model.BookingStatusCompleted, now.Add(-24*time.Hour), 60)
	b.ChildID = child
	c := booking("Physics", model.BookingStatusCompleted, now.Add(24*time.Hour), 45)
	all := []*model.Booking{a, b, c}

	tests := []struct {
		name   string
		filter BookingFilter
		want   []*model.Booking
	}{
		{"zero filter", BookingFilter{}, all},
		{"child", BookingFilter{ChildID: child}, []*model.Booking{a, b}},
		{"subject ignores case", BookingFilter{Subject: "MATHS"}, []*model.Booking{a, b}},
		{"statuses", BookingFilter{Statuses: []model.BookingStatus{model.BookingStatusCompleted}}, []*model.Booking{b, c}},
		{"from inclusive", BookingFilter{From: now}, []*model.Booking{a, c}},
		{"to exclusive", BookingFilter{To: now}, []*model.Booking{b}},
		{"combined", BookingFilter{ChildID: child, Statuses: []model.BookingStatus{model.BookingStatusPending}}, []*model.Booking{a}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterBookings(all, tt.filter))
		})
	}
}

func TestProgress(t *testing.T) {
	bookings := []*model.Booking{
		booking("Maths", model.BookingStatusCompleted, now, 60),
		booking("maths", model.BookingStatusCompleted, now, 45),
		booking("Maths", model.BookingStatusCancelled, now, 60),
		booking("Maths", model.BookingStatusPending, now, 60),
		booking("English", model.BookingStatusNoShow, now, 30),
		booking("English", model.BookingStatusConfirmed, now, 30),
	}

	report := Progress(bookings)

	assert.Equal(t, 6, report.Overall.Total)
	assert.Equal(t, 2, report.Overall.Completed)
	assert.Equal(t, 1, report.Overall.Cancelled)
	assert.Equal(t, 1, report.Overall.NoShow)
	assert.Equal(t, 2, report.Overall.Upcoming)
	assert.Equal(t, 105, report.Overall.CompletedMinutes)
	assert.InDelta(t, 0.5, report.Overall.CompletionRate, 1e-9)

	require.Len(t, report.BySubject, 2)
	assert.Equal(t, "English", report.BySubject[0].Subject)
	assert.Equal(t, 0.0, report.BySubject[0].CompletionRate)
	assert.Equal(t, "Maths", report.BySubject[1].Subject)
	assert.Equal(t, 4, report.BySubject[1].Total)
	assert.InDelta(t, 2.0/3.0, report.BySubject[1].CompletionRate, 1e-9)
}

func TestProgress_NoClosedLessons(t *testing.T) {
	report := Progress([]*model.Booking{booking("Maths", model.BookingStatusPending, now, 60)})
	assert.Equal(t, 0.0, report.Overall.CompletionRate)
	assert.Equal(t, 1, report.Overall.Upcoming)
}

func tutor(first, last string, rate int, subjects []string, formats ...model.LessonFormat) *model.User {
	return &model.User{
		ID:         uuid.New(),
		UserType:   model.UserTypeTeacher,
		FirstName:  first,
		LastName:   last,
		HourlyRate: rate,
		Subjects:   subjects,
		Formats:    formats,
	}
}

func TestSearchTutors(t *testing.T) {
	alice := tutor("Alice", "Brown", 3000, []string{"Maths", "Physics"}, model.LessonFormatOnline)
	bob := tutor("Bob", "Clark", 5000, []string{"Maths"}, model.LessonFormatHybrid)
	carol := tutor("Carol", "Davis", 2500, []string{"English"}, model.LessonFormatInPerson)
	carol.Location = "Leeds"
	dan := tutor("Dan", "Evans", 2000, []string{"maths"}, model.LessonFormatInPerson)
	parent := &model.User{ID: uuid.New(), UserType: model.UserTypeParent, FirstName: "Pat"}

	ratings := map[uuid.UUID]model.TutorRating{
		alice.ID: {TutorID: alice.ID, Average: 4.5, Count: 2},
		bob.ID:   {TutorID: bob.ID, Average: 4.8, Count: 5},
		carol.ID: {TutorID: carol.ID, Average: 4.5, Count: 1},
	}
	dbs := []*model.DBSRecord{
		{TutorID: alice.ID, Status: model.DBSStatusVerified, ExpiryDate: now.AddDate(1, 0, 0)},
		{TutorID: bob.ID, Status: model.DBSStatusVerified, ExpiryDate: now.AddDate(0, 0, -1)},
		{TutorID: carol.ID, Status: model.DBSStatusPending, ExpiryDate: now.AddDate(1, 0, 0)},
	}
	tutors := []*model.User{dan, carol, parent, alice, bob}

	names := func(rs []TutorResult) []string {
		out := make([]string, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.Tutor.FirstName)
		}
		return out
	}

	tests := []struct {
		name   string
		filter TutorFilter
		want   []string
	}{
		{"all sorted by rating then name", TutorFilter{}, []string{"Bob", "Alice", "Carol", "Dan"}},
		{"subject", TutorFilter{Subject: "MATHS"}, []string{"Bob", "Alice", "Dan"}},
		{"hybrid matches online", TutorFilter{Format: model.LessonFormatOnline}, []string{"Bob", "Alice"}},
		{"max rate", TutorFilter{MaxRate: 3000}, []string{"Alice", "Carol", "Dan"}},
		{"min rating excludes unrated", TutorFilter{MinRating: 4.5}, []string{"Bob", "Alice", "Carol"}},
		{"verified only skips expired", TutorFilter{VerifiedOnly: true}, []string{"Alice"}},
		{"query location", TutorFilter{Query: "leeds"}, []string{"Carol"}},
		{"query name", TutorFilter{Query: "evans"}, []string{"Dan"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(SearchTutors(tutors, ratings, dbs, tt.filter, now)))
		})
	}

	res := SearchTutors(tutors, ratings, dbs, TutorFilter{Query: "dan"}, now)
	require.Len(t, res, 1)
	assert.Equal(t, dan.ID, res[0].Rating.TutorID)
	assert.False(t, res[0].Verified)
}
