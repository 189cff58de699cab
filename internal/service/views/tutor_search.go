package views

import (
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
)

// TutorFilter narrows the tutor directory. Zero values match everything.
type TutorFilter struct {
	Subject      string
	Format       model.LessonFormat
	MaxRate      int // pence per hour
	MinRating    float64
	VerifiedOnly bool
	Query        string // free text over name, bio, subjects and location
}

// TutorResult is one directory entry
type TutorResult struct {
	Tutor    *model.User       `json:"tutor"`
	Rating   model.TutorRating `json:"rating"`
	Verified bool              `json:"dbs_verified"`
}

// SearchTutors filters tutors and orders them by rating, best first, then by
// name. A tutor counts as verified when any of their DBS records is valid at now.
func SearchTutors(
	tutors []*model.User,
	ratings map[uuid.UUID]model.TutorRating,
	dbs []*model.DBSRecord,
	f TutorFilter,
	now time.Time,
) []TutorResult {
	verified := make(map[uuid.UUID]bool)
	for _, rec := range dbs {
		if rec.IsValidAt(now) {
			verified[rec.TutorID] = true
		}
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))

	results := make([]TutorResult, 0, len(tutors))
	for _, t := range tutors {
		if !t.IsTeacher() {
			continue
		}
		rating, ok := ratings[t.ID]
		if !ok {
			rating = model.TutorRating{TutorID: t.ID}
		}

		switch {
		case f.Subject != "" && !t.TeachesSubject(f.Subject):
			continue
		case f.Format != "" && !t.OffersFormat(f.Format):
			continue
		case f.MaxRate > 0 && t.HourlyRate > f.MaxRate:
			continue
		case f.MinRating > 0 && (rating.Count == 0 || rating.Average < f.MinRating):
			continue
		case f.VerifiedOnly && !verified[t.ID]:
			continue
		case query != "" && !matchesQuery(t, query):
			continue
		}

		results = append(results, TutorResult{Tutor: t, Rating: rating, Verified: verified[t.ID]})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Rating.Average != b.Rating.Average {
			return a.Rating.Average > b.Rating.Average
		}
		an, bn := strings.ToLower(a.Tutor.FullName()), strings.ToLower(b.Tutor.FullName())
		if an != bn {
			return an < bn
		}
		return a.Tutor.ID.String() < b.Tutor.ID.String()
	})

	return results
}

func matchesQuery(t *model.User, query string) bool {
	fields := []string{t.FullName(), t.Bio, t.Location}
	fields = append(fields, t.Subjects...)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
